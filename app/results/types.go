package results

import (
	"fmt"
	"time"
)

// Result is one observed race outcome extracted from the team results page.
// Records are produced fresh on every run and never persisted; only the
// derived identity string ends up in the dedup ledger.
type Result struct {
	EventName  string
	EventURL   string
	Rider      string
	Rank       int
	OccurredAt time.Time // UTC
	Category   string    // single-letter pen (A-D) or "?"
}

// Identity returns the dedup key for this result. It must stay stable across
// runs for the same underlying event/rider/rank/time: two records with the
// same identity are the same real-world outcome.
func (r Result) Identity() string {
	return fmt.Sprintf("%s|%s|%d|%s", r.EventURL, r.Rider, r.Rank, r.OccurredAt.UTC().Format(time.RFC3339))
}

// Run outcome labels recorded in the archive and exposed via the status API.
const (
	StatusPosted = "posted"
	StatusEmpty  = "empty"
	StatusForced = "forced"
	StatusFailed = "failed"
)

// RunReport summarizes a single pipeline run: how many candidates each
// filter stage rejected and what was finally posted.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string

	Extracted        int
	OutsideWindow    int
	RankRejected     int
	Ignored          int
	CategoryRejected int
	Duplicates       int
	Posted           int

	Podiums []Result
	Error   string
}
