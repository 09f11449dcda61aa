package database

import "time"

// Run is one archived pipeline run.
type Run struct {
	ID         string
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

	Error string
}

// Podium is one posted result attached to a run.
type Podium struct {
	RunID     string
	EventName string
	EventURL  string
	Rider     string
	Rank      int
	Category  string
	ResultAt  time.Time
}
