package results

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rcf-tools/podiumbot/app/store"
)

// SourceClient fetches the two kinds of pages the pipeline reads.
type SourceClient interface {
	EventFetcher
	TeamPage(ctx context.Context) ([]byte, error)
}

// Notifier delivers the accepted podiums. An empty slice is only ever sent on
// the force-post path.
type Notifier interface {
	Send(ctx context.Context, podiums []Result, window Window) error
}

// PipelineOptions are the tunables the orchestrator needs; they are built
// from process configuration at startup and passed in, never read from
// ambient state.
type PipelineOptions struct {
	Location   *time.Location
	WindowDays int
	MaxRank    int
	ForcePost  bool
}

// Pipeline is the single-pass orchestrator:
// extract -> window filter -> rank filter -> ignore filter -> classify +
// category filter -> dedup filter -> post -> commit. There is no internal
// retry: a failed run leaves the ledger untouched and the next invocation
// starts over.
type Pipeline struct {
	source     SourceClient
	extractor  *Extractor
	classifier *Classifier
	ledger     *store.Ledger
	ignorePath string
	cache      *store.ClassificationCache
	notifier   Notifier
	opts       PipelineOptions

	now func() time.Time
}

func NewPipeline(source SourceClient, extractor *Extractor, classifier *Classifier,
	ledger *store.Ledger, ignorePath string, cache *store.ClassificationCache,
	notifier Notifier, opts PipelineOptions) *Pipeline {
	if opts.WindowDays < 1 {
		opts.WindowDays = 7
	}
	if opts.MaxRank < 1 {
		opts.MaxRank = 3
	}
	return &Pipeline{
		source:     source,
		extractor:  extractor,
		classifier: classifier,
		ledger:     ledger,
		ignorePath: ignorePath,
		cache:      cache,
		notifier:   notifier,
		opts:       opts,
		now:        time.Now,
	}
}

// Run executes one pipeline pass. The returned report is non-nil even on
// failure so the archive records aborted runs too.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}

	page, err := p.source.TeamPage(ctx)
	if err != nil {
		return p.fail(report, fmt.Errorf("failed to fetch team page: %w", err))
	}

	window := CurrentWindow(p.now(), p.opts.Location, p.opts.WindowDays)
	ignore := store.LoadIgnoreList(p.ignorePath)
	p.classifier.BeginRun()
	extracted := p.extractor.Run(page)
	report.Extracted = len(extracted)

	slog.Debug("Rows extracted", "run_id", report.RunID, "count", len(extracted),
		"window_start", window.Start.Format("2006-01-02"), "window_end", window.End.Format("2006-01-02"))

	var accepted []Result
	for _, result := range extracted {
		switch {
		case !window.Contains(result.OccurredAt):
			report.OutsideWindow++
		case result.Rank > p.opts.MaxRank:
			report.RankRejected++
		case ignore.Contains(result.Rider):
			report.Ignored++
		case !p.classifier.Accepted(p.classifier.Classify(ctx, result.EventURL)):
			report.CategoryRejected++
		case p.ledger.Contains(result.Identity()):
			report.Duplicates++
		default:
			accepted = append(accepted, result)
		}
	}

	// Classifications are observations independent of delivery; persist them
	// even when nothing gets posted.
	if err := p.cache.Commit(); err != nil {
		slog.Warn("Failed to persist classification cache", "run_id", report.RunID, "error", err)
	}

	if len(accepted) == 0 {
		if !p.opts.ForcePost {
			report.Status = StatusEmpty
			report.FinishedAt = p.now().UTC()
			slog.Info("Run completed", "run_id", report.RunID, "status", report.Status, "extracted", report.Extracted)
			return report, nil
		}

		// Forced "nothing found" notification; no identities were accepted,
		// so the ledger is not touched.
		if err := p.notifier.Send(ctx, nil, window); err != nil {
			return p.fail(report, fmt.Errorf("failed to deliver notification: %w", err))
		}
		report.Status = StatusForced
		report.FinishedAt = p.now().UTC()
		slog.Info("Run completed", "run_id", report.RunID, "status", report.Status)
		return report, nil
	}

	if err := p.notifier.Send(ctx, accepted, window); err != nil {
		// No commit: the accepted identities stay eligible for retry.
		return p.fail(report, fmt.Errorf("failed to deliver notification: %w", err))
	}

	identities := make([]string, 0, len(accepted))
	for _, result := range accepted {
		identities = append(identities, result.Identity())
	}
	if err := p.ledger.Commit(identities); err != nil {
		// The post went out; a lost ledger write risks a repeat next run but
		// must not crash this one.
		slog.Warn("Failed to persist dedup ledger", "run_id", report.RunID, "error", err)
	}

	report.Status = StatusPosted
	report.Posted = len(accepted)
	report.Podiums = accepted
	report.FinishedAt = p.now().UTC()

	slog.Info("Run completed", "run_id", report.RunID, "status", report.Status,
		"extracted", report.Extracted, "outside_window", report.OutsideWindow,
		"rank_rejected", report.RankRejected, "ignored", report.Ignored,
		"category_rejected", report.CategoryRejected, "duplicates", report.Duplicates,
		"posted", report.Posted)

	return report, nil
}

func (p *Pipeline) fail(report *RunReport, err error) (*RunReport, error) {
	report.Status = StatusFailed
	report.Error = err.Error()
	report.FinishedAt = p.now().UTC()
	return report, err
}
