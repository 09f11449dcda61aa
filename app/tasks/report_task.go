package tasks

import (
	"context"
	"log/slog"

	"github.com/rcf-tools/podiumbot/app/database"
	"github.com/rcf-tools/podiumbot/app/results"
)

// ReportTask runs the podium pipeline once and archives the outcome. Failed
// runs are archived too, so the status API can surface an expired cookie or
// a flaky source without anyone reading logs.
type ReportTask struct {
	Task
	pipeline *results.Pipeline
	runRepo  database.RunRepository
}

func NewReportTask(pipeline *results.Pipeline, runRepo database.RunRepository) *ReportTask {
	return &ReportTask{
		Task:     NewTask(TaskTypeReport),
		pipeline: pipeline,
		runRepo:  runRepo,
	}
}

func (t *ReportTask) Execute(ctx context.Context) error {
	report, runErr := t.pipeline.Run(ctx)

	if report != nil {
		if err := t.runRepo.RecordRun(reportToRun(report), reportToPodiums(report)); err != nil {
			slog.Warn("Failed to archive run", "run_id", report.RunID, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"id", t.ID,
		"duration", t.GetDuration(),
		"status", report.Status,
		"posted", report.Posted)
	return nil
}

func reportToRun(report *results.RunReport) database.Run {
	return database.Run{
		ID:               report.RunID,
		StartedAt:        report.StartedAt,
		FinishedAt:       report.FinishedAt,
		Status:           report.Status,
		Extracted:        report.Extracted,
		OutsideWindow:    report.OutsideWindow,
		RankRejected:     report.RankRejected,
		Ignored:          report.Ignored,
		CategoryRejected: report.CategoryRejected,
		Duplicates:       report.Duplicates,
		Posted:           report.Posted,
		Error:            report.Error,
	}
}

func reportToPodiums(report *results.RunReport) []database.Podium {
	podiums := make([]database.Podium, 0, len(report.Podiums))
	for _, p := range report.Podiums {
		podiums = append(podiums, database.Podium{
			RunID:     report.RunID,
			EventName: p.EventName,
			EventURL:  p.EventURL,
			Rider:     p.Rider,
			Rank:      p.Rank,
			Category:  p.Category,
			ResultAt:  p.OccurredAt,
		})
	}
	return podiums
}
