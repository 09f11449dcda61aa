package database

import (
	"database/sql"
	"fmt"
)

var _ RunRepository = (*runRepository)(nil)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepository{db: db}
}

// RecordRun stores a run and its posted podiums in one transaction.
func (r *runRepository) RecordRun(run Run, podiums []Podium) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			id, started_at, finished_at, status,
			extracted, outside_window, rank_rejected, ignored,
			category_rejected, duplicates, posted, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.FinishedAt, run.Status,
		run.Extracted, run.OutsideWindow, run.RankRejected, run.Ignored,
		run.CategoryRejected, run.Duplicates, run.Posted, run.Error)
	if err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}

	for _, podium := range podiums {
		_, err = tx.Exec(`
			INSERT INTO podiums (run_id, event_name, event_url, rider, rank, category, result_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, podium.EventName, podium.EventURL, podium.Rider,
			podium.Rank, podium.Category, podium.ResultAt)
		if err != nil {
			return fmt.Errorf("failed to store podium: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run, or nil when none exist yet.
func (r *runRepository) LatestRun() (*Run, error) {
	row := r.db.QueryRow(runSelect + ` ORDER BY started_at DESC LIMIT 1`)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

func (r *runRepository) RecentRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(runSelect+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *runRepository) PodiumsForRun(runID string) ([]Podium, error) {
	rows, err := r.db.Query(`
		SELECT run_id, event_name, event_url, rider, rank, category, result_at
		FROM podiums
		WHERE run_id = ?
		ORDER BY event_name, rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query podiums: %w", err)
	}
	defer rows.Close()

	var podiums []Podium
	for rows.Next() {
		var p Podium
		err := rows.Scan(&p.RunID, &p.EventName, &p.EventURL, &p.Rider, &p.Rank, &p.Category, &p.ResultAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan podium: %w", err)
		}
		podiums = append(podiums, p)
	}
	return podiums, rows.Err()
}

func (r *runRepository) GetRunCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

const runSelect = `
	SELECT id, started_at, finished_at, status,
	       extracted, outside_window, rank_rejected, ignored,
	       category_rejected, duplicates, posted, error
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status,
		&run.Extracted, &run.OutsideWindow, &run.RankRejected, &run.Ignored,
		&run.CategoryRejected, &run.Duplicates, &run.Posted, &run.Error)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
