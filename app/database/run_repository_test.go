package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestRepository(t *testing.T) RunRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "podiumbot.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return NewRunRepository(db)
}

func testRun(id string, startedAt time.Time) Run {
	return Run{
		ID:         id,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(5 * time.Second),
		Status:     "posted",
		Extracted:  4,
		Duplicates: 1,
		Posted:     3,
	}
}

func TestRunRepository_EmptyArchive(t *testing.T) {
	repo := newTestRepository(t)

	run, err := repo.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun returned error: %v", err)
	}
	if run != nil {
		t.Errorf("LatestRun = %+v, want nil", run)
	}

	count, err := repo.GetRunCount()
	if err != nil {
		t.Fatalf("GetRunCount returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestRunRepository_RecordAndFetch(t *testing.T) {
	repo := newTestRepository(t)
	startedAt := time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC)

	run := testRun("run-1", startedAt)
	podiums := []Podium{
		{RunID: "run-1", EventName: "Alpine Race", EventURL: "https://zp/events.php?zid=1", Rider: "Bob", Rank: 1, Category: "A", ResultAt: startedAt.Add(-time.Hour)},
		{RunID: "run-1", EventName: "Alpine Race", EventURL: "https://zp/events.php?zid=1", Rider: "Alice", Rank: 2, Category: "A", ResultAt: startedAt.Add(-time.Hour)},
	}
	if err := repo.RecordRun(run, podiums); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	latest, err := repo.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun returned error: %v", err)
	}
	if latest == nil {
		t.Fatal("LatestRun = nil after RecordRun")
	}
	if latest.ID != "run-1" || latest.Status != "posted" || latest.Posted != 3 {
		t.Errorf("latest run = %+v", latest)
	}

	stored, err := repo.PodiumsForRun("run-1")
	if err != nil {
		t.Fatalf("PodiumsForRun returned error: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("podiums = %d, want 2", len(stored))
	}
	// Rank order within the event.
	if stored[0].Rider != "Bob" || stored[1].Rider != "Alice" {
		t.Errorf("podium order = %s, %s; want Bob, Alice", stored[0].Rider, stored[1].Rider)
	}
}

func TestRunRepository_RecentRunsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := repo.RecordRun(testRun(id, base.Add(time.Duration(i)*time.Hour)), nil); err != nil {
			t.Fatalf("RecordRun(%s) returned error: %v", id, err)
		}
	}

	runs, err := repo.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-3" || runs[1].ID != "run-2" {
		t.Errorf("order = %s, %s; want run-3, run-2", runs[0].ID, runs[1].ID)
	}

	count, err := repo.GetRunCount()
	if err != nil {
		t.Fatalf("GetRunCount returned error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestRunRepository_FailedRunKeepsError(t *testing.T) {
	repo := newTestRepository(t)

	run := testRun("run-err", time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC))
	run.Status = "failed"
	run.Posted = 0
	run.Error = "failed to fetch team page: status 500"
	if err := repo.RecordRun(run, nil); err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	latest, err := repo.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun returned error: %v", err)
	}
	if latest.Status != "failed" || latest.Error == "" {
		t.Errorf("latest = %+v, want failed status with error text", latest)
	}
}
