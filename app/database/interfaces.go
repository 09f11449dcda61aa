package database

// RunRepository is the archive surface consumed by the tasks and api
// packages; faked in their tests.
type RunRepository interface {
	RecordRun(run Run, podiums []Podium) error
	LatestRun() (*Run, error)
	RecentRuns(limit int) ([]Run, error)
	PodiumsForRun(runID string) ([]Podium, error)
	GetRunCount() (int, error)
}
