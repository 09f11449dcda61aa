package tasks

// TaskSchedulerInterface is the surface the composition root and the API
// handlers use; the API only ever triggers runs.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	TriggerRun() error
}
