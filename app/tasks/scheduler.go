package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rcf-tools/podiumbot/app/database"
	"github.com/rcf-tools/podiumbot/app/results"
	"github.com/rcf-tools/podiumbot/app/zwiftpower"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler triggers report runs on an interval. It deliberately runs a
// single worker: overlapping pipeline runs would race on the flat-file
// stores, so serializing them through one goroutine is the mutual exclusion.
type Scheduler struct {
	pipeline *results.Pipeline
	runRepo  database.RunRepository
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	queue    chan TaskInterface
}

func NewScheduler(pipeline *results.Pipeline, runRepo database.RunRepository, interval time.Duration) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		pipeline: pipeline,
		runRepo:  runRepo,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		queue:    make(chan TaskInterface, 4),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if err := s.TriggerRun(); err != nil {
			slog.Warn("Failed to enqueue startup run", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if err := s.TriggerRun(); err != nil {
					slog.Warn("Failed to enqueue scheduled run", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.queue)
}

// TriggerRun enqueues one report run. A full queue means runs are already
// backed up behind the single worker; piling more on would not help.
func (s *Scheduler) TriggerRun() error {
	task := NewReportTask(s.pipeline, s.runRepo)

	select {
	case s.queue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.queue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "error", err)

	// A rejected cookie will not fix itself; retrying would only hammer the
	// login page. Everything else (transport, delivery) is retryable: the
	// ledger only commits after a successful post, so a re-run cannot
	// double-report.
	if errors.Is(err, zwiftpower.ErrAuthFailure) {
		slog.Error("Authentication failed, credential rotation required", "id", task.GetID())
		return
	}

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(),
			"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * 30 * time.Second

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "id", task.GetID())
		case <-time.After(retryDelay):
			select {
			case s.queue <- task:
			default:
				slog.Error("Failed to re-enqueue task for retry, queue full", "id", task.GetID())
			}
		}
	}()
}
