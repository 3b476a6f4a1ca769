package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
)

// progressEvery is how many completed timesteps separate progress log lines.
// A 41-year run is ~15k tasks; logging each one would drown the output.
const progressEvery = 500

// TaskFactory builds a Task with its own fetch/parse resources. Called once
// per worker so no file handle or HTTP session ever crosses a worker
// boundary.
type TaskFactory func() *Task

// Orchestrator fans one task per study-period date out over a fixed worker
// pool and collects results in date order.
type Orchestrator struct {
	newTask     TaskFactory
	workers     int
	taskTimeout time.Duration
	logger      *slog.Logger
	metrics     *observability.Metrics

	ready     atomic.Bool
	completed atomic.Int64
}

// NewOrchestrator creates an Orchestrator. workers must be >= 1; the caller
// sizes it (default: hardware parallelism minus one, reserving a unit for
// this coordinating goroutine).
func NewOrchestrator(newTask TaskFactory, workers int, taskTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		newTask:     newTask,
		workers:     workers,
		taskTimeout: taskTimeout,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once the batch has completed at least one
// timestep, or an error describing why the run is not yet making progress.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("batch has not completed any timestep yet")
	}
	return nil
}

// Run processes every date in the study period and returns one result per
// date, in study-period order regardless of completion order. The worker
// pool drains deterministically before Run returns; no goroutine outlives
// it. Cancelling ctx stops dispatch; dates never dispatched still get a
// missing result so the output spans the full requested period.
func (o *Orchestrator) Run(ctx context.Context, period domain.StudyPeriod, targets map[int64]struct{}) []domain.TimestepResult {
	dates := period.Dates()
	results := make([]domain.TimestepResult, len(dates))
	jobs := make(chan int)

	o.metrics.BatchRunning.Set(1)
	defer o.metrics.BatchRunning.Set(0)

	o.logger.Info("batch started",
		"period", period.String(),
		"timesteps", len(dates),
		"targets", len(targets),
		"workers", o.workers,
	)

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker re-establishes its own stateful resources.
			task := o.newTask()
			for i := range jobs {
				results[i] = o.runOne(ctx, task, dates[i], targets)
				o.ready.Store(true)
				if n := o.completed.Add(1); n%progressEvery == 0 {
					o.logger.Info("batch progress", "completed", n, "total", len(dates))
				}
			}
		}()
	}

dispatch:
	for i := range dates {
		select {
		case <-ctx.Done():
			o.logger.Warn("batch cancelled, abandoning remaining timesteps", "reason", ctx.Err())
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// Dates never dispatched (cancellation) still get a sentinel result.
	for i := range results {
		if results[i].Date.IsZero() {
			results[i] = domain.TimestepResult{
				Date:   dates[i],
				Reason: domain.MissInternal,
				Err:    ctx.Err(),
			}
		}
	}

	o.logger.Info("batch finished", "timesteps", len(dates))
	return results
}

// runOne applies the per-task deadline so one hung download cannot occupy a
// worker slot for the rest of the run.
func (o *Orchestrator) runOne(ctx context.Context, task *Task, date time.Time, targets map[int64]struct{}) domain.TimestepResult {
	taskCtx, cancel := context.WithTimeout(ctx, o.taskTimeout)
	defer cancel()
	return task.Run(taskCtx, date, targets)
}
