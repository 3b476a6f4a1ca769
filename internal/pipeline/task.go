package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
)

// Fetcher brings one timestep's remote file to local scratch and hands back
// a cleanup func that must run before the task ends.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time) (path string, cleanup func(), err error)
}

// Extractor parses a downloaded timestep file and filters it to the target
// feature set.
type Extractor interface {
	Extract(path string, targets map[int64]struct{}, date time.Time) ([]domain.FlowRecord, error)
}

// Task processes one date behind the batch's fault boundary: whatever goes
// wrong inside fetch or extract, the blast radius is exactly this date.
type Task struct {
	fetcher   Fetcher
	extractor Extractor
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewTask wires a fetcher and extractor into one fault-isolated unit.
func NewTask(f Fetcher, e Extractor, logger *slog.Logger, metrics *observability.Metrics) *Task {
	return &Task{
		fetcher:   f,
		extractor: e,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes fetch→extract for one date. It never returns an error and
// never panics outward: every failure becomes a missing-timestep result so
// the caller can keep the rest of the batch.
func (t *Task) Run(ctx context.Context, date time.Time, targets map[int64]struct{}) (result domain.TimestepResult) {
	defer func() {
		if p := recover(); p != nil {
			result = t.missing(date, domain.MissInternal, fmt.Errorf("panic: %v", p))
		}
	}()

	path, cleanup, err := t.fetcher.Fetch(ctx, date)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return t.missing(date, domain.MissTimeout, err)
		}
		if errors.Is(err, context.Canceled) {
			return t.missing(date, domain.MissInternal, err)
		}
		return t.missing(date, domain.MissFetch, err)
	}
	defer cleanup()

	records, err := t.extractor.Extract(path, targets, date)
	if err != nil {
		return t.missing(date, domain.MissExtract, err)
	}

	t.metrics.TimestepsProcessed.Inc()
	return domain.TimestepResult{Date: date, Records: records}
}

func (t *Task) missing(date time.Time, reason domain.MissReason, err error) domain.TimestepResult {
	t.metrics.TimestepsMissing.WithLabelValues(string(reason)).Inc()
	t.logger.Warn("timestep failed, emitting missing record",
		"date", date.Format("2006-01-02"),
		"reason", reason,
		"error", err,
	)
	return domain.TimestepResult{Date: date, Reason: reason, Err: err}
}
