package domain

import (
	"context"
	"time"
)

// ObservedValue is one daily-mean observed discharge from a reference gauge,
// used only for post-hoc comparison against the simulated series.
type ObservedValue struct {
	Date time.Time
	Flow float64 // m³/s after unit conversion by the adapter
}

// ObservationService fetches an observed daily time series for a gauge
// station over a study period.
type ObservationService interface {
	DailyValues(ctx context.Context, stationID string, period StudyPeriod) ([]ObservedValue, error)
}
