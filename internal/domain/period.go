package domain

import (
	"fmt"
	"time"
)

// StudyPeriod is an inclusive, contiguous range of calendar days at daily
// granularity. Dates are normalized to 00:00 UTC.
type StudyPeriod struct {
	Start time.Time
	End   time.Time
}

// NewStudyPeriod validates and normalizes a date range.
func NewStudyPeriod(start, end time.Time) (StudyPeriod, error) {
	start = midnightUTC(start)
	end = midnightUTC(end)
	if end.Before(start) {
		return StudyPeriod{}, fmt.Errorf("study period end %s before start %s",
			end.Format(dateLayout), start.Format(dateLayout))
	}
	return StudyPeriod{Start: start, End: end}, nil
}

// Days returns the number of calendar days in the period, endpoints included.
func (p StudyPeriod) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Dates materializes the period as a strictly increasing, gap-free slice of
// UTC midnights.
func (p StudyPeriod) Dates() []time.Time {
	dates := make([]time.Time, 0, p.Days())
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func (p StudyPeriod) String() string {
	return p.Start.Format(dateLayout) + ".." + p.End.Format(dateLayout)
}

const dateLayout = "2006-01-02"

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
