package domain

import (
	"fmt"
	"time"
)

// ResolutionError reports that a site coordinate did not resolve to a
// flowline. Callers convert it to the sentinel identifier instead of
// propagating it.
type ResolutionError struct {
	Site string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve site %q: %v", e.Site, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports that one timestep's remote file could not be brought to
// local scratch: missing object, transfer failure, or disk write failure.
type FetchError struct {
	Date time.Time
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch timestep %s from %s: %v", e.Date.Format(dateLayout), e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError reports that a downloaded file could not be parsed: not a
// NetCDF container, expected variables absent, or parallel arrays disagreeing
// in length.
type ExtractError struct {
	Path string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
