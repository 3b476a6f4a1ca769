package domain

import "time"

// FlowRecord is one extracted value: the simulated discharge of one channel
// segment at one timestep. Produced only for feature IDs in the target set.
type FlowRecord struct {
	FeatureID int64
	Date      time.Time
	Flow      float64 // m³/s
}

// MissReason classifies why a row carries no flow value.
type MissReason string

const (
	MissNone       MissReason = ""
	MissResolution MissReason = "resolution" // site coordinate never resolved to a flowline
	MissFetch      MissReason = "fetch"      // remote file unavailable or transfer failed
	MissExtract    MissReason = "extract"    // downloaded file malformed or missing variables
	MissTimeout    MissReason = "timeout"    // per-task deadline exceeded
	MissInternal   MissReason = "internal"   // unexpected failure inside the task
	MissAbsent     MissReason = "absent"     // timestep succeeded but the feature ID was not in it
)

// TimestepResult is the outcome of processing one date: either the extracted
// records, or a reason the whole timestep is missing. It never carries both.
type TimestepResult struct {
	Date    time.Time
	Records []FlowRecord
	Reason  MissReason
	Err     error // underlying cause when Reason != MissNone; for logging only
}

// Missing reports whether the timestep produced no data.
func (r TimestepResult) Missing() bool {
	return r.Reason != MissNone
}

// Row is one line of the consolidated long-form table after joining records
// back to the site catalog. Site fields are empty for orphaned feature IDs;
// Flow is meaningless when Missing is true.
type Row struct {
	Site      string
	USGSID    string
	FeatureID int64
	Date      time.Time
	Flow      float64
	Missing   bool
	Reason    MissReason
}

// Table is the consolidated study-period output: one row per (site, date)
// pair, plus rows for records that matched no cataloged site.
type Table struct {
	RunID       string
	GeneratedAt time.Time
	Rows        []Row
}
