// Package domain models National Water Model (NWM) retrospective streamflow
// retrieval for a catalog of point study sites.
//
// # Data Source
//
// Streamflow values come from the NWM retrospective simulation's CHRTOUT
// channel-output files. The archive stores one compressed NetCDF file per
// timestep, partitioned by year:
//
//	{base}/{year}/{YYYYMMDD}1200.CHRTOUT_DOMAIN1.comp
//
// This pipeline samples the fixed 12:00 UTC snapshot of each calendar day.
// Every CHRTOUT file carries two parallel 1-D arrays spanning the entire
// model domain (~2.7 million channel segments):
//
//	feature_id  the NHDPlus COMID of the channel segment
//	streamflow  simulated discharge in cubic meters per second (m³/s)
//
// The arrays are index-aligned: streamflow[i] is the value for feature_id[i].
//
// # Site Resolution
//
// Study sites are given as lat/lon coordinates. The USGS Hydro Network-Linked
// Data Index (NLDI) position lookup maps a coordinate onto the hydrologic
// network; among the candidate features it returns, only the flowline-type
// feature carries the COMID used to filter CHRTOUT records. A site whose
// coordinate fails to resolve keeps the sentinel [FeatureIDUnresolved] so it
// is never dropped from the output.
//
// # Failure Containment
//
// A multi-decade study period means tens of thousands of independent remote
// fetches; individual timesteps fail (archive gaps, truncated transfers,
// corrupt files) and must not abort the batch. Each date's fetch+extract runs
// behind a fault boundary that converts any failure into a [TimestepResult]
// carrying a [MissReason] instead of records. The reason taxonomy keeps bad
// input (resolution) distinguishable from transient trouble (fetch, timeout)
// and from corrupt data (extract), rather than collapsing them into one null.
package domain
