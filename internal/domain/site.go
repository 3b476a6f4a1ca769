package domain

// FeatureIDUnresolved marks a site whose coordinate could not be resolved to
// a flowline. Negative so it can never collide with a real NHDPlus COMID.
const FeatureIDUnresolved int64 = -9999

// DefaultCRS is the coordinate reference system assumed for site coordinates
// when the catalog does not state one.
const DefaultCRS = "EPSG:4326"

// Site is one study location from the input catalog. Created once at startup
// and immutable after resolution.
type Site struct {
	Name   string
	Lat    float64
	Lon    float64
	CRS    string
	USGSID string // optional NWIS station for observed-flow comparison

	// FeatureID is the resolved NHDPlus COMID, or FeatureIDUnresolved when
	// resolution failed or has not run yet.
	FeatureID int64
}

// Resolved reports whether the site carries a usable network identifier.
func (s Site) Resolved() bool {
	return s.FeatureID > 0
}

// TargetSet collects the resolved feature IDs of a site catalog into a set
// for per-timestep filtering. Unresolved sites contribute nothing.
func TargetSet(sites []Site) map[int64]struct{} {
	targets := make(map[int64]struct{}, len(sites))
	for _, s := range sites {
		if s.Resolved() {
			targets[s.FeatureID] = struct{}{}
		}
	}
	return targets
}
