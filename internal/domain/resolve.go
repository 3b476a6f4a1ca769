package domain

import (
	"context"
	"log/slog"
)

// FlowlineResolver maps a point coordinate onto the hydrologic network and
// returns the COMID of the flowline containing or nearest to it.
type FlowlineResolver interface {
	FlowlineID(ctx context.Context, lat, lon float64, crs string) (int64, error)
}

// ResolveSites resolves every site in the catalog to a feature ID. A failure
// for one site never propagates: the site keeps FeatureIDUnresolved and stays
// in the returned catalog so downstream joins keep it visible (graceful
// degradation). No retries; the lookup service is called exactly once per
// site, from the calling goroutine.
func ResolveSites(ctx context.Context, sites []Site, resolver FlowlineResolver, logger *slog.Logger) []Site {
	resolved := make([]Site, len(sites))
	for i, s := range sites {
		if s.CRS == "" {
			s.CRS = DefaultCRS
		}
		s.FeatureID = FeatureIDUnresolved

		id, err := resolver.FlowlineID(ctx, s.Lat, s.Lon, s.CRS)
		if err != nil {
			rerr := &ResolutionError{Site: s.Name, Err: err}
			logger.Warn("site resolution failed, keeping sentinel identifier",
				"site", s.Name,
				"lat", s.Lat,
				"lon", s.Lon,
				"error", rerr,
			)
			resolved[i] = s
			continue
		}

		s.FeatureID = id
		logger.Info("site resolved", "site", s.Name, "comid", id)
		resolved[i] = s
	}
	return resolved
}
