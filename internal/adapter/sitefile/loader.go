// Package sitefile loads the study-site catalog from a CSV file.
package sitefile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
)

// Load reads a site catalog CSV. The header must contain site, lat and lon
// columns; usgs_id and crs are optional. Column order is free.
func Load(path string) ([]domain.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site catalog: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read site catalog: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("site catalog %s has no data rows", path)
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"site", "lat", "lon"} {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("site catalog missing %q column", required)
		}
	}

	sites := make([]domain.Site, 0, len(rows)-1)
	for n, row := range rows[1:] {
		get := func(col string) string {
			i, ok := colIdx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := get("site")
		if name == "" {
			return nil, fmt.Errorf("site catalog row %d: empty site name", n+2)
		}
		lat, err := strconv.ParseFloat(get("lat"), 64)
		if err != nil {
			return nil, fmt.Errorf("site catalog row %d: bad lat %q", n+2, get("lat"))
		}
		lon, err := strconv.ParseFloat(get("lon"), 64)
		if err != nil {
			return nil, fmt.Errorf("site catalog row %d: bad lon %q", n+2, get("lon"))
		}

		crs := get("crs")
		if crs == "" {
			crs = domain.DefaultCRS
		}

		sites = append(sites, domain.Site{
			Name:      name,
			Lat:       lat,
			Lon:       lon,
			CRS:       crs,
			USGSID:    get("usgs_id"),
			FeatureID: domain.FeatureIDUnresolved,
		})
	}
	return sites, nil
}
