// Package tableout persists the consolidated table and its derived outputs
// as CSV files.
package tableout

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
)

const dateLayout = "2006-01-02"

// WriteTable writes the long-form table: site,comid,date,flow_cms. Missing
// flow values render as empty fields; the sentinel identifier of unresolved
// sites is written as-is so failed resolutions stay visible in the output.
func WriteTable(path string, t domain.Table) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"site", "comid", "date", "flow_cms"}); err != nil {
			return err
		}
		for _, row := range t.Rows {
			flow := ""
			if !row.Missing {
				flow = formatFloat(row.Flow)
			}
			rec := []string{
				row.Site,
				strconv.FormatInt(row.FeatureID, 10),
				row.Date.Format(dateLayout),
				flow,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummaries writes the per-site aggregate statistics.
func WriteSummaries(path string, summaries []domain.SiteSummary) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"site", "comid", "n", "n_missing", "mean_cms", "min_cms", "max_cms"}); err != nil {
			return err
		}
		for _, s := range summaries {
			rec := []string{
				s.Site,
				strconv.FormatInt(s.FeatureID, 10),
				strconv.Itoa(s.Count),
				strconv.Itoa(s.Missing),
				formatNullableFloat(s.Mean),
				formatNullableFloat(s.Min),
				formatNullableFloat(s.Max),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteObserved writes an observed daily series for one site, for comparison
// against the simulated table.
func WriteObserved(path, site, stationID string, values []domain.ObservedValue) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"site", "usgs_id", "date", "observed_cms"}); err != nil {
			return err
		}
		for _, v := range values {
			rec := []string{site, stationID, v.Date.Format(dateLayout), formatFloat(v.Flow)}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatNullableFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return formatFloat(f)
}
