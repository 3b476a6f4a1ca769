package domain

import "math"

// SiteSummary holds the post-hoc aggregate statistics for one site over the
// study period. Mean, Min and Max cover only rows that carry a value.
type SiteSummary struct {
	Site      string
	FeatureID int64
	Count     int // rows with a flow value
	Missing   int // rows without one
	Mean      float64
	Min       float64
	Max       float64
}

// Summarize reduces the consolidated table to per-site statistics, in the
// order sites first appear. Orphan rows (empty site name) are skipped.
func Summarize(t Table) []SiteSummary {
	index := make(map[string]int)
	var summaries []SiteSummary

	for _, row := range t.Rows {
		if row.Site == "" {
			continue
		}
		i, ok := index[row.Site]
		if !ok {
			i = len(summaries)
			index[row.Site] = i
			summaries = append(summaries, SiteSummary{
				Site:      row.Site,
				FeatureID: row.FeatureID,
				Min:       math.Inf(1),
				Max:       math.Inf(-1),
			})
		}

		if row.Missing {
			summaries[i].Missing++
			continue
		}
		summaries[i].Count++
		summaries[i].Mean += row.Flow
		summaries[i].Min = math.Min(summaries[i].Min, row.Flow)
		summaries[i].Max = math.Max(summaries[i].Max, row.Flow)
	}

	for i := range summaries {
		if summaries[i].Count > 0 {
			summaries[i].Mean /= float64(summaries[i].Count)
		} else {
			summaries[i].Mean = math.NaN()
			summaries[i].Min = math.NaN()
			summaries[i].Max = math.NaN()
		}
	}
	return summaries
}
