package domain

// Assemble joins per-date results back onto the site catalog to produce the
// consolidated long-form table. For every (site, date) pair exactly one row
// comes out:
//
//   - a value row when the timestep succeeded and the site's feature ID was
//     present in it;
//   - a missing row carrying the timestep's reason when the whole timestep
//     failed;
//   - a missing row with MissResolution when the site never resolved;
//   - a missing row with MissAbsent when the timestep succeeded but the
//     feature ID was not in the file (join anomaly, retained not dropped).
//
// Records whose feature ID matches no cataloged site are kept as orphan rows
// with empty site fields. No deduplication: two sites sharing one feature ID
// each get their own row. Row order is deterministic: results order (the
// study period), site-catalog order within a date, orphans last.
func Assemble(runID string, results []TimestepResult, sites []Site) Table {
	rows := make([]Row, 0, len(results)*len(sites))
	siteIDs := TargetSet(sites)

	for _, res := range results {
		byID := make(map[int64]FlowRecord, len(res.Records))
		for _, rec := range res.Records {
			byID[rec.FeatureID] = rec
		}

		for _, s := range sites {
			row := Row{
				Site:      s.Name,
				USGSID:    s.USGSID,
				FeatureID: s.FeatureID,
				Date:      res.Date,
			}
			switch {
			case !s.Resolved():
				row.Missing = true
				row.Reason = MissResolution
			case res.Missing():
				row.Missing = true
				row.Reason = res.Reason
			default:
				rec, ok := byID[s.FeatureID]
				if !ok {
					row.Missing = true
					row.Reason = MissAbsent
					break
				}
				row.Flow = rec.Flow
			}
			rows = append(rows, row)
		}

		for _, rec := range res.Records {
			if _, claimed := siteIDs[rec.FeatureID]; claimed {
				continue
			}
			rows = append(rows, Row{
				FeatureID: rec.FeatureID,
				Date:      rec.Date,
				Flow:      rec.Flow,
			})
		}
	}

	return Table{
		RunID:       runID,
		GeneratedAt: clock.Now().UTC(),
		Rows:        rows,
	}
}
