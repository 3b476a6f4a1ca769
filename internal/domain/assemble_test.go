package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })
}

func TestAssemble_SuccessThenFetchFailure(t *testing.T) {
	freezeClock(t)

	d1 := date(2001, time.May, 1)
	d2 := date(2001, time.May, 2)
	sites := []Site{{Name: "S", USGSID: "02446500", FeatureID: 18228725}}

	results := []TimestepResult{
		{Date: d1, Records: []FlowRecord{{FeatureID: 18228725, Date: d1, Flow: 12.5}}},
		{Date: d2, Reason: MissFetch, Err: errors.New("status 404")},
	}

	tbl := Assemble("run-1", results, sites)

	want := []Row{
		{Site: "S", USGSID: "02446500", FeatureID: 18228725, Date: d1, Flow: 12.5},
		{Site: "S", USGSID: "02446500", FeatureID: 18228725, Date: d2, Missing: true, Reason: MissFetch},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "run-1", tbl.RunID)
	assert.Equal(t, frozen, tbl.GeneratedAt)
}

func TestAssemble_TwoSitesOneReach(t *testing.T) {
	freezeClock(t)

	d := date(2010, time.August, 15)
	sites := []Site{
		{Name: "left bank", FeatureID: 77},
		{Name: "right bank", FeatureID: 77},
	}
	results := []TimestepResult{
		{Date: d, Records: []FlowRecord{{FeatureID: 77, Date: d, Flow: 7.0}}},
	}

	tbl := Assemble("run-2", results, sites)

	want := []Row{
		{Site: "left bank", FeatureID: 77, Date: d, Flow: 7.0},
		{Site: "right bank", FeatureID: 77, Date: d, Flow: 7.0},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_UnresolvedSiteNeverDropped(t *testing.T) {
	freezeClock(t)

	d1 := date(2000, time.January, 1)
	d2 := date(2000, time.January, 2)
	sites := []Site{
		{Name: "good", FeatureID: 5},
		{Name: "swamp", FeatureID: FeatureIDUnresolved},
	}
	results := []TimestepResult{
		{Date: d1, Records: []FlowRecord{{FeatureID: 5, Date: d1, Flow: 1.0}}},
		{Date: d2, Records: []FlowRecord{{FeatureID: 5, Date: d2, Flow: 2.0}}},
	}

	tbl := Assemble("run-3", results, sites)

	require.Len(t, tbl.Rows, 4)
	for _, row := range tbl.Rows {
		if row.Site != "swamp" {
			continue
		}
		assert.Equal(t, FeatureIDUnresolved, row.FeatureID, "sentinel identifier carried through")
		assert.True(t, row.Missing)
		assert.Equal(t, MissResolution, row.Reason, "resolution failure stays distinguishable from fetch failure")
	}
}

func TestAssemble_JoinAnomalies(t *testing.T) {
	freezeClock(t)

	d := date(2015, time.March, 3)
	sites := []Site{{Name: "dry run", FeatureID: 42}}
	results := []TimestepResult{
		// Timestep succeeded, but 42 was absent and an uncataloged 99 showed up.
		{Date: d, Records: []FlowRecord{{FeatureID: 99, Date: d, Flow: 3.5}}},
	}

	tbl := Assemble("run-4", results, sites)

	want := []Row{
		{Site: "dry run", FeatureID: 42, Date: d, Missing: true, Reason: MissAbsent},
		{FeatureID: 99, Date: d, Flow: 3.5}, // orphan retained with empty site fields
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_EveryDateRepresentedUnderTotalFailure(t *testing.T) {
	freezeClock(t)

	sites := []Site{{Name: "S", FeatureID: 1}}
	p, err := NewStudyPeriod(date(1999, time.June, 1), date(1999, time.June, 30))
	require.NoError(t, err)

	results := make([]TimestepResult, 0, p.Days())
	for _, d := range p.Dates() {
		results = append(results, TimestepResult{Date: d, Reason: MissFetch, Err: errors.New("outage")})
	}

	tbl := Assemble("run-5", results, sites)
	require.Len(t, tbl.Rows, 30, "no date silently dropped even under 100% fetch failure")
	for _, row := range tbl.Rows {
		assert.True(t, row.Missing)
	}
}
