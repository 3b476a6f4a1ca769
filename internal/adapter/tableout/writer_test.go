package tableout

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestWriteTable(t *testing.T) {
	d1 := time.Date(2001, time.May, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2001, time.May, 2, 0, 0, 0, 0, time.UTC)
	tbl := domain.Table{Rows: []domain.Row{
		{Site: "S", FeatureID: 18228725, Date: d1, Flow: 12.5},
		{Site: "S", FeatureID: 18228725, Date: d2, Missing: true, Reason: domain.MissFetch},
		{Site: "swamp", FeatureID: domain.FeatureIDUnresolved, Date: d1, Missing: true, Reason: domain.MissResolution},
	}}

	path := filepath.Join(t.TempDir(), "flows.csv")
	require.NoError(t, WriteTable(path, tbl))

	want := "site,comid,date,flow_cms\n" +
		"S,18228725,2001-05-01,12.5\n" +
		"S,18228725,2001-05-02,\n" +
		"swamp,-9999,2001-05-01,\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestWriteSummaries(t *testing.T) {
	sums := []domain.SiteSummary{
		{Site: "S", FeatureID: 7, Count: 2, Missing: 1, Mean: 20, Min: 10, Max: 30},
		{Site: "dry", FeatureID: -9999, Count: 0, Missing: 3, Mean: math.NaN(), Min: math.NaN(), Max: math.NaN()},
	}

	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummaries(path, sums))

	want := "site,comid,n,n_missing,mean_cms,min_cms,max_cms\n" +
		"S,7,2,1,20,10,30\n" +
		"dry,-9999,0,3,,,\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestWriteObserved(t *testing.T) {
	values := []domain.ObservedValue{
		{Date: time.Date(2001, time.May, 1, 0, 0, 0, 0, time.UTC), Flow: 11.75},
	}

	path := filepath.Join(t.TempDir(), "observed.csv")
	require.NoError(t, WriteObserved(path, "S", "02446500", values))

	want := "site,usgs_id,date,observed_cms\n" +
		"S,02446500,2001-05-01,11.75\n"
	assert.Equal(t, want, readFile(t, path))
}

func TestWriteTable_BadPath(t *testing.T) {
	err := WriteTable(filepath.Join(t.TempDir(), "missing-dir", "flows.csv"), domain.Table{})
	require.Error(t, err)
}
