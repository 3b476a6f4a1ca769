// Command genarchive writes a synthetic CHRTOUT archive tree for local
// development and integration testing. It produces one NetCDF file per day
// under year subdirectories, mirroring the retrospective archive layout, so
// the retrieval command can be pointed at any static file server serving the
// output directory.
//
// Usage:
//
//	go run ./cmd/genarchive \
//	  -out ./archive \
//	  -start 2000-01-01 -end 2000-01-31 \
//	  -features 18228725,18228763,18228879
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
)

const dateLayout = "2006-01-02"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "root directory for the generated archive tree")
	startStr := flag.String("start", "2000-01-01", "first day (YYYY-MM-DD)")
	endStr := flag.String("end", "2000-01-31", "last day (YYYY-MM-DD)")
	featuresStr := flag.String("features", "18228725,18228763", "comma-separated reach identifiers to include")
	padding := flag.Int("padding", 50, "number of extra non-target reaches per file")
	seed := flag.Int64("seed", 1, "random seed for generated flows")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	period, err := parsePeriod(*startStr, *endStr)
	if err != nil {
		return err
	}
	features, err := parseFeatures(*featuresStr)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	ids := buildIDs(features, *padding, rng)

	for _, date := range period.Dates() {
		path := archivePath(*outDir, date)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating year directory: %w", err)
		}
		if err := writeTimestep(path, date, ids, rng); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	fmt.Printf("wrote %d files under %s\n", period.Days(), *outDir)
	return nil
}

// archivePath mirrors the retrospective layout: {root}/{year}/{YYYYMMDD}1200.CHRTOUT_DOMAIN1.comp
func archivePath(root string, date time.Time) string {
	name := fmt.Sprintf("%s1200.CHRTOUT_DOMAIN1.comp", date.Format("20060102"))
	return filepath.Join(root, strconv.Itoa(date.Year()), name)
}

// buildIDs mixes the target reaches into a larger shuffled identifier space
// so extraction has to actually filter.
func buildIDs(features []int64, padding int, rng *rand.Rand) []int64 {
	ids := make([]int64, 0, len(features)+padding)
	ids = append(ids, features...)
	for i := 0; i < padding; i++ {
		ids = append(ids, 1_000_000+rng.Int63n(10_000_000))
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// writeTimestep emits one CHRTOUT-shaped file with a seasonal flow signal
// plus noise, so generated series look plausibly hydrological.
func writeTimestep(path string, date time.Time, ids []int64, rng *rand.Rand) error {
	flows := make([]float64, len(ids))
	doy := float64(date.YearDay())
	for i := range flows {
		seasonal := 15 + 10*math.Sin(2*math.Pi*(doy-60)/365)
		flows[i] = math.Max(0.01, seasonal+rng.NormFloat64()*3)
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return err
	}
	if err := cw.AddVar("feature_id", api.Variable{
		Values:     ids,
		Dimensions: []string{"feature_id"},
	}); err != nil {
		cw.Close()
		return err
	}
	attrs, err := util.NewOrderedMap(
		[]string{"units", "long_name"},
		map[string]any{"units": "m3 s-1", "long_name": "River Flow"},
	)
	if err != nil {
		cw.Close()
		return err
	}
	if err := cw.AddVar("streamflow", api.Variable{
		Values:     flows,
		Dimensions: []string{"feature_id"},
		Attributes: attrs,
	}); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

func parseFeatures(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	features := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing feature id %q: %w", p, err)
		}
		features = append(features, id)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("no feature ids given")
	}
	return features, nil
}

func parsePeriod(start, end string) (domain.StudyPeriod, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return domain.StudyPeriod{}, fmt.Errorf("parsing -start: %w", err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return domain.StudyPeriod{}, fmt.Errorf("parsing -end: %w", err)
	}
	return domain.NewStudyPeriod(s, e)
}
