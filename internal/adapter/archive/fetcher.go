// Package archive downloads per-timestep CHRTOUT files from the NWM
// retrospective archive into local scratch space.
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
)

// timeOfDay is the fixed snapshot each daily retrieval samples.
const timeOfDay = "1200"

// Fetcher brings one timestep's remote file to local scratch. Each worker
// owns its own Fetcher (and therefore its own http.Client); nothing here is
// shared across workers except the scratch directory, where filenames are
// keyed by run ID and date so concurrent tasks never contend for a path.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	suffix     string
	scratchDir string
	runID      string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for one worker.
func NewFetcher(baseURL, suffix, scratchDir, runID string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		suffix:     suffix,
		scratchDir: scratchDir,
		runID:      runID,
		metrics:    metrics,
		logger:     logger,
	}
}

// URL derives the remote object location for a date: year partition, compact
// date string, fixed time-of-day, fixed product suffix.
func (f *Fetcher) URL(date time.Time) string {
	date = date.UTC()
	return fmt.Sprintf("%s/%d/%s%s.%s", f.baseURL, date.Year(), date.Format("20060102"), timeOfDay, f.suffix)
}

func (f *Fetcher) scratchPath(date time.Time) string {
	name := fmt.Sprintf("nwm-%s-%s%s.nc", f.runID, date.UTC().Format("20060102"), timeOfDay)
	return filepath.Join(f.scratchDir, name)
}

// Fetch downloads the timestep file for date and returns the scratch path
// together with a cleanup func the caller must defer. On failure the partial
// scratch file is already removed before the error returns, so the scratch
// file never outlives the task on any exit path.
func (f *Fetcher) Fetch(ctx context.Context, date time.Time) (string, func(), error) {
	remote := f.URL(date)
	path := f.scratchPath(date)
	cleanup := func() { f.removeScratch(path) }

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return "", nil, &domain.FetchError{Date: date, URL: remote, Err: err}
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", nil, &domain.FetchError{Date: date, URL: remote, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &domain.FetchError{
			Date: date,
			URL:  remote,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return "", nil, &domain.FetchError{Date: date, URL: remote, Err: err}
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, &domain.FetchError{Date: date, URL: remote, Err: err}
	}

	f.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	f.metrics.FetchBytes.Observe(float64(n))
	f.logger.Debug("timestep fetched", "date", date.Format("2006-01-02"), "bytes", n)
	return path, cleanup, nil
}

func (f *Fetcher) removeScratch(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		// A leaked scratch file across tens of thousands of tasks is a disk
		// exhaustion problem, so failing to remove one is worth a warning.
		f.logger.Warn("scratch file removal failed", "path", path, "error", err)
	}
}
