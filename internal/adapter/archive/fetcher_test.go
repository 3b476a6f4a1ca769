package archive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(t *testing.T, baseURL string) *Fetcher {
	t.Helper()
	return NewFetcher(
		baseURL,
		"CHRTOUT_DOMAIN1.comp",
		t.TempDir(),
		"testrun",
		5*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func scratchEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFetcher_URL(t *testing.T) {
	f := testFetcher(t, "https://archive.example/model_output")

	u := f.URL(time.Date(1993, time.February, 7, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "https://archive.example/model_output/1993/199302071200.CHRTOUT_DOMAIN1.comp", u)

	// Year partition must follow the date across year boundaries.
	u = f.URL(time.Date(2019, time.December, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "https://archive.example/model_output/2019/201912311200.CHRTOUT_DOMAIN1.comp", u)
}

func TestFetcher_Fetch_Success(t *testing.T) {
	payload := []byte{0x43, 0x44, 0x46, 0x01, 0xde, 0xad, 0xbe, 0xef} // binary-safe
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1993/199302071200.CHRTOUT_DOMAIN1.comp", r.URL.Path)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL)
	date := time.Date(1993, time.February, 7, 0, 0, 0, 0, time.UTC)

	path, cleanup, err := f.Fetch(context.Background(), date)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "scratch file must not outlive the task")
}

func TestFetcher_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL)
	_, _, err := f.Fetch(context.Background(), time.Date(1978, time.January, 1, 0, 0, 0, 0, time.UTC))

	var ferr *domain.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Error(), "404")
	assert.Empty(t, scratchEntries(t, f.scratchDir), "failed fetch must leave no scratch file")
}

func TestFetcher_Fetch_TruncatedTransfer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		_, _ = w.Write([]byte("short"))
		// Hijack and drop the connection mid-body.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, _ := hj.Hijack()
			conn.Close()
		}
	}))
	defer srv.Close()

	f := testFetcher(t, srv.URL)
	_, _, err := f.Fetch(context.Background(), time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC))

	var ferr *domain.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Empty(t, scratchEntries(t, f.scratchDir), "partial download must be removed")
}

func TestFetcher_Fetch_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	f := testFetcher(t, srv.URL)
	_, _, err := f.Fetch(context.Background(), time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC))

	var ferr *domain.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Empty(t, scratchEntries(t, f.scratchDir))
}

func TestFetcher_Fetch_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	f := testFetcher(t, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := f.Fetch(ctx, time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC))

	var ferr *domain.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "cause must unwrap to the deadline")
}

func TestFetcher_ScratchPathsUniquePerDate(t *testing.T) {
	f := testFetcher(t, "https://archive.example")

	p1 := f.scratchPath(time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC))
	p2 := f.scratchPath(time.Date(2000, time.June, 2, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, f.scratchDir, filepath.Dir(p1))
}
