//go:build nldi

package nldi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real NLDI API.
// Run with: go test -tags=nldi ./internal/adapter/nldi/ -v -count=1

func smokeClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.water.usgs.gov/nldi",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_FlowlineID_SipseyRiver(t *testing.T) {
	c := smokeClient()

	// Sipsey River near Elrod, AL.
	id, err := c.FlowlineID(context.Background(), 33.2485, -87.7911, "EPSG:4326")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
}

func TestSmoke_FlowlineID_OpenOcean(t *testing.T) {
	c := smokeClient()

	// Middle of the Gulf: no reach nearby; client must fail cleanly.
	_, err := c.FlowlineID(context.Background(), 26.0, -89.0, "EPSG:4326")
	require.Error(t, err)
}

func TestSmoke_CachedResolver(t *testing.T) {
	c := smokeClient()
	cached := NewCachedResolver(c, 10, observability.NewMetricsForTesting())

	id1, err := cached.FlowlineID(context.Background(), 33.2485, -87.7911, "EPSG:4326")
	require.NoError(t, err)

	id2, err := cached.FlowlineID(context.Background(), 33.2485, -87.7911, "EPSG:4326")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}
