// Package nldi resolves point coordinates to NHDPlus COMIDs through the USGS
// Hydro Network-Linked Data Index position lookup.
package nldi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/observability"
)

// ErrNoFlowline is returned when the lookup succeeds but no flowline-type
// feature is among the candidates (e.g. the point is far from any reach).
var ErrNoFlowline = errors.New("no flowline feature near point")

// Client implements domain.FlowlineResolver using the NLDI API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an NLDI position-lookup client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FlowlineID looks up the flowline containing or nearest to the given point
// and returns its COMID. The lookup may return several candidate feature
// types (catchment, flowline, ...); only the flowline carries the identifier
// this pipeline filters on.
func (c *Client) FlowlineID(ctx context.Context, lat, lon float64, crs string) (int64, error) {
	u := fmt.Sprintf("%s/linked-data/comid/position", c.baseURL)
	params := url.Values{
		// NLDI expects WKT point in lon lat order.
		"coords": {fmt.Sprintf("POINT(%.6f %.6f)", lon, lat)},
	}
	if crs != "" {
		params.Set("crs", crs)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ResolveRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("position lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ResolveRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("NLDI API error: status %d: %s", resp.StatusCode, body)
	}

	var nldiResp response
	if err := json.NewDecoder(resp.Body).Decode(&nldiResp); err != nil {
		c.metrics.ResolveRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("decode response: %w", err)
	}

	for _, f := range nldiResp.Features {
		if f.Properties.FeatureType != "" && f.Properties.FeatureType != "flowline" {
			continue
		}
		id, err := f.Properties.comidValue()
		if err != nil {
			continue
		}
		c.metrics.ResolveRequests.WithLabelValues("success").Inc()
		return id, nil
	}

	c.metrics.ResolveRequests.WithLabelValues("empty").Inc()
	return 0, ErrNoFlowline
}

// NLDI API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties properties `json:"properties"`
}

type properties struct {
	FeatureType string `json:"featureType"`
	Comid       string `json:"comid"`
	Identifier  string `json:"identifier"`
}

// comidValue parses the COMID out of whichever property field carries it.
func (p properties) comidValue() (int64, error) {
	s := p.Comid
	if s == "" {
		s = p.Identifier
	}
	if s == "" {
		return 0, errors.New("feature carries no identifier")
	}
	return strconv.ParseInt(s, 10, 64)
}
