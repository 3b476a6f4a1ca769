// Package usgs retrieves observed daily streamflow from the USGS NWIS
// water services API, for comparison against simulated output.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bamaecohydro/NWM-Sipsey/internal/domain"
)

const (
	// parameterDischarge is the NWIS parameter code for discharge in
	// cubic feet per second.
	parameterDischarge = "00060"
	// statDailyMean selects the daily mean statistic.
	statDailyMean = "00003"

	// cfsToCms converts cubic feet per second to cubic meters per second.
	cfsToCms = 0.0283168

	dateLayout = "2006-01-02"
)

// Client queries the NWIS daily-values endpoint. It implements
// domain.ObservationService.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient returns a Client against the given NWIS base URL, e.g.
// "https://waterservices.usgs.gov/nwis".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// DailyValues fetches the daily mean discharge series for one station over
// the study period, converted to cubic meters per second. Days the gage did
// not report are simply absent from the result.
func (c *Client) DailyValues(ctx context.Context, stationID string, period domain.StudyPeriod) ([]domain.ObservedValue, error) {
	u, err := c.requestURL(stationID, period)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building NWIS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying NWIS for station %s: %w", stationID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NWIS returned status %d for station %s", resp.StatusCode, stationID)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding NWIS response for station %s: %w", stationID, err)
	}

	values := make([]domain.ObservedValue, 0)
	for _, series := range body.Value.TimeSeries {
		for _, block := range series.Values {
			for _, v := range block.Value {
				ov, ok, err := c.parseValue(v)
				if err != nil {
					return nil, fmt.Errorf("parsing NWIS value for station %s: %w", stationID, err)
				}
				if ok {
					values = append(values, ov)
				}
			}
		}
	}

	c.logger.Debug("fetched observed daily values",
		slog.String("station", stationID),
		slog.Int("count", len(values)))

	return values, nil
}

func (c *Client) requestURL(stationID string, period domain.StudyPeriod) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing NWIS base URL: %w", err)
	}
	base = base.JoinPath("dv")

	q := url.Values{}
	q.Set("format", "json")
	q.Set("sites", stationID)
	q.Set("parameterCd", parameterDischarge)
	q.Set("statCd", statDailyMean)
	q.Set("startDT", period.Start.Format(dateLayout))
	q.Set("endDT", period.End.Format(dateLayout))
	base.RawQuery = q.Encode()

	return base.String(), nil
}

// parseValue converts one NWIS observation to cubic meters per second. NWIS
// marks missing days with its own no-data value, commonly -999999; those are
// skipped rather than reported as flows.
func (c *Client) parseValue(v value) (domain.ObservedValue, bool, error) {
	flow, err := strconv.ParseFloat(v.Value, 64)
	if err != nil {
		return domain.ObservedValue{}, false, fmt.Errorf("discharge %q: %w", v.Value, err)
	}
	if flow <= -999990 {
		return domain.ObservedValue{}, false, nil
	}

	// Daily values carry a local-time timestamp; only the date matters.
	day, err := time.Parse(dateLayout, v.DateTime[:min(len(v.DateTime), len(dateLayout))])
	if err != nil {
		return domain.ObservedValue{}, false, fmt.Errorf("timestamp %q: %w", v.DateTime, err)
	}

	return domain.ObservedValue{Date: day, Flow: flow * cfsToCms}, true, nil
}

type response struct {
	Value struct {
		TimeSeries []timeSeries `json:"timeSeries"`
	} `json:"value"`
}

type timeSeries struct {
	Values []valueBlock `json:"values"`
}

type valueBlock struct {
	Value []value `json:"value"`
}

type value struct {
	Value    string `json:"value"`
	DateTime string `json:"dateTime"`
}
