// Package prom implements the metrics source collaborator: a minimal client
// for the Prometheus HTTP API's instant query endpoint.
package prom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pvemon/ttydash/internal/errors"
	"github.com/pvemon/ttydash/internal/logger"
)

// Result is one series returned by an instant query. Labels include the
// backend's __name__ entry; Value is the sample value verbatim from the wire
// (the API encodes it as a string), left unparsed so that malformed samples
// can be dropped individually downstream.
type Result struct {
	Labels map[string]string
	Value  string
}

// Client queries a Prometheus-compatible backend over HTTP.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     logger.Logger
}

// NewClient creates a client for the given base URL (e.g.
// "http://192.168.1.24:9090"). The timeout bounds each query round-trip.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.Noop()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Query runs an instant query and returns the resulting series.
// Failures return a FETCH-coded error; callers at the bulk-tick boundary are
// expected to tolerate them and keep the previous sample set.
func (c *Client) Query(ctx context.Context, query string) ([]Result, error) {
	u := fmt.Sprintf("%s/api/v1/query?%s", c.baseURL,
		url.Values{"query": []string{query}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Failed to build query request",
			"Check datasources.prometheus.base_url in your config")
	}

	c.log.Debug("query %s", query)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Metrics backend unreachable", "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Failed to read query response", "")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrFetch,
			fmt.Sprintf("Query returned HTTP %d", resp.StatusCode),
			"Check the query syntax and that the backend is a Prometheus-compatible API")
	}

	return parseResponse(body)
}

// apiResponse mirrors the subset of the query API response we consume.
type apiResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Metric map[string]string `json:"metric"`
			Value  [2]interface{}    `json:"value"`
		} `json:"result"`
	} `json:"data"`
}

func parseResponse(body []byte) ([]Result, error) {
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFetch,
			"Malformed query response", "")
	}
	if parsed.Status != "success" {
		return nil, errors.New(errors.ErrFetch,
			fmt.Sprintf("Query failed with status %q", parsed.Status), "")
	}

	out := make([]Result, 0, len(parsed.Data.Result))
	for _, series := range parsed.Data.Result {
		// value is [timestamp, "<number>"]; keep the string form.
		val, _ := series.Value[1].(string)
		out = append(out, Result{Labels: series.Metric, Value: val})
	}
	return out, nil
}
