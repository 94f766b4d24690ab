package prom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvemon/ttydash/internal/errors"
	"github.com/pvemon/ttydash/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, logger.Noop())
}

func TestQuerySuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/query", r.URL.Path)
		assert.Equal(t, `pve_guest_cpu{node="pve"}`, r.URL.Query().Get("query"))
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"resultType": "vector",
				"result": [
					{"metric": {"__name__": "pve_guest_cpu", "id": "100", "name": "web"}, "value": [1700000000, "0.42"]},
					{"metric": {"__name__": "pve_guest_cpu", "id": "101"}, "value": [1700000000, "0.05"]}
				]
			}
		}`))
	})

	results, err := c.Query(context.Background(), `pve_guest_cpu{node="pve"}`)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "0.42", results[0].Value)
	assert.Equal(t, "100", results[0].Labels["id"])
	assert.Equal(t, "web", results[0].Labels["name"])
}

func TestQueryEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "data": {"resultType": "vector", "result": []}}`))
	})

	results, err := c.Query(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad query", http.StatusBadRequest)
	})

	_, err := c.Query(context.Background(), "up{")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
	assert.Contains(t, err.Error(), "400")
}

func TestQueryBackendFailureStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "data": {}}`))
	})

	_, err := c.Query(context.Background(), "up")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
}

func TestQueryMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := c.Query(context.Background(), "up")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
}

func TestQueryUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond, logger.Noop())

	_, err := c.Query(context.Background(), "up")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
}

func TestQueryRespectsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Query(ctx, "up")
	require.Error(t, err)
}
