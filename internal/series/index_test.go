package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestSamples() []Sample {
	return []Sample{
		{MetricID: "guest_cpu", Labels: map[string]string{"id": "100", "name": "web", "status": "running"}, Value: "0.42", ExposeLabels: []string{"name", "status"}},
		{MetricID: "guest_cpu", Labels: map[string]string{"id": "101", "name": "db", "status": "stopped"}, Value: "0.05", ExposeLabels: []string{"name", "status"}},
		{MetricID: "guest_mem", Labels: map[string]string{"id": "100"}, Value: "512000"},
		{MetricID: "node_cpu", Labels: map[string]string{}, Value: "0.33"},
	}
}

func TestNewBucketsAndRows(t *testing.T) {
	ix := New(guestSamples(), "id")

	assert.Equal(t, []float64{0.42, 0.05}, ix.ByMetric["guest_cpu"])
	assert.Equal(t, []float64{0.33}, ix.ByMetric["node_cpu"])
	assert.Equal(t, 2, ix.RowCount())

	web := ix.Rows["100"]
	require.NotNil(t, web)
	assert.Equal(t, "web", web.Labels["name"])
	assert.Equal(t, "running", web.Labels["status"])
	assert.InDelta(t, 0.42, web.Values["guest_cpu"], 1e-9)
	assert.InDelta(t, 512000, web.Values["guest_mem"], 1e-9)

	// node_cpu has no id label: no row, only the name bucket.
	_, exists := ix.Rows[""]
	assert.False(t, exists)
}

func TestNewFirstValueWinsPerRow(t *testing.T) {
	samples := []Sample{
		{MetricID: "disk", Labels: map[string]string{"id": "100", "dev": "sda"}, Value: "10"},
		{MetricID: "disk", Labels: map[string]string{"id": "100", "dev": "sdb"}, Value: "20"},
	}
	ix := New(samples, "id")

	assert.InDelta(t, 10, ix.Rows["100"].Values["disk"], 1e-9)
	assert.Equal(t, []float64{10, 20}, ix.Keyed("disk", "100"))
	assert.Equal(t, 2, ix.BucketLen("disk"))
}

func TestNewSkipsNonNumericValues(t *testing.T) {
	samples := []Sample{
		{MetricID: "cpu", Labels: map[string]string{"id": "100"}, Value: "NaN-ish"},
		{MetricID: "cpu", Labels: map[string]string{"id": "101"}, Value: "0.5"},
	}
	ix := New(samples, "id")

	assert.Equal(t, []float64{0.5}, ix.ByMetric["cpu"])
	assert.Equal(t, 1, ix.RowCount())
}

func TestNewCustomIDLabel(t *testing.T) {
	samples := []Sample{
		{MetricID: "cpu", Labels: map[string]string{"vmid": "200", "name": "x"}, Value: "1", ExposeLabels: []string{"name"}},
	}
	ix := New(samples, "vmid")

	require.Contains(t, ix.Rows, "200")
	assert.Equal(t, "x", ix.Rows["200"].Labels["name"])
}

func TestGlobalContextFirstValuePerMetric(t *testing.T) {
	ix := New(guestSamples(), "id")

	ctx := ix.GlobalContext([]string{"guest_cpu", "node_cpu", "absent"})
	assert.Equal(t, 0.42, ctx["guest_cpu"])
	assert.Equal(t, 0.33, ctx["node_cpu"])
	_, ok := ctx["absent"]
	assert.False(t, ok)
}

func TestRowContexts(t *testing.T) {
	samples := []Sample{
		{MetricID: "cpu", Labels: map[string]string{"id": "100", "name": "web", "maxmem": "1024"}, Value: "0.42", ExposeLabels: []string{"name", "maxmem"}},
	}
	ix := New(samples, "id")

	ctxs := ix.RowContexts()
	require.Contains(t, ctxs, "100")
	ctx := ctxs["100"]

	// Numeric-looking labels are coerced; text labels stay strings.
	assert.Equal(t, 1024.0, ctx["maxmem"])
	assert.Equal(t, "web", ctx["name"])
	assert.Equal(t, 0.42, ctx["cpu"])
}

func TestRowContextsMetricValueWinsOverLabel(t *testing.T) {
	samples := []Sample{
		{MetricID: "mem", Labels: map[string]string{"id": "100", "mem": "999"}, Value: "512", ExposeLabels: []string{"mem"}},
	}
	ix := New(samples, "id")

	ctx := ix.RowContexts()["100"]
	assert.Equal(t, 512.0, ctx["mem"])
}
