// Package series turns flat sample lists into the per-metric buckets and
// per-entity rows the rest of the engine evaluates against. Everything here
// is rebuilt from scratch each cycle; nothing persists.
package series

import (
	"strconv"

	"github.com/pvemon/ttydash/internal/expr"
)

// Sample is one scraped measurement, annotated with the metric definition
// that produced it. Value is kept in wire form; non-numeric samples are
// dropped during indexing without aborting the pass.
type Sample struct {
	MetricID     string
	Labels       map[string]string
	Value        string
	ExposeLabels []string
}

// Row is an entity (e.g. a guest VM) assembled from keyed samples.
// Values holds the first value seen per metric; Labels holds the labels the
// contributing metric definitions chose to expose.
type Row struct {
	ID     string
	Labels map[string]string
	Values map[string]float64
}

type bucketKey struct {
	metric string
	row    string
}

// Index holds the per-cycle sample indices.
type Index struct {
	// ByMetric collects every numeric value per metric id, in sample order,
	// regardless of whether the sample carried an entity label.
	ByMetric map[string][]float64

	// Rows maps entity id to its assembled row.
	Rows map[string]*Row

	byMetricRow map[bucketKey][]float64
}

// New indexes samples. idLabel names the entity-identifying label (default
// "id" at the config layer): samples carrying it contribute to per-entity
// buckets and row assembly, others only to the name-only buckets. Samples
// whose value does not parse as a number are skipped individually.
func New(samples []Sample, idLabel string) *Index {
	ix := &Index{
		ByMetric:    make(map[string][]float64),
		Rows:        make(map[string]*Row),
		byMetricRow: make(map[bucketKey][]float64),
	}

	for _, s := range samples {
		val, err := strconv.ParseFloat(s.Value, 64)
		if err != nil {
			continue
		}

		rowID, keyed := s.Labels[idLabel]
		if keyed {
			k := bucketKey{metric: s.MetricID, row: rowID}
			ix.byMetricRow[k] = append(ix.byMetricRow[k], val)
		}
		ix.ByMetric[s.MetricID] = append(ix.ByMetric[s.MetricID], val)

		// Rows are an emergent set: a metric that exposes labels and carries
		// the entity label contributes row metadata.
		if keyed && len(s.ExposeLabels) > 0 {
			r := ix.row(rowID)
			for _, name := range s.ExposeLabels {
				r.Labels[name] = s.Labels[name]
			}
		}
	}

	// Attach per-row metric values; first value wins for the row's value map,
	// the full bucket stays available for aggregate use.
	for k, vals := range ix.byMetricRow {
		r := ix.row(k.row)
		if _, exists := r.Values[k.metric]; !exists {
			r.Values[k.metric] = vals[0]
		}
	}

	return ix
}

func (ix *Index) row(id string) *Row {
	r, ok := ix.Rows[id]
	if !ok {
		r = &Row{ID: id, Labels: make(map[string]string), Values: make(map[string]float64)}
		ix.Rows[id] = r
	}
	return r
}

// Keyed returns the values bucketed under (metric, entity), in sample order.
func (ix *Index) Keyed(metric, rowID string) []float64 {
	return ix.byMetricRow[bucketKey{metric: metric, row: rowID}]
}

// RowCount returns the number of assembled rows.
func (ix *Index) RowCount() int { return len(ix.Rows) }

// BucketLen returns the number of values in a metric's name-only bucket.
func (ix *Index) BucketLen(metric string) int { return len(ix.ByMetric[metric]) }

// GlobalContext builds the name->value snapshot for global expressions:
// the first sampled value per metric id, in the order metrics are defined.
func (ix *Index) GlobalContext(metricIDs []string) expr.Context {
	ctx := make(expr.Context, len(metricIDs))
	for _, id := range metricIDs {
		if vals := ix.ByMetric[id]; len(vals) > 0 {
			ctx[id] = vals[0]
		}
	}
	return ctx
}

// RowContexts builds one evaluation context per row: the row's exposed labels
// (numeric labels coerced to numbers, others kept as strings) merged with its
// metric values. Metric values win over labels on a name clash.
func (ix *Index) RowContexts() map[string]expr.Context {
	out := make(map[string]expr.Context, len(ix.Rows))
	for id, r := range ix.Rows {
		ctx := make(expr.Context, len(r.Labels)+len(r.Values))
		for k, v := range r.Labels {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				ctx[k] = n
			} else {
				ctx[k] = v
			}
		}
		for k, v := range r.Values {
			ctx[k] = v
		}
		out[id] = ctx
	}
	return out
}
