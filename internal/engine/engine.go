// Package engine is the render scheduler: it drives the fetch/derive/render
// cycle against a metrics source and a display, on two cadences. The bulk
// cycle refetches samples and rebuilds the table body; the fast cycle only
// recomputes derived values from the existing samples and repaints the
// header line in place.
package engine

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pvemon/ttydash/internal/config"
	"github.com/pvemon/ttydash/internal/derive"
	"github.com/pvemon/ttydash/internal/expr"
	"github.com/pvemon/ttydash/internal/logger"
	"github.com/pvemon/ttydash/internal/prom"
	"github.com/pvemon/ttydash/internal/render"
	"github.com/pvemon/ttydash/internal/series"
)

// MetricsSource fetches raw samples. Implemented by prom.Client; tests plug
// in a stub.
type MetricsSource interface {
	Query(ctx context.Context, query string) ([]prom.Result, error)
}

// Display receives composed frames. Implemented by term.Screen.
type Display interface {
	FullFrame(header, body string)
	HeaderLine(header string)
}

// Engine holds the per-cycle working state. One goroutine owns it; every
// bulk cycle rebuilds the index and contexts from scratch.
type Engine struct {
	cfg     *config.Config
	source  MetricsSource
	display Display
	log     logger.Logger

	defs   []derive.Def
	header *config.HeaderView
	tables []*config.TableView

	// samples persists across cycles so a failed fetch keeps showing the
	// previous values for that metric.
	samples map[string][]series.Sample

	index    *series.Index
	body     string
	lastBulk time.Time
}

// New builds an engine from a validated config. Derived definitions are
// compiled here: one that fails to parse is reported and kept as a
// permanently-unknown definition rather than aborting startup, so a single
// bad expression costs one value, not the dashboard.
func New(cfg *config.Config, source MetricsSource, display Display, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Noop()
	}

	defs := make([]derive.Def, 0, len(cfg.Derived))
	for _, d := range cfg.Derived {
		compiled, err := expr.Parse(d.Expr)
		if err != nil {
			log.Warn("derived %q: %v", d.ID, err)
			defs = append(defs, derive.Def{ID: d.ID, PerRow: d.PerRow})
			continue
		}
		defs = append(defs, derive.Def{ID: d.ID, Expr: compiled, PerRow: d.PerRow})
	}

	e := &Engine{
		cfg:     cfg,
		source:  source,
		display: display,
		log:     log,
		defs:    defs,
		samples: make(map[string][]series.Sample),
	}
	for _, entry := range cfg.Layout {
		view := cfg.FindView(entry.View)
		if view.Kind == config.ViewHeader {
			e.header = view.Header
		} else {
			e.tables = append(e.tables, view.Table)
		}
	}
	return e
}

// Run drives the render loop until ctx is cancelled. The first iteration is
// always a bulk cycle so the dashboard starts with a full frame.
func (e *Engine) Run(ctx context.Context) error {
	fast := e.cfg.FastInterval()
	bulk := e.cfg.BulkInterval()

	for {
		now := time.Now()
		full := e.lastBulk.IsZero() || now.Sub(e.lastBulk) >= bulk
		if full {
			e.bulkCycle(ctx)
			e.lastBulk = now
		}

		header := e.renderHeader()
		if full {
			e.display.FullFrame(header, e.body)
		} else {
			e.display.HeaderLine(header)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(fast):
		}
	}
}

// bulkCycle refetches every metric, reindexes, resolves derived values, and
// rebuilds the table body. A failed query keeps that metric's previous
// samples; if every query fails the previous frame simply persists.
func (e *Engine) bulkCycle(ctx context.Context) {
	timeout := e.cfg.FetchTimeout()
	for _, m := range e.cfg.Metrics {
		query := config.SubstVars(m.Query, e.cfg.Globals.Vars)

		qctx, cancel := context.WithTimeout(ctx, timeout)
		results, err := e.source.Query(qctx, query)
		cancel()
		if err != nil {
			e.log.Warn("fetch %q failed, keeping previous samples: %v", m.ID, err)
			continue
		}

		samples := make([]series.Sample, len(results))
		for i, r := range results {
			samples[i] = series.Sample{
				MetricID:     m.ID,
				Labels:       r.Labels,
				Value:        r.Value,
				ExposeLabels: m.ExposeLabels,
			}
		}
		e.samples[m.ID] = samples
	}

	flat := make([]series.Sample, 0)
	for _, m := range e.cfg.Metrics {
		flat = append(flat, e.samples[m.ID]...)
	}
	e.index = series.New(flat, e.cfg.JoinLabel())

	_, derivedRows, rowCtxs := e.resolve()
	e.body = e.renderBody(derivedRows, rowCtxs)
}

// resolve recomputes the evaluation contexts and derived values from the
// current index. Cheap enough to run on every fast tick.
func (e *Engine) resolve() (map[string]derive.Result, map[string]map[string]derive.Result, map[string]expr.Context) {
	global := e.index.GlobalContext(e.cfg.MetricIDs())
	rowCtxs := e.index.RowContexts()
	derivedGlobal, derivedRows := derive.Resolve(global, rowCtxs, e.defs)
	return derivedGlobal, derivedRows, rowCtxs
}

func (e *Engine) renderHeader() string {
	if e.header == nil {
		return ""
	}
	derivedGlobal, _, _ := e.resolve()
	global := e.index.GlobalContext(e.cfg.MetricIDs())
	return render.RenderHeader(e.header.Template, e.computedValues(),
		derivedGlobal, global, e.cfg.MissingValue())
}

// computedValues resolves the header's computed-value specs: the uptime
// builtin, or a count over a metric. A count over a table's anchor metric
// counts assembled rows; over anything else it counts the metric's values.
func (e *Engine) computedValues() map[string]render.Value {
	out := make(map[string]render.Value, len(e.header.Computed))
	for name, spec := range e.header.Computed {
		if spec.Builtin == "uptime" {
			out[name] = render.TextValue(render.Uptime())
			continue
		}
		n := e.index.BucketLen(spec.FromMetric)
		if e.isAnchorMetric(spec.FromMetric) {
			n = e.index.RowCount()
		}
		out[name] = render.NumValue(float64(n))
	}
	return out
}

func (e *Engine) isAnchorMetric(metric string) bool {
	for _, t := range e.tables {
		if t.AnchorMetric == metric {
			return true
		}
	}
	return false
}

func (e *Engine) renderBody(derivedRows map[string]map[string]derive.Result, rowCtxs map[string]expr.Context) string {
	rows := e.tableRows(derivedRows, rowCtxs)
	missing := e.cfg.MissingValue()

	var sections []string
	for _, t := range e.tables {
		lines := render.RenderTable(t, rows, missing)
		if t.Title != "" {
			lines = append([]string{t.Title}, lines...)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// tableRows assembles render rows in the deterministic base order: ascending
// by entity id, numerically when both ids parse as numbers.
func (e *Engine) tableRows(derivedRows map[string]map[string]derive.Result, rowCtxs map[string]expr.Context) []render.TableRow {
	ids := make([]string, 0, len(e.index.Rows))
	for id := range e.index.Rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })

	rows := make([]render.TableRow, len(ids))
	for i, id := range ids {
		rows[i] = render.TableRow{
			ID:      id,
			Base:    rowCtxs[id],
			Labels:  e.index.Rows[id].Labels,
			Derived: derivedRows[id],
		}
	}
	return rows
}

func idLess(a, b string) bool {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
