package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvemon/ttydash/internal/config"
	"github.com/pvemon/ttydash/internal/derive"
	"github.com/pvemon/ttydash/internal/expr"
)

func guestView() *config.TableView {
	return &config.TableView{
		ID:           "guests",
		AnchorMetric: "guest_cpu",
		JoinLabel:    "id",
		Delimiter:    "\t",
		Columns: []config.Column{
			{ID: "id", Value: "${id}", Title: "ID", Format: "number", Decimals: 0},
			{ID: "name", Value: "${name}", Title: "NAME", Format: "number", Decimals: 1},
			{ID: "cpu", Value: "${cpu_pct}", Title: "CPU", Format: "percent", Decimals: 1},
		},
	}
}

func guestRows() []TableRow {
	return []TableRow{
		{
			ID:      "100",
			Base:    expr.Context{"id": 100.0, "name": "web"},
			Labels:  map[string]string{"id": "100", "name": "web", "status": "running"},
			Derived: map[string]derive.Result{"cpu_pct": {Value: 42.0, Known: true}},
		},
		{
			ID:      "101",
			Base:    expr.Context{"id": 101.0, "name": "db"},
			Labels:  map[string]string{"id": "101", "name": "db", "status": "stopped"},
			Derived: map[string]derive.Result{},
		},
	}
}

func TestRenderTableGrid(t *testing.T) {
	lines := RenderTable(guestView(), guestRows(), "---")
	require.Len(t, lines, 3)

	assert.Equal(t, "ID\tNAME\tCPU", lines[0])
	assert.Equal(t, "100\tweb\t42.0%", lines[1])

	// Row 101 has no derived cpu and cpu_pct is not a label: missing.
	assert.Equal(t, "101\tdb\t---", lines[2])
}

func TestRenderTableLiteralColumnValue(t *testing.T) {
	// A value that is not a ${...} reference is literal cell text, even when
	// no row key matches it.
	view := &config.TableView{
		Delimiter: "\t",
		Columns: []config.Column{
			{ID: "note", Value: "n/a (static)", Format: "number", Decimals: 1},
		},
	}
	row := TableRow{ID: "1", Labels: map[string]string{"id": "1"}}

	lines := RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "n/a (static)", lines[1])
}

func TestRenderTableValueResolutionOrder(t *testing.T) {
	view := &config.TableView{
		Delimiter: "\t",
		Columns: []config.Column{
			{ID: "x", Value: "${x}", Format: "number", Decimals: 0},
		},
	}
	row := TableRow{
		ID:      "1",
		Base:    expr.Context{"x": 2.0},
		Labels:  map[string]string{"x": "label"},
		Derived: map[string]derive.Result{"x": {Value: 1.0, Known: true}},
	}

	// Derived wins over base; base numeric wins over label.
	lines := RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "1", lines[1])

	delete(row.Derived, "x")
	lines = RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "2", lines[1])

	delete(row.Base, "x")
	lines = RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "label", lines[1])

	delete(row.Labels, "x")
	lines = RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "---", lines[1])
}

func TestRenderTableUnknownDerivedMasksBaseValue(t *testing.T) {
	// A derived id that evaluated to unknown renders as missing; it must not
	// fall through to a same-named base metric value.
	view := &config.TableView{
		Delimiter: "\t",
		Columns: []config.Column{
			{ID: "mem", Value: "${mem}", Format: "number", Decimals: 0},
		},
	}
	row := TableRow{
		ID:      "100",
		Base:    expr.Context{"mem": 512.0},
		Labels:  map[string]string{"id": "100"},
		Derived: map[string]derive.Result{"mem": {}},
	}

	lines := RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "---", lines[1])
}

func sortView(order string) *config.TableView {
	return &config.TableView{
		Delimiter: "\t",
		Sort:      config.SortDef{By: "cpu", Order: order},
		Columns: []config.Column{
			{ID: "id", Value: "${id}", Format: "number", Decimals: 0},
		},
	}
}

func sortRowsFixture() []TableRow {
	return []TableRow{
		{ID: "1", Base: expr.Context{"id": 1.0}, Derived: map[string]derive.Result{"cpu": {Value: 10, Known: true}}},
		{ID: "2", Base: expr.Context{"id": 2.0}, Derived: map[string]derive.Result{"cpu": {}}}, // unknown
		{ID: "3", Base: expr.Context{"id": 3.0}, Derived: map[string]derive.Result{"cpu": {Value: 30, Known: true}}},
		{ID: "4", Base: expr.Context{"id": 4.0}, Derived: map[string]derive.Result{"cpu": {Value: 20, Known: true}}},
	}
}

func tableIDs(lines []string) []string {
	ids := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		ids = append(ids, strings.TrimSpace(strings.Split(line, "\t")[0]))
	}
	return ids
}

func TestRenderTableSortUnknownLast(t *testing.T) {
	asc := RenderTable(sortView("asc"), sortRowsFixture(), "---")
	assert.Equal(t, []string{"1", "4", "3", "2"}, tableIDs(asc))

	// Descending reverses the known rows; the unknown row stays last.
	desc := RenderTable(sortView("desc"), sortRowsFixture(), "---")
	assert.Equal(t, []string{"3", "4", "1", "2"}, tableIDs(desc))
}

func TestRenderTableSortStableOnTies(t *testing.T) {
	rows := []TableRow{
		{ID: "1", Base: expr.Context{"id": 1.0}, Derived: map[string]derive.Result{"cpu": {Value: 5, Known: true}}},
		{ID: "2", Base: expr.Context{"id": 2.0}, Derived: map[string]derive.Result{"cpu": {Value: 5, Known: true}}},
		{ID: "3", Base: expr.Context{"id": 3.0}, Derived: map[string]derive.Result{"cpu": {Value: 5, Known: true}}},
	}

	asc := RenderTable(sortView("asc"), rows, "---")
	assert.Equal(t, []string{"1", "2", "3"}, tableIDs(asc))

	desc := RenderTable(sortView("desc"), rows, "---")
	assert.Equal(t, []string{"1", "2", "3"}, tableIDs(desc))
}

func TestRenderTableFilter(t *testing.T) {
	view := guestView()

	view.Filter = config.FilterDef{By: "status", Equals: "running"}
	lines := RenderTable(view, guestRows(), "---")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "web")

	min := 40.0
	view.Filter = config.FilterDef{By: "cpu_pct", Min: &min}
	lines = RenderTable(view, guestRows(), "---")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "42.0%")

	max := 10.0
	view.Filter = config.FilterDef{By: "cpu_pct", Max: &max}
	lines = RenderTable(view, guestRows(), "---")
	require.Len(t, lines, 1) // 101 has no cpu_pct at all, 100 exceeds max
}

func TestRenderTableStyling(t *testing.T) {
	view := &config.TableView{
		Delimiter: "\t",
		Columns: []config.Column{
			{
				ID: "status", Value: "${status}", Width: 9, Align: "left",
				ColorByLabel: map[string]map[string]string{
					"status": {"running": "\x1b[32m", "stopped": "\x1b[31m"},
				},
				ColorReset: "\x1b[0m",
			},
		},
	}

	lines := RenderTable(view, guestRows(), "---")
	// Color pair wraps the text; padding measures visible width only.
	assert.Equal(t, "\x1b[32mrunning\x1b[0m  ", lines[1])
	assert.Equal(t, "\x1b[31mstopped\x1b[0m  ", lines[2])
}

func TestRenderTableUnsizedColumnsUnpadded(t *testing.T) {
	// Only declared-width columns are padded; the rest are raw cells joined
	// by the delimiter, however long their neighbors are.
	view := &config.TableView{
		Delimiter: "\t",
		Columns: []config.Column{
			{ID: "name", Value: "${name}", Title: "N"},
			{ID: "fixed", Value: "${name}", Title: "F", Width: 6},
		},
	}
	rows := []TableRow{
		{ID: "1", Labels: map[string]string{"name": "short"}},
		{ID: "2", Labels: map[string]string{"name": "much-longer-name"}},
	}

	lines := RenderTable(view, rows, "---")
	assert.Equal(t, "N\tF     ", lines[0])
	assert.Equal(t, "short\tshort ", lines[1])
	assert.Equal(t, "much-longer-name\tmuch-longer-name", lines[2])
}

func TestRenderTableEndToEndCell(t *testing.T) {
	// Two samples for entity 100, a row-derived cpu*100, percent:1 → 42.0%.
	view := &config.TableView{
		Delimiter: "\t",
		Columns: []config.Column{
			{ID: "cpu", Value: "${cpu_pct}", Format: "percent", Decimals: 1},
		},
	}
	row := TableRow{
		ID:      "100",
		Base:    expr.Context{"cpu": 0.42, "mem": 512000.0},
		Labels:  map[string]string{"id": "100"},
		Derived: map[string]derive.Result{"cpu_pct": {Value: 42.0, Known: true}},
	}

	lines := RenderTable(view, []TableRow{row}, "---")
	assert.Equal(t, "42.0%", lines[1])
}
