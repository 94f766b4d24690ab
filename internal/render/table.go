package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pvemon/ttydash/internal/config"
	"github.com/pvemon/ttydash/internal/derive"
	"github.com/pvemon/ttydash/internal/expr"
)

// TableRow is one renderable entity. Base holds the row's evaluation context
// (exposed labels, numeric where they parse, plus metric values); Labels
// holds the raw label text for styling and equality filters; Derived holds
// the row's per-row derived results, unknown entries included.
type TableRow struct {
	ID      string
	Base    expr.Context
	Labels  map[string]string
	Derived map[string]derive.Result
}

// cell is a resolved column value prior to formatting.
type cell struct {
	num   float64
	str   string
	text  bool
	known bool
}

// RenderTable filters, sorts, formats, and aligns rows into grid lines:
// a header row followed by one line per surviving row. Rows arrive in the
// caller's base order, which sorting treats as the tie-break order. Only
// declared-width columns are padded; unsized cells are emitted raw.
func RenderTable(view *config.TableView, rows []TableRow, missing string) []string {
	rows = filterRows(view.Filter, rows)
	rows = sortRows(view.Sort, rows)

	grid := make([][]string, 0, len(rows)+1)
	head := make([]string, len(view.Columns))
	for i, col := range view.Columns {
		title := col.Title
		if title == "" {
			title = col.ID
		}
		head[i] = title
	}
	grid = append(grid, head)

	for _, row := range rows {
		line := make([]string, len(view.Columns))
		for i, col := range view.Columns {
			line[i] = renderCell(col, row, missing)
		}
		grid = append(grid, line)
	}

	out := make([]string, len(grid))
	for r, line := range grid {
		for i, col := range view.Columns {
			if col.Width > 0 {
				line[i] = Pad(line[i], col.Width, col.Align)
			}
		}
		out[r] = strings.Join(line, view.Delimiter)
	}
	return out
}

// refName reports whether a column's value field is a ${...} reference and,
// if so, the name inside it. Anything else is literal cell text.
func refName(value string) (string, bool) {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return strings.TrimSpace(value[2 : len(value)-1]), true
	}
	return "", false
}

// resolveValue looks a name up against a row: per-row derived results first,
// then numeric base-context entries, then label text. A derived id that
// evaluated to unknown resolves as unknown rather than falling through to a
// same-named base value.
func resolveValue(row TableRow, name string) cell {
	if r, ok := row.Derived[name]; ok {
		if !r.Known {
			return cell{}
		}
		return cell{num: r.Value, known: true}
	}
	if raw, ok := row.Base[name]; ok {
		if v, ok := raw.(float64); ok {
			return cell{num: v, known: true}
		}
	}
	if s, ok := row.Labels[name]; ok {
		return cell{str: s, text: true, known: true}
	}
	return cell{}
}

func renderCell(col config.Column, row TableRow, missing string) string {
	var text string
	if name, isRef := refName(col.Value); isRef {
		c := resolveValue(row, name)
		switch {
		case c.known && !c.text:
			text = Format(c.num, true, col.Format, col.Decimals, missing)
		case c.known && c.str != "":
			text = c.str
		default:
			text = missing
		}
	} else {
		text = col.Value
	}
	text = strings.TrimSpace(text)

	for labelName, byValue := range col.ColorByLabel {
		lv, ok := row.Labels[labelName]
		if !ok {
			continue
		}
		if color, ok := byValue[lv]; ok {
			text = color + text + col.ColorReset
		}
	}
	return text
}

func filterRows(f config.FilterDef, rows []TableRow) []TableRow {
	if f.By == "" {
		return rows
	}
	out := rows[:0:0]
	for _, row := range rows {
		if matchesFilter(f, row) {
			out = append(out, row)
		}
	}
	return out
}

func matchesFilter(f config.FilterDef, row TableRow) bool {
	if f.Equals != "" {
		return row.Labels[f.By] == f.Equals
	}
	c := resolveValue(row, f.By)
	key, ok := numericKey(c)
	if !ok {
		return false
	}
	if f.Min != nil && key < *f.Min {
		return false
	}
	if f.Max != nil && key > *f.Max {
		return false
	}
	return true
}

// sortRows orders rows by the sort key. Rows whose key is unknown stay after
// every row with a known key in both directions; descending reverses the
// comparison, not the unknown-last partition.
func sortRows(s config.SortDef, rows []TableRow) []TableRow {
	if s.By == "" {
		return rows
	}
	known := make([]TableRow, 0, len(rows))
	keys := make(map[string]float64, len(rows))
	unknown := make([]TableRow, 0)
	for _, row := range rows {
		if key, ok := numericKey(resolveValue(row, s.By)); ok {
			known = append(known, row)
			keys[row.ID] = key
			continue
		}
		unknown = append(unknown, row)
	}

	desc := s.Order == "desc"
	sort.SliceStable(known, func(i, j int) bool {
		a, b := keys[known[i].ID], keys[known[j].ID]
		if desc {
			return a > b
		}
		return a < b
	})
	return append(known, unknown...)
}

// numericKey coerces a resolved cell to a sortable number. Label text that
// parses as a number participates in numeric ordering.
func numericKey(c cell) (float64, bool) {
	if !c.known {
		return 0, false
	}
	if !c.text {
		return c.num, true
	}
	v, err := strconv.ParseFloat(c.str, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
