package config

import (
	"fmt"
	"strings"

	"github.com/pvemon/ttydash/internal/errors"
)

// DefaultJoinLabel is the entity-identifying label when a table source does
// not name one.
const DefaultJoinLabel = "id"

// DefaultDelimiter separates table columns; consistent between header and
// body rows.
const DefaultDelimiter = "\t"

// Validate checks structural invariants and populates cfg.ViewList with the
// closed view variants. Structural problems are fatal at startup; everything
// softer (bad expressions, unreachable backends) is handled at runtime.
func Validate(cfg *Config) error {
	if cfg.Datasources.Prometheus.BaseURL == "" {
		return errors.New(errors.ErrConfig,
			"datasources.prometheus.base_url is required",
			"Point it at your Prometheus-compatible backend, e.g. http://localhost:9090")
	}

	seenMetrics := make(map[string]bool, len(cfg.Metrics))
	for i, m := range cfg.Metrics {
		if m.ID == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("metrics[%d] is missing an id", i), "")
		}
		if m.Query == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("metric %q is missing a query", m.ID), "")
		}
		if m.QueryType != "" && m.QueryType != "instant" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("metric %q has unsupported query_type %q", m.ID, m.QueryType),
				"Only instant queries are supported")
		}
		if seenMetrics[m.ID] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("duplicate metric id %q", m.ID), "")
		}
		seenMetrics[m.ID] = true
	}

	for i, d := range cfg.Derived {
		if d.ID == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("derived[%d] is missing an id", i), "")
		}
		if d.Expr == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("derived %q is missing an expr", d.ID), "")
		}
	}

	cfg.ViewList = make([]View, 0, len(cfg.Views))
	seenViews := make(map[string]bool, len(cfg.Views))
	for i, raw := range cfg.Views {
		if raw.ID == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("views[%d] is missing an id", i), "")
		}
		if seenViews[raw.ID] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("duplicate view id %q", raw.ID), "")
		}
		seenViews[raw.ID] = true

		view, err := buildView(raw)
		if err != nil {
			return err
		}
		cfg.ViewList = append(cfg.ViewList, view)
	}

	if err := validateLayout(cfg); err != nil {
		return err
	}
	return validateJoinLabels(cfg)
}

// buildView converts a raw ViewDef into its closed tagged variant. The view
// type is a closed set: anything but "header" or "table" is rejected here so
// the renderer never dispatches on an open-ended string.
func buildView(raw ViewDef) (View, error) {
	switch raw.Type {
	case "header":
		if raw.Template == "" {
			return View{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("header view %q is missing a template", raw.ID), "")
		}
		for name, spec := range raw.ComputedValues {
			if err := validateComputed(raw.ID, name, spec); err != nil {
				return View{}, err
			}
		}
		return View{
			ID:   raw.ID,
			Kind: ViewHeader,
			Header: &HeaderView{
				ID:       raw.ID,
				Title:    raw.Title,
				Template: raw.Template,
				Computed: raw.ComputedValues,
			},
		}, nil

	case "table":
		if raw.Source.RowsFrom.AnchorMetric == "" {
			return View{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("table view %q is missing source.rows_from.anchor_metric", raw.ID), "")
		}
		if len(raw.Columns) == 0 {
			return View{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("table view %q has no columns", raw.ID), "")
		}
		if o := raw.Source.Sort.Order; o != "" && o != "asc" && o != "desc" {
			return View{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("table view %q has invalid sort order %q", raw.ID, o),
				`Use "asc" or "desc"`)
		}

		cols := make([]Column, 0, len(raw.Columns))
		for _, c := range raw.Columns {
			col, err := buildColumn(raw.ID, c)
			if err != nil {
				return View{}, err
			}
			cols = append(cols, col)
		}

		join := raw.Source.RowsFrom.JoinOnLabel
		if join == "" {
			join = DefaultJoinLabel
		}
		delim := raw.Delimiter
		if delim == "" {
			delim = DefaultDelimiter
		}

		return View{
			ID:   raw.ID,
			Kind: ViewTable,
			Table: &TableView{
				ID:           raw.ID,
				Title:        raw.Title,
				AnchorMetric: raw.Source.RowsFrom.AnchorMetric,
				JoinLabel:    join,
				Sort:         raw.Source.Sort,
				Filter:       raw.Source.Filter,
				Columns:      cols,
				Delimiter:    delim,
			},
		}, nil

	default:
		return View{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("view %q has unknown type %q", raw.ID, raw.Type),
			`View type must be "header" or "table"`)
	}
}

func buildColumn(viewID string, c ColumnDef) (Column, error) {
	if c.ID == "" {
		return Column{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("table view %q has a column without an id", viewID), "")
	}
	if c.Value == "" {
		return Column{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("column %q in view %q is missing a value", c.ID, viewID), "")
	}
	// A ${...} reference names a value; its presentation comes from the
	// column's format/decimals fields, so an inline pipe would be dead
	// config. Reject it instead of silently dropping it.
	if strings.HasPrefix(c.Value, "${") && strings.HasSuffix(c.Value, "}") &&
		strings.Contains(c.Value, "|") {
		return Column{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("column %q in view %q uses an inline format in %q", c.ID, viewID, c.Value),
			"Set the column's format and decimals fields instead")
	}
	align := c.Align
	switch align {
	case "", "left", "right", "center":
	default:
		return Column{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("column %q in view %q has invalid align %q", c.ID, viewID, align),
			`Use "left", "right", or "center"`)
	}
	format := c.Format
	if format == "" {
		format = "number"
	}
	decimals := 1
	if c.Decimals != nil {
		decimals = *c.Decimals
	}
	return Column{
		ID:           c.ID,
		Title:        c.Title,
		Value:        c.Value,
		Format:       format,
		Decimals:     decimals,
		Width:        c.Width,
		Align:        align,
		ColorByLabel: c.Style.ColorByLabel,
		ColorReset:   c.Style.Reset,
	}, nil
}

func validateComputed(viewID, name string, spec ComputedDef) error {
	if spec.Builtin != "" {
		if spec.Builtin != "uptime" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("computed value %q in view %q uses unknown builtin %q", name, viewID, spec.Builtin),
				`The only builtin is "uptime"`)
		}
		return nil
	}
	if spec.FromMetric == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("computed value %q in view %q needs either a builtin or from_metric", name, viewID), "")
	}
	if spec.Op != "" && spec.Op != "count" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("computed value %q in view %q uses unsupported op %q", name, viewID, spec.Op),
			`The only op is "count"`)
	}
	return nil
}

func validateLayout(cfg *Config) error {
	if len(cfg.Layout) == 0 {
		return errors.New(errors.ErrConfig,
			"layout is empty",
			"List at least the header view under layout")
	}
	for i, entry := range cfg.Layout {
		view := cfg.FindView(entry.View)
		if view == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("layout[%d] references unknown view %q", i, entry.View), "")
		}
		if i == 0 && view.Kind != ViewHeader {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("the first layout entry (%q) must be a header view", entry.View), "")
		}
		if i > 0 && view.Kind != ViewTable {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("layout entry %q must be a table view", entry.View),
				"Only the first layout entry may be a header view")
		}
	}
	return nil
}

// validateJoinLabels requires all table views to agree on the entity label,
// because indexing is global across views.
func validateJoinLabels(cfg *Config) error {
	label := ""
	for i := range cfg.ViewList {
		t := cfg.ViewList[i].Table
		if t == nil {
			continue
		}
		if label == "" {
			label = t.JoinLabel
			continue
		}
		if t.JoinLabel != label {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("table view %q uses join_on_label %q but an earlier view uses %q", t.ID, t.JoinLabel, label),
				"All table views must join rows on the same label")
		}
	}
	return nil
}

// JoinLabel returns the entity label shared by all table views, or the
// default when no table view is configured.
func (c *Config) JoinLabel() string {
	for i := range c.ViewList {
		if t := c.ViewList[i].Table; t != nil {
			return t.JoinLabel
		}
	}
	return DefaultJoinLabel
}
