package config

import "time"

// Config represents the full dashboard configuration document after the
// color-macro rewrite pass. Everything is immutable once loaded.
type Config struct {
	Datasources Datasources            `mapstructure:"datasources" yaml:"datasources"`
	Globals     Globals                `mapstructure:"globals" yaml:"globals"`
	Colors      map[string]interface{} `mapstructure:"colors" yaml:"colors"`
	Metrics     []MetricDef            `mapstructure:"metrics" yaml:"metrics"`
	Derived     []DerivedDef           `mapstructure:"derived" yaml:"derived"`
	Views       []ViewDef              `mapstructure:"views" yaml:"views"`
	Layout      []LayoutEntry          `mapstructure:"layout" yaml:"layout"`

	// ViewList is the validated, closed-variant form of Views,
	// populated by Validate.
	ViewList []View `mapstructure:"-" yaml:"-"`
}

// Datasources holds backend connection settings.
type Datasources struct {
	Prometheus Prometheus `mapstructure:"prometheus" yaml:"prometheus"`
}

// Prometheus configures the query backend. BaseURL is required.
type Prometheus struct {
	BaseURL  string  `mapstructure:"base_url" yaml:"base_url"`
	TimeoutS float64 `mapstructure:"timeout_s" yaml:"timeout_s"`
}

// Globals holds cross-cutting settings: refresh cadence, query variable
// substitutions, and rendering defaults.
type Globals struct {
	Refresh  Refresh           `mapstructure:"refresh" yaml:"refresh"`
	Vars     map[string]string `mapstructure:"vars" yaml:"vars"`
	Defaults Defaults          `mapstructure:"defaults" yaml:"defaults"`
}

// Refresh holds the two cadences: the fast header repaint and the bulk
// refetch that rebuilds the table body.
type Refresh struct {
	FastS float64 `mapstructure:"fast_s" yaml:"fast_s"`
	BulkS float64 `mapstructure:"bulk_s" yaml:"bulk_s"`
}

// Defaults holds rendering fallbacks.
type Defaults struct {
	// MissingValue is substituted for any token or cell that cannot
	// produce a value.
	MissingValue string `mapstructure:"missing_value" yaml:"missing_value"`
}

// MetricDef is a named query specification.
type MetricDef struct {
	ID        string `mapstructure:"id" yaml:"id"`
	Query     string `mapstructure:"query" yaml:"query"`
	QueryType string `mapstructure:"query_type" yaml:"query_type,omitempty"`

	// ExposeLabels lists label names this metric contributes to row metadata.
	ExposeLabels []string `mapstructure:"expose_labels" yaml:"expose_labels,omitempty"`
}

// DerivedDef is a named arithmetic expression, computed once globally or once
// per row.
type DerivedDef struct {
	ID     string `mapstructure:"id" yaml:"id"`
	Expr   string `mapstructure:"expr" yaml:"expr"`
	PerRow bool   `mapstructure:"per_row" yaml:"per_row,omitempty"`
}

// ColumnDef describes one table column.
type ColumnDef struct {
	ID       string   `mapstructure:"id" yaml:"id"`
	Title    string   `mapstructure:"title" yaml:"title,omitempty"`
	Value    string   `mapstructure:"value" yaml:"value"`
	Format   string   `mapstructure:"format" yaml:"format,omitempty"`
	Decimals *int     `mapstructure:"decimals" yaml:"decimals,omitempty"`
	Width    int      `mapstructure:"width" yaml:"width,omitempty"`
	Align    string   `mapstructure:"align" yaml:"align,omitempty"`
	Style    StyleDef `mapstructure:"style" yaml:"style,omitempty"`
}

// StyleDef wraps a formatted cell in a start/reset control-sequence pair
// keyed on an exact label value match. The outer map is keyed by label name,
// the inner by label value; values are raw control sequences (typically
// produced by ${colors.*} macros).
type StyleDef struct {
	ColorByLabel map[string]map[string]string `mapstructure:"color_by_label" yaml:"color_by_label,omitempty"`
	Reset        string                       `mapstructure:"reset" yaml:"reset,omitempty"`
}

// SourceDef describes where a table view's rows come from and how they are
// ordered and filtered.
type SourceDef struct {
	RowsFrom RowsFrom  `mapstructure:"rows_from" yaml:"rows_from"`
	Sort     SortDef   `mapstructure:"sort" yaml:"sort,omitempty"`
	Filter   FilterDef `mapstructure:"filter" yaml:"filter,omitempty"`
}

// RowsFrom identifies the anchor metric whose keyed samples define the row
// set, and the label that joins samples into entities.
type RowsFrom struct {
	AnchorMetric string `mapstructure:"anchor_metric" yaml:"anchor_metric"`
	JoinOnLabel  string `mapstructure:"join_on_label" yaml:"join_on_label,omitempty"`
}

// SortDef is an optional single sort key. Order is "asc" (default) or "desc".
// Rows whose sort-key value is unknown always sort after rows with a known
// value, in either direction.
type SortDef struct {
	By    string `mapstructure:"by" yaml:"by,omitempty"`
	Order string `mapstructure:"order" yaml:"order,omitempty"`
}

// FilterDef is an optional row filter; the zero value is a pass-through.
// Equals matches labels textually; Min/Max bound numeric values.
type FilterDef struct {
	By     string   `mapstructure:"by" yaml:"by,omitempty"`
	Equals string   `mapstructure:"equals" yaml:"equals,omitempty"`
	Min    *float64 `mapstructure:"min" yaml:"min,omitempty"`
	Max    *float64 `mapstructure:"max" yaml:"max,omitempty"`
}

// ComputedDef describes one computed header value: either a named builtin
// (currently "uptime") or a count over a metric source.
type ComputedDef struct {
	Builtin    string `mapstructure:"builtin" yaml:"builtin,omitempty"`
	FromMetric string `mapstructure:"from_metric" yaml:"from_metric,omitempty"`
	Op         string `mapstructure:"op" yaml:"op,omitempty"`
}

// ViewDef is the raw configuration shape of a view before validation.
type ViewDef struct {
	ID             string                 `mapstructure:"id" yaml:"id"`
	Type           string                 `mapstructure:"type" yaml:"type"`
	Title          string                 `mapstructure:"title" yaml:"title,omitempty"`
	Template       string                 `mapstructure:"template" yaml:"template,omitempty"`
	ComputedValues map[string]ComputedDef `mapstructure:"computed_values" yaml:"computed_values,omitempty"`
	Source         SourceDef              `mapstructure:"source" yaml:"source,omitempty"`
	Columns        []ColumnDef            `mapstructure:"columns" yaml:"columns,omitempty"`
	Delimiter      string                 `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
}

// LayoutEntry references a view by id; layout order is render order and the
// first entry is always the header view.
type LayoutEntry struct {
	View string `mapstructure:"view" yaml:"view"`
}

// ViewKind is the closed set of view variants.
type ViewKind int

const (
	ViewHeader ViewKind = iota
	ViewTable
)

// View is the validated, tagged form of a ViewDef. Exactly one of Header or
// Table is non-nil, matching Kind.
type View struct {
	ID     string
	Kind   ViewKind
	Header *HeaderView
	Table  *TableView
}

// HeaderView is a scalar template view rendered on every fast tick.
type HeaderView struct {
	ID       string
	Title    string
	Template string
	Computed map[string]ComputedDef
}

// TableView is a row grid rebuilt on bulk ticks.
type TableView struct {
	ID           string
	Title        string
	AnchorMetric string
	JoinLabel    string
	Sort         SortDef
	Filter       FilterDef
	Columns      []Column
	Delimiter    string
}

// Column is a validated ColumnDef with defaults resolved.
type Column struct {
	ID           string
	Title        string
	Value        string
	Format       string
	Decimals     int
	Width        int
	Align        string
	ColorByLabel map[string]map[string]string
	ColorReset   string
}

// FastInterval returns the fast-tick cadence.
func (c *Config) FastInterval() time.Duration {
	return time.Duration(c.Globals.Refresh.FastS * float64(time.Second))
}

// BulkInterval returns the bulk-tick cadence.
func (c *Config) BulkInterval() time.Duration {
	return time.Duration(c.Globals.Refresh.BulkS * float64(time.Second))
}

// FetchTimeout returns the per-query timeout for the metrics backend.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Datasources.Prometheus.TimeoutS * float64(time.Second))
}

// MissingValue returns the placeholder for unresolvable tokens and cells.
func (c *Config) MissingValue() string {
	return c.Globals.Defaults.MissingValue
}

// MetricIDs returns metric ids in definition order.
func (c *Config) MetricIDs() []string {
	ids := make([]string, len(c.Metrics))
	for i, m := range c.Metrics {
		ids[i] = m.ID
	}
	return ids
}

// FindView returns the validated view with the given id, or nil.
func (c *Config) FindView(id string) *View {
	for i := range c.ViewList {
		if c.ViewList[i].ID == id {
			return &c.ViewList[i]
		}
	}
	return nil
}
