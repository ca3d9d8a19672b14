package dataset

import (
	"fmt"
	"sort"
	"strconv"

	"gocredit/domain/core"
)

// ColumnKind distinguishes numeric from categorical columns
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// Column is one named value sequence of a Table. Exactly one of Numeric or
// Text is populated, according to Kind.
type Column struct {
	Name    string
	Kind    ColumnKind
	Numeric []float64
	Text    []string
}

// NewNumericColumn copies values into a numeric column
func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Numeric: append([]float64(nil), values...)}
}

// NewTextColumn copies values into a categorical column
func NewTextColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindText, Text: append([]string(nil), values...)}
}

// Len returns the number of values in the column
func (c Column) Len() int {
	if c.Kind == KindNumeric {
		return len(c.Numeric)
	}
	return len(c.Text)
}

// Keys renders every value as a category key. Numeric values use the shortest
// representation that round-trips, so 1 and 1.0 share a key.
func (c Column) Keys() []string {
	if c.Kind == KindText {
		return append([]string(nil), c.Text...)
	}
	keys := make([]string, len(c.Numeric))
	for i, v := range c.Numeric {
		keys[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return keys
}

func (c Column) subset(rows []int) Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == KindNumeric {
		out.Numeric = make([]float64, len(rows))
		for i, r := range rows {
			out.Numeric[i] = c.Numeric[r]
		}
		return out
	}
	out.Text = make([]string, len(rows))
	for i, r := range rows {
		out.Text[i] = c.Text[r]
	}
	return out
}

// Table is an ordered set of equal-length named columns. A Table is never
// mutated after construction; every transform returns a new Table.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table, rejecting duplicate names and ragged columns. The
// table takes ownership of the column slices.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("%w: column %d has no name", core.ErrInvalidColumn, i)
		}
		if _, dup := t.index[col.Name]; dup {
			return nil, core.NewColumnError(col.Name, fmt.Errorf("%w: duplicate column", core.ErrInvalidColumn))
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, core.NewColumnError(col.Name, core.ErrLengthMismatch)
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// Len returns the number of records
func (t *Table) Len() int {
	return t.rows
}

// Names returns the column names in table order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the named column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, core.NewColumnError(name, core.ErrMissingColumn)
	}
	c := t.columns[i]
	if c.Kind == KindNumeric {
		return NewNumericColumn(c.Name, c.Numeric), nil
	}
	return NewTextColumn(c.Name, c.Text), nil
}

// Numeric returns a copy of a numeric column
func (t *Table) Numeric(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != KindNumeric {
		return nil, core.NewColumnError(name, core.ErrNonNumeric)
	}
	return c.Numeric, nil
}

// Labels returns the binary outcome column. Numeric 0/1 and text "0"/"1" are
// accepted; any other value is an error.
func (t *Table) Labels(name string) ([]int, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return ParseLabels(c)
}

// ParseLabels converts a column into outcome labels
func ParseLabels(c Column) ([]int, error) {
	labels := make([]int, c.Len())
	for i := range labels {
		var v float64
		if c.Kind == KindNumeric {
			v = c.Numeric[i]
		} else {
			parsed, err := strconv.ParseFloat(c.Text[i], 64)
			if err != nil {
				return nil, core.NewColumnError(c.Name, fmt.Errorf("%w: row %d value %q", core.ErrLabelDomain, i, c.Text[i]))
			}
			v = parsed
		}
		switch v {
		case 0:
			labels[i] = 0
		case 1:
			labels[i] = 1
		default:
			return nil, core.NewColumnError(c.Name, fmt.Errorf("%w: row %d value %v", core.ErrLabelDomain, i, v))
		}
	}
	return labels, nil
}

// Predictors returns every column name except the excluded ones, in table order
func (t *Table) Predictors(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	var names []string
	for _, c := range t.columns {
		if !skip[c.Name] {
			names = append(names, c.Name)
		}
	}
	return names
}

// Select returns a new table holding the given rows, in the given order
func (t *Table) Select(rows []int) (*Table, error) {
	for _, r := range rows {
		if r < 0 || r >= t.rows {
			return nil, fmt.Errorf("row %d out of range [0,%d)", r, t.rows)
		}
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.subset(rows)
	}
	out, err := NewTable(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = len(rows)
	return out, nil
}

// WithColumn returns a new table with col appended, or replacing the column
// of the same name in place
func (t *Table) WithColumn(col Column) (*Table, error) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, core.NewColumnError(col.Name, core.ErrLengthMismatch)
	}
	cols := make([]Column, 0, len(t.columns)+1)
	replaced := false
	for _, c := range t.columns {
		if c.Name == col.Name {
			cols = append(cols, col)
			replaced = true
			continue
		}
		cols = append(cols, c)
	}
	if !replaced {
		cols = append(cols, col)
	}
	return NewTable(cols...)
}

// Drop returns a new table without the named columns; unknown names are ignored
func (t *Table) Drop(names ...string) *Table {
	keep := t.Predictors(names...)
	cols := make([]Column, 0, len(keep))
	for _, name := range keep {
		cols = append(cols, t.columns[t.index[name]])
	}
	out, _ := NewTable(cols...)
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out
}

// DistinctKeys returns the sorted distinct category keys of a column
func DistinctKeys(keys []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
