package fixed

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Column is one named, typed column of a Table. Values are stored as the Go
// type of the column (int16, int32, int64, float32, float64, bool,
// time.Time or string); a nil entry marks a missing value.
type Column struct {
	name    string
	typ     ColumnType
	values  []any
	missing int
}

func newColumn(name string, t ColumnType) *Column {
	return &Column{name: name, typ: t}
}

func (c *Column) append(v any) {
	c.values = append(c.values, v)
}

func (c *Column) appendMissing() {
	c.values = append(c.values, nil)
	c.missing++
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the column type.
func (c *Column) Type() ColumnType { return c.typ }

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.values) }

// CountMissing returns how many rows hold a missing value.
func (c *Column) CountMissing() int { return c.missing }

// Get returns the value at row i; ok is false for missing values.
func (c *Column) Get(i int) (v any, ok bool) {
	v = c.values[i]
	return v, v != nil
}

// IsMissing reports whether row i is missing.
func (c *Column) IsMissing(i int) bool {
	return c.values[i] == nil
}

// Format renders row i as text; missing values render as "".
func (c *Column) Format(i int) string {
	return FormatValue(c.values[i])
}

// Strings renders every row as text.
func (c *Column) Strings() []string {
	out := make([]string, len(c.values))
	for i := range c.values {
		out[i] = c.Format(i)
	}
	return out
}

// FormatValue renders a stored value as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// Table is the materialized result of a read: an ordered set of named,
// typed columns of equal length. Operations return new tables and never
// modify the receiver.
type Table struct {
	name    string
	columns []*Column
	rows    int
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.rows }

// Columns returns the columns in order.
func (t *Table) Columns() []*Column {
	return slices.Clone(t.columns)
}

// ColumnAt returns the i-th column.
func (t *Table) ColumnAt(i int) *Column {
	return t.columns[i]
}

// Column returns the column called name.
func (t *Table) Column(name string) (*Column, error) {
	for _, c := range t.columns {
		if c.name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("column not found: %q", name)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// ColumnTypes returns the column types in order.
func (t *Table) ColumnTypes() []ColumnType {
	types := make([]ColumnType, len(t.columns))
	for i, c := range t.columns {
		types[i] = c.typ
	}
	return types
}

// Row returns the values of row i in column order, nil for missing values.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.values[i]
	}
	return row
}

// RemoveColumns returns a table without the named columns.
func (t *Table) RemoveColumns(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := t.Column(n); err != nil {
			return nil, err
		}
		drop[n] = true
	}

	kept := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !drop[c.name] {
			kept = append(kept, c)
		}
	}
	return &Table{name: t.name, columns: kept, rows: t.rows}, nil
}

// SortAscendingOn returns a table with rows ordered by the named columns,
// first name most significant. Missing values sort first.
func (t *Table) SortAscendingOn(names ...string) (*Table, error) {
	return t.sortOn(names, 1)
}

// SortDescendingOn is SortAscendingOn in reverse order; missing values sort last.
func (t *Table) SortDescendingOn(names ...string) (*Table, error) {
	return t.sortOn(names, -1)
}

func (t *Table) sortOn(names []string, direction int) (*Table, error) {
	keys := make([]*Column, len(names))
	for i, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		keys[i] = c
	}

	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		for _, k := range keys {
			if c := compareValues(k.values[a], k.values[b]); c != 0 {
				return c * direction
			}
		}
		return 0
	})

	sorted := make([]*Column, len(t.columns))
	for j, c := range t.columns {
		nc := &Column{name: c.name, typ: c.typ, missing: c.missing, values: make([]any, len(order))}
		for i, src := range order {
			nc.values[i] = c.values[src]
		}
		sorted[j] = nc
	}
	return &Table{name: t.name, columns: sorted, rows: t.rows}, nil
}

// compareValues orders two values of the same column; nil sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case int16:
		return cmp.Compare(x, b.(int16))
	case int32:
		return cmp.Compare(x, b.(int32))
	case int64:
		return cmp.Compare(x, b.(int64))
	case float32:
		return cmp.Compare(x, b.(float32))
	case float64:
		return cmp.Compare(x, b.(float64))
	case string:
		return cmp.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return cmp.Compare(FormatValue(a), FormatValue(b))
}
