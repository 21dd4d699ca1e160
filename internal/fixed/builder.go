package fixed

import "fmt"

// tableBuilder accumulates converted rows into columns. Skipped positions
// are tokenized upstream but never converted or stored.
type tableBuilder struct {
	opts    ReadOptions
	names   []string
	types   []ColumnType
	columns []*Column // nil at skipped positions
	rows    int
}

func newTableBuilder(opts ReadOptions, names []string, types []ColumnType) (*tableBuilder, error) {
	b := &tableBuilder{
		opts:    opts,
		names:   names,
		types:   types,
		columns: make([]*Column, len(types)),
	}

	seen := make(map[string]int, len(names))
	for i, t := range types {
		if !t.Materialized() {
			continue
		}
		if j, dup := seen[names[i]]; dup {
			return nil, &ConfigurationError{
				Option: "header",
				Reason: fmt.Sprintf("fields %d and %d are both named %q", j, i, names[i]),
			}
		}
		seen[names[i]] = i
		b.columns[i] = newColumn(names[i], t)
	}
	return b, nil
}

func (b *tableBuilder) addRow(row RawRow, lineNum int) error {
	for i, col := range b.columns {
		if col == nil {
			continue
		}
		raw := row[i]
		if b.opts.IsMissing(raw) {
			col.appendMissing()
			continue
		}
		v, err := b.opts.parser.Parse(col.typ, raw)
		if err != nil {
			return &TypeConversionError{Line: lineNum, Column: col.name, Value: raw, Type: col.typ, Err: err}
		}
		col.append(v)
	}
	b.rows++
	return nil
}

func (b *tableBuilder) build() *Table {
	columns := make([]*Column, 0, len(b.columns))
	for _, c := range b.columns {
		if c != nil {
			columns = append(columns, c)
		}
	}
	return &Table{name: b.opts.tableName, columns: columns, rows: b.rows}
}
