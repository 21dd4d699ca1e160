package service

import "github.com/JonMunkholm/fixedwidth/internal/fixed"

// ColumnView describes one column of a TableView.
type ColumnView struct {
	Name    string           `json:"name"`
	Type    fixed.ColumnType `json:"type"`
	Missing int              `json:"missing"`
}

// TableView is the JSON and HTML rendering of a table: column metadata and
// up to a limited number of rows formatted as text.
type TableView struct {
	Name      string       `json:"name"`
	RowCount  int          `json:"row_count"`
	Columns   []ColumnView `json:"columns"`
	Rows      [][]string   `json:"rows"`
	Truncated bool         `json:"truncated"`
}

// NewTableView renders at most limit rows of table. A limit of 0 renders
// metadata only; a negative limit renders every row.
func NewTableView(table *fixed.Table, limit int) TableView {
	view := TableView{
		Name:     table.Name(),
		RowCount: table.RowCount(),
		Columns:  make([]ColumnView, table.ColumnCount()),
		Rows:     [][]string{},
	}
	for i, c := range table.Columns() {
		view.Columns[i] = ColumnView{Name: c.Name(), Type: c.Type(), Missing: c.CountMissing()}
	}

	n := table.RowCount()
	if limit >= 0 && limit < n {
		n = limit
		view.Truncated = true
	}
	columns := table.Columns()
	for r := 0; r < n; r++ {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = c.Format(r)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
