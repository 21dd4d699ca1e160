package pgload

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
)

// ToPgValue converts a stored column value to its pgtype equivalent. Missing
// values (nil) become invalid, i.e. NULL, values of the column's type.
func ToPgValue(t fixed.ColumnType, v any) (any, error) {
	switch t {
	case fixed.Short:
		if v == nil {
			return pgtype.Int2{}, nil
		}
		x, ok := v.(int16)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Int2{Int16: x, Valid: true}, nil
	case fixed.Integer:
		if v == nil {
			return pgtype.Int4{}, nil
		}
		x, ok := v.(int32)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Int4{Int32: x, Valid: true}, nil
	case fixed.Long:
		if v == nil {
			return pgtype.Int8{}, nil
		}
		x, ok := v.(int64)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Int8{Int64: x, Valid: true}, nil
	case fixed.Float:
		if v == nil {
			return pgtype.Float4{}, nil
		}
		x, ok := v.(float32)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Float4{Float32: x, Valid: true}, nil
	case fixed.Double:
		if v == nil {
			return pgtype.Float8{}, nil
		}
		x, ok := v.(float64)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Float8{Float64: x, Valid: true}, nil
	case fixed.Boolean:
		if v == nil {
			return pgtype.Bool{}, nil
		}
		x, ok := v.(bool)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Bool{Bool: x, Valid: true}, nil
	case fixed.LocalDate:
		if v == nil {
			return pgtype.Date{}, nil
		}
		x, ok := v.(time.Time)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Date{Time: x, Valid: true}, nil
	case fixed.LocalTime:
		if v == nil {
			return pgtype.Time{}, nil
		}
		x, ok := v.(time.Time)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Time{Microseconds: microsSinceMidnight(x), Valid: true}, nil
	case fixed.LocalDateTime:
		if v == nil {
			return pgtype.Timestamp{}, nil
		}
		x, ok := v.(time.Time)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Timestamp{Time: x, Valid: true}, nil
	case fixed.String:
		if v == nil {
			return pgtype.Text{}, nil
		}
		x, ok := v.(string)
		if !ok {
			return nil, mismatch(t, v)
		}
		return pgtype.Text{String: x, Valid: true}, nil
	}
	return nil, fmt.Errorf("column type %s cannot be loaded", t)
}

func microsSinceMidnight(t time.Time) int64 {
	h, m, s := t.Clock()
	return (int64(h)*3600+int64(m)*60+int64(s))*1_000_000 + int64(t.Nanosecond()/1000)
}

func mismatch(t fixed.ColumnType, v any) error {
	return fmt.Errorf("value %v (%T) does not match column type %s", v, v, t)
}

// tableSource streams table rows to CopyFrom (pgx.CopyFromSource).
type tableSource struct {
	table  *fixed.Table
	loadID pgtype.UUID
	row    int
	values []any
	err    error
}

func newTableSource(table *fixed.Table, loadID uuid.UUID) *tableSource {
	return &tableSource{
		table:  table,
		loadID: pgtype.UUID{Bytes: loadID, Valid: true},
		row:    -1,
	}
}

func (s *tableSource) Next() bool {
	if s.err != nil {
		return false
	}
	s.row++
	return s.row < s.table.RowCount()
}

func (s *tableSource) Values() ([]any, error) {
	columns := s.table.Columns()
	values := make([]any, 0, len(columns)+1)
	for _, c := range columns {
		raw, _ := c.Get(s.row)
		v, err := ToPgValue(c.Type(), raw)
		if err != nil {
			s.err = fmt.Errorf("row %d, column %q: %w", s.row+1, c.Name(), err)
			return nil, s.err
		}
		values = append(values, v)
	}
	s.values = append(values, s.loadID)
	return s.values, nil
}

func (s *tableSource) Err() error {
	return s.err
}
