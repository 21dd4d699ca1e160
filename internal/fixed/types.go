package fixed

import (
	"fmt"
	"strings"
)

// ColumnType identifies how a fixed-width field is materialized.
//
// The zero value, Detect, means "no declaration": the resolver falls through
// to the next type source for that position.
type ColumnType int

const (
	Detect ColumnType = iota
	Skip
	Short
	Integer
	Long
	Float
	Double
	Boolean
	LocalDate
	LocalTime
	LocalDateTime
	String
)

var columnTypeNames = [...]string{
	Detect:        "DETECT",
	Skip:          "SKIP",
	Short:         "SHORT",
	Integer:       "INTEGER",
	Long:          "LONG",
	Float:         "FLOAT",
	Double:        "DOUBLE",
	Boolean:       "BOOLEAN",
	LocalDate:     "LOCAL_DATE",
	LocalTime:     "LOCAL_TIME",
	LocalDateTime: "LOCAL_DATE_TIME",
	String:        "STRING",
}

// String returns the upper-case name used in layouts and API responses.
func (t ColumnType) String() string {
	if t < 0 || int(t) >= len(columnTypeNames) {
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
	return columnTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(b []byte) error {
	parsed, err := ParseColumnType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Materialized reports whether columns of this type end up in a Table.
func (t ColumnType) Materialized() bool {
	return t != Skip && t != Detect
}

// columnTypeAliases maps accepted spellings (lower-case) to column types.
var columnTypeAliases = map[string]ColumnType{
	"detect":          Detect,
	"auto":            Detect,
	"skip":            Skip,
	"short":           Short,
	"int16":           Short,
	"integer":         Integer,
	"int":             Integer,
	"int32":           Integer,
	"long":            Long,
	"int64":           Long,
	"float":           Float,
	"float32":         Float,
	"double":          Double,
	"float64":         Double,
	"boolean":         Boolean,
	"bool":            Boolean,
	"local_date":      LocalDate,
	"date":            LocalDate,
	"local_time":      LocalTime,
	"time":            LocalTime,
	"local_date_time": LocalDateTime,
	"datetime":        LocalDateTime,
	"timestamp":       LocalDateTime,
	"string":          String,
	"text":            String,
}

// ParseColumnType converts a type name such as "SHORT", "local_date" or
// "text" into a ColumnType. Matching is case-insensitive.
func ParseColumnType(s string) (ColumnType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	if t, ok := columnTypeAliases[key]; ok {
		return t, nil
	}
	return Detect, &ConfigurationError{Option: "column type", Reason: fmt.Sprintf("unknown type %q", s)}
}

// ColumnTypeFunc assigns a type to a column from its name. Returning Detect
// leaves the decision to inference. It may be called more than once per name.
type ColumnTypeFunc func(name string) ColumnType

// RawRow is one tokenized line: one padding-trimmed string per declared field.
type RawRow []string
