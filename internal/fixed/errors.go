package fixed

import "fmt"

// LineLengthError reports a line whose length does not fit the FieldSpec:
// longer than the total span without SkipTrailingCharsUntilNewline, or
// shorter than it with StrictLineLength.
type LineLengthError struct {
	Line     int
	Expected int
	Actual   int
}

func (e *LineLengthError) Error() string {
	if e.Actual < e.Expected {
		return fmt.Sprintf("line %d: line too short, expected %d characters, got %d", e.Line, e.Expected, e.Actual)
	}
	return fmt.Sprintf("line %d: line too long, expected %d characters, got %d", e.Line, e.Expected, e.Actual)
}

// TypeConversionError reports a field that cannot be parsed as its resolved type.
type TypeConversionError struct {
	Line   int
	Column string
	Value  string
	Type   ColumnType
	Err    error
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("line %d, column %q: cannot convert %q to %s", e.Line, e.Column, e.Value, e.Type)
}

func (e *TypeConversionError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports invalid read options. It is raised before any
// data line is converted.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Option, e.Reason)
}
