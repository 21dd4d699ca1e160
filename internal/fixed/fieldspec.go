package fixed

import (
	"fmt"
	"strings"
)

// Field is one declared field of a fixed-width line. Start and End are
// character offsets forming the half-open span [Start, End).
type Field struct {
	Name    string // Optional; used for headerless reads when every field is named
	Start   int
	End     int
	Padding rune // Overrides the read padding for this field when non-zero
}

// Width returns the number of characters the field occupies.
func (f Field) Width() int {
	return f.End - f.Start
}

// Range is an explicit [Start, End) character span.
type Range struct {
	Start int
	End   int
}

// FieldSpec is the ordered, validated set of field spans used to slice lines.
// A FieldSpec is immutable once built and safe to share.
type FieldSpec struct {
	fields []Field
}

// NewFieldSpec builds a spec of adjacently packed fields from their widths.
func NewFieldSpec(widths ...int) (FieldSpec, error) {
	fields := make([]Field, len(widths))
	pos := 0
	for i, w := range widths {
		if w <= 0 {
			return FieldSpec{}, &ConfigurationError{
				Option: "field widths",
				Reason: fmt.Sprintf("field %d has width %d, widths must be positive", i, w),
			}
		}
		fields[i] = Field{Start: pos, End: pos + w}
		pos += w
	}
	return NewFieldSpecFromFields(fields...)
}

// MustFieldSpec is like NewFieldSpec but panics on invalid widths.
// Intended for package-level declarations of known-good layouts.
func MustFieldSpec(widths ...int) FieldSpec {
	spec, err := NewFieldSpec(widths...)
	if err != nil {
		panic(err)
	}
	return spec
}

// NewFieldSpecFromRanges builds a spec from explicit spans. Spans may leave
// gaps between fields; characters in a gap belong to no field.
func NewFieldSpecFromRanges(ranges ...Range) (FieldSpec, error) {
	fields := make([]Field, len(ranges))
	for i, r := range ranges {
		fields[i] = Field{Start: r.Start, End: r.End}
	}
	return NewFieldSpecFromFields(fields...)
}

// NewFieldSpecFromFields validates fully described fields. Offsets must be
// strictly increasing and spans must not overlap.
func NewFieldSpecFromFields(fields ...Field) (FieldSpec, error) {
	if len(fields) == 0 {
		return FieldSpec{}, &ConfigurationError{Option: "field widths", Reason: "at least one field is required"}
	}

	prevEnd := 0
	names := make(map[string]int, len(fields))
	for i, f := range fields {
		switch {
		case f.Start < 0:
			return FieldSpec{}, &ConfigurationError{
				Option: "field offsets",
				Reason: fmt.Sprintf("field %d starts at negative offset %d", i, f.Start),
			}
		case f.Width() <= 0:
			return FieldSpec{}, &ConfigurationError{
				Option: "field widths",
				Reason: fmt.Sprintf("field %d has width %d, widths must be positive", i, f.Width()),
			}
		case f.Start < prevEnd:
			return FieldSpec{}, &ConfigurationError{
				Option: "field offsets",
				Reason: fmt.Sprintf("field %d starts at %d, overlapping the previous field ending at %d", i, f.Start, prevEnd),
			}
		}
		if f.Name != "" {
			if j, dup := names[f.Name]; dup {
				return FieldSpec{}, &ConfigurationError{
					Option: "field names",
					Reason: fmt.Sprintf("fields %d and %d are both named %q", j, i, f.Name),
				}
			}
			names[f.Name] = i
		}
		prevEnd = f.End
	}

	copied := make([]Field, len(fields))
	copy(copied, fields)
	return FieldSpec{fields: copied}, nil
}

// Len returns the number of declared fields.
func (s FieldSpec) Len() int {
	return len(s.fields)
}

// Field returns the i-th field.
func (s FieldSpec) Field(i int) Field {
	return s.fields[i]
}

// Fields returns a copy of the declared fields.
func (s FieldSpec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Widths returns the width of every field in order.
func (s FieldSpec) Widths() []int {
	out := make([]int, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Width()
	}
	return out
}

// Spans returns each field's [start, end) range.
func (s FieldSpec) Spans() []Range {
	out := make([]Range, len(s.fields))
	for i, f := range s.fields {
		out[i] = Range{Start: f.Start, End: f.End}
	}
	return out
}

// TotalLength is the number of characters a complete line occupies: the end
// offset of the last field.
func (s FieldSpec) TotalLength() int {
	if len(s.fields) == 0 {
		return 0
	}
	return s.fields[len(s.fields)-1].End
}

// Names returns the declared field names, or nil unless every field is named.
func (s FieldSpec) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		if f.Name == "" {
			return nil
		}
		names[i] = f.Name
	}
	return names
}

// IsZero reports whether the spec was never built.
func (s FieldSpec) IsZero() bool {
	return len(s.fields) == 0
}

func (s FieldSpec) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = fmt.Sprintf("[%d,%d)", f.Start, f.End)
	}
	return "FieldSpec{" + strings.Join(parts, " ") + "}"
}
