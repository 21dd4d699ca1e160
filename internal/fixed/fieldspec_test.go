package fixed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFieldSpec(t *testing.T) {
	spec, err := NewFieldSpec(4, 5, 40, 40, 8)
	require.NoError(t, err)
	require.Equal(t, 5, spec.Len())
	require.Equal(t, 97, spec.TotalLength())
	require.Equal(t, []int{4, 5, 40, 40, 8}, spec.Widths())
	require.Equal(t, Range{Start: 9, End: 49}, spec.Spans()[2])
	require.Nil(t, spec.Names())
	require.Equal(t, "FieldSpec{[0,4) [4,9)}", MustFieldSpec(4, 5).String())
}

func TestNewFieldSpec_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		build func() (FieldSpec, error)
	}{
		{
			name:  "no fields",
			build: func() (FieldSpec, error) { return NewFieldSpec() },
		},
		{
			name:  "zero width",
			build: func() (FieldSpec, error) { return NewFieldSpec(4, 0, 3) },
		},
		{
			name:  "negative width",
			build: func() (FieldSpec, error) { return NewFieldSpec(-1) },
		},
		{
			name: "overlapping ranges",
			build: func() (FieldSpec, error) {
				return NewFieldSpecFromRanges(Range{Start: 0, End: 5}, Range{Start: 4, End: 8})
			},
		},
		{
			name: "decreasing ranges",
			build: func() (FieldSpec, error) {
				return NewFieldSpecFromRanges(Range{Start: 5, End: 8}, Range{Start: 0, End: 5})
			},
		},
		{
			name: "negative start",
			build: func() (FieldSpec, error) {
				return NewFieldSpecFromRanges(Range{Start: -2, End: 3})
			},
		},
		{
			name: "empty range",
			build: func() (FieldSpec, error) {
				return NewFieldSpecFromRanges(Range{Start: 3, End: 3})
			},
		},
		{
			name: "duplicate names",
			build: func() (FieldSpec, error) {
				return NewFieldSpecFromFields(
					Field{Name: "id", Start: 0, End: 2},
					Field{Name: "id", Start: 2, End: 4},
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := tt.build()
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			require.True(t, spec.IsZero())
		})
	}
}

func TestMustFieldSpec_Panics(t *testing.T) {
	require.Panics(t, func() { MustFieldSpec(3, 0) })
}

func TestFieldSpec_RangesWithGaps(t *testing.T) {
	spec, err := NewFieldSpecFromRanges(Range{Start: 2, End: 4}, Range{Start: 10, End: 12})
	require.NoError(t, err)
	require.Equal(t, 12, spec.TotalLength())
	require.Equal(t, []int{2, 2}, spec.Widths())
}

func TestFieldSpec_Names(t *testing.T) {
	spec, err := NewFieldSpecFromFields(
		Field{Name: "year", Start: 0, End: 4},
		Field{Name: "make", Start: 4, End: 9},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"year", "make"}, spec.Names())

	partial, err := NewFieldSpecFromFields(
		Field{Name: "year", Start: 0, End: 4},
		Field{Start: 4, End: 9},
	)
	require.NoError(t, err)
	require.Nil(t, partial.Names())
}

func TestFieldSpec_FieldsIsACopy(t *testing.T) {
	spec := MustFieldSpec(2, 3)
	fields := spec.Fields()
	fields[0].End = 99
	require.Equal(t, 2, spec.Field(0).End)
}
