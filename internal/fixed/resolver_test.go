package fixed

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveColumnTypes(t *testing.T) {
	names := []string{"Year", "Make", "Price"}

	tests := []struct {
		name string
		src  TypeSources
		want []ColumnType
	}{
		{
			name: "nothing declared or inferred defaults to STRING",
			src:  TypeSources{Names: names},
			want: []ColumnType{String, String, String},
		},
		{
			name: "inferred only",
			src:  TypeSources{Names: names, Inferred: []ColumnType{Short, String, Double}},
			want: []ColumnType{Short, String, Double},
		},
		{
			name: "full array wins",
			src: TypeSources{
				Names:    names,
				Full:     []ColumnType{Integer, Skip, Float},
				Partial:  map[string]ColumnType{"Year": String},
				Rule:     func(string) ColumnType { return Boolean },
				Inferred: []ColumnType{Short, String, Double},
			},
			want: []ColumnType{Integer, Skip, Float},
		},
		{
			name: "detect entries in the full array fall through",
			src: TypeSources{
				Names:    names,
				Full:     []ColumnType{Detect, Skip, Detect},
				Partial:  map[string]ColumnType{"Price": Long},
				Inferred: []ColumnType{Short, String, Double},
			},
			want: []ColumnType{Short, Skip, Long},
		},
		{
			name: "partial beats inference",
			src: TypeSources{
				Names:    names,
				Partial:  map[string]ColumnType{"Year": String},
				Inferred: []ColumnType{Short, String, Short},
			},
			want: []ColumnType{String, String, Short},
		},
		{
			name: "rule beats inference",
			src: TypeSources{
				Names: names,
				Rule: func(name string) ColumnType {
					if name == "Make" {
						return Skip
					}
					return Detect
				},
				Inferred: []ColumnType{Short, String, Short},
			},
			want: []ColumnType{Short, Skip, Short},
		},
		{
			name: "partial beats rule",
			src: TypeSources{
				Names:   names,
				Partial: map[string]ColumnType{"Year": Long},
				Rule:    func(string) ColumnType { return String },
			},
			want: []ColumnType{Long, String, String},
		},
		{
			name: "rule returning detect without inference",
			src: TypeSources{
				Names: names,
				Rule:  func(string) ColumnType { return Detect },
			},
			want: []ColumnType{String, String, String},
		},
		{
			name: "inferred skip is never honoured",
			src: TypeSources{
				Names:    names,
				Inferred: []ColumnType{Skip, Detect, Short},
			},
			want: []ColumnType{String, String, Short},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveColumnTypes(tt.src)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveColumnTypes_Errors(t *testing.T) {
	names := []string{"Year", "Make"}

	_, err := ResolveColumnTypes(TypeSources{Names: names, Full: []ColumnType{Short}})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, err = ResolveColumnTypes(TypeSources{
		Names:   names,
		Partial: map[string]ColumnType{"Model": String, "Color": String, "Year": Short},
	})
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, `invalid column types: no column named "Color", "Model"`, err.Error())

	_, err = ResolveColumnTypes(TypeSources{Names: names, Inferred: []ColumnType{Short}})
	require.Error(t, err)
}

func TestColumnNames(t *testing.T) {
	spec := MustFieldSpec(1, 1, 1)
	require.Equal(t, []string{"C0", "C1", "C2"}, columnNames(spec, nil))
	require.Equal(t, []string{"a", "b", "c"}, columnNames(spec, RawRow{"a", "b", "c"}))

	named, err := NewFieldSpecFromFields(Field{Name: "x", Start: 0, End: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, columnNames(named, nil))
}
