package fixed

import (
	"fmt"
	"sort"
	"strings"
)

// TypeSources are the inputs to column type resolution. Names holds one
// name per declared field, header-derived or synthesized.
type TypeSources struct {
	Full     []ColumnType
	Partial  map[string]ColumnType
	Rule     ColumnTypeFunc
	Inferred []ColumnType
	Names    []string
}

// ResolveColumnTypes merges the type sources into one type per field. For
// each position the first match wins: full array entry (unless Detect),
// partial override by name, rule function (unless it returns Detect),
// inferred type, then STRING.
func ResolveColumnTypes(src TypeSources) ([]ColumnType, error) {
	n := len(src.Names)
	if src.Full != nil && len(src.Full) != n {
		return nil, &ConfigurationError{
			Option: "column types",
			Reason: fmt.Sprintf("%d types declared for %d fields", len(src.Full), n),
		}
	}
	if src.Inferred != nil && len(src.Inferred) != n {
		return nil, fmt.Errorf("resolve column types: %d inferred types for %d fields", len(src.Inferred), n)
	}
	if err := checkPartialNames(src.Partial, src.Names); err != nil {
		return nil, err
	}

	resolved := make([]ColumnType, n)
	for i, name := range src.Names {
		resolved[i] = resolveOne(src, i, name)
	}
	return resolved, nil
}

func resolveOne(src TypeSources, i int, name string) ColumnType {
	if src.Full != nil && src.Full[i] != Detect {
		return src.Full[i]
	}
	if t, ok := src.Partial[name]; ok && t != Detect {
		return t
	}
	if src.Rule != nil {
		if t := src.Rule(name); t != Detect {
			return t
		}
	}
	if src.Inferred != nil {
		// Inference never elides a column.
		if t := src.Inferred[i]; t.Materialized() {
			return t
		}
	}
	return String
}

func checkPartialNames(partial map[string]ColumnType, names []string) error {
	if len(partial) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	var unknown []string
	for name := range partial {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &ConfigurationError{
		Option: "column types",
		Reason: fmt.Sprintf("no column named %s", strings.Join(quoteAll(unknown), ", ")),
	}
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// SyntheticName returns the generated name of the field at position i in
// headerless reads. Positions count every declared field, skipped or not.
func SyntheticName(i int) string {
	return fmt.Sprintf("C%d", i)
}

// columnNames returns the names used for resolution and output: the header
// when present, else declared field names, else C0..Cn.
func columnNames(spec FieldSpec, header RawRow) []string {
	if header != nil {
		return []string(header)
	}
	if names := spec.Names(); names != nil {
		return names
	}
	names := make([]string, spec.Len())
	for i := range names {
		names[i] = SyntheticName(i)
	}
	return names
}
