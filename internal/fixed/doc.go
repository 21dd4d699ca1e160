// Package fixed reads fixed-width text files into typed, in-memory tables.
//
// Each line of a fixed-width file is a sequence of adjacently packed fields
// whose boundaries are character offsets rather than delimiters. The package
// owns the whole pipeline from characters to columns and has no UI, network
// or database dependencies.
//
// # Pipeline
//
//  1. [FieldSpec] declares the field spans ([NewFieldSpec] from widths,
//     [NewFieldSpecFromRanges] from explicit offsets).
//  2. [Tokenizer] slices each line into a [RawRow], trimming the padding
//     character. Short lines read as padding; long lines fail with a
//     [LineLengthError] unless trailing overflow is skipped.
//  3. Detection samples rows and picks, per column, the narrowest
//     [ColumnType] every non-missing value parses as.
//  4. [ResolveColumnTypes] merges declared types (full array, partial by
//     name, rule function) with the detected ones.
//  5. The builder converts every retained field and assembles a [Table].
//     [Skip] columns are sliced but never stored.
//
// # Usage
//
//	opts, err := fixed.NewOptions(fixed.FromFile("cars.txt")).
//	    ColumnSpecs(fixed.MustFieldSpec(4, 5, 40, 40, 8)).
//	    Header(true).
//	    Padding('_').
//	    MissingValueIndicator("null").
//	    MinimizeColumnSizes().
//	    Build()
//	if err != nil {
//	    return err
//	}
//	table, err := fixed.Read(opts)
//
// [DetectColumnTypes] runs only the detection pass, for callers that want to
// inspect or adjust types before reading.
//
// # Errors
//
// [ConfigurationError] is returned before any data line is converted,
// [LineLengthError] and [TypeConversionError] abort a read at the offending
// line. I/O errors are wrapped and returned unchanged otherwise.
package fixed
