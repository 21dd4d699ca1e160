package fixed

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
)

// Defaults applied by NewOptions.
const (
	DefaultSampleSize = 100_000
	DefaultPadding    = ' '
	defaultTableName  = "fixed width"
)

// DefaultMissingValues are the tokens treated as missing when no indicator
// is configured. The empty field is always missing.
var DefaultMissingValues = []string{"NaN", "*", "NA", "null", "N/A"}

// Source is where a read takes its characters from: a file the reader opens
// (and closes), or a stream the caller owns.
type Source struct {
	path string
	r    io.Reader
}

// FromFile reads from path. The reader opens and closes the file itself.
func FromFile(path string) Source {
	return Source{path: path}
}

// FromReader reads from r. The reader never closes r.
func FromReader(r io.Reader) Source {
	return Source{r: r}
}

// Path returns the file path, or "" for stream sources.
func (s Source) Path() string {
	return s.path
}

func (s Source) isZero() bool {
	return s.path == "" && s.r == nil
}

// ReadOptions configures detection and reading. Build one with NewOptions;
// a ReadOptions value is immutable once built.
type ReadOptions struct {
	source    Source
	tableName string

	spec         FieldSpec
	header       bool
	columnTypes  []ColumnType
	partialTypes map[string]ColumnType
	typeFunc     ColumnTypeFunc

	padding              rune
	lineEnding           LineEnding
	lineSeparator        string
	skipTrailingOverflow bool
	strictLineLength     bool
	skipEmptyLines       bool
	trimWhitespace       bool
	maxLineBytes         int

	missing    map[string]struct{}
	sample     bool
	sampleSize int
	minimize   bool
	locale     language.Tag
	layouts    DateLayouts
	charset    string
	parser     TypeParser
}

// OptionsBuilder accumulates read options. Errors are reported by Build.
type OptionsBuilder struct {
	opts    ReadOptions
	missing []string
	errs    []string
}

// NewOptions starts a builder for src with the documented defaults: header
// present, space padding, any line ending, sampling on, en-US numbers.
func NewOptions(src Source) *OptionsBuilder {
	return &OptionsBuilder{
		opts: ReadOptions{
			source:         src,
			header:         true,
			padding:        DefaultPadding,
			skipEmptyLines: true,
			trimWhitespace: true,
			sample:         true,
			sampleSize:     DefaultSampleSize,
			locale:         language.AmericanEnglish,
		},
	}
}

// ColumnSpecs sets the field layout. Mandatory.
func (b *OptionsBuilder) ColumnSpecs(spec FieldSpec) *OptionsBuilder {
	b.opts.spec = spec
	return b
}

// Header declares whether the first retained line holds column names.
func (b *OptionsBuilder) Header(present bool) *OptionsBuilder {
	b.opts.header = present
	return b
}

// TableName names the resulting table.
func (b *OptionsBuilder) TableName(name string) *OptionsBuilder {
	b.opts.tableName = name
	return b
}

// ColumnTypes declares a type for every field. Entries set to Detect are
// still inferred.
func (b *OptionsBuilder) ColumnTypes(types ...ColumnType) *OptionsBuilder {
	b.opts.columnTypes = append([]ColumnType(nil), types...)
	return b
}

// ColumnTypesPartial overrides the type of the named columns only.
func (b *OptionsBuilder) ColumnTypesPartial(types map[string]ColumnType) *OptionsBuilder {
	b.opts.partialTypes = make(map[string]ColumnType, len(types))
	for name, t := range types {
		b.opts.partialTypes[name] = t
	}
	return b
}

// ColumnTypeFunc assigns types by column name. When set, detection is not run.
func (b *OptionsBuilder) ColumnTypeFunc(fn ColumnTypeFunc) *OptionsBuilder {
	b.opts.typeFunc = fn
	return b
}

// Padding sets the filler character trimmed from both ends of every field.
func (b *OptionsBuilder) Padding(pad rune) *OptionsBuilder {
	b.opts.padding = pad
	return b
}

// LineEnding selects the record terminator.
func (b *OptionsBuilder) LineEnding(le LineEnding) *OptionsBuilder {
	b.opts.lineEnding = le
	b.opts.lineSeparator = ""
	return b
}

// SystemLineEnding uses the running platform's line terminator.
func (b *OptionsBuilder) SystemLineEnding() *OptionsBuilder {
	return b.LineEnding(SystemLineEnding())
}

// LineSeparator uses an arbitrary separator string between records.
func (b *OptionsBuilder) LineSeparator(sep string) *OptionsBuilder {
	if sep == "" {
		b.errs = append(b.errs, "line separator must not be empty")
	}
	b.opts.lineSeparator = sep
	return b
}

// SkipTrailingCharsUntilNewline discards characters beyond the last field
// instead of failing with a LineLengthError.
func (b *OptionsBuilder) SkipTrailingCharsUntilNewline(skip bool) *OptionsBuilder {
	b.opts.skipTrailingOverflow = skip
	return b
}

// StrictLineLength rejects lines shorter than the total field span.
func (b *OptionsBuilder) StrictLineLength(strict bool) *OptionsBuilder {
	b.opts.strictLineLength = strict
	return b
}

// SkipEmptyLines ignores lines with no characters.
func (b *OptionsBuilder) SkipEmptyLines(skip bool) *OptionsBuilder {
	b.opts.skipEmptyLines = skip
	return b
}

// TrimWhitespace also trims whitespace around the padding.
func (b *OptionsBuilder) TrimWhitespace(trim bool) *OptionsBuilder {
	b.opts.trimWhitespace = trim
	return b
}

// MaxLineBytes bounds the size of one physical line.
func (b *OptionsBuilder) MaxLineBytes(n int) *OptionsBuilder {
	if n <= 0 {
		b.errs = append(b.errs, fmt.Sprintf("max line bytes must be positive, got %d", n))
	}
	b.opts.maxLineBytes = n
	return b
}

// MissingValueIndicator replaces the default missing tokens. Matching is
// exact and case-sensitive.
func (b *OptionsBuilder) MissingValueIndicator(tokens ...string) *OptionsBuilder {
	b.missing = append([]string{}, tokens...)
	return b
}

// Sample toggles sampling. With sampling off every row feeds detection, so
// the detection pass reads the whole input. Detection memory stays constant
// per column either way.
func (b *OptionsBuilder) Sample(sample bool) *OptionsBuilder {
	b.opts.sample = sample
	return b
}

// SampleSize caps the number of data rows read for detection.
func (b *OptionsBuilder) SampleSize(n int) *OptionsBuilder {
	if n <= 0 {
		b.errs = append(b.errs, fmt.Sprintf("sample size must be positive, got %d", n))
	}
	b.opts.sampleSize = n
	return b
}

// MinimizeColumnSizes makes detection prefer SHORT and FLOAT when every
// sampled value fits.
func (b *OptionsBuilder) MinimizeColumnSizes() *OptionsBuilder {
	b.opts.minimize = true
	return b
}

// Locale sets the number grammar used for parsing and detection.
func (b *OptionsBuilder) Locale(tag language.Tag) *OptionsBuilder {
	b.opts.locale = tag
	return b
}

// DateLayout, TimeLayout and DateTimeLayout replace the built-in layouts
// (Go reference-time syntax).
func (b *OptionsBuilder) DateLayout(layouts ...string) *OptionsBuilder {
	b.opts.layouts.Date = append([]string{}, layouts...)
	return b
}

func (b *OptionsBuilder) TimeLayout(layouts ...string) *OptionsBuilder {
	b.opts.layouts.Time = append([]string{}, layouts...)
	return b
}

func (b *OptionsBuilder) DateTimeLayout(layouts ...string) *OptionsBuilder {
	b.opts.layouts.DateTime = append([]string{}, layouts...)
	return b
}

// Charset names the source encoding (see ParseCharset).
func (b *OptionsBuilder) Charset(name string) *OptionsBuilder {
	b.opts.charset = name
	return b
}

// TypeParser replaces the locale-based parser.
func (b *OptionsBuilder) TypeParser(p TypeParser) *OptionsBuilder {
	b.opts.parser = p
	return b
}

// Build validates the options. Problems are reported together as a
// ConfigurationError before any input is read.
func (b *OptionsBuilder) Build() (ReadOptions, error) {
	opts := b.opts
	errs := append([]string(nil), b.errs...)

	if opts.spec.IsZero() {
		errs = append(errs, "column specs are required")
	}
	if opts.columnTypes != nil && !opts.spec.IsZero() && len(opts.columnTypes) != opts.spec.Len() {
		errs = append(errs, fmt.Sprintf("%d column types declared for %d fields", len(opts.columnTypes), opts.spec.Len()))
	}
	if opts.padding == 0 {
		errs = append(errs, "padding must be a character")
	}
	if _, err := ParseCharset(opts.charset); err != nil {
		errs = append(errs, err.Error())
	}
	for _, layout := range [][]string{opts.layouts.Date, opts.layouts.Time, opts.layouts.DateTime} {
		if layout != nil && len(layout) == 0 {
			errs = append(errs, "date/time layouts must not be empty")
		}
	}

	if len(errs) > 0 {
		return ReadOptions{}, &ConfigurationError{Option: "read options", Reason: strings.Join(errs, "; ")}
	}

	missing := b.missing
	if missing == nil {
		missing = DefaultMissingValues
	}
	opts.missing = make(map[string]struct{}, len(missing)+1)
	opts.missing[""] = struct{}{}
	for _, m := range missing {
		opts.missing[m] = struct{}{}
	}

	if opts.parser == nil {
		opts.parser = NewTypeParser(opts.locale, opts.layouts)
	}
	if opts.tableName == "" {
		opts.tableName = defaultTableName
		if opts.source.path != "" {
			opts.tableName = filepath.Base(opts.source.path)
		}
	}
	return opts, nil
}

// WithSource returns a copy of the options reading from src.
func (o ReadOptions) WithSource(src Source) ReadOptions {
	o.source = src
	return o
}

// Source returns the configured input.
func (o ReadOptions) Source() Source { return o.source }

// Spec returns the field layout.
func (o ReadOptions) Spec() FieldSpec { return o.spec }

// HeaderPresent reports whether the first retained line holds names.
func (o ReadOptions) HeaderPresent() bool { return o.header }

// IsMissing reports whether a trimmed field is a missing-value token.
func (o ReadOptions) IsMissing(value string) bool {
	_, ok := o.missing[value]
	return ok
}

// Parser returns the TypeParser used for conversion.
func (o ReadOptions) Parser() TypeParser { return o.parser }

// needsDetection reports whether some position may be left to inference.
// Names from a header are unknown until the file is read, so with a header
// any position not covered by the full array counts as undecided.
func (o ReadOptions) needsDetection() bool {
	var names []string
	if !o.header {
		names = columnNames(o.spec, nil)
	}
	for i := 0; i < o.spec.Len(); i++ {
		if o.columnTypes != nil && o.columnTypes[i] != Detect {
			continue
		}
		if names == nil {
			return true
		}
		if t, ok := o.partialTypes[names[i]]; ok && t != Detect {
			continue
		}
		if o.typeFunc != nil && o.typeFunc(names[i]) != Detect {
			continue
		}
		return true
	}
	return false
}

func (o ReadOptions) tokenizer() *Tokenizer {
	return NewTokenizer(o.spec, TokenizerConfig{
		Padding:              o.padding,
		SkipTrailingOverflow: o.skipTrailingOverflow,
		StrictLineLength:     o.strictLineLength,
		TrimWhitespace:       o.trimWhitespace,
	})
}

func (o ReadOptions) separator() []byte {
	if o.lineSeparator != "" {
		return []byte(o.lineSeparator)
	}
	return o.lineEnding.separator()
}
