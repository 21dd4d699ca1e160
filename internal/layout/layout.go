// Package layout loads fixed-width file layouts from YAML.
//
// A layout names the fields of a record (by width, or by explicit offsets)
// together with the read options that suit the files it describes:
//
//	name: cars
//	header: true
//	padding: "_"
//	missingValues: ["null"]
//	minimizeColumnSizes: true
//	fields:
//	  - {name: Year, width: 4, type: short}
//	  - {name: Make, width: 5}
//	  - {name: Model, width: 40}
//	  - {name: Description, width: 40, type: skip}
//	  - {name: Price, start: 89, end: 97}
package layout

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
)

// Layout is the YAML form of a FieldSpec plus read options. Pointer fields
// distinguish "not set" from the zero value so library defaults survive.
type Layout struct {
	Name                 string   `yaml:"name"`
	Header               *bool    `yaml:"header"`
	Padding              string   `yaml:"padding"`
	LineEnding           string   `yaml:"lineEnding"`
	SkipTrailingOverflow bool     `yaml:"skipTrailingOverflow"`
	StrictLineLength     bool     `yaml:"strictLineLength"`
	SkipEmptyLines       *bool    `yaml:"skipEmptyLines"`
	MissingValues        []string `yaml:"missingValues"`
	Sample               *bool    `yaml:"sample"`
	SampleSize           int      `yaml:"sampleSize"`
	MinimizeColumnSizes  bool     `yaml:"minimizeColumnSizes"`
	Locale               string   `yaml:"locale"`
	Charset              string   `yaml:"charset"`
	DateLayouts          []string `yaml:"dateLayouts"`
	TimeLayouts          []string `yaml:"timeLayouts"`
	DateTimeLayouts      []string `yaml:"dateTimeLayouts"`
	Fields               []Field  `yaml:"fields"`
}

// Field describes one field either by width (packed after the previous
// field) or by explicit start/end offsets.
type Field struct {
	Name    string `yaml:"name"`
	Width   int    `yaml:"width"`
	Start   *int   `yaml:"start"`
	End     int    `yaml:"end"`
	Type    string `yaml:"type"`
	Padding string `yaml:"padding"`
}

// Load reads and validates the layout file at path.
func Load(path string) (*Layout, error) {
	if path == "" {
		return nil, errors.New("layout path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML (or JSON) layout document.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Layout) validate() error {
	if _, err := l.Spec(); err != nil {
		return err
	}
	if _, err := l.Types(); err != nil {
		return err
	}
	if _, err := parseRune("padding", l.Padding); err != nil {
		return err
	}
	if _, err := fixed.ParseLineEnding(l.LineEnding); err != nil {
		return err
	}
	if _, err := l.locale(); err != nil {
		return err
	}
	if _, err := fixed.ParseCharset(l.Charset); err != nil {
		return err
	}
	if l.SampleSize < 0 {
		return invalid("sampleSize", "must not be negative, got %d", l.SampleSize)
	}
	return nil
}

// Spec builds the FieldSpec described by the fields list.
func (l *Layout) Spec() (fixed.FieldSpec, error) {
	if len(l.Fields) == 0 {
		return fixed.FieldSpec{}, invalid("fields", "at least one field is required")
	}

	fields := make([]fixed.Field, len(l.Fields))
	pos := 0
	for i, f := range l.Fields {
		var start, end int
		switch {
		case f.Start != nil:
			if f.Width != 0 && f.End != 0 {
				return fixed.FieldSpec{}, invalid("fields", "field %d sets width and end, use one", i)
			}
			start = *f.Start
			end = f.End
			if f.Width != 0 {
				end = start + f.Width
			}
		case f.Width != 0:
			start, end = pos, pos+f.Width
		default:
			return fixed.FieldSpec{}, invalid("fields", "field %d needs a width or start/end offsets", i)
		}

		pad, err := parseRune("padding", f.Padding)
		if err != nil {
			return fixed.FieldSpec{}, err
		}
		fields[i] = fixed.Field{Name: f.Name, Start: start, End: end, Padding: pad}
		pos = end
	}
	return fixed.NewFieldSpecFromFields(fields...)
}

// Types returns the declared type of every field, Detect where a field has
// none. It returns nil when no field declares a type.
func (l *Layout) Types() ([]fixed.ColumnType, error) {
	types := make([]fixed.ColumnType, len(l.Fields))
	declared := false
	for i, f := range l.Fields {
		if f.Type == "" {
			continue
		}
		t, err := fixed.ParseColumnType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		types[i] = t
		declared = true
	}
	if !declared {
		return nil, nil
	}
	return types, nil
}

// Options returns a builder for src preloaded with the layout. Callers may
// refine it before calling Build.
func (l *Layout) Options(src fixed.Source) (*fixed.OptionsBuilder, error) {
	spec, err := l.Spec()
	if err != nil {
		return nil, err
	}
	types, err := l.Types()
	if err != nil {
		return nil, err
	}
	ending, err := fixed.ParseLineEnding(l.LineEnding)
	if err != nil {
		return nil, err
	}
	tag, err := l.locale()
	if err != nil {
		return nil, err
	}

	b := fixed.NewOptions(src).
		ColumnSpecs(spec).
		LineEnding(ending).
		Locale(tag).
		Charset(l.Charset).
		SkipTrailingCharsUntilNewline(l.SkipTrailingOverflow).
		StrictLineLength(l.StrictLineLength)

	if l.Name != "" {
		b.TableName(l.Name)
	}
	if l.Header != nil {
		b.Header(*l.Header)
	}
	if pad, _ := parseRune("padding", l.Padding); pad != 0 {
		b.Padding(pad)
	}
	if l.SkipEmptyLines != nil {
		b.SkipEmptyLines(*l.SkipEmptyLines)
	}
	if types != nil {
		b.ColumnTypes(types...)
	}
	if l.MissingValues != nil {
		b.MissingValueIndicator(l.MissingValues...)
	}
	if l.Sample != nil {
		b.Sample(*l.Sample)
	}
	if l.SampleSize > 0 {
		b.SampleSize(l.SampleSize)
	}
	if l.MinimizeColumnSizes {
		b.MinimizeColumnSizes()
	}
	if l.DateLayouts != nil {
		b.DateLayout(l.DateLayouts...)
	}
	if l.TimeLayouts != nil {
		b.TimeLayout(l.TimeLayouts...)
	}
	if l.DateTimeLayouts != nil {
		b.DateTimeLayout(l.DateTimeLayouts...)
	}
	return b, nil
}

// ReadOptions is Options followed by Build.
func (l *Layout) ReadOptions(src fixed.Source) (fixed.ReadOptions, error) {
	b, err := l.Options(src)
	if err != nil {
		return fixed.ReadOptions{}, err
	}
	return b.Build()
}

func (l *Layout) locale() (language.Tag, error) {
	if strings.TrimSpace(l.Locale) == "" {
		return language.AmericanEnglish, nil
	}
	tag, err := language.Parse(l.Locale)
	if err != nil {
		return language.Und, invalid("locale", "%q: %v", l.Locale, err)
	}
	return tag, nil
}

// parseRune accepts a single character; "" means unset.
func parseRune(option, s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, invalid(option, "must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func invalid(option, format string, args ...any) error {
	return &fixed.ConfigurationError{Option: option, Reason: fmt.Sprintf(format, args...)}
}
