package fixed

// convert.go turns trimmed field text into typed values.
//
// Fixed-width exports come from mainframes, ERPs and report writers, so the
// parser tolerates:
//   - Locale-specific decimal and grouping separators
//   - Multiple date layouts (US, EU, ISO, compact)
//   - 2-digit years, resolved with a pivot
//   - Several boolean spellings (yes/no, true/false, t/f, y/n)
//
// Detection uses CanParse, which is stricter than Parse for booleans so that
// 0/1 columns are inferred as numbers.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// TypeParser parses field text for one ColumnType at a time.
type TypeParser interface {
	// CanParse reports whether s is a valid value of t for type detection.
	CanParse(t ColumnType, s string) bool
	// Parse converts s to the Go value stored for t.
	Parse(t ColumnType, s string) (any, error)
}

// DateLayouts overrides the built-in date, time and date-time layouts.
// A nil slice keeps the corresponding defaults.
type DateLayouts struct {
	Date     []string
	Time     []string
	DateTime []string
}

// numericRegex validates a number after locale normalization.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"20060102",
	}
	defaultTimeLayouts = []string{
		"15:04", "15:04:05", "15:04:05.000", "15:04:05.000000",
		"3:04 PM", "3:04PM", "3:04:05 PM",
	}
	defaultDateTimeLayouts = []string{
		"2006-01-02T15:04:05", "2006-01-02T15:04:05.000", "2006-01-02T15:04",
		"2006-01-02 15:04:05", "2006-01-02 15:04:05.000", "2006-01-02 15:04",
		"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006 3:04 PM", "1/2/2006 3:04:05 PM",
		"01/02/2006 15:04:05", "02.01.2006 15:04:05",
		time.RFC3339, time.RFC3339Nano,
	}
)

var (
	trueWords  = map[string]bool{"true": true, "t": true, "yes": true, "y": true}
	falseWords = map[string]bool{"false": true, "f": true, "no": true, "n": true}

	errNotNumeric      = errors.New("invalid number")
	errOutOfRange      = errors.New("number out of range")
	errNotBoolean      = errors.New("invalid boolean")
	errNotDate         = errors.New("invalid date")
	errUnsupportedType = errors.New("unsupported column type")
)

// localeParser is the default TypeParser.
type localeParser struct {
	decimal rune
	group   rune

	dateLayouts     []string
	twoDigitLayouts []string
	timeLayouts     []string
	dateTimeLayouts []string
}

// NewTypeParser returns a TypeParser using the number grammar of locale.
// Custom layouts replace the built-in ones for their kind.
func NewTypeParser(locale language.Tag, layouts DateLayouts) TypeParser {
	decimal, group := separatorsFor(locale)
	p := &localeParser{
		decimal:         decimal,
		group:           group,
		dateLayouts:     fourDigitYearLayouts,
		twoDigitLayouts: twoDigitYearLayouts,
		timeLayouts:     defaultTimeLayouts,
		dateTimeLayouts: defaultDateTimeLayouts,
	}
	if layouts.Date != nil {
		p.dateLayouts = layouts.Date
		p.twoDigitLayouts = nil
	}
	if layouts.Time != nil {
		p.timeLayouts = layouts.Time
	}
	if layouts.DateTime != nil {
		p.dateTimeLayouts = layouts.DateTime
	}
	return p
}

// separatorsFor returns the decimal and grouping separators of a locale.
func separatorsFor(tag language.Tag) (decimal, group rune) {
	base, _ := tag.Base()
	region, _ := tag.Region()

	switch base.String() {
	case "de", "it":
		if r := region.String(); r == "CH" || r == "LI" {
			return '.', '\''
		}
		return ',', '.'
	case "nl", "es", "pt", "da", "id", "tr", "el", "ro", "hr", "sl", "sr", "vi":
		return ',', '.'
	case "fr", "ru", "pl", "cs", "sk", "sv", "fi", "nb", "no", "uk", "hu", "bg", "lt", "lv", "et":
		return ',', '\u00a0'
	}
	return '.', ','
}

func (p *localeParser) CanParse(t ColumnType, s string) bool {
	switch t {
	case Boolean:
		lower := strings.ToLower(s)
		return trueWords[lower] || falseWords[lower]
	case Float:
		return p.fitsFloat32(s)
	case String:
		return true
	case Skip, Detect:
		return false
	}
	_, err := p.Parse(t, s)
	return err == nil
}

func (p *localeParser) Parse(t ColumnType, s string) (any, error) {
	switch t {
	case String:
		return s, nil
	case Short:
		v, err := p.parseInt(s, 16)
		return int16(v), err
	case Integer:
		v, err := p.parseInt(s, 32)
		return int32(v), err
	case Long:
		return p.parseInt(s, 64)
	case Float:
		v, err := p.parseFloat(s, 32)
		return float32(v), err
	case Double:
		return p.parseFloat(s, 64)
	case Boolean:
		return parseBool(s)
	case LocalDate:
		return p.parseDate(s)
	case LocalTime:
		return parseLayouts(s, p.timeLayouts)
	case LocalDateTime:
		return parseLayouts(s, p.dateTimeLayouts)
	}
	return nil, fmt.Errorf("%w: %s", errUnsupportedType, t)
}

// normalizeNumber rewrites s into Go's number grammar: grouping separators
// removed, the decimal separator replaced by '.'.
func (p *localeParser) normalizeNumber(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == p.group:
		case p.group == '\u00a0' && (r == ' ' || r == '\u202f'):
		case r == p.decimal:
			b.WriteByte('.')
		case r == '.' && p.decimal != '.':
			// Neither separator in this locale: poison the value.
			b.WriteByte('#')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p *localeParser) parseInt(s string, bits int) (int64, error) {
	n := p.normalizeNumber(s)
	if !integerRegex.MatchString(n) {
		return 0, errNotNumeric
	}
	v, err := strconv.ParseInt(n, 10, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errOutOfRange
		}
		return 0, errNotNumeric
	}
	return v, nil
}

func (p *localeParser) parseFloat(s string, bits int) (float64, error) {
	n := p.normalizeNumber(s)
	if !numericRegex.MatchString(n) {
		return 0, errNotNumeric
	}
	v, err := strconv.ParseFloat(n, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, errOutOfRange
		}
		return 0, errNotNumeric
	}
	return v, nil
}

// fitsFloat32 reports whether s round-trips through float32 without losing
// any of the digits written in the source text.
func (p *localeParser) fitsFloat32(s string) bool {
	wide, err := p.parseFloat(s, 64)
	if err != nil {
		return false
	}
	if math.Abs(wide) > math.MaxFloat32 {
		return false
	}
	narrow := float32(wide)
	back, err := strconv.ParseFloat(strconv.FormatFloat(float64(narrow), 'g', -1, 32), 64)
	if err != nil {
		return false
	}
	return back == wide
}

func parseBool(s string) (bool, error) {
	lower := strings.ToLower(s)
	switch {
	case trueWords[lower] || lower == "1":
		return true, nil
	case falseWords[lower] || lower == "0":
		return false, nil
	}
	return false, errNotBoolean
}

func (p *localeParser) parseDate(s string) (time.Time, error) {
	// 4-digit year layouts first (unambiguous)
	if t, err := parseLayouts(s, p.dateLayouts); err == nil {
		return t, nil
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range p.twoDigitLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() > pivotYear {
			t = t.AddDate(-100, 0, 0)
		}
		return t, nil
	}
	return time.Time{}, errNotDate
}

func parseLayouts(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNotDate
}
