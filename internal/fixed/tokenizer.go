package fixed

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenizerConfig holds the slicing knobs taken from ReadOptions.
type TokenizerConfig struct {
	Padding              rune
	SkipTrailingOverflow bool
	StrictLineLength     bool
	TrimWhitespace       bool
}

// Tokenizer slices lines into fields according to a FieldSpec.
// It holds no per-line state and may be reused across lines.
type Tokenizer struct {
	spec FieldSpec
	cfg  TokenizerConfig
}

// NewTokenizer returns a tokenizer for spec. A zero Padding means space.
func NewTokenizer(spec FieldSpec, cfg TokenizerConfig) *Tokenizer {
	if cfg.Padding == 0 {
		cfg.Padding = ' '
	}
	return &Tokenizer{spec: spec, cfg: cfg}
}

// Tokenize splits line into one trimmed value per declared field. Offsets are
// counted in characters. Missing trailing characters read as padding; extra
// trailing characters are an error unless SkipTrailingOverflow is set.
// lineNum is only used for error reporting.
func (t *Tokenizer) Tokenize(line string, lineNum int) (RawRow, error) {
	total := t.spec.TotalLength()

	ascii := isASCII(line)
	length := len(line)
	var chars []rune
	if !ascii {
		chars = []rune(line)
		length = len(chars)
	}

	if length > total && !t.cfg.SkipTrailingOverflow {
		return nil, &LineLengthError{Line: lineNum, Expected: total, Actual: length}
	}
	if length < total && t.cfg.StrictLineLength {
		return nil, &LineLengthError{Line: lineNum, Expected: total, Actual: length}
	}

	row := make(RawRow, len(t.spec.fields))
	for i, f := range t.spec.fields {
		if f.Start >= length {
			continue
		}
		end := min(f.End, length)

		var raw string
		if ascii {
			raw = line[f.Start:end]
		} else {
			raw = string(chars[f.Start:end])
		}

		pad := t.cfg.Padding
		if f.Padding != 0 {
			pad = f.Padding
		}
		row[i] = trimField(raw, pad, t.cfg.TrimWhitespace)
	}
	return row, nil
}

// trimField removes padding (and optionally whitespace) from both ends.
// Trimming is idempotent: trimField(trimField(s)) == trimField(s).
func trimField(s string, pad rune, trimSpace bool) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == pad || (trimSpace && unicode.IsSpace(r))
	})
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
