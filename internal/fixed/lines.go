package fixed

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"runtime"
)

// LineEnding selects how record boundaries are recognized.
type LineEnding int

const (
	// DetectLineEnding accepts "\n", "\r\n" and "\r".
	DetectLineEnding LineEnding = iota
	LF
	CRLF
	CR
)

func (l LineEnding) String() string {
	switch l {
	case LF:
		return "lf"
	case CRLF:
		return "crlf"
	case CR:
		return "cr"
	default:
		return "detect"
	}
}

// ParseLineEnding converts "lf", "crlf", "cr", "system" or "detect".
func ParseLineEnding(s string) (LineEnding, error) {
	switch s {
	case "", "detect", "auto":
		return DetectLineEnding, nil
	case "lf", "LF", "\n":
		return LF, nil
	case "crlf", "CRLF", "\r\n":
		return CRLF, nil
	case "cr", "CR", "\r":
		return CR, nil
	case "system":
		return SystemLineEnding(), nil
	}
	return DetectLineEnding, &ConfigurationError{Option: "line ending", Reason: fmt.Sprintf("unknown line ending %q", s)}
}

// SystemLineEnding returns the line terminator of the running platform.
func SystemLineEnding() LineEnding {
	if runtime.GOOS == "windows" {
		return CRLF
	}
	return LF
}

func (l LineEnding) separator() []byte {
	switch l {
	case LF:
		return []byte{'\n'}
	case CRLF:
		return []byte{'\r', '\n'}
	case CR:
		return []byte{'\r'}
	}
	return nil
}

// DefaultMaxLineBytes bounds the size of a single physical line.
const DefaultMaxLineBytes = 1 << 20

// lineSource yields physical lines with 1-based line numbers. A final line
// without a terminator is returned like any other line.
type lineSource struct {
	scanner *bufio.Scanner
	line    int
}

func newLineSource(r io.Reader, sep []byte, maxLineBytes int) *lineSource {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, maxLineBytes)), maxLineBytes)
	if len(sep) == 0 {
		sc.Split(scanAnyLineEnding)
	} else {
		sc.Split(scanSeparator(sep))
	}
	return &lineSource{scanner: sc}
}

// next returns the next line. ok is false at end of input; err is set on
// read failures.
func (s *lineSource) next() (line string, num int, ok bool, err error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", s.line, false, fmt.Errorf("read line %d: %w", s.line+1, err)
		}
		return "", s.line, false, nil
	}
	s.line++
	return s.scanner.Text(), s.line, true, nil
}

// scanSeparator splits on an exact separator. Other control characters,
// such as a '\r' before an LF separator, stay part of the line.
func scanSeparator(sep []byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.Index(data, sep); i >= 0 {
			return i + len(sep), data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// scanAnyLineEnding splits on "\r\n", "\n" or a lone "\r".
func scanAnyLineEnding(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Lone '\r' at the buffer end: wait to see whether '\n' follows.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
