package fixed

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func collectLines(t *testing.T, src *lineSource) []string {
	t.Helper()
	var lines []string
	for {
		line, num, ok, err := src.next()
		require.NoError(t, err)
		if !ok {
			return lines
		}
		require.Equal(t, len(lines)+1, num)
		lines = append(lines, line)
	}
}

func TestLineSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		ending LineEnding
		want   []string
	}{
		{name: "detect LF", input: "a\nb\n", ending: DetectLineEnding, want: []string{"a", "b"}},
		{name: "detect CRLF", input: "a\r\nb\r\n", ending: DetectLineEnding, want: []string{"a", "b"}},
		{name: "detect CR", input: "a\rb\r", ending: DetectLineEnding, want: []string{"a", "b"}},
		{name: "detect mixed", input: "a\r\nb\nc\rd", ending: DetectLineEnding, want: []string{"a", "b", "c", "d"}},
		{name: "detect keeps empty lines", input: "a\n\nb", ending: DetectLineEnding, want: []string{"a", "", "b"}},
		{name: "final line without terminator", input: "a\nb", ending: LF, want: []string{"a", "b"}},
		{name: "LF keeps carriage returns", input: "a\r\nb\r\n", ending: LF, want: []string{"a\r", "b\r"}},
		{name: "CRLF ignores lone LF", input: "a\nb\r\nc", ending: CRLF, want: []string{"a\nb", "c"}},
		{name: "CR", input: "a\rb", ending: CR, want: []string{"a", "b"}},
		{name: "empty input", input: "", ending: DetectLineEnding, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newLineSource(strings.NewReader(tt.input), tt.ending.separator(), 0)
			require.Equal(t, tt.want, collectLines(t, src))
		})
	}
}

func TestLineSource_CRLFSplitAcrossReads(t *testing.T) {
	// One byte per Read puts every '\r' at the end of the buffer.
	input := "ab\r\ncd\r\nef"
	src := newLineSource(iotest.OneByteReader(strings.NewReader(input)), nil, 0)
	require.Equal(t, []string{"ab", "cd", "ef"}, collectLines(t, src))
}

func TestLineSource_CustomSeparator(t *testing.T) {
	src := newLineSource(strings.NewReader("a||b||c"), []byte("||"), 0)
	require.Equal(t, []string{"a", "b", "c"}, collectLines(t, src))
}

func TestLineSource_MaxLineBytes(t *testing.T) {
	src := newLineSource(strings.NewReader(strings.Repeat("x", 200)+"\n"), nil, 64)
	_, _, ok, err := src.next()
	require.False(t, ok)
	require.Error(t, err)
}

func TestParseLineEnding(t *testing.T) {
	for input, want := range map[string]LineEnding{
		"":       DetectLineEnding,
		"detect": DetectLineEnding,
		"lf":     LF,
		"CRLF":   CRLF,
		"cr":     CR,
		"system": SystemLineEnding(),
	} {
		got, err := ParseLineEnding(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}

	_, err := ParseLineEnding("nl")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
