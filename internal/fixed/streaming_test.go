package fixed

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestBOMReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("1997Ford_")...),
			expected: "1997Ford_",
		},
		{
			name:     "file without BOM",
			input:    []byte("1997Ford_"),
			expected: "1997Ford_",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newBOMReader(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			require.Equal(t, tt.expected, string(result))
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("hello"),
			expected: "hello",
		},
		{
			name:     "valid multibyte",
			input:    []byte("Zürich"),
			expected: "Zürich",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "truncated sequence at EOF",
			input:    []byte{'a', 0xC3},
			expected: "a?",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			require.Equal(t, tt.expected, string(result))
		})
	}
}

func TestUTF8Sanitizer_SequenceSplitAcrossReads(t *testing.T) {
	// One byte per Read splits every multibyte rune across chunks.
	input := "ÄÖÜ_日本語"
	r := newUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input)))
	result, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, input, string(result))
}

func TestUTF8Sanitizer_SmallDestination(t *testing.T) {
	r := newUTF8Sanitizer(strings.NewReader("abcdef"))
	buf := make([]byte, 2)
	var out []byte
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, "abcdef", string(out))
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	counter := &countingReader{r: strings.NewReader(input)}
	_, err := io.Copy(io.Discard, counter)
	require.NoError(t, err)
	require.Equal(t, int64(1000), counter.bytesRead)
}

func TestWrapSource(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ok\x80")...)
	wrapped, counter := wrapSource(bytes.NewReader(input), nil)
	result, err := io.ReadAll(wrapped)
	require.NoError(t, err)
	require.Equal(t, "ok?", string(result))
	require.Equal(t, int64(len(input)), counter.bytesRead)
}

func TestWrapSource_EBCDIC(t *testing.T) {
	encoded, err := charmap.CodePage037.NewEncoder().String("1997FORD")
	require.NoError(t, err)

	enc, err := ParseCharset("cp037")
	require.NoError(t, err)
	wrapped, _ := wrapSource(strings.NewReader(encoded), enc)
	result, err := io.ReadAll(wrapped)
	require.NoError(t, err)
	require.Equal(t, "1997FORD", string(result))
}

func TestParseCharset(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8"} {
		enc, err := ParseCharset(name)
		require.NoError(t, err)
		require.Nil(t, enc)
	}

	enc, err := ParseCharset("Windows-1252")
	require.NoError(t, err)
	require.Equal(t, charmap.Windows1252, enc)

	_, err = ParseCharset("klingon")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
