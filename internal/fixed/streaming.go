package fixed

// streaming.go prepares a raw byte stream for line splitting.
//
// Fixed-width files are often produced by legacy systems, so the source is
// normalized before any field is sliced:
//
//   - Charset decoding: Latin-1, Windows-1252 and EBCDIC (CP037) become UTF-8
//   - BOM skipping: the UTF-8 byte order mark is dropped
//   - UTF-8 sanitizing: invalid byte sequences become '?' so that every
//     character still occupies one position
//   - Counting: bytes consumed are tracked for logging
//
// Use wrapSource to apply all transforms in the correct order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCharset maps a charset name to its decoder. UTF-8 (the default)
// returns a nil encoding.
func ParseCharset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "latin9", "iso-8859-15":
		return charmap.ISO8859_15, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "ebcdic", "cp037", "ibm037":
		return charmap.CodePage037, nil
	case "cp1047", "ibm1047":
		return charmap.CodePage1047, nil
	}
	return nil, &ConfigurationError{Option: "charset", Reason: fmt.Sprintf("unsupported charset %q", name)}
}

// bomReader drops a leading UTF-8 byte order mark.
type bomReader struct {
	r       *bufio.Reader
	checked bool
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{r: bufio.NewReader(r)}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly, holding
// back an incomplete trailing sequence until the next chunk arrives.
type utf8Sanitizer struct {
	r       io.Reader
	raw     []byte
	out     []byte
	pending []byte
	err     error
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		r:       r,
		raw:     make([]byte, 32*1024),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// fill reads the next chunk into raw and exposes its sanitized prefix as out.
// It is only called once out has been fully consumed.
func (s *utf8Sanitizer) fill() {
	offset := copy(s.raw, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(s.raw[offset:])
	s.err = err
	data := s.raw[:offset+n]

	ascii := true
	for _, b := range data {
		if b >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		s.out = data
		return
	}
	s.out = data[:s.sanitize(data, err != nil)]
}

// sanitize rewrites data in place and returns the number of usable bytes.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// countingReader tracks bytes consumed from the underlying source.
type countingReader struct {
	r         io.Reader
	bytesRead int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.bytesRead += int64(n)
	return n, err
}

// wrapSource applies charset decoding, BOM skipping, sanitizing and counting.
//
// The order matters: counting sees raw bytes, decoding happens before any
// UTF-8 handling, and the BOM is only meaningful in UTF-8 input.
func wrapSource(r io.Reader, enc encoding.Encoding) (io.Reader, *countingReader) {
	counter := &countingReader{r: r}
	if enc != nil {
		return transform.NewReader(counter, enc.NewDecoder()), counter
	}
	return newUTF8Sanitizer(newBOMReader(counter)), counter
}
