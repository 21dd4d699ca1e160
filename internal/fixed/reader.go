package fixed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Reader runs detection and materialization passes. A Reader holds no
// per-read state and is safe for concurrent use; each read is sequential.
type Reader struct {
	logger *slog.Logger
}

// NewReader returns a Reader logging to logger (slog.Default when nil).
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

var defaultReader = NewReader(nil)

// Read materializes the table described by opts using the default Reader.
func Read(opts ReadOptions) (*Table, error) {
	return defaultReader.Read(opts)
}

// DetectColumnTypes infers column types using the default Reader.
func DetectColumnTypes(r io.Reader, opts ReadOptions) ([]ColumnType, error) {
	return defaultReader.DetectColumnTypes(r, opts)
}

// DetectColumnTypes infers one type per declared field from r (or from the
// options' source when r is nil). Declared types are ignored: the result is
// what the data supports, including positions that will later be skipped.
func (rd *Reader) DetectColumnTypes(r io.Reader, opts ReadOptions) ([]ColumnType, error) {
	_, types, err := rd.DetectColumns(r, opts)
	return types, err
}

// DetectColumns is DetectColumnTypes returning the name of every declared
// field as well: the header's when one is read, else the declared field
// names, else C0..Cn.
func (rd *Reader) DetectColumns(r io.Reader, opts ReadOptions) ([]string, []ColumnType, error) {
	if r != nil {
		opts = opts.WithSource(FromReader(r))
	}

	var names []string
	var types []ColumnType
	err := withSource(opts.source, func(src io.Reader) error {
		var err error
		names, types, err = rd.detect(src, opts)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if names == nil {
		names = columnNames(opts.spec, nil)
	}
	return names, types, nil
}

// Read materializes the table described by opts. When some column type is
// left to inference the source is read twice: a detection pass, then the
// materialization pass. File sources are reopened, seekable streams are
// rewound, other streams are buffered in memory.
func (rd *Reader) Read(opts ReadOptions) (*Table, error) {
	if opts.source.isZero() {
		return nil, &ConfigurationError{Option: "source", Reason: "no file or reader configured"}
	}
	start := time.Now()

	var inferred []ColumnType
	if opts.needsDetection() {
		src, err := rewindable(opts.source)
		if err != nil {
			return nil, err
		}
		opts = opts.WithSource(src.source)

		err = withSource(opts.source, func(r io.Reader) error {
			var err error
			_, inferred, err = rd.detect(r, opts)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := src.rewind(); err != nil {
			return nil, err
		}
	}

	var table *Table
	var bytesRead int64
	err := withSource(opts.source, func(r io.Reader) error {
		var err error
		table, bytesRead, err = rd.materialize(r, opts, inferred)
		return err
	})
	if err != nil {
		return nil, err
	}

	rd.logger.Debug("fixed-width table read",
		"table", table.Name(),
		"rows", table.RowCount(),
		"columns", table.ColumnCount(),
		"bytes", bytesRead,
		"detected", inferred != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// withSource acquires the source, runs fn and releases what it acquired.
// Streams supplied by the caller are never closed.
func withSource(src Source, fn func(io.Reader) error) (err error) {
	if src.r != nil {
		return fn(src.r)
	}
	if src.path == "" {
		return &ConfigurationError{Option: "source", Reason: "no file or reader configured"}
	}

	f, err := os.Open(src.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", src.path, cerr)
		}
	}()
	return fn(f)
}

// replayable is a source that can be read a second time.
type replayable struct {
	source Source
	rewind func() error
}

func rewindable(src Source) (replayable, error) {
	noop := func() error { return nil }
	if src.r == nil {
		return replayable{source: src, rewind: noop}, nil
	}

	if seeker, ok := src.r.(io.Seeker); ok {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err == nil {
			return replayable{source: src, rewind: func() error {
				if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
					return fmt.Errorf("rewind source: %w", err)
				}
				return nil
			}}, nil
		}
	}

	data, err := io.ReadAll(src.r)
	if err != nil {
		return replayable{}, fmt.Errorf("buffer source: %w", err)
	}
	br := bytes.NewReader(data)
	return replayable{source: FromReader(br), rewind: func() error {
		_, err := br.Seek(0, io.SeekStart)
		return err
	}}, nil
}

// pass holds the per-read plumbing shared by detection and materialization.
type pass struct {
	opts    ReadOptions
	lines   *lineSource
	tok     *Tokenizer
	counter *countingReader
}

func newPass(r io.Reader, opts ReadOptions) (*pass, error) {
	enc, err := ParseCharset(opts.charset)
	if err != nil {
		return nil, err
	}
	wrapped, counter := wrapSource(r, enc)
	return &pass{
		opts:    opts,
		lines:   newLineSource(wrapped, opts.separator(), opts.maxLineBytes),
		tok:     opts.tokenizer(),
		counter: counter,
	}, nil
}

// nextRow returns the next retained line, tokenized.
func (p *pass) nextRow() (row RawRow, lineNum int, ok bool, err error) {
	for {
		line, num, ok, err := p.lines.next()
		if err != nil || !ok {
			return nil, num, false, err
		}
		if line == "" && p.opts.skipEmptyLines {
			continue
		}
		row, err := p.tok.Tokenize(line, num)
		if err != nil {
			return nil, num, false, err
		}
		return row, num, true, nil
	}
}

// header consumes the header line when one is declared and returns the
// column name of every declared field.
func (p *pass) header() ([]string, error) {
	if !p.opts.header {
		return columnNames(p.opts.spec, nil), nil
	}
	row, _, ok, err := p.nextRow()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("read header: %w", io.ErrUnexpectedEOF)
	}
	return columnNames(p.opts.spec, row), nil
}

// detect runs the inference pass and returns the field names with the
// detected types.
func (rd *Reader) detect(r io.Reader, opts ReadOptions) ([]string, []ColumnType, error) {
	p, err := newPass(r, opts)
	if err != nil {
		return nil, nil, err
	}

	names, err := p.header()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Empty input: nothing contradicts the STRING default.
			return nil, newInferTypes(opts).types(), nil
		}
		return nil, nil, err
	}

	infer := newInferTypes(opts)
	for !infer.full() {
		row, _, ok, err := p.nextRow()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		infer.add(row)
	}

	types := infer.types()
	rd.logger.Debug("fixed-width column types detected",
		"rows_sampled", infer.rows,
		"sampling", opts.sample,
		"types", types,
	)
	return names, types, nil
}

// materialize runs the full conversion pass.
func (rd *Reader) materialize(r io.Reader, opts ReadOptions, inferred []ColumnType) (*Table, int64, error) {
	p, err := newPass(r, opts)
	if err != nil {
		return nil, 0, err
	}

	names, err := p.header()
	if err != nil {
		return nil, p.counter.bytesRead, err
	}

	types, err := ResolveColumnTypes(TypeSources{
		Full:     opts.columnTypes,
		Partial:  opts.partialTypes,
		Rule:     opts.typeFunc,
		Inferred: inferred,
		Names:    names,
	})
	if err != nil {
		return nil, p.counter.bytesRead, err
	}

	b, err := newTableBuilder(opts, names, types)
	if err != nil {
		return nil, p.counter.bytesRead, err
	}
	for {
		row, lineNum, ok, err := p.nextRow()
		if err != nil {
			return nil, p.counter.bytesRead, err
		}
		if !ok {
			break
		}
		if err := b.addRow(row, lineNum); err != nil {
			return nil, p.counter.bytesRead, err
		}
	}
	return b.build(), p.counter.bytesRead, nil
}
