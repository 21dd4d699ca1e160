// Package service runs fixed-width reads on behalf of the HTTP server and
// the CLI: layout parsing, bounded concurrency, size limits and the optional
// PostgreSQL load.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
	"github.com/JonMunkholm/fixedwidth/internal/layout"
	"github.com/JonMunkholm/fixedwidth/internal/logging"
	"github.com/JonMunkholm/fixedwidth/internal/pgload"
)

var (
	// ErrNoFile is returned when a request carries no data file.
	ErrNoFile = errors.New("no file provided")
	// ErrNoLayout is returned when a request carries no layout.
	ErrNoLayout = errors.New("no layout provided")
	// ErrFileTooLarge is returned when a data file exceeds Config.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNoDatabase is returned by Load when the service has no database.
	ErrNoDatabase = errors.New("database not configured")
)

// Config bounds the work a Service accepts.
type Config struct {
	MaxConcurrent int           // Parallel reads (default: DefaultMaxConcurrentReads)
	MaxWait       time.Duration // Wait for a read slot (default: DefaultMaxWaitTime)
	MaxFileSize   int64         // Bytes per data file; 0 means unlimited
	PreviewRows   int           // Rows rendered by TableView (default: 100)
}

// DefaultPreviewRows is the number of rows rendered when Config.PreviewRows is unset.
const DefaultPreviewRows = 100

// Request is one data file plus the layout describing it.
type Request struct {
	Layout   []byte    // YAML or JSON layout document
	File     io.Reader // Fixed-width data; never closed by the service
	FileName string    // Used as the table name when the layout has none
}

// Service runs reads and loads.
type Service struct {
	cfg     Config
	reader  *fixed.Reader
	limiter *ReadLimiter
	loader  *pgload.Loader
}

// New creates a Service. db may be nil, in which case Load returns
// ErrNoDatabase.
func New(cfg Config, db pgload.DB) *Service {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}
	s := &Service{
		cfg:     cfg,
		reader:  fixed.NewReader(nil),
		limiter: NewReadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
	}
	if db != nil {
		s.loader = pgload.NewLoader(db, nil)
	}
	return s
}

// HasDatabase reports whether Load is available.
func (s *Service) HasDatabase() bool {
	return s.loader != nil
}

// Status returns the read limiter's state.
func (s *Service) Status() LimiterStatus {
	return s.limiter.Status()
}

// PreviewRows returns the configured preview size.
func (s *Service) PreviewRows() int {
	return s.cfg.PreviewRows
}

// Drain waits for in-flight reads, for graceful shutdown.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// DetectResult is the outcome of a detection pass.
type DetectResult struct {
	Fields []string           `json:"fields"`
	Types  []fixed.ColumnType `json:"types"`
}

// Detect infers a column type for every field of the layout.
func (s *Service) Detect(ctx context.Context, req Request) (*DetectResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(ctx, "read_id", uuid.New().String(), "file", req.FileName)
	fields, types, err := s.reader.DetectColumns(nil, opts)
	if err != nil {
		logger.Warn("detection failed", "error", err)
		return nil, fmt.Errorf("detect %s: %w", req.FileName, err)
	}
	logger.Info("column types detected", "fields", len(types))

	return &DetectResult{Fields: fields, Types: types}, nil
}

// Read materializes the table described by the request.
func (s *Service) Read(ctx context.Context, req Request) (*fixed.Table, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.read(ctx, req)
}

func (s *Service) read(ctx context.Context, req Request) (*fixed.Table, error) {
	opts, err := s.options(req)
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(ctx, "read_id", uuid.New().String(), "file", req.FileName)
	start := time.Now()
	table, err := s.reader.Read(opts)
	if err != nil {
		logger.Warn("read failed", "error", err)
		return nil, fmt.Errorf("read %s: %w", req.FileName, err)
	}
	logger.Info("file read",
		"table", table.Name(),
		"rows", table.RowCount(),
		"columns", table.ColumnCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return table, nil
}

// LoadResult is the outcome of a read followed by a load.
type LoadResult struct {
	LoadID  string    `json:"load_id"`
	Table   string    `json:"table"`
	Rows    int64     `json:"rows"`
	Columns []string  `json:"columns"`
	Summary TableView `json:"summary"`
}

// Load reads the request and copies the table into PostgreSQL.
func (s *Service) Load(ctx context.Context, req Request, target pgload.Target) (*LoadResult, error) {
	if s.loader == nil {
		return nil, ErrNoDatabase
	}
	if _, err := pgload.ParseIdentifier(target.Table); err != nil {
		return nil, &fixed.ConfigurationError{Option: "target table", Reason: err.Error()}
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	table, err := s.read(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := s.loader.Load(ctx, table, target)
	if err != nil {
		return nil, err
	}
	return &LoadResult{
		LoadID:  res.LoadID.String(),
		Table:   res.Table,
		Rows:    res.Rows,
		Columns: pgload.ColumnNames(table),
		Summary: NewTableView(table, 0),
	}, nil
}

// acquire takes a read slot and fails fast when the request is already done.
func (s *Service) acquire(ctx context.Context) (func(), error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.limiter.Release()
		return nil, err
	}
	return s.limiter.Release, nil
}

// options parses the request layout into read options over the request file.
func (s *Service) options(req Request) (fixed.ReadOptions, error) {
	if len(req.Layout) == 0 {
		return fixed.ReadOptions{}, ErrNoLayout
	}
	if req.File == nil {
		return fixed.ReadOptions{}, ErrNoFile
	}

	l, err := layout.Parse(req.Layout)
	if err != nil {
		return fixed.ReadOptions{}, err
	}

	var src io.Reader = req.File
	if s.cfg.MaxFileSize > 0 {
		src = &sizeLimitReader{r: req.File, remaining: s.cfg.MaxFileSize}
	}
	b, err := l.Options(fixed.FromReader(src))
	if err != nil {
		return fixed.ReadOptions{}, err
	}
	if l.Name == "" && req.FileName != "" {
		b.TableName(filepath.Base(req.FileName))
	}
	return b.Build()
}

// sizeLimitReader fails with ErrFileTooLarge once more than the allowed
// number of bytes has been read.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
