// Package pgload copies materialized fixed-width tables into PostgreSQL.
//
// Every load runs in one transaction: the destination table is optionally
// created, then all rows are streamed with COPY. Each row is tagged with the
// load's UUID so a load can be audited or removed as a unit.
package pgload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
)

// LoadIDColumn is the column holding the load UUID in every destination table.
const LoadIDColumn = "load_id"

// DB is the subset of *pgxpool.Pool used by the loader.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Target describes where a table is loaded.
type Target struct {
	// Table is the destination, optionally schema-qualified ("staging.cars").
	Table string
	// Create issues CREATE TABLE IF NOT EXISTS before copying.
	Create bool
}

// Result summarizes a completed load.
type Result struct {
	LoadID   uuid.UUID
	Table    string
	Rows     int64
	Duration time.Duration
}

// Loader copies tables into PostgreSQL.
type Loader struct {
	db     DB
	logger *slog.Logger
}

// NewLoader returns a Loader using db. A nil logger uses slog.Default.
func NewLoader(db DB, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{db: db, logger: logger}
}

// Load copies every row of table into target within a single transaction.
func (l *Loader) Load(ctx context.Context, table *fixed.Table, target Target) (*Result, error) {
	ident, err := ParseIdentifier(target.Table)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	loadID := uuid.New()

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if target.Create {
		if _, err := tx.Exec(ctx, CreateTableSQL(ident, table)); err != nil {
			return nil, fmt.Errorf("create table %s: %w", ident.Sanitize(), err)
		}
	}

	n, err := tx.CopyFrom(ctx, ident, ColumnNames(table), newTableSource(table, loadID))
	if err != nil {
		return nil, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	result := &Result{
		LoadID:   loadID,
		Table:    ident.Sanitize(),
		Rows:     n,
		Duration: time.Since(start),
	}
	l.logger.Info("fixed-width table loaded",
		"load_id", loadID,
		"table", result.Table,
		"rows", n,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// ParseIdentifier splits a possibly schema-qualified table name.
func ParseIdentifier(name string) (pgx.Identifier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("target table is required")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q: expected table or schema.table", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}

// ColumnNames returns the destination column names: the table's columns in
// snake_case followed by LoadIDColumn.
func ColumnNames(table *fixed.Table) []string {
	names := make([]string, 0, table.ColumnCount()+1)
	for _, c := range table.Columns() {
		names = append(names, toDBColumnName(c.Name()))
	}
	return append(names, LoadIDColumn)
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for table.
func CreateTableSQL(ident pgx.Identifier, table *fixed.Table) string {
	names := ColumnNames(table)
	defs := make([]string, 0, len(names))
	for i, c := range table.Columns() {
		defs = append(defs, fmt.Sprintf("%s %s", pgx.Identifier{names[i]}.Sanitize(), SQLType(c.Type())))
	}
	defs = append(defs, fmt.Sprintf("%s UUID NOT NULL", pgx.Identifier{LoadIDColumn}.Sanitize()))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", ident.Sanitize(), strings.Join(defs, ",\n\t"))
}

// SQLType maps a column type to its PostgreSQL type.
func SQLType(t fixed.ColumnType) string {
	switch t {
	case fixed.Short:
		return "SMALLINT"
	case fixed.Integer:
		return "INTEGER"
	case fixed.Long:
		return "BIGINT"
	case fixed.Float:
		return "REAL"
	case fixed.Double:
		return "DOUBLE PRECISION"
	case fixed.Boolean:
		return "BOOLEAN"
	case fixed.LocalDate:
		return "DATE"
	case fixed.LocalTime:
		return "TIME"
	case fixed.LocalDateTime:
		return "TIMESTAMP"
	}
	return "TEXT"
}

// toDBColumnName converts a display column name to a database column name.
// "Transaction ID" -> "transaction_id"
func toDBColumnName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}
