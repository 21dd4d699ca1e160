package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fixedwidth/internal/fixed"
	"github.com/JonMunkholm/fixedwidth/internal/pgload"
)

const carsLayout = `
padding: "_"
missingValues: ["null"]
minimizeColumnSizes: true
fields:
  - {name: Year, width: 4}
  - {name: Make, width: 5}
  - {name: Model, width: 40}
  - {name: Description, width: 40}
  - {name: Price, width: 8}
`

func carsRequest(t *testing.T, file string) Request {
	t.Helper()
	data, err := os.ReadFile("../fixed/testdata/" + file)
	require.NoError(t, err)
	return Request{Layout: []byte(carsLayout), File: strings.NewReader(string(data)), FileName: "uploads/" + file}
}

func TestService_Detect(t *testing.T) {
	svc := New(Config{}, nil)

	res, err := svc.Detect(context.Background(), carsRequest(t, "fixed_width_missing_values.txt"))
	require.NoError(t, err)
	require.Equal(t, []string{"Year", "Make", "Model", "Description", "Price"}, res.Fields)
	require.Equal(t, []fixed.ColumnType{fixed.Short, fixed.String, fixed.String, fixed.String, fixed.Short}, res.Types)
	require.Equal(t, 0, svc.Status().Active)
}

func TestService_DetectFieldNames(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		input  string
		want   []string
	}{
		{
			name:   "header names unnamed fields",
			layout: "padding: \"_\"\nheader: true\nfields:\n  - {width: 4}\n  - {width: 5}\n",
			input:  "YearMake_\n1997Ford_\n",
			want:   []string{"Year", "Make"},
		},
		{
			name:   "header beats declared names",
			layout: "padding: \"_\"\nheader: true\nfields:\n  - {name: y, width: 4}\n  - {name: m, width: 5}\n",
			input:  "YearMake_\n1997Ford_\n",
			want:   []string{"Year", "Make"},
		},
		{
			name:   "headerless declared names",
			layout: "padding: \"_\"\nheader: false\nfields:\n  - {name: y, width: 4}\n  - {name: m, width: 5}\n",
			input:  "1997Ford_\n",
			want:   []string{"y", "m"},
		},
		{
			name:   "headerless synthesized names",
			layout: "padding: \"_\"\nheader: false\nfields:\n  - {width: 4}\n  - {width: 5}\n",
			input:  "1997Ford_\n",
			want:   []string{"C0", "C1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(Config{}, nil)
			req := Request{Layout: []byte(tt.layout), File: strings.NewReader(tt.input), FileName: "cars.txt"}

			res, err := svc.Detect(context.Background(), req)
			require.NoError(t, err)
			require.Equal(t, tt.want, res.Fields)
			require.Equal(t, []fixed.ColumnType{fixed.Integer, fixed.String}, res.Types)

			table, err := svc.Read(context.Background(), Request{
				Layout: []byte(tt.layout), File: strings.NewReader(tt.input), FileName: "cars.txt",
			})
			require.NoError(t, err)
			require.Equal(t, res.Fields, table.ColumnNames())
		})
	}
}

func TestService_Read(t *testing.T) {
	svc := New(Config{PreviewRows: 2}, nil)

	table, err := svc.Read(context.Background(), carsRequest(t, "fixed_width_cars_test.txt"))
	require.NoError(t, err)
	require.Equal(t, "fixed_width_cars_test.txt", table.Name())
	require.Equal(t, 6, table.RowCount())

	view := NewTableView(table, svc.PreviewRows())
	require.True(t, view.Truncated)
	require.Len(t, view.Rows, 2)
	require.Equal(t, []string{"1997", "Ford", "E350", "ac, abs, moon", "3000"}, view.Rows[0])
	require.Equal(t, 6, view.RowCount)
}

func TestService_ReadErrors(t *testing.T) {
	svc := New(Config{}, nil)
	ctx := context.Background()

	_, err := svc.Read(ctx, Request{File: strings.NewReader("x")})
	require.ErrorIs(t, err, ErrNoLayout)

	_, err = svc.Read(ctx, Request{Layout: []byte(carsLayout)})
	require.ErrorIs(t, err, ErrNoFile)

	_, err = svc.Read(ctx, Request{Layout: []byte("fields: []"), File: strings.NewReader("x")})
	require.Equal(t, "FW003", MapError(err).Code)

	_, err = svc.Read(ctx, carsRequest(t, "fixed_width_wrong_line_length.txt"))
	require.Equal(t, "FW001", MapError(err).Code)
}

func TestService_FileTooLarge(t *testing.T) {
	svc := New(Config{MaxFileSize: 100}, nil)

	_, err := svc.Read(context.Background(), carsRequest(t, "fixed_width_cars_test.txt"))
	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Equal(t, "FILE001", MapError(err).Code)
}

func TestService_CancelledContext(t *testing.T) {
	svc := New(Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Read(ctx, carsRequest(t, "fixed_width_cars_test.txt"))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, svc.Status().Active)
}

func TestService_LoadWithoutDatabase(t *testing.T) {
	svc := New(Config{}, nil)
	require.False(t, svc.HasDatabase())

	_, err := svc.Load(context.Background(), carsRequest(t, "fixed_width_cars_test.txt"), pgload.Target{Table: "cars"})
	require.True(t, errors.Is(err, ErrNoDatabase))
}

type loadTx struct {
	pgx.Tx
	cols []string
	rows int64
}

func (tx *loadTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (tx *loadTx) CopyFrom(_ context.Context, _ pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	tx.cols = cols
	for src.Next() {
		tx.rows++
	}
	return tx.rows, src.Err()
}

func (tx *loadTx) Commit(context.Context) error   { return nil }
func (tx *loadTx) Rollback(context.Context) error { return nil }

type loadDB struct{ tx *loadTx }

func (db loadDB) Begin(context.Context) (pgx.Tx, error) { return db.tx, nil }

func TestService_Load(t *testing.T) {
	tx := &loadTx{}
	svc := New(Config{}, loadDB{tx: tx})
	require.True(t, svc.HasDatabase())

	res, err := svc.Load(context.Background(), carsRequest(t, "fixed_width_missing_values.txt"), pgload.Target{Table: "cars", Create: true})
	require.NoError(t, err)
	require.Equal(t, `"cars"`, res.Table)
	require.EqualValues(t, 6, res.Rows)
	require.Equal(t, []string{"year", "make", "model", "description", "price", "load_id"}, tx.cols)
	require.Equal(t, res.Columns, tx.cols)
	require.Empty(t, res.Summary.Rows)
	require.Equal(t, 2, res.Summary.Columns[0].Missing)

	_, err = svc.Load(context.Background(), carsRequest(t, "fixed_width_cars_test.txt"), pgload.Target{Table: "  "})
	require.Equal(t, "FW003", MapError(err).Code)
}

func TestSizeLimitReader(t *testing.T) {
	r := &sizeLimitReader{r: strings.NewReader("abcdef"), remaining: 6}
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 6, n)

	r = &sizeLimitReader{r: strings.NewReader("abcdefg"), remaining: 6}
	_, err = r.Read(buf)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestNewTableView_Limits(t *testing.T) {
	svc := New(Config{}, nil)
	table, err := svc.Read(context.Background(), carsRequest(t, "fixed_width_missing_values.txt"))
	require.NoError(t, err)

	all := NewTableView(table, -1)
	require.False(t, all.Truncated)
	require.Len(t, all.Rows, 6)
	require.Equal(t, "", all.Rows[1][0], "missing values render empty")
	require.Equal(t, 2, all.Columns[0].Missing)

	meta := NewTableView(table, 0)
	require.Empty(t, meta.Rows)
	require.Len(t, meta.Columns, 5)
}
