package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fixedwidth/internal/service"
)

const (
	carsLayout = "../../internal/layout/testdata/cars.yaml"
	carsFile   = "../../internal/fixed/testdata/fixed_width_cars_test.txt"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Detect(t *testing.T) {
	out, err := runCLI(t, "-layout", carsLayout, "-detect", carsFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, []string{"Year", "SHORT"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"Description", "STRING"}, strings.Fields(lines[3]))
}

func TestRun_TableText(t *testing.T) {
	out, err := runCLI(t, "-layout", carsLayout, "-limit", "2", carsFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "Year (SHORT)")
	require.NotContains(t, lines[0], "Description")
	require.Contains(t, lines[1], "E350")
	require.Equal(t, "cars: 6 rows, 4 columns, 2 shown", lines[3])
}

func TestRun_TableJSON(t *testing.T) {
	out, err := runCLI(t, "-layout", carsLayout, "-limit", "-1", "-json", carsFile)
	require.NoError(t, err)

	var view service.TableView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, "cars", view.Name)
	require.Len(t, view.Rows, 6)
	require.False(t, view.Truncated)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no layout", []string{carsFile}, "-layout"},
		{"no file", []string{"-layout", carsLayout}, "exactly one data file"},
		{"bad limit", []string{"-layout", carsLayout, "-limit", "-5", carsFile}, "-limit"},
		{"create without load", []string{"-layout", carsLayout, "-create", carsFile}, "-create requires -load"},
		{"missing data file", []string{"-layout", carsLayout, "nope.txt"}, "no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRun_LoadWithoutDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := runCLI(t, "-layout", carsLayout, "-load", "cars", carsFile)
	require.ErrorIs(t, err, service.ErrNoDatabase)
}
