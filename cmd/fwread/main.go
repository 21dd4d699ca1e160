// Command fwread reads a fixed-width file described by a layout and prints
// the detected column types or the table, optionally loading it into
// PostgreSQL.
//
//	fwread -layout cars.yaml [-detect] [-limit N] [-json] [-load table [-create]] file
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/fixedwidth/internal/logging"
	"github.com/JonMunkholm/fixedwidth/internal/pgload"
	"github.com/JonMunkholm/fixedwidth/internal/service"
)

type options struct {
	layout   string
	detect   bool
	limit    int
	json     bool
	load     string
	create   bool
	logLevel string
	file     string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "fwread:", service.FormatUserError(err))
			fmt.Fprintln(os.Stderr, "fwread:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fwread", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.layout, "layout", "", "YAML or JSON layout file (required)")
	fs.BoolVar(&opts.detect, "detect", false, "print detected column types instead of the table")
	fs.IntVar(&opts.limit, "limit", 20, "rows to print; -1 prints every row")
	fs.BoolVar(&opts.json, "json", false, "print JSON instead of text")
	fs.StringVar(&opts.load, "load", "", "copy the table into this PostgreSQL table (uses DATABASE_URL)")
	fs.BoolVar(&opts.create, "create", false, "create the -load table if it does not exist")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: fwread -layout FILE [flags] DATAFILE")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.layout == "" || fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("a -layout and exactly one data file are required")
	}
	if opts.limit < -1 {
		return opts, fmt.Errorf("-limit must be -1 or more, got %d", opts.limit)
	}
	if opts.create && opts.load == "" {
		return opts, errors.New("-create requires -load")
	}
	opts.file = fs.Arg(0)
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(stderr, opts.logLevel, "text"))

	layoutDoc, err := os.ReadFile(opts.layout)
	if err != nil {
		return fmt.Errorf("read layout: %w", err)
	}
	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	var db pgload.DB
	if opts.load != "" {
		connURL := os.Getenv("DATABASE_URL")
		if connURL == "" {
			return service.ErrNoDatabase
		}
		pool, err := pgload.Connect(ctx, pgload.PoolConfig{URL: connURL, MaxConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()
		db = pool
	}

	svc := service.New(service.Config{MaxConcurrent: 1}, db)
	req := service.Request{Layout: layoutDoc, File: f, FileName: opts.file}

	switch {
	case opts.detect:
		res, err := svc.Detect(ctx, req)
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(stdout, res)
		}
		return printTypes(stdout, res)

	case opts.load != "":
		res, err := svc.Load(ctx, req, pgload.Target{Table: opts.load, Create: opts.create})
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(stdout, res)
		}
		_, err = fmt.Fprintf(stdout, "loaded %d rows into %s (load_id %s)\n", res.Rows, res.Table, res.LoadID)
		return err

	default:
		table, err := svc.Read(ctx, req)
		if err != nil {
			return err
		}
		view := service.NewTableView(table, opts.limit)
		if opts.json {
			return writeJSON(stdout, view)
		}
		return printTable(stdout, view)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTypes(w io.Writer, res *service.DetectResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, name := range res.Fields {
		fmt.Fprintf(tw, "%s\t%s\n", name, res.Types[i])
	}
	return tw.Flush()
}

func printTable(w io.Writer, view service.TableView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := make([]string, len(view.Columns))
	for i, c := range view.Columns {
		header[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range view.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("%s: %d rows, %d columns", view.Name, view.RowCount, len(view.Columns))
	if view.Truncated {
		summary += fmt.Sprintf(", %d shown", len(view.Rows))
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
