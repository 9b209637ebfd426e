// Package main provides the CLI entrypoint for schemac.
//
// schemac runs the schema compiler core over IR documents:
//   - Loads raw Types from JSON or YAML documents
//   - Validates, normalises and designates them into output modules
//   - Resolves the imports and aliases of every module
//   - Prints a module table or a JSON report
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"schema-compiler/internal/analyze"
	"schema-compiler/internal/config"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/document"
	"schema-compiler/internal/ir"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schemac", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to a YAML config file")
	format := fs.String("format", "table", "output format: table or json")
	dump := fs.Bool("dump", false, "dump the processed types")
	verbose := fs.Bool("v", false, "log pipeline stages")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: schemac [-config file] [-format table|json] [-dump] [-v] document...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	if *format != "table" && *format != "json" {
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return 2
	}

	logger := newLogger(stderr, *verbose)

	cfg := config.DefaultConfig()

	if *configPath != "" {
		var err error

		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			logger.Error("load config", "error", err)
			return 1
		}
	}

	var types []*ir.Type

	for _, path := range fs.Args() {
		loaded, err := document.Load(path)
		if err != nil {
			logger.Error("load document", "error", err)
			return 1
		}

		types = append(types, loaded...)
	}

	result, err := analyze.NewAnalyzer(cfg, logger).Process(context.Background(), types)
	if err != nil {
		logger.Error("compile", "error", err)
	}

	if *dump && !result.Diagnostics.HasErrors() {
		spew.Fdump(stdout, result.Types)
	}

	switch *format {
	case "json":
		err = writeReport(stdout, result)
	default:
		err = writeTable(stdout, result)
	}

	if err != nil {
		logger.Error("write output", "error", err)
		return 1
	}

	if result.Diagnostics.HasErrors() {
		return 1
	}

	return 0
}

// newLogger logs text to a terminal and JSON otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

func writeTable(w io.Writer, result *analyze.Result) error {
	rows := [][]string{{"MODULE", "TYPES", "IMPORTS"}}

	for _, m := range result.Modules {
		var imports []string
		for _, imp := range m.Imports {
			imports = append(imports, imp.Source+"."+imp.Name())
		}

		rows = append(rows, []string{m.Path, strconv.Itoa(len(m.Types)), strings.Join(imports, ", ")})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder

	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}

			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}

		b.WriteString("\n")
	}

	writeDiagnostics(&b, "error", result.Diagnostics.Errors)
	writeDiagnostics(&b, "warning", result.Diagnostics.Warnings)

	_, err := io.WriteString(w, b.String())

	return err
}

func writeDiagnostics(b *strings.Builder, kind string, diags []diagnostic.Diagnostic) {
	if len(diags) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%d %s(s)\n", len(diags), kind)

	for _, d := range diags {
		fmt.Fprintf(b, "  %s\n", d.String())
	}
}

type report struct {
	Modules     []moduleReport          `json:"modules"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics,omitempty"`
}

type moduleReport struct {
	analyze.Module
	TypeNames []string `json:"types"`
}

func writeReport(w io.Writer, result *analyze.Result) error {
	out := report{}

	for _, m := range result.Modules {
		out.Modules = append(out.Modules, moduleReport{Module: m, TypeNames: m.TypeNames()})
	}

	out.Diagnostics = append(out.Diagnostics, result.Diagnostics.Errors...)
	out.Diagnostics = append(out.Diagnostics, result.Diagnostics.Warnings...)
	out.Diagnostics = append(out.Diagnostics, result.Diagnostics.Infos...)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
