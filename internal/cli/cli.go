// Package cli implements the licor command line.
//
//	licor convert --device 6800 --config fluorometer --input 'data/*' --output out
//	licor inspect --device 6800 --config standard leaf.txt out/leaf.parquet
//	licor devices
//
// Defaults come from the loaded config.Config; flags override them.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/licor/internal/batch"
	"github.com/JonMunkholm/licor/internal/config"
	"github.com/JonMunkholm/licor/internal/core"
	"github.com/JonMunkholm/licor/internal/export"
	"github.com/JonMunkholm/licor/internal/inspect"
	"github.com/JonMunkholm/licor/internal/logging"
	"github.com/JonMunkholm/licor/internal/metrics"
)

// Exit codes.
const (
	ExitFailure = 1 // runtime failure
	ExitUsage   = 2 // bad arguments or invalid input
	ExitIO      = 3 // file could not be read or written
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ExitCode maps a parse error to the process exit code of its category.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch core.CategoryOf(err) {
	case core.CategoryIO:
		return ExitIO
	case core.CategoryValue:
		return ExitUsage
	default:
		return ExitFailure
	}
}

// App carries the process streams and the loaded configuration.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
}

const usage = `licor - convert LI-COR instrument logs to analysis-ready files.

Usage:
  licor convert [options] [FILE|GLOB ...]
  licor inspect [options] FILE ...
  licor devices

Run 'licor <command> -h' for the options of a command.
`

// Run dispatches args to a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.Stdout, usage)
		return &ExitError{Code: ExitUsage, Message: "no command given"}
	}

	switch args[0] {
	case "convert":
		return a.convert(ctx, args[1:])
	case "inspect":
		return a.inspect(ctx, args[1:])
	case "devices":
		return a.devices()
	case "help", "-h", "--help":
		fmt.Fprint(a.Stdout, usage)
		return nil
	default:
		return &ExitError{Code: ExitUsage, Message: fmt.Sprintf("unknown command %q", args[0])}
	}
}

// common holds the flags shared by convert and inspect.
type common struct {
	device        *string
	config        *string
	sanitizeNames *bool
	strict        *bool
	logLevel      *string
	logFormat     *string
}

func (a *App) newFlagSet(name, args string, c *common) *flag.FlagSet {
	fs := flag.NewFlagSet("licor "+name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "Usage:\n  licor %s [options] %s\n\nOptions:\n", name, args)
		fs.PrintDefaults()
	}

	cfg := a.Config
	c.device = fs.String("device", cfg.Convert.Device, "Device type: "+strings.Join(core.DeviceNames(), ", "))
	c.config = fs.String("config", cfg.Convert.Config, "Measurement configuration: "+strings.Join(core.ConfigurationNames(), ", "))
	c.sanitizeNames = fs.Bool("sanitize-names", !cfg.Convert.PreserveNames, "Rewrite column names as lowercase identifiers.")
	c.strict = fs.Bool("strict", cfg.Convert.Strict, "Fail on a value that does not match its variable's type.")
	c.logLevel = fs.String("log-level", cfg.Logging.Level, "Logging level: debug, info, warn, error.")
	c.logFormat = fs.String("log-format", cfg.Logging.Format, "Log output format: text or json.")
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return false, nil
}

// parser sets up logging and builds the parser for the common flags.
func (a *App) parser(c *common) (*core.Parser, error) {
	level := strings.ToLower(*c.logLevel)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	format := strings.ToLower(*c.logFormat)
	if format != "text" && format != "json" {
		return nil, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logger := logging.Setup(level, format, a.Stderr)

	p, err := core.NewParser(*c.device, *c.config, core.ParseOptions{
		PreserveOriginalNames: !*c.sanitizeNames,
		Strict:                *c.strict,
		Logger:                logger,
		MaxInputBytes:         a.Config.Convert.MaxFileSize,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitCode(err), Message: core.FormatUserError(err)}
	}
	return p, nil
}

func (a *App) convert(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("convert", "[FILE|GLOB ...]", &c)
	input := fs.String("input", "", "Input files (glob pattern). Positional arguments are added to it.")
	output := fs.String("output", a.Config.Batch.OutputDir, "Output directory.")
	formatName := fs.String("format", a.Config.Convert.Format, "Output format: "+strings.Join(export.Formats(), ", "))
	compression := fs.String("compression", a.Config.Convert.Compression, "Parquet compression: none, snappy, gzip, zstd, brotli.")
	workers := fs.Int("workers", a.Config.Batch.Workers, "Number of files converted in parallel.")
	failFast := fs.Bool("fail-fast", a.Config.Batch.FailFast, "Stop after the first failed file.")
	metricsFile := fs.String("metrics-file", a.Config.Metrics.File, "Write Prometheus textfile metrics to this path.")
	verbose := fs.Bool("verbose", false, "Print a line per converted file.")
	fs.BoolVar(verbose, "v", false, "Shorthand for --verbose.")

	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}

	patterns := fs.Args()
	if *input != "" {
		patterns = append([]string{*input}, patterns...)
	}
	if len(patterns) == 0 {
		fs.Usage()
		return &ExitError{Code: ExitUsage, Message: "no input files: use --input or pass files as arguments"}
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: core.FormatUserError(err)}
	}
	if _, err := export.ParseCompression(*compression); err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if *workers <= 0 {
		return &ExitError{Code: ExitUsage, Message: "workers must be positive"}
	}

	p, err := a.parser(&c)
	if err != nil {
		return err
	}

	inputs, err := batch.Expand(patterns)
	if err != nil {
		return &ExitError{Code: ExitIO, Message: err.Error()}
	}

	rec, err := metrics.New()
	if err != nil {
		return err
	}

	if t := a.Config.Batch.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	if *verbose {
		fmt.Fprintf(a.Stdout, "Found %d files to convert\n", len(inputs))
		fmt.Fprintf(a.Stdout, "Device: %s\n", p.Device().Model())
		fmt.Fprintf(a.Stdout, "Config: %s\n", p.Configuration().Name())
		fmt.Fprintf(a.Stdout, "Output directory: %s\n\n", *output)
	}

	summary := batch.Run(ctx, batch.Job{
		Inputs:    inputs,
		OutputDir: *output,
		Format:    format,
		Export:    export.Options{Compression: *compression},
		Parser:    p,
		Workers:   *workers,
		FailFast:  *failFast,
		Metrics:   rec,
	})

	if err := rec.WriteTextfile(*metricsFile); err != nil {
		slog.Warn("metrics not written", "path", *metricsFile, "error", err)
	}

	a.printSummary(summary, *verbose)

	for _, r := range summary.Results {
		if r.Err != nil && !r.Skipped() {
			return &ExitError{
				Code:    ExitCode(r.Err),
				Message: fmt.Sprintf("%d of %d files failed", summary.Failed, len(summary.Results)),
			}
		}
	}
	if summary.Skipped > 0 {
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d files were not converted", summary.Skipped)}
	}
	return nil
}

func (a *App) printSummary(s *batch.Summary, verbose bool) {
	if verbose {
		for _, r := range s.Results {
			if !r.OK() {
				continue
			}
			fmt.Fprintf(a.Stdout, "Converting: %s\n", r.Input)
			fmt.Fprintf(a.Stdout, "  Parsed %d rows, %d columns\n", r.Rows, r.Columns)
			if len(r.Fallback) > 0 {
				fmt.Fprintf(a.Stdout, "  Text fallback: %s\n", strings.Join(r.Fallback, ", "))
			}
			fmt.Fprintf(a.Stdout, "  -> %s\n", r.Output)
		}
	}

	fmt.Fprintln(a.Stdout)
	fmt.Fprintln(a.Stdout, "Conversion complete:")
	fmt.Fprintf(a.Stdout, "  Successfully converted: %d\n", s.Converted)
	fmt.Fprintf(a.Stdout, "  Failed: %d\n", s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(a.Stdout, "  Skipped: %d\n", s.Skipped)
	}
	if verbose {
		fmt.Fprintf(a.Stdout, "  Duration: %s\n", s.Duration.Round(time.Millisecond))
	}

	if s.Failed > 0 {
		fmt.Fprintln(a.Stderr, "\nFailed conversions:")
		for _, r := range s.Results {
			if r.Err != nil && !r.Skipped() {
				fmt.Fprintf(a.Stderr, "  %s: %s\n", r.Input, core.FormatUserError(r.Err))
			}
		}
	}
}

func (a *App) inspect(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("inspect", "FILE ...", &c)
	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return &ExitError{Code: ExitUsage, Message: "no files to inspect"}
	}

	p, err := a.parser(&c)
	if err != nil {
		return err
	}

	reports := make([]*inspect.Report, 0, fs.NArg())
	for _, path := range fs.Args() {
		var ds *core.Dataset
		if strings.EqualFold(filepath.Ext(path), export.FormatParquet.Extension()) {
			ds, err = export.ReadParquetFile(ctx, path)
			if err != nil {
				return &ExitError{Code: ExitIO, Message: fmt.Sprintf("%s: %v", path, err)}
			}
		} else {
			ds, err = p.ParseFile(path)
			if err != nil {
				return &ExitError{Code: ExitCode(err), Message: fmt.Sprintf("%s: %s", path, core.FormatUserError(err))}
			}
		}
		reports = append(reports, inspect.Build(path, ds))
	}

	return inspect.WriteYAML(a.Stdout, reports...)
}

func (a *App) devices() error {
	for _, name := range core.DeviceNames() {
		d, _ := core.LookupDevice(name)
		configs := core.SupportedConfigurations(name)
		if len(configs) == 0 {
			fmt.Fprintf(a.Stdout, "%s\t(no configurations supported)\n", d.Model())
			continue
		}
		fmt.Fprintf(a.Stdout, "%s\t%s\n", d.Model(), strings.Join(configs, ", "))
	}
	fmt.Fprintf(a.Stdout, "\nVariable definitions: %s (%d variables)\n",
		core.DefaultRegistry().Version(), core.DefaultRegistry().Len())
	return nil
}
