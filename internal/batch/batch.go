// Package batch converts many log files concurrently.
//
// Inputs are expanded from glob patterns, parsed with one shared core.Parser
// and written to an output directory as <stem>.<ext>. Each file's outcome is
// reported separately; a bad file never stops the others unless FailFast is
// set.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/licor/internal/core"
	"github.com/JonMunkholm/licor/internal/export"
	"github.com/JonMunkholm/licor/internal/logging"
	"github.com/JonMunkholm/licor/internal/metrics"
)

// DefaultWorkers is used when Job.Workers is not positive.
const DefaultWorkers = 4

// ErrNoInputs is returned by Expand when no pattern matches a file.
var ErrNoInputs = errors.New("no input files matched")

// ErrSkipped marks files that were not attempted because the run was
// cancelled or an earlier file failed in fail-fast mode.
var ErrSkipped = errors.New("skipped")

// Expand resolves glob patterns to a sorted, de-duplicated list of regular
// files. Patterns without glob characters name files directly.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			clean := filepath.Clean(m)
			if !seen[clean] {
				seen[clean] = true
				files = append(files, clean)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoInputs, patterns)
	}
	sort.Strings(files)
	return files, nil
}

// Job describes one batch run.
type Job struct {
	Inputs    []string
	OutputDir string
	Format    export.Format
	Export    export.Options
	Parser    *core.Parser
	Workers   int
	FailFast  bool

	// Metrics may be nil.
	Metrics *metrics.Recorder
}

// Result is the outcome of one input file.
type Result struct {
	Input    string
	Output   string
	Rows     int
	Columns  int
	Fallback []string // identifiers of columns that fell back to text
	Duration time.Duration
	Err      error
	Code     string // user error code from core.MapError, empty on success
}

// OK reports whether the file converted.
func (r Result) OK() bool {
	return r.Err == nil
}

// Skipped reports whether the file was never attempted.
func (r Result) Skipped() bool {
	return errors.Is(r.Err, ErrSkipped)
}

// Summary is the outcome of a batch run. Results are in input order.
type Summary struct {
	RunID     string
	Results   []Result
	Converted int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Err joins every failure, or returns nil when all files converted.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil && !r.Skipped() {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Run converts every input of job. It returns after all started files have
// finished, even when ctx is cancelled.
func Run(ctx context.Context, job Job) *Summary {
	start := time.Now()
	summary := &Summary{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(job.Inputs)),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.FromContext(ctx)

	workers := job.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger.Info("batch started",
		"files", len(job.Inputs),
		"workers", workers,
		"format", job.Format.String(),
		"output_dir", job.OutputDir,
	)

	outputs := assignOutputs(job)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range job.Inputs {
		summary.Results[i] = Result{Input: input, Output: outputs[i]}

		if gctx.Err() != nil {
			summary.Results[i].Err = ErrSkipped
			continue
		}

		g.Go(func() error {
			res := &summary.Results[i]
			if gctx.Err() != nil {
				res.Err = ErrSkipped
				return nil
			}
			convertOne(gctx, job, res)
			if res.Err != nil && job.FailFast {
				return res.Err
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range summary.Results {
		switch {
		case r.OK():
			summary.Converted++
		case r.Skipped():
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	summary.Duration = time.Since(start)

	logger.Info("batch finished",
		"converted", summary.Converted,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary
}

// assignOutputs maps inputs to output paths. A later input whose stem
// collides with an earlier one gets an empty output and fails.
func assignOutputs(job Job) []string {
	taken := make(map[string]bool, len(job.Inputs))
	out := make([]string, len(job.Inputs))
	for i, input := range job.Inputs {
		path := export.OutputPath(job.OutputDir, input, job.Format)
		if taken[path] {
			continue
		}
		taken[path] = true
		out[i] = path
	}
	return out
}

func convertOne(ctx context.Context, job Job, res *Result) {
	logger := logging.WithFields(ctx, "file", res.Input)
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		if res.Skipped() {
			logger.Debug("conversion abandoned", "error", res.Err)
			return
		}
		if res.Err != nil {
			res.Code = core.MapError(res.Err).Code
			job.Metrics.FileFailed(res.Duration)
			logger.Warn("conversion failed", "code", res.Code, "error", res.Err)
			return
		}
		job.Metrics.FileConverted(res.Rows, len(res.Fallback), res.Duration)
		logger.Info("converted",
			"output", res.Output,
			"rows", res.Rows,
			"columns", res.Columns,
			"fallback_columns", len(res.Fallback),
			"duration", res.Duration,
		)
	}()

	if res.Output == "" {
		res.Err = fmt.Errorf("output name collides with an earlier input in %s", job.OutputDir)
		return
	}

	ds, err := job.Parser.ParseFile(res.Input)
	if err != nil {
		res.Err = err
		return
	}
	res.Rows = ds.Rows
	res.Columns = len(ds.Columns)
	for _, c := range ds.Columns {
		if c.FellBack() {
			res.Fallback = append(res.Fallback, c.Identifier)
		}
	}

	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrSkipped, err)
		return
	}
	if err := export.WriteFile(res.Output, ds, job.Format, job.Export); err != nil {
		res.Err = err
	}
}
