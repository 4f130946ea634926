package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	flag "github.com/spf13/pflag"

	"github.com/randalmurphal/adfbridge/adf"
)

// Conversion targets.
const (
	targetMarkdown = "md"
	targetADF      = "adf"
)

// File permission constants.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// Sentinel errors for batch operations.
var (
	ErrNoOutputDir   = errors.New("--out is required")
	ErrUnknownTarget = errors.New("--to must be md or adf")
	ErrBatchFailed   = errors.New("some files failed to convert")
)

// batchJob is one file to convert.
type batchJob struct {
	ID         string
	InputPath  string
	OutputPath string
	Target     string
}

// batchResult holds the outcome of one job.
type batchResult struct {
	Job      batchJob
	Err      error
	Duration time.Duration
}

var batchCommand = &command{
	name:    "batch",
	usage:   "batch --out DIR [--to md|adf] FILE...",
	summary: "convert many files in parallel",
	setup: func(fs *flag.FlagSet) func(context.Context, *app, []string) error {
		out := fs.StringP("out", "o", "", "output directory")
		to := fs.String("to", "", "target format: md or adf (default: by input extension)")
		fs.IntP("workers", "w", 0, "parallel workers (0 = GOMAXPROCS)")
		fs.Int("max-depth", adf.DefaultMaxDepth, "nesting depth at which rendering stops")

		return func(ctx context.Context, a *app, args []string) error {
			if len(args) == 0 {
				return usageError("batch needs at least one input file", "batch --out DIR FILE...")
			}
			if *out == "" {
				return usageError(ErrNoOutputDir.Error(), "batch --out DIR FILE...")
			}

			jobs, planErr := planBatch(args, *out, *to)
			if planErr != nil {
				return planErr
			}

			results := runBatch(ctx, a, jobs, resolveWorkers(a.settings.Workers))
			return a.reportBatch(results)
		}
	},
}

// resolveWorkers maps 0 to GOMAXPROCS, which main has aligned with the
// container CPU quota.
func resolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// planBatch assigns each input an id, a target and an output path.
func planBatch(inputs []string, outDir, target string) ([]batchJob, error) {
	switch target {
	case "", targetMarkdown, targetADF:
	default:
		return nil, usageError(fmt.Sprintf("%v, got %q", ErrUnknownTarget, target), "batch --to md|adf")
	}

	jobs := make([]batchJob, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		t := target
		if t == "" {
			t = targetFor(in)
		}
		ext := ".json"
		if t == targetMarkdown {
			ext = ".md"
		}

		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		outPath := filepath.Join(outDir, base+ext)
		if prev, dup := seen[outPath]; dup {
			return nil, usageError(fmt.Sprintf("%s and %s both write %s", prev, in, outPath), "batch --out DIR FILE...")
		}
		seen[outPath] = in

		jobs = append(jobs, batchJob{
			ID:         nanoid.Must(),
			InputPath:  in,
			OutputPath: outPath,
			Target:     t,
		})
	}
	return jobs, nil
}

// targetFor picks Markdown for JSON inputs and ADF for everything else.
func targetFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return targetMarkdown
	}
	return targetADF
}

// runBatch converts jobs on a fixed pool of workers. Results keep the
// order of jobs.
func runBatch(ctx context.Context, a *app, jobs []batchJob, workers int) []batchResult {
	if len(jobs) == 0 {
		return nil
	}
	workers = min(workers, len(jobs))

	renderer := a.renderer()
	results := make([]batchResult, len(jobs))
	queue := make(chan int, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				job := jobs[idx]
				if ctx.Err() != nil {
					results[idx] = batchResult{Job: job, Err: ctx.Err()}
					continue
				}
				start := time.Now()
				err := convertFile(renderer, job)
				results[idx] = batchResult{Job: job, Err: err, Duration: time.Since(start)}
				a.logger.Debug("converted", "job", job.ID, "input", job.InputPath,
					"to", job.Target, "duration", results[idx].Duration, "error", err)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

func convertFile(renderer *adf.Renderer, job batchJob) error {
	data, readErr := os.ReadFile(job.InputPath)
	if readErr != nil {
		return readErr
	}

	var out []byte
	switch job.Target {
	case targetMarkdown:
		doc, decodeErr := adf.DecodeBytes(data)
		if decodeErr != nil {
			return decodeErr
		}
		if validateErr := adf.Validate(doc); validateErr != nil {
			return validateErr
		}
		out = []byte(renderer.Render(doc) + "\n")
	default:
		var buf strings.Builder
		if writeErr := writeDocument(&buf, adf.Build(string(data)).Value(), formatJSON, false); writeErr != nil {
			return writeErr
		}
		out = []byte(buf.String())
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(job.OutputPath), dirPermissions); mkdirErr != nil {
		return fmt.Errorf("creating output directory: %w", mkdirErr)
	}
	return os.WriteFile(job.OutputPath, out, filePermissions)
}

func (a *app) reportBatch(results []batchResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(a.env.Stderr, "%s %s: %v\n", a.errOut.fail.Sprint("FAIL"), r.Job.InputPath, r.Err)
			a.logger.Error("conversion failed", "job", r.Job.ID, "input", r.Job.InputPath, "error", r.Err)
			continue
		}
		a.infof("%s %s -> %s", a.errOut.ok.Sprint("ok"), r.Job.InputPath, r.Job.OutputPath)
	}

	a.infof("converted %d of %d file(s)", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(results))
	}
	return nil
}
