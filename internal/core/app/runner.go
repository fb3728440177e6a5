package app

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"laerad/internal/engine/result"
	"laerad/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Report is the outcome of one scan.
type Report struct {
	Result        *result.Result
	Files         []string
	ParseFailures []string
	Duration      time.Duration
}

// Run expands paths and analyzes every Ruby file found.
func (a *App) Run(ctx context.Context, paths []string) (*Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.StringSlice("paths", paths),
	))
	defer span.End()

	files, err := a.ExpandPaths(paths)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return a.AnalyzeFiles(ctx, files)
}

// AnalyzeFiles analyzes files on a bounded worker pool and merges the results
// in input order. A file that cannot be read or parsed contributes nothing and
// is listed in ParseFailures. Cancelling ctx stops scheduling new files and
// returns the context error.
func (a *App) AnalyzeFiles(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()
	fa := a.analyzerRef()

	results := make([]*result.Result, len(files))
	failed := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := observability.Tracer.Start(gctx, "app.AnalyzeFile", trace.WithAttributes(
				attribute.String("path", path),
			))
			defer span.End()

			res, err := fa.AnalyzeFile(path)
			if err != nil {
				slog.Warn("skipping file", "path", path, "error", err)
				span.RecordError(err)
				failed[i] = true
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Result:   result.Merge(results...),
		Files:    files,
		Duration: time.Since(start),
	}
	for i, bad := range failed {
		if bad {
			report.ParseFailures = append(report.ParseFailures, files[i])
		}
	}
	observability.AnalysisDuration.WithLabelValues("scan").Observe(report.Duration.Seconds())

	a.mu.Lock()
	a.last = report
	for i, path := range files {
		a.results[path] = results[i]
	}
	a.mu.Unlock()

	slog.Debug("scan complete",
		"files", len(files),
		"parse_failures", len(report.ParseFailures),
		"violations", report.Result.Count(),
		"duration", report.Duration,
	)
	return report, nil
}

func (a *App) workers() int {
	if a.Config != nil && a.Config.Scan.Workers > 0 {
		return a.Config.Scan.Workers
	}
	return runtime.NumCPU()
}
