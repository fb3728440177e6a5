package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"laerad/internal/core/config"
	"laerad/internal/engine/result"
	"laerad/internal/shared/util"
	"laerad/internal/ui/report"

	"github.com/spf13/cobra"
)

type scanOptions struct {
	methodsOnly   bool
	variablesOnly bool
	short         bool
	format        string
	workers       int
	history       bool
	output        string
}

func newScanCommand(root *rootOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [PATH...]",
		Short: "Report single-use variables and methods",
		Long: `Analyze Ruby files under the given paths (default: the configured paths, ".")
and report identifiers used at most once.

Exit status is 0 when nothing is found, 1 when violations are reported and 2
on usage or configuration errors.

Examples:
  laerad
  laerad scan app lib -m
  laerad scan -f sarif -o laerad.sarif`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, root, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.methodsOnly, "methods-only", "m", false, "Only report single-use methods")
	flags.BoolVarP(&opts.variablesOnly, "variables-only", "v", false, "Only report single-use variables")
	flags.BoolVarP(&opts.short, "short", "s", false, "Print one file:line per violation")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: "+strings.Join(config.Formats, ", "))
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Files analyzed in parallel (default: config or CPU count)")
	flags.BoolVar(&opts.history, "history", false, "Record a snapshot of this scan in the history database")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("methods-only", "variables-only")
	cmd.MarkFlagsMutuallyExclusive("short", "format")

	return cmd
}

// apply folds the flags into cfg.Scan.
func (o *scanOptions) apply(cfg *config.Config) error {
	switch {
	case o.methodsOnly:
		cfg.Scan.Mode = string(result.ModeMethods)
	case o.variablesOnly:
		cfg.Scan.Mode = string(result.ModeVariables)
	}
	if o.short {
		cfg.Scan.Format = report.FormatShort
	}
	if o.format != "" {
		format := strings.ToLower(strings.TrimSpace(o.format))
		if !slices.Contains(config.Formats, format) {
			return fmt.Errorf("unknown format %q (want one of %s)", o.format, strings.Join(config.Formats, ", "))
		}
		cfg.Scan.Format = format
	}
	if o.workers < 0 {
		return fmt.Errorf("--workers must not be negative")
	}
	if o.workers > 0 {
		cfg.Scan.Workers = o.workers
	}
	return nil
}

func runScan(cmd *cobra.Command, root *rootOptions, opts *scanOptions, args []string) error {
	rt, err := loadRuntime(root)
	if err != nil {
		return usageError(err)
	}
	if err := opts.apply(rt.cfg); err != nil {
		return usageError(err)
	}
	mode, err := result.ParseMode(rt.cfg.Scan.Mode)
	if err != nil {
		return usageError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer rt.startTracing(ctx)()

	a, err := rt.newApp(opts.history)
	if err != nil {
		return usageError(err)
	}
	defer a.Close()

	rep, err := a.Run(ctx, rt.scanPaths(args))
	if err != nil {
		return usageError(err)
	}
	slog.Debug("scan finished",
		"files", len(rep.Files),
		"parse_failures", len(rep.ParseFailures),
		"violations", rep.Result.Count(),
		"duration", rep.Duration,
	)

	if id, err := a.RecordSnapshot(ctx, rep); err != nil {
		slog.Error("failed to record history snapshot", "error", err)
	} else if id != "" {
		slog.Debug("history snapshot recorded", "id", id)
	}

	renderOpts := report.Options{
		Format:      rt.cfg.Scan.Format,
		Mode:        mode,
		ProjectRoot: rt.paths.ProjectRoot,
		Version:     versionString,
	}
	if err := writeReport(cmd.OutOrStdout(), opts.output, rep.Result, renderOpts); err != nil {
		return usageError(err)
	}

	if rep.Result.Filter(mode).HasViolations() {
		return violationsFound()
	}
	return nil
}

// writeReport renders to out, or to path when one is given.
func writeReport(out io.Writer, path string, res *result.Result, opts report.Options) error {
	if path == "" {
		return report.Render(out, res, opts)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, res, opts); err != nil {
		return err
	}
	if err := util.WriteFileWithDirs(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.Info("report written", "path", path, "format", opts.Format)
	return nil
}
