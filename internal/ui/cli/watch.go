package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreapp "laerad/internal/core/app"
	"laerad/internal/core/config"
	"laerad/internal/engine/result"
	"laerad/internal/ui/report"

	"github.com/spf13/cobra"
)

type watchOptions struct {
	metricsAddr string
	debounce    time.Duration
}

func newWatchCommand(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Scan, then re-analyze Ruby files as they change",
		Long: `Run an initial scan and keep watching the paths. Changed files are
re-analyzed in debounced batches and their violations printed. Edits to the
config file reload the rules.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (host:port)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 0, "Quiet period before a batch of changes is analyzed")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions, args []string) error {
	rt, err := loadRuntime(root)
	if err != nil {
		return usageError(err)
	}
	if opts.metricsAddr != "" {
		rt.cfg.Observability.MetricsAddr = opts.metricsAddr
	}
	if opts.debounce > 0 {
		rt.cfg.Watch.Debounce = opts.debounce
	}
	mode, err := result.ParseMode(rt.cfg.Scan.Mode)
	if err != nil {
		return usageError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer rt.startTracing(ctx)()

	a, err := rt.newApp(false)
	if err != nil {
		return usageError(err)
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	renderOpts := report.Options{
		Format:      rt.cfg.Scan.Format,
		Mode:        mode,
		ProjectRoot: rt.paths.ProjectRoot,
		Version:     versionString,
	}

	paths := rt.scanPaths(args)
	rep, err := a.Run(ctx, paths)
	if err != nil {
		return usageError(err)
	}
	if err := report.Render(out, rep.Result, renderOpts); err != nil {
		return usageError(err)
	}

	if addr := rt.cfg.Observability.MetricsAddr; addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			return usageError(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	if _, err := os.Stat(rt.cfgPath); err == nil {
		cfgWatcher := config.NewWatcher(rt.cfgPath, func(cfg *config.Config) {
			a.SetRules(cfg.Rules)
			slog.Info("rules reloaded", "path", rt.cfgPath)
		})
		if err := cfgWatcher.Start(ctx); err != nil {
			slog.Warn("config reload disabled", "path", rt.cfgPath, "error", err)
		} else {
			defer cfgWatcher.Stop()
		}
	}

	a.SetUpdateHandler(func(u coreapp.Update) {
		slog.Info("files re-analyzed", "changed", len(u.Changed), "removed", len(u.Removed), "total_violations", u.Total)
		batch := u.Batch.Filter(mode)
		if !batch.HasViolations() {
			return
		}
		if err := report.Render(out, batch, renderOpts); err != nil {
			slog.Error("failed to render update", "error", err)
		}
	})
	if err := a.StartWatcher(paths); err != nil {
		return usageError(fmt.Errorf("start watcher: %w", err))
	}
	slog.Info("watching for changes", "paths", paths, "debounce", rt.cfg.Watch.Debounce)

	<-ctx.Done()
	return nil
}
