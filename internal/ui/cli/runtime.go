package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	coreapp "laerad/internal/core/app"
	"laerad/internal/core/config"
	"laerad/internal/data/history"
	"laerad/internal/shared/observability"
)

// cliRuntime is the state every subcommand starts from.
type cliRuntime struct {
	cfg     *config.Config
	cfgPath string
	paths   config.ResolvedPaths
	cwd     string
}

func configureLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

// loadRuntime loads the config file and resolves project paths. An explicit
// --config must exist; the implicit ./laerad.toml is optional.
func loadRuntime(opts *rootOptions) (*cliRuntime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("detect working directory: %w", err)
	}

	var (
		cfg     *config.Config
		cfgPath = strings.TrimSpace(opts.configPath)
	)
	if cfgPath != "" {
		cfgPath = config.ResolveRelative(cwd, cfgPath)
		cfg, err = config.Load(cfgPath)
	} else {
		cfgPath = filepath.Join(cwd, config.DefaultFile)
		cfg, err = config.LoadOrDefault(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve project paths: %w", err)
	}
	return &cliRuntime{cfg: cfg, cfgPath: cfgPath, paths: paths, cwd: cwd}, nil
}

func usageError(err error) error {
	return &exitError{code: ExitError, err: err}
}

// newApp builds the app and, when enabled, attaches the history store.
func (rt *cliRuntime) newApp(withHistory bool) (*coreapp.App, error) {
	a, err := coreapp.New(rt.cfg)
	if err != nil {
		return nil, err
	}
	if withHistory || rt.cfg.History.Enabled {
		store, err := history.Open(rt.paths.HistoryPath, rt.cfg.History.BusyTimeout)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.SetHistoryStore(store, rt.paths.ProjectName)
	}
	return a, nil
}

// scanPaths prefers positional arguments over the configured paths.
func (rt *cliRuntime) scanPaths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return rt.cfg.Paths
}

// startTracing installs the OTLP exporter when an endpoint is configured.
// The returned function flushes it.
func (rt *cliRuntime) startTracing(ctx context.Context) func() {
	shutdown, err := observability.SetupTracing(ctx, rt.cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "endpoint", rt.cfg.Observability.OTLPEndpoint, "error", err)
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}
}

// parseSince accepts RFC3339 timestamps and plain dates.
func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (use RFC3339 or YYYY-MM-DD)", value)
}
