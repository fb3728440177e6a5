package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: LAERAD_[SECTION]_[KEY] (e.g., LAERAD_SCAN_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Scan
	setEnvBool(&cfg.Rules.PropagateCalls, "LAERAD_RULES_PROPAGATE_CALLS")
	setEnvInt(&cfg.Scan.Workers, "LAERAD_SCAN_WORKERS")
	setEnvString(&cfg.Scan.Mode, "LAERAD_SCAN_MODE")
	setEnvString(&cfg.Scan.Format, "LAERAD_SCAN_FORMAT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "LAERAD_WATCH_DEBOUNCE")

	// History
	setEnvBool(&cfg.History.Enabled, "LAERAD_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "LAERAD_HISTORY_PATH")
	setEnvString(&cfg.History.Project, "LAERAD_HISTORY_PROJECT")

	// Review
	setEnvFloat64(&cfg.Review.RatePerSecond, "LAERAD_REVIEW_RATE_PER_SECOND")
	setEnvInt(&cfg.Review.Burst, "LAERAD_REVIEW_BURST")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "LAERAD_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "LAERAD_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
