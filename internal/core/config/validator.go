package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"
)

// Formats lists the report formats accepted by scan.format.
var Formats = []string{"table", "short", "json", "yaml", "sarif"}

var modes = []string{"all", "variables", "methods"}

func validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validatePaths,
		validateExclude,
		validateRuby,
		validateRules,
		validateScan,
		validateWatch,
		validateHistory,
		validateReview,
		validateObservability,
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validatePaths(cfg *Config) error {
	for i, p := range cfg.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("paths[%d] must not be empty", i)
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, group := range []struct {
		name     string
		patterns []string
	}{
		{"exclude.dirs", cfg.Exclude.Dirs},
		{"exclude.files", cfg.Exclude.Files},
	} {
		for i, pattern := range group.patterns {
			if strings.TrimSpace(pattern) == "" {
				return fmt.Errorf("%s[%d] must not be empty", group.name, i)
			}
			if _, err := glob.Compile(pattern); err != nil {
				return fmt.Errorf("%s[%d]: invalid glob %q: %w", group.name, i, pattern, err)
			}
		}
	}
	return nil
}

func validateRuby(cfg *Config) error {
	for _, ext := range cfg.Ruby.Extensions {
		if ext == "" || ext == "." {
			return fmt.Errorf("ruby.extensions must not include empty values")
		}
	}
	for _, name := range cfg.Ruby.Filenames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("ruby.filenames must not include empty values")
		}
	}
	return nil
}

func validateRules(cfg *Config) error {
	for i, name := range cfg.Rules.AnonymousParams {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("rules.anonymous_params[%d] must not be empty", i)
		}
	}
	for i, name := range cfg.Rules.DynamicMethods {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("rules.dynamic_methods[%d] must not be empty", i)
		}
	}
	return nil
}

func validateScan(cfg *Config) error {
	if !contains(modes, cfg.Scan.Mode) {
		return fmt.Errorf("scan.mode must be one of: %s", strings.Join(modes, ", "))
	}
	if !contains(Formats, cfg.Scan.Format) {
		return fmt.Errorf("scan.format must be one of: %s", strings.Join(Formats, ", "))
	}
	if cfg.Scan.Workers > 1024 {
		return fmt.Errorf("scan.workers must be <= 1024, got %d", cfg.Scan.Workers)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty")
	}
	return nil
}

func validateReview(cfg *Config) error {
	if cfg.Review.Burst < 1 {
		return fmt.Errorf("review.burst must be >= 1, got %d", cfg.Review.Burst)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	addr := cfg.Observability.MetricsAddr
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("observability.metrics_addr %q: %w", addr, err)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
