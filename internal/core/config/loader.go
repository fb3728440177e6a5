package config

import (
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	defaultExtensions      = []string{".rb"}
	defaultAnonymousParams = []string{"_1", "_2", "_3", "_4", "_5", "_6", "_7", "_8", "_9", "it"}
	defaultDynamicMethods  = []string{"send", "public_send", "define_method", "class_eval", "module_eval", "instance_eval"}
	defaultExcludeDirs     = []string{".git", "vendor", "node_modules", "tmp", "log"}
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("unknown config key", "path", path, "key", key.String())
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file does
// not exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	slog.Debug("config file not found, using defaults", "path", path)

	cfg = &Config{}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = append([]string(nil), defaultExcludeDirs...)
	}

	if len(cfg.Ruby.Extensions) == 0 {
		cfg.Ruby.Extensions = append([]string(nil), defaultExtensions...)
	}

	if cfg.Rules.IgnorePrefix == "" {
		cfg.Rules.IgnorePrefix = "_"
	}
	if cfg.Rules.AnonymousParams == nil {
		cfg.Rules.AnonymousParams = append([]string(nil), defaultAnonymousParams...)
	}
	if cfg.Rules.DynamicMethods == nil {
		cfg.Rules.DynamicMethods = append([]string(nil), defaultDynamicMethods...)
	}
	if cfg.Rules.FallbackHook == "" {
		cfg.Rules.FallbackHook = "method_missing"
	}

	if cfg.Scan.Workers <= 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}
	if strings.TrimSpace(cfg.Scan.Mode) == "" {
		cfg.Scan.Mode = "all"
	}
	if strings.TrimSpace(cfg.Scan.Format) == "" {
		cfg.Scan.Format = "table"
	}

	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = ".laerad/history.db"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}

	if cfg.Review.RatePerSecond <= 0 {
		cfg.Review.RatePerSecond = 1
	}
	if cfg.Review.Burst <= 0 {
		cfg.Review.Burst = 5
	}
}

func normalize(cfg *Config) {
	cfg.Scan.Mode = strings.ToLower(strings.TrimSpace(cfg.Scan.Mode))
	cfg.Scan.Format = strings.ToLower(strings.TrimSpace(cfg.Scan.Format))
	cfg.History.Project = strings.TrimSpace(cfg.History.Project)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)

	exts := make([]string, 0, len(cfg.Ruby.Extensions))
	for _, ext := range cfg.Ruby.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	cfg.Ruby.Extensions = exts
}
