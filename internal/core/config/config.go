package config

import "time"

// DefaultFile is the config file looked up when --config is not given.
const DefaultFile = "laerad.toml"

type Config struct {
	Version       int           `toml:"version"`
	ProjectRoot   string        `toml:"project_root"`
	Paths         []string      `toml:"paths"`
	Exclude       Exclude       `toml:"exclude"`
	Ruby          Ruby          `toml:"ruby"`
	Rules         Rules         `toml:"rules"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Review        Review        `toml:"review"`
	Observability Observability `toml:"observability"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Ruby struct {
	Extensions []string `toml:"extensions"`
	Filenames  []string `toml:"filenames"` // Extensionless files to analyze (Rakefile, Gemfile)
}

type Rules struct {
	IgnorePrefix    string   `toml:"ignore_prefix"`
	AnonymousParams []string `toml:"anonymous_params"`
	DynamicMethods  []string `toml:"dynamic_methods"`
	FallbackHook    string   `toml:"fallback_hook"`
	// PropagateCalls counts calls made inside method bodies and blocks
	// against the enclosing scope as well.
	PropagateCalls  bool     `toml:"propagate_calls"`
}

type Scan struct {
	Workers int    `toml:"workers"`
	Mode    string `toml:"mode"`
	Format  string `toml:"format"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	Project     string        `toml:"project"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Review struct {
	RatePerSecond float64 `toml:"rate_per_second"`
	Burst         int     `toml:"burst"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
