// Package app wires configuration, the analyzer and the adapters into scan,
// watch and history workflows.
package app

import (
	"fmt"
	"path/filepath"
	"sync"

	"laerad/internal/core/config"
	"laerad/internal/core/ports"
	"laerad/internal/core/watcher"
	"laerad/internal/engine/analyzer"
	"laerad/internal/engine/parser"
	"laerad/internal/engine/result"
	"laerad/internal/shared/util"

	"github.com/gobwas/glob"
)

// Update is emitted after watch mode re-analyzes a batch of files.
type Update struct {
	Changed []string
	Removed []string
	// Batch holds the violations of the changed files only.
	Batch *result.Result
	// Total is the violation count across every file seen so far.
	Total int
}

type App struct {
	Config   *config.Config
	Analyzer *analyzer.FileAnalyzer

	excludeDirs  []pathGlob
	excludeFiles []pathGlob

	history    ports.HistoryStore
	projectKey string

	mu       sync.RWMutex
	last     *Report
	results  map[string]*result.Result
	onUpdate func(Update)

	activeWatcher *watcher.Watcher
}

// RulesFromConfig maps the [rules] section onto the analyzer's exemption
// table.
func RulesFromConfig(r config.Rules) analyzer.Rules {
	return analyzer.Rules{
		IgnorePrefix:    r.IgnorePrefix,
		AnonymousParams: append([]string(nil), r.AnonymousParams...),
		DynamicMethods:  append([]string(nil), r.DynamicMethods...),
		FallbackHook:    r.FallbackHook,
		PropagateCalls:  r.PropagateCalls,
	}
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	loader := parser.NewGrammarLoader(cfg.Ruby.Extensions, cfg.Ruby.Filenames)
	return &App{
		Config:       cfg,
		Analyzer:     analyzer.New(parser.NewParser(loader), RulesFromConfig(cfg.Rules)),
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		results:      make(map[string]*result.Result),
	}, nil
}

// pathGlob matches a base name, or the slash-normalized path when the
// pattern itself contains a separator.
type pathGlob struct {
	g        glob.Glob
	fullPath bool
}

func (p pathGlob) match(path string) bool {
	if p.fullPath {
		return p.g.Match(filepath.ToSlash(filepath.Clean(path)))
	}
	return p.g.Match(filepath.Base(path))
}

func compileGlobs(patterns []string, label string) ([]pathGlob, error) {
	out := make([]pathGlob, 0, len(patterns))
	for _, p := range patterns {
		fullPath := util.ContainsPathSeparator(p)
		var (
			g   glob.Glob
			err error
		)
		if fullPath {
			g, err = glob.Compile(util.NormalizePatternPath(p), '/')
		} else {
			g, err = glob.Compile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, pathGlob{g: g, fullPath: fullPath})
	}
	return out, nil
}

// SetHistoryStore enables snapshot persistence under projectKey.
func (a *App) SetHistoryStore(store ports.HistoryStore, projectKey string) {
	a.history = store
	a.projectKey = projectKey
}

func (a *App) HistoryStore() ports.HistoryStore { return a.history }

// SetRules swaps the exemption table, as when the config file is reloaded.
func (a *App) SetRules(r config.Rules) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Config.Rules = r
	a.Analyzer = analyzer.New(a.Analyzer.Parser(), RulesFromConfig(r))
}

func (a *App) analyzerRef() *analyzer.FileAnalyzer {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Analyzer
}

func (a *App) SetUpdateHandler(fn func(Update)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onUpdate = fn
}

// LastReport returns the most recent completed scan, or nil.
func (a *App) LastReport() *Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last
}

func (a *App) Close() error {
	var firstErr error
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			firstErr = err
		}
		a.activeWatcher = nil
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
