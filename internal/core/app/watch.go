package app

import (
	"context"
	"os"
	"time"

	"laerad/internal/core/watcher"
	"laerad/internal/engine/result"
	"laerad/internal/shared/observability"
)

// StartWatcher watches paths and re-analyzes changed Ruby files in batches.
func (a *App) StartWatcher(paths []string) error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	w.SetFilters(a.Config.Ruby.Extensions, a.Config.Ruby.Filenames)
	a.activeWatcher = w
	return w.Watch(paths)
}

// HandleChanges re-analyzes the still existing files of a batch, drops results
// for removed ones and notifies the update handler.
func (a *App) HandleChanges(paths []string) {
	start := time.Now()

	var changed, removed []string
	for _, path := range paths {
		if !a.analyzerRef().IsSupportedPath(path) || a.excludedFile(path) {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			removed = append(removed, path)
			continue
		}
		changed = append(changed, path)
	}

	batch := result.Merge()
	if len(changed) > 0 {
		report, err := a.AnalyzeFiles(context.Background(), changed)
		if err == nil {
			batch = report.Result
		}
	}
	observability.AnalysisDuration.WithLabelValues("watch_batch").Observe(time.Since(start).Seconds())

	a.mu.Lock()
	for _, path := range removed {
		delete(a.results, path)
	}
	total := 0
	for _, res := range a.results {
		total += res.Count()
	}
	handler := a.onUpdate
	a.mu.Unlock()

	if handler != nil {
		handler(Update{Changed: changed, Removed: removed, Batch: batch, Total: total})
	}
}
