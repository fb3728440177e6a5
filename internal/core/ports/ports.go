// Package ports holds the interfaces the app layer drives its adapters
// through.
package ports

import (
	"context"
	"time"

	"laerad/internal/data/history"
	"laerad/internal/engine/result"
)

// FileAnalyzer abstracts the per-file single-use analysis.
type FileAnalyzer interface {
	AnalyzeFile(path string) (*result.Result, error)
	Analyze(path string, content []byte) (*result.Result, error)
	IsSupportedPath(path string) bool
}

// HistoryStore abstracts snapshot persistence for scan history.
type HistoryStore interface {
	SaveSnapshot(ctx context.Context, snapshot history.Snapshot) (string, error)
	LoadSnapshots(ctx context.Context, projectKey string, since time.Time, limit int) ([]history.Snapshot, error)
	LoadSnapshot(ctx context.Context, id string) (history.Snapshot, error)
	Close() error
}
