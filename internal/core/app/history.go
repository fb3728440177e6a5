package app

import (
	"context"
	"log/slog"

	"laerad/internal/data/history"
)

// RecordSnapshot persists report when a history store is configured and
// returns the snapshot id. Without a store it does nothing.
func (a *App) RecordSnapshot(ctx context.Context, report *Report) (string, error) {
	if a.history == nil || report == nil {
		return "", nil
	}
	snapshot := history.NewSnapshot(a.projectKey, report.Result, len(report.Files), len(report.ParseFailures), report.Duration)
	id, err := a.history.SaveSnapshot(ctx, snapshot)
	if err != nil {
		return "", err
	}
	slog.Debug("saved scan snapshot", "id", id, "project", a.projectKey)
	return id, nil
}
