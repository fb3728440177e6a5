package app

import (
	"context"
	"fmt"
	"time"

	"laerad/internal/shared/util"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
	// Parsers leased longer than this mark the service degraded.
	stuckAfter time.Duration
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app, stuckAfter: time.Minute}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	fa := s.app.analyzerRef()
	if fa == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else {
		pool := fa.Parser().Pool()
		leased, oldest := pool.Leased(), pool.OldestLease()
		status.Components["parser"] = fmt.Sprintf("ok (%d leased)", leased)
		if leased > 0 && oldest > s.stuckAfter {
			status.Status = "degraded"
			status.Components["parser"] = fmt.Sprintf("parser leased for %s", oldest.Round(time.Second))
		}
	}

	status.Components["memory"] = fmt.Sprintf("%d MiB heap", util.HeapAllocMB())

	if last := s.app.LastReport(); last != nil {
		status.Components["last_scan"] = fmt.Sprintf("ok (%d files, %d violations)", len(last.Files), last.Result.Count())
	} else {
		status.Components["last_scan"] = "pending"
	}

	if store := s.app.HistoryStore(); store != nil {
		if _, err := store.LoadSnapshots(ctx, s.app.projectKey, time.Time{}, 1); err != nil {
			status.Status = "degraded"
			status.Components["history"] = err.Error()
		} else {
			status.Components["history"] = "ok"
		}
	}

	return status
}
