package history

import (
	"time"

	"laerad/internal/engine/result"
)

const SchemaVersion = 2

// Snapshot is one persisted scan.
type Snapshot struct {
	ID                string
	ProjectKey        string
	SchemaVersion     int
	Timestamp         time.Time
	FileCount         int
	ParseFailureCount int
	VariableCount     int
	MethodCount       int
	Duration          time.Duration
	// Variables and Methods are saved with the snapshot but only loaded by
	// LoadSnapshot.
	Variables []result.Violation
	Methods   []result.Violation
}

// NewSnapshot captures a merged scan result.
func NewSnapshot(projectKey string, res *result.Result, files, parseFailures int, took time.Duration) Snapshot {
	s := Snapshot{
		ProjectKey:        projectKey,
		FileCount:         files,
		ParseFailureCount: parseFailures,
		Duration:          took,
	}
	if res != nil {
		s.VariableCount = len(res.Variables)
		s.MethodCount = len(res.Methods)
		s.Variables = append([]result.Violation(nil), res.Variables...)
		s.Methods = append([]result.Violation(nil), res.Methods...)
	}
	return s
}

// Total is the number of violations the scan reported.
func (s Snapshot) Total() int { return s.VariableCount + s.MethodCount }

// TrendPoint is a snapshot with the change since the previous one.
type TrendPoint struct {
	Snapshot
	DeltaVariables int
	DeltaMethods   int
	DeltaFiles     int
}

// BuildTrend orders snapshots oldest first and computes per-scan deltas.
func BuildTrend(snapshots []Snapshot) []TrendPoint {
	ordered := append([]Snapshot(nil), snapshots...)
	sortByTime(ordered)

	points := make([]TrendPoint, 0, len(ordered))
	for i, s := range ordered {
		p := TrendPoint{Snapshot: s}
		if i > 0 {
			prev := ordered[i-1]
			p.DeltaVariables = s.VariableCount - prev.VariableCount
			p.DeltaMethods = s.MethodCount - prev.MethodCount
			p.DeltaFiles = s.FileCount - prev.FileCount
		}
		points = append(points, p)
	}
	return points
}
