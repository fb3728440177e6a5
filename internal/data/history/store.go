// Package history persists scan snapshots in a local sqlite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"laerad/internal/engine/result"
	"laerad/internal/shared/observability"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5

	kindVariable = "variable"
	kindMethod   = "method"
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	if busyTimeout <= 0 {
		busyTimeout = 2 * time.Second
	}

	// busy_timeout + WAL reduce lock conflicts while watch mode and a scan
	// write concurrently.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func normalizeProject(projectKey string) string {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return "default"
	}
	return projectKey
}

// SaveSnapshot stores snapshot with its violations and returns the assigned
// id.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.ProjectKey = normalizeProject(snapshot.ProjectKey)
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return "", fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	err := s.withRetry("save snapshot", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `
INSERT INTO snapshots (
  id, project_key, schema_version, ts_utc, file_count, parse_failure_count,
  variable_count, method_count, duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			snapshot.ID,
			snapshot.ProjectKey,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.FileCount,
			snapshot.ParseFailureCount,
			snapshot.VariableCount,
			snapshot.MethodCount,
			snapshot.Duration.Milliseconds(),
		); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO snapshot_violations (snapshot_id, seq, kind, file, name, line, use_count)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		seq := 0
		for _, group := range []struct {
			kind string
			list []result.Violation
		}{
			{kindVariable, snapshot.Variables},
			{kindMethod, snapshot.Methods},
		} {
			for _, v := range group.list {
				if _, err := stmt.ExecContext(ctx, snapshot.ID, seq, group.kind, v.File, v.Name, v.Line, v.Count); err != nil {
					return err
				}
				seq++
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return snapshot.ID, nil
}

// LoadSnapshots returns the project's snapshots taken at or after since,
// newest first. A limit of zero or less returns all of them. Violations are
// not loaded.
func (s *Store) LoadSnapshots(ctx context.Context, projectKey string, since time.Time, limit int) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, project_key, schema_version, ts_utc, file_count, parse_failure_count,
  variable_count, method_count, duration_ms
FROM snapshots
WHERE project_key = ?`
	args := []any{normalizeProject(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc DESC, id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snapshots, nil
}

// LoadSnapshot returns one snapshot with its violations.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
SELECT id, project_key, schema_version, ts_utc, file_count, parse_failure_count,
  variable_count, method_count, duration_ms
FROM snapshots WHERE id = ?`, id)
	snapshot, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT kind, file, name, line, use_count
FROM snapshot_violations WHERE snapshot_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load violations for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind string
			v    result.Violation
		)
		if err := rows.Scan(&kind, &v.File, &v.Name, &v.Line, &v.Count); err != nil {
			return Snapshot{}, fmt.Errorf("scan violation row: %w", err)
		}
		if kind == kindMethod {
			snapshot.Methods = append(snapshot.Methods, v)
		} else {
			snapshot.Variables = append(snapshot.Variables, v)
		}
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate violation rows: %w", err)
	}
	return snapshot, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		tsRaw      string
		durationMS int64
		snapshot   Snapshot
	)
	if err := row.Scan(
		&snapshot.ID,
		&snapshot.ProjectKey,
		&snapshot.SchemaVersion,
		&tsRaw,
		&snapshot.FileCount,
		&snapshot.ParseFailureCount,
		&snapshot.VariableCount,
		&snapshot.MethodCount,
		&durationMS,
	); err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot row: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
	}
	snapshot.Timestamp = ts.UTC()
	snapshot.Duration = time.Duration(durationMS) * time.Millisecond
	return snapshot, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		observability.HistoryWriteRetriesTotal.Inc()
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}

func sortByTime(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.Before(snapshots[j].Timestamp)
	})
}
