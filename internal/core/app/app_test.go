package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"laerad/internal/core/config"
	"laerad/internal/core/errors"
	"laerad/internal/data/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Exclude.Files = []string{"*_spec.rb"}
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	model := writeFile(t, filepath.Join(root, "app", "model.rb"), "x = 1\n")
	helper := writeFile(t, filepath.Join(root, "lib", "helper.rb"), "def h; end\n")
	writeFile(t, filepath.Join(root, "lib", "helper_spec.rb"), "y = 1\n")
	writeFile(t, filepath.Join(root, "vendor", "gem.rb"), "z = 1\n")
	writeFile(t, filepath.Join(root, "README.md"), "# readme\n")
	notes := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), "text\n")

	a := newApp(t, nil)
	files, err := a.ExpandPaths([]string{root, model, notes})
	require.NoError(t, err)
	assert.Equal(t, []string{model, helper}, files, "sorted, excluded dirs and files skipped, duplicates dropped")
}

func TestExpandPaths_ExtraExtensionsAndFilenames(t *testing.T) {
	root := t.TempDir()
	rake := writeFile(t, filepath.Join(root, "tasks", "db.rake"), "a = 1\n")
	rakefile := writeFile(t, filepath.Join(root, "Rakefile"), "b = 1\n")

	a := newApp(t, func(cfg *config.Config) {
		cfg.Ruby.Extensions = []string{".rb", ".rake"}
		cfg.Ruby.Filenames = []string{"Rakefile"}
	})
	files, err := a.ExpandPaths([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{rakefile, rake}, files)
}

func TestExpandPaths_PathPatterns(t *testing.T) {
	root := t.TempDir()
	kept := writeFile(t, filepath.Join(root, "app", "spec.rb"), "a = 1\n")
	writeFile(t, filepath.Join(root, "spec", "models", "user.rb"), "b = 1\n")
	writeFile(t, filepath.Join(root, "db", "schema.rb"), "c = 1\n")

	a := newApp(t, func(cfg *config.Config) {
		cfg.Exclude.Dirs = []string{"**/spec"}
		cfg.Exclude.Files = []string{"**/db/*.rb"}
	})
	files, err := a.ExpandPaths([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{kept}, files)
}

func TestExpandPaths_MissingRoot(t *testing.T) {
	a := newApp(t, nil)
	_, err := a.ExpandPaths([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestNew_InvalidGlob(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = []string{"[a-"}
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude dir pattern")
}

func TestRun_MergesInFileOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rb"), "first = 1\nputs first\n")
	writeFile(t, filepath.Join(root, "b.rb"), "def lonely\nend\n")
	writeFile(t, filepath.Join(root, "c.rb"), "def broken(\n")
	writeFile(t, filepath.Join(root, "d.rb"), "second = 1\n")

	a := newApp(t, func(cfg *config.Config) { cfg.Scan.Workers = 2 })
	report, err := a.Run(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Len(t, report.Files, 4)
	assert.Equal(t, []string{filepath.Join(root, "c.rb")}, report.ParseFailures)

	require.Len(t, report.Result.Variables, 2)
	assert.Equal(t, "first", report.Result.Variables[0].Name)
	assert.Equal(t, filepath.Join(root, "a.rb"), report.Result.Variables[0].File)
	assert.Equal(t, "second", report.Result.Variables[1].Name)
	assert.Equal(t, filepath.Join(root, "d.rb"), report.Result.Variables[1].File)

	require.Len(t, report.Result.Methods, 1)
	assert.Equal(t, "lonely", report.Result.Methods[0].Name)

	assert.Same(t, report, a.LastReport())
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, filepath.Join(root, string(rune('a'+i))+".rb"), "v = 1\nputs v\n")
	}

	serial, err := newApp(t, func(cfg *config.Config) { cfg.Scan.Workers = 1 }).Run(context.Background(), []string{root})
	require.NoError(t, err)
	parallel, err := newApp(t, func(cfg *config.Config) { cfg.Scan.Workers = 8 }).Run(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, serial.Result, parallel.Result)
}

func TestAnalyzeFiles_Cancelled(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, filepath.Join(root, "a.rb"), "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newApp(t, nil).AnalyzeFiles(ctx, []string{file})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordSnapshot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rb"), "x = 1\n")

	a := newApp(t, nil)
	report, err := a.Run(context.Background(), []string{root})
	require.NoError(t, err)

	id, err := a.RecordSnapshot(context.Background(), report)
	require.NoError(t, err)
	assert.Empty(t, id, "no store configured")

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), time.Second)
	require.NoError(t, err)
	a.SetHistoryStore(store, "demo")

	id, err = a.RecordSnapshot(context.Background(), report)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	saved, err := store.LoadSnapshot(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "demo", saved.ProjectKey)
	assert.Equal(t, 1, saved.FileCount)
	assert.Equal(t, 1, saved.VariableCount)
	require.Len(t, saved.Variables, 1)
	assert.Equal(t, "x", saved.Variables[0].Name)
}

func TestHandleChanges(t *testing.T) {
	root := t.TempDir()
	a := newApp(t, nil)

	keep := writeFile(t, filepath.Join(root, "keep.rb"), "k = 1\n")
	gone := writeFile(t, filepath.Join(root, "gone.rb"), "g = 1\n")
	_, err := a.Run(context.Background(), []string{root})
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))
	writeFile(t, keep, "k = 1\nputs k\nputs k\n")

	var got Update
	a.SetUpdateHandler(func(u Update) { got = u })
	a.HandleChanges([]string{keep, gone, filepath.Join(root, "notes.txt")})

	assert.Equal(t, []string{keep}, got.Changed)
	assert.Equal(t, []string{gone}, got.Removed)
	assert.False(t, got.Batch.HasViolations())
	assert.Equal(t, 0, got.Total)
}

func TestSetRules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rb"), "def helper\nend\ndispatch(:helper)\n")

	a := newApp(t, nil)
	report, err := a.Run(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Len(t, report.Result.Methods, 1)

	rules := a.Config.Rules
	rules.DynamicMethods = append(rules.DynamicMethods, "dispatch")
	a.SetRules(rules)

	report, err = a.Run(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Empty(t, report.Result.Methods)
}

func TestRulesFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	rules := RulesFromConfig(cfg.Rules)
	assert.Equal(t, "_", rules.IgnorePrefix)
	assert.Equal(t, "method_missing", rules.FallbackHook)
	assert.Contains(t, rules.DynamicMethods, "instance_eval")
	assert.False(t, rules.PropagateCalls)

	cfg.Rules.PropagateCalls = true
	assert.True(t, RulesFromConfig(cfg.Rules).PropagateCalls)

	rules.DynamicMethods[0] = "changed"
	assert.Equal(t, "send", cfg.Rules.DynamicMethods[0], "rules must not alias config slices")
}

func TestHealthService(t *testing.T) {
	a := newApp(t, nil)
	health := NewHealthService(a)

	status := health.Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "pending", status.Components["last_scan"])
	assert.Contains(t, status.Components["parser"], "ok")
	assert.Contains(t, status.Components["memory"], "MiB heap")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rb"), "x = 1\n")
	_, err := a.Run(context.Background(), []string{root})
	require.NoError(t, err)

	status = health.Check(context.Background())
	assert.Equal(t, "ok (1 files, 1 violations)", status.Components["last_scan"])
}
