package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func contains(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, changed <-chan []string, target string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changed:
			if contains(paths, target) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for change on %s", target)
		}
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadGlob(t *testing.T) {
	if _, err := NewWatcher(time.Millisecond, []string{"[a-"}, nil, func([]string) {}); err == nil {
		t.Fatal("expected error for invalid dir glob")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, []string{"exclude_dir"}, []string{"*_spec.rb"}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "model.rb")
	if err := os.WriteFile(testFile, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile)

	// Excluded and non-Ruby files never show up.
	for _, name := range []string{"model_spec.rb", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("ignored"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if base := filepath.Base(p); base == "model_spec.rb" || base == "notes.txt" {
				t.Errorf("excluded file %s triggered event", base)
			}
		}
	case <-time.After(500 * time.Millisecond):
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "newdir")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "nested.rb")
	if err := os.WriteFile(subFile, []byte("y = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, subFile)
}

func TestWatcher_ContentHashing(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, nil, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "hash_target.rb")
	content := []byte("def run\nend\n")
	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile)

	// Same bytes again: no event.
	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		t.Errorf("received unexpected event for identical content: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(testFile, []byte("def run\n  1\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile)
}

func TestWatcher_RenameTriggersChange(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, nil, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	oldPath := filepath.Join(tmpDir, "old.rb")
	newPath := filepath.Join(tmpDir, "new.rb")
	if err := os.WriteFile(oldPath, []byte("a = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changedFiles:
			if contains(paths, oldPath) || contains(paths, newPath) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for rename event, old=%s new=%s", oldPath, newPath)
		}
	}
}

func TestWatcher_Filters(t *testing.T) {
	w, err := NewWatcher(10*time.Millisecond, nil, []string{"*_spec.rb"}, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if w.shouldExcludeFile("lib/app.rb") {
		t.Fatal("expected .rb to be watched by default")
	}
	if !w.shouldExcludeFile("lib/app_spec.rb") {
		t.Fatal("expected exclude glob to apply")
	}

	w.SetFilters([]string{".rake", " "}, []string{"Rakefile"})

	if !w.shouldExcludeFile("app.rb") {
		t.Fatal("expected .rb to be excluded once filters are replaced")
	}
	if w.shouldExcludeFile("tasks/db.RAKE") {
		t.Fatal("expected extension match to be case-insensitive")
	}
	if w.shouldExcludeFile("Rakefile") {
		t.Fatal("expected Rakefile to be included via filename filter")
	}
}
