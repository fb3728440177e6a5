package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"laerad/internal/engine/analyzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleUseSource = "def lonely\n  1\nend\n\nx = 1\nputs x\n"

func newRunner() *Runner {
	return NewRunner(analyzer.New(nil, analyzer.DefaultRules()))
}

func TestRunner_NoPatches(t *testing.T) {
	messages, err := newRunner().Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRunner_IgnoresNonRubyFiles(t *testing.T) {
	messages, err := newRunner().Run(context.Background(), []Patch{
		{Path: "notes.txt", AddedLines: []int{1}, Content: []byte("x = 1\n")},
	})
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRunner_ReportsViolationsOnAddedLines(t *testing.T) {
	messages, err := newRunner().Run(context.Background(), []Patch{
		{Path: "app/a.rb", AddedLines: []int{1, 5}, Content: []byte(singleUseSource)},
	})
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{Path: "app/a.rb", Line: 5, Level: LevelWarning, Text: "x is a single-use variable"},
		{Path: "app/a.rb", Line: 1, Level: LevelWarning, Text: "lonely is a single-use method"},
	}, messages)
}

func TestRunner_IgnoresViolationsOutsideAddedLines(t *testing.T) {
	messages, err := newRunner().Run(context.Background(), []Patch{
		{Path: "a.rb", AddedLines: []int{999}, Content: []byte(singleUseSource)},
	})
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRunner_CleanFile(t *testing.T) {
	messages, err := newRunner().Run(context.Background(), []Patch{
		{Path: "a.rb", AddedLines: []int{1, 2, 3}, Content: []byte("x = 1\nputs x\nputs x\n")},
	})
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRunner_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single_use_variable.rb")
	require.NoError(t, os.WriteFile(path, []byte("def run\n  x = 1\n  puts x\nend\nrun\nrun\n"), 0o644))

	messages, err := newRunner().Run(context.Background(), []Patch{{Path: path, AddedLines: []int{2}}})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "x is a single-use variable", messages[0].Text)
	assert.Equal(t, 2, messages[0].Line)
}

func TestRunner_SkipsUnparsableAndMissingFiles(t *testing.T) {
	messages, err := newRunner().Run(context.Background(), []Patch{
		{Path: "broken.rb", AddedLines: []int{1}, Content: []byte("def broken(\n")},
		{Path: filepath.Join(t.TempDir(), "missing.rb"), AddedLines: []int{1}},
	})
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRunner().Run(ctx, []Patch{{Path: "a.rb", AddedLines: []int{1}, Content: []byte("x = 1\n")}})
	assert.ErrorIs(t, err, context.Canceled)
}
