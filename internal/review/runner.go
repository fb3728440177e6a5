package review

import (
	"context"
	"fmt"
	"log/slog"

	"laerad/internal/core/ports"
	"laerad/internal/engine/result"
)

// LevelWarning is the level of every single-use message.
const LevelWarning = "warning"

// Message is one review comment.
type Message struct {
	Path  string `json:"path"`
	Line  int    `json:"line"`
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Runner analyzes patched files and keeps the violations on added lines.
type Runner struct {
	analyzer ports.FileAnalyzer
}

// NewRunner returns a runner over analyzer.
func NewRunner(analyzer ports.FileAnalyzer) *Runner {
	return &Runner{analyzer: analyzer}
}

// Run returns the messages for every patch in order. Files the analyzer does
// not handle are ignored; files that fail to read or parse yield nothing.
// Only ctx cancellation is an error.
func (r *Runner) Run(ctx context.Context, patches []Patch) ([]Message, error) {
	var messages []Message
	for _, patch := range patches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !r.analyzer.IsSupportedPath(patch.Path) || len(patch.AddedLines) == 0 {
			continue
		}
		messages = append(messages, r.inspect(patch)...)
	}
	return messages, nil
}

func (r *Runner) inspect(patch Patch) []Message {
	var (
		res *result.Result
		err error
	)
	if patch.Content != nil {
		res, err = r.analyzer.Analyze(patch.Path, patch.Content)
	} else {
		res, err = r.analyzer.AnalyzeFile(patch.Path)
	}
	if err != nil {
		slog.Debug("review skipped file", "path", patch.Path, "error", err)
		return nil
	}

	var out []Message
	collect := func(violations []result.Violation, kind string) {
		for _, v := range violations {
			if !patch.Added(v.Line) {
				continue
			}
			out = append(out, Message{
				Path:  patch.Path,
				Line:  v.Line,
				Level: LevelWarning,
				Text:  fmt.Sprintf("%s is a single-use %s", v.Name, kind),
			})
		}
	}
	collect(res.Variables, "variable")
	collect(res.Methods, "method")
	return out
}
