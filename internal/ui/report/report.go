// Package report renders scan results for the terminal and for tools.
package report

import (
	"fmt"
	"io"
	"strings"

	"laerad/internal/core/errors"
	"laerad/internal/engine/result"
	"laerad/internal/ui/report/formats"
)

const (
	FormatTable = "table"
	FormatShort = "short"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatSARIF = "sarif"
)

// CleanMessage is printed by the human formats when nothing was found.
const CleanMessage = "No violations found."

// Options controls a Render call.
type Options struct {
	Format string
	Mode   result.Mode
	// ProjectRoot makes file paths relative in the output. Empty keeps them
	// as analyzed.
	ProjectRoot string
	// Version is stamped into SARIF output.
	Version string
}

// Render writes res to w. Mode filtering happens first; the table and short
// formats print CleanMessage for an empty result, the data formats still emit
// a document.
func Render(w io.Writer, res *result.Result, opts Options) error {
	if res == nil {
		res = result.Merge()
	}
	mode := opts.Mode
	if mode == "" {
		mode = result.ModeAll
	}
	filtered := res.Filter(mode)

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "", FormatTable, FormatShort:
		if !filtered.HasViolations() {
			_, err := fmt.Fprintln(w, CleanMessage)
			return err
		}
		out := Short(filtered)
		if format != FormatShort {
			out = Table(opts.ProjectRoot, filtered)
		}
		_, err := fmt.Fprintln(w, out)
		return err
	case FormatJSON, FormatYAML, FormatSARIF:
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = formats.JSON(opts.ProjectRoot, filtered)
		case FormatYAML:
			data, err = formats.YAML(opts.ProjectRoot, filtered)
		default:
			data, err = formats.GenerateSARIF(opts.ProjectRoot, opts.Version, filtered)
		}
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "render "+format)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}
	return errors.New(errors.CodeValidationError, fmt.Sprintf("unknown format %q", opts.Format))
}

// Short lists one file:line per violation, variables first. There is no
// trailing newline.
func Short(res *result.Result) string {
	lines := make([]string, 0, res.Count())
	for _, v := range res.Variables {
		lines = append(lines, v.Location())
	}
	for _, v := range res.Methods {
		lines = append(lines, v.Location())
	}
	return strings.Join(lines, "\n")
}
