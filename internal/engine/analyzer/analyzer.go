// Package analyzer finds single-use local variables and methods in Ruby
// source. Each file is walked once with a stack of lexical scopes; identifiers
// touched at most twice (definition included) are reported when their scope
// closes.
package analyzer

import (
	"log/slog"
	"time"

	"laerad/internal/core/errors"
	"laerad/internal/engine/ast"
	"laerad/internal/engine/parser"
	"laerad/internal/engine/result"
	"laerad/internal/shared/observability"
)

// FileAnalyzer runs the scope analysis over Ruby files. It is safe for
// concurrent use; every call gets its own scope stack.
type FileAnalyzer struct {
	parser *parser.Parser
	rules  *ruleSet
}

// New returns an analyzer. A nil parser gets a default Ruby parser.
func New(p *parser.Parser, rules Rules) *FileAnalyzer {
	if p == nil {
		p = parser.NewParser(nil)
	}
	return &FileAnalyzer{parser: p, rules: rules.compile()}
}

// Parser returns the front end used for source files.
func (a *FileAnalyzer) Parser() *parser.Parser { return a.parser }

// IsSupportedPath reports whether path would be analyzed as Ruby.
func (a *FileAnalyzer) IsSupportedPath(path string) bool { return a.parser.IsSupportedPath(path) }

// AnalyzeProgram runs the visitor over an already parsed tree.
func (a *FileAnalyzer) AnalyzeProgram(path string, prog *ast.Program) *result.Result {
	res := result.New(path)
	if prog == nil {
		return res
	}
	newVisitor(a.rules, res).run(prog)
	return res
}

// Analyze parses and analyzes content. When the source cannot be parsed the
// returned Result is empty and err carries the CodeParse failure; callers that
// only want violations can ignore it.
func (a *FileAnalyzer) Analyze(path string, content []byte) (*result.Result, error) {
	return a.analyze(path, func() (*ast.Program, error) {
		return a.parser.Parse(path, content)
	})
}

// AnalyzeSource is Analyze without the error: a malformed file simply has no
// violations.
func (a *FileAnalyzer) AnalyzeSource(path string, content []byte) *result.Result {
	res, _ := a.Analyze(path, content)
	return res
}

// AnalyzeFile reads and analyzes path. Read failures are reported like parse
// failures: an empty Result plus the error.
func (a *FileAnalyzer) AnalyzeFile(path string) (*result.Result, error) {
	return a.analyze(path, func() (*ast.Program, error) {
		return a.parser.ParseFile(path)
	})
}

func (a *FileAnalyzer) analyze(path string, parse func() (*ast.Program, error)) (*result.Result, error) {
	observability.FilesAnalyzedTotal.Inc()

	start := time.Now()
	prog, err := parse()
	observability.ParsingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ParseFailuresTotal.Inc()
		slog.Debug("skipping unparsable file", "path", path, "error", err)
		return result.New(path), err
	}

	res := a.AnalyzeProgram(path, prog)
	observability.ViolationsTotal.WithLabelValues(observability.KindVariable).Add(float64(len(res.Variables)))
	observability.ViolationsTotal.WithLabelValues(observability.KindMethod).Add(float64(len(res.Methods)))
	return res, nil
}

// IsParseFailure reports whether err came from a file that could not be
// parsed or read, as opposed to an internal failure.
func IsParseFailure(err error) bool {
	return errors.IsCode(err, errors.CodeParse) || errors.IsCode(err, errors.CodeNotFound)
}
