// Package result collects the violations emitted while analyzing files.
package result

import (
	"fmt"
	"strings"

	"laerad/internal/core/errors"
)

// Violation is a single-use identifier reported at scope finalization. Line is
// the first definition line; Count the total number of touches.
type Violation struct {
	Name  string `json:"name" yaml:"name"`
	Line  int    `json:"line" yaml:"line"`
	Count int    `json:"count" yaml:"count"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Location returns the violation as "file:line".
func (v Violation) Location() string {
	return fmt.Sprintf("%s:%d", v.File, v.Line)
}

// Mode restricts which collections are reported.
type Mode string

const (
	ModeAll       Mode = "all"
	ModeVariables Mode = "variables"
	ModeMethods   Mode = "methods"
)

// ParseMode validates a mode name. The empty string means ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeVariables:
		return ModeVariables, nil
	case ModeMethods:
		return ModeMethods, nil
	}
	return "", errors.New(errors.CodeValidationError, fmt.Sprintf("unknown mode %q (want all, variables or methods)", s))
}

// Result holds the violations of one file, or of many after Merge. Both
// collections keep insertion order.
type Result struct {
	File      string      `json:"-" yaml:"-"`
	Variables []Violation `json:"variables" yaml:"variables"`
	Methods   []Violation `json:"methods" yaml:"methods"`
}

// New returns an empty result for file.
func New(file string) *Result {
	return &Result{File: file}
}

// AddVariableViolation appends a single-use variable.
func (r *Result) AddVariableViolation(name string, line, count int) {
	r.Variables = append(r.Variables, Violation{Name: name, Line: line, Count: count, File: r.File})
}

// AddMethodViolation appends a single-use method.
func (r *Result) AddMethodViolation(name string, line, count int) {
	r.Methods = append(r.Methods, Violation{Name: name, Line: line, Count: count, File: r.File})
}

// HasViolations reports whether either collection is non-empty.
func (r *Result) HasViolations() bool {
	return r != nil && (len(r.Variables) > 0 || len(r.Methods) > 0)
}

// Count returns the total number of violations.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Variables) + len(r.Methods)
}

// Merge concatenates results in argument order. Every violation is stamped
// with the file of the result it came from unless it already carries one, so
// merging merged results keeps the original files. Nil inputs are skipped.
func Merge(results ...*Result) *Result {
	merged := &Result{}
	for _, r := range results {
		if r == nil {
			continue
		}
		merged.Variables = appendStamped(merged.Variables, r.Variables, r.File)
		merged.Methods = appendStamped(merged.Methods, r.Methods, r.File)
	}
	return merged
}

func appendStamped(dst, src []Violation, file string) []Violation {
	for _, v := range src {
		if v.File == "" {
			v.File = file
		}
		dst = append(dst, v)
	}
	return dst
}

// Filter returns a copy restricted to mode.
func (r *Result) Filter(mode Mode) *Result {
	out := &Result{File: r.File}
	if mode != ModeMethods {
		out.Variables = append([]Violation(nil), r.Variables...)
	}
	if mode != ModeVariables {
		out.Methods = append([]Violation(nil), r.Methods...)
	}
	return out
}
