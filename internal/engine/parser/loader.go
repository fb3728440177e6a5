package parser

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// DefaultExtensions are the file extensions treated as Ruby source when no
// configuration overrides them.
var DefaultExtensions = []string{".rb"}

var (
	rubyOnce sync.Once
	rubyLang *sitter.Language
)

// RubyLanguage returns the process-wide tree-sitter Ruby grammar.
func RubyLanguage() *sitter.Language {
	rubyOnce.Do(func() {
		rubyLang = sitter.NewLanguage(tree_sitter_ruby.Language())
	})
	return rubyLang
}

// GrammarLoader decides which paths are Ruby source and hands out the grammar
// for them.
type GrammarLoader struct {
	language   *sitter.Language
	extensions map[string]bool
	filenames  map[string]bool
}

// NewGrammarLoader builds a loader for the given extensions (".rb") and exact
// base names ("Rakefile"). Extensions without a leading dot get one. An empty
// extension list falls back to DefaultExtensions.
func NewGrammarLoader(extensions, filenames []string) *GrammarLoader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	gl := &GrammarLoader{
		language:   RubyLanguage(),
		extensions: make(map[string]bool, len(extensions)),
		filenames:  make(map[string]bool, len(filenames)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		gl.extensions[ext] = true
	}
	for _, name := range filenames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		gl.filenames[path.Base(name)] = true
	}
	return gl
}

// Language returns the Ruby grammar.
func (gl *GrammarLoader) Language() *sitter.Language { return gl.language }

// IsSupportedPath reports whether filePath should be parsed as Ruby.
func (gl *GrammarLoader) IsSupportedPath(filePath string) bool {
	if gl.filenames[filepath.Base(filePath)] {
		return true
	}
	return gl.extensions[strings.ToLower(filepath.Ext(filePath))]
}

// SupportedExtensions returns the configured extensions, sorted.
func (gl *GrammarLoader) SupportedExtensions() []string {
	out := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
