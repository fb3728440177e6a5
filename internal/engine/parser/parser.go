// Package parser is the Ruby front end: it parses source with tree-sitter and
// converts the concrete syntax tree into the ast node model.
package parser

import (
	"fmt"
	"os"

	"laerad/internal/core/errors"
	"laerad/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser turns Ruby source into the ast node model.
type Parser struct {
	loader *GrammarLoader
	pool   *ParserPool
}

// NewParser returns a parser for loader's grammar. A nil loader uses the
// default Ruby extensions.
func NewParser(loader *GrammarLoader) *Parser {
	if loader == nil {
		loader = NewGrammarLoader(nil, nil)
	}
	return &Parser{
		loader: loader,
		pool:   NewParserPool(loader.Language()),
	}
}

// Loader returns the grammar loader the parser was built with.
func (p *Parser) Loader() *GrammarLoader { return p.loader }

// Pool exposes the parser pool for health reporting.
func (p *Parser) Pool() *ParserPool { return p.pool }

// IsSupportedPath reports whether path is Ruby source.
func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.IsSupportedPath(path)
}

// ParseFile reads and parses path. A missing file is a CodeNotFound error.
func (p *Parser) ParseFile(path string) (*ast.Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source"), errors.CtxPath, path)
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read source"), errors.CtxPath, path)
	}
	return p.Parse(path, content)
}

// Parse converts content into a Program. A tree containing error or missing
// nodes is rejected with a CodeParse error carrying the first bad line.
func (p *Parser) Parse(path string, content []byte) (*ast.Program, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeParse, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		err := errors.New(errors.CodeParse, fmt.Sprintf("syntax error near line %d", firstErrorLine(root)))
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	c := &converter{src: content}
	return &ast.Program{Pos: ast.Pos{Ln: 1}, Body: c.statements(root)}, nil
}

func firstErrorLine(node *sitter.Node) int {
	if node.IsError() || node.IsMissing() {
		return line(node)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		return firstErrorLine(child)
	}
	return line(node)
}
