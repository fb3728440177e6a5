package parser

import (
	"strings"

	"laerad/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func (c *converter) call(n *sitter.Node) ast.Node {
	method := n.ChildByFieldName("method")
	argsNode := n.ChildByFieldName("arguments")
	block := c.block(n.ChildByFieldName("block"))

	args := c.arguments(argsNode)
	// Heredoc bodies hang off the call that opened them.
	for _, child := range namedChildren(n) {
		if child.Kind() == "heredoc_body" {
			args = appendNode(args, c.convert(child))
		}
	}

	if method != nil && method.Kind() == "super" {
		if argsNode == nil {
			return &ast.ZSuper{Pos: pos(n), Block: block}
		}
		return &ast.Super{Pos: pos(n), Args: args, Block: block}
	}

	name := "call"
	if method != nil {
		name = c.text(method)
	}
	return &ast.Call{
		Pos:      pos(n),
		Receiver: c.convert(n.ChildByFieldName("receiver")),
		Name:     name,
		Args:     args,
		Block:    block,
	}
}

// block converts a brace or do block. It returns nil for nil input.
func (c *converter) block(n *sitter.Node) *ast.Block {
	if n == nil {
		return nil
	}
	if n.Kind() != "block" && n.Kind() != "do_block" {
		return nil
	}
	return &ast.Block{
		Pos:    pos(n),
		Params: c.params(n.ChildByFieldName("parameters")),
		Body:   c.blockBody(n),
	}
}

// blockBody prefers the body field and falls back to the block's own
// children for grammar revisions that inline the statements.
func (c *converter) blockBody(n *sitter.Node) *ast.Body {
	if n.ChildByFieldName("body") != nil {
		return c.fieldBody(n)
	}
	return c.body(n, "block_parameters")
}

func (c *converter) lambda(n *sitter.Node) ast.Node {
	l := &ast.Lambda{Pos: pos(n), Params: c.params(n.ChildByFieldName("parameters"))}
	if body := n.ChildByFieldName("body"); body != nil {
		l.Body = c.blockBody(body)
	} else {
		l.Body = &ast.Body{Pos: pos(n)}
	}
	return l
}

// arguments converts the children of an argument-list-like node.
func (c *converter) arguments(n *sitter.Node) []ast.Node {
	if n == nil {
		return nil
	}
	if n.Kind() != "argument_list" && n.Kind() != "right_assignment_list" &&
		n.Kind() != "array" && n.Kind() != "hash" && n.Kind() != "exceptions" {
		// return/yield with a single bare value
		return appendNode(nil, c.argument(n))
	}
	var out []ast.Node
	for _, child := range namedChildren(n) {
		out = appendNode(out, c.argument(child))
	}
	return out
}

func (c *converter) argument(n *sitter.Node) ast.Node {
	switch n.Kind() {
	case "pair":
		key := n.ChildByFieldName("key")
		value := n.ChildByFieldName("value")
		pair := &ast.Pair{Pos: pos(n), Key: c.convert(key)}
		if value != nil {
			pair.Value = c.convert(value)
		} else if key != nil && key.Kind() == "hash_key_symbol" {
			// `{name:}` shorthand reads name
			pair.Value = &ast.VarRef{Pos: pos(key), Name: c.text(key)}
		}
		return pair
	case "splat_argument":
		return &ast.Splat{Pos: pos(n), Value: c.convert(firstNamed(n))}
	case "hash_splat_argument":
		return &ast.Splat{Pos: pos(n), Double: true, Value: c.convert(firstNamed(n))}
	case "block_argument":
		return &ast.BlockPass{Pos: pos(n), Value: c.convert(firstNamed(n))}
	}
	return c.convert(n)
}

func (c *converter) assignment(n *sitter.Node) ast.Node {
	left := n.ChildByFieldName("left")
	value := c.convert(n.ChildByFieldName("right"))
	if left != nil && left.Kind() == "left_assignment_list" {
		return &ast.MultiAssign{Pos: pos(n), Targets: c.targets(left), Value: value}
	}
	return &ast.Assign{Pos: pos(n), Target: c.target(left), Value: value}
}

func (c *converter) targets(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for _, child := range namedChildren(n) {
		out = appendNode(out, c.target(child))
	}
	return out
}

// target converts a node in definition position.
func (c *converter) target(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "identifier":
		return &ast.VarField{Pos: pos(n), Name: c.text(n)}
	case "left_assignment_list", "destructured_left_assignment":
		return &ast.MultiTarget{Pos: pos(n), Targets: c.targets(n)}
	case "rest_assignment":
		return &ast.Splat{Pos: pos(n), Value: c.target(firstNamed(n))}
	case "call":
		// attribute write: a.b = v calls b=
		method := n.ChildByFieldName("method")
		return &ast.Call{
			Pos:      pos(n),
			Receiver: c.convert(n.ChildByFieldName("receiver")),
			Name:     c.text(method) + "=",
		}
	}
	return c.convert(n)
}

// opTarget converts the left side of a compound assignment. Identifiers stay
// definition targets; the analyzer decides whether they are reads.
func (c *converter) opTarget(n *sitter.Node) ast.Node {
	if n != nil && n.Kind() == "identifier" {
		return &ast.VarField{Pos: pos(n), Name: c.text(n)}
	}
	return c.convert(n)
}

// params converts a method, block or lambda parameter list. Identifiers after
// a `;` in block parameters are block-locals.
func (c *converter) params(n *sitter.Node) *ast.Params {
	if n == nil {
		return nil
	}
	p := &ast.Params{}
	afterRest, inLocals := false, false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if !child.IsNamed() {
			if child.Kind() == ";" {
				inLocals = true
			}
			continue
		}
		if child.Kind() == "comment" {
			continue
		}
		if inLocals {
			p.Locals = append(p.Locals, ast.Param{Kind: ast.ParamRequired, Name: c.text(child), Ln: line(child)})
			continue
		}
		param := c.param(child, afterRest)
		if param.Kind == ast.ParamRest {
			afterRest = true
		}
		p.List = append(p.List, param)
	}
	return p
}

func (c *converter) param(n *sitter.Node, afterRest bool) ast.Param {
	param := ast.Param{Ln: line(n), Name: c.text(n.ChildByFieldName("name"))}
	switch n.Kind() {
	case "identifier":
		param.Name = c.text(n)
		param.Kind = ast.ParamRequired
		if afterRest {
			param.Kind = ast.ParamPost
		}
	case "optional_parameter":
		param.Kind = ast.ParamOptional
		param.Default = c.convert(n.ChildByFieldName("value"))
	case "splat_parameter":
		param.Kind = ast.ParamRest
	case "hash_splat_parameter":
		param.Kind = ast.ParamKeywordRest
	case "hash_splat_nil":
		param.Kind = ast.ParamNoKeywords
	case "block_parameter":
		param.Kind = ast.ParamBlock
	case "keyword_parameter":
		param.Kind = ast.ParamKeyword
		param.Default = c.convert(n.ChildByFieldName("value"))
	case "forward_parameter":
		param.Kind = ast.ParamForward
	case "destructured_parameter":
		param.Kind = ast.ParamDestructured
		param.Name = ""
		if nested := c.params(n); nested != nil {
			param.Nested = nested.List
		}
	default:
		param.Kind = ast.ParamRequired
		param.Name = strings.TrimSpace(c.text(n))
	}
	return param
}

// pattern converts a pattern-matching pattern: bare identifiers bind, `^x`
// reads.
func (c *converter) pattern(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	kind := n.Kind()
	switch kind {
	case "identifier":
		return &ast.VarField{Pos: pos(n), Name: c.text(n)}
	case "variable_reference_pattern":
		name := n.ChildByFieldName("name")
		if name == nil {
			name = firstNamed(n)
		}
		return c.convert(name)
	case "expression_reference_pattern":
		value := n.ChildByFieldName("value")
		if value == nil {
			value = firstNamed(n)
		}
		return c.convert(value)
	case "splat_parameter", "hash_splat_parameter":
		name := n.ChildByFieldName("name")
		if name == nil {
			return nil
		}
		return &ast.VarField{Pos: pos(name), Name: c.text(name)}
	case "as_pattern":
		list := &ast.PatternList{Pos: pos(n), Kind: kind}
		list.Elements = appendNode(list.Elements, c.pattern(n.ChildByFieldName("value")))
		if name := n.ChildByFieldName("name"); name != nil {
			list.Elements = append(list.Elements, &ast.VarField{Pos: pos(name), Name: c.text(name)})
		}
		return list
	case "keyword_pattern":
		key := n.ChildByFieldName("key")
		pair := &ast.Pair{Pos: pos(n), Key: c.convert(key)}
		if value := n.ChildByFieldName("value"); value != nil {
			pair.Value = c.pattern(value)
		} else if key != nil && key.Kind() == "hash_key_symbol" {
			// `in {name:}` binds name
			pair.Value = &ast.VarField{Pos: pos(key), Name: c.text(key)}
		}
		return pair
	case "array_pattern", "find_pattern", "hash_pattern", "alternative_pattern", "parenthesized_pattern":
		list := &ast.PatternList{Pos: pos(n), Kind: kind}
		for _, child := range namedChildren(n) {
			list.Elements = appendNode(list.Elements, c.pattern(child))
		}
		return list
	}
	return c.convert(n)
}
