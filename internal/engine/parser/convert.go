package parser

import (
	"strings"

	"laerad/internal/engine/ast"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// converter turns tree-sitter-ruby nodes into ast nodes. Grammar kinds that
// have no dedicated conversion become *ast.Unknown with converted children.
type converter struct {
	src []byte
}

// literalKinds carry no identifier usage.
var literalKinds = map[string]bool{
	"integer": true, "float": true, "complex": true, "rational": true,
	"constant": true, "instance_variable": true, "class_variable": true,
	"global_variable": true, "self": true, "nil": true, "true": true,
	"false": true, "simple_symbol": true, "hash_key_symbol": true,
	"character": true, "string_content": true, "escape_sequence": true,
	"encoding": true, "file": true, "line": true, "forward_argument": true,
	"heredoc_beginning": true, "heredoc_end": true, "uninterpreted": true,
	"operator": true, "setter": true, "hash_splat_nil": true, "undef": true,
	"regex_content": true,
}

// stringKinds may embed #{...} interpolation.
var stringKinds = map[string]bool{
	"string": true, "subshell": true, "regex": true, "delimited_symbol": true,
	"heredoc_body": true, "string_array": true, "symbol_array": true,
	"chained_string": true, "bare_string": true, "bare_symbol": true,
}

// statementListKinds wrap a plain statement list.
var statementListKinds = map[string]bool{
	"then": true, "do": true, "else": true, "ensure": true,
	"block_body": true, "begin_block": true, "end_block": true,
	"interpolation": true,
}

func line(n *sitter.Node) int { return int(n.StartPosition().Row) + 1 }

func pos(n *sitter.Node) ast.Pos {
	if n == nil {
		return ast.Pos{}
	}
	return ast.Pos{Ln: line(n)}
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(c.src[n.StartByte():n.EndByte()])
}

// namedChildren returns the named children of n, comments excluded.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	kids := namedChildren(n)
	if len(kids) == 0 {
		return nil
	}
	return kids[0]
}

func appendNode(list []ast.Node, n ast.Node) []ast.Node {
	if n == nil {
		return list
	}
	return append(list, n)
}

// statements converts every named child of n.
func (c *converter) statements(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for _, child := range namedChildren(n) {
		out = appendNode(out, c.convert(child))
	}
	return out
}

// body converts a statement list that may carry rescue, else and ensure
// clauses. Children whose kind is in skip are ignored.
func (c *converter) body(n *sitter.Node, skip ...string) *ast.Body {
	b := &ast.Body{Pos: pos(n)}
	if n == nil {
		return b
	}
next:
	for _, child := range namedChildren(n) {
		for _, kind := range skip {
			if child.Kind() == kind {
				continue next
			}
		}
		switch child.Kind() {
		case "rescue":
			b.Rescues = append(b.Rescues, c.rescue(child))
		case "else":
			b.Else = append(b.Else, c.statements(child)...)
		case "ensure":
			b.Ensure = append(b.Ensure, c.statements(child)...)
		default:
			b.Statements = appendNode(b.Statements, c.convert(child))
		}
	}
	return b
}

// fieldBody converts the "body" field of n. Endless definitions carry a bare
// expression there instead of a body_statement.
func (c *converter) fieldBody(n *sitter.Node) *ast.Body {
	body := n.ChildByFieldName("body")
	switch {
	case body == nil:
		return &ast.Body{Pos: pos(n)}
	case body.Kind() == "body_statement" || body.Kind() == "block_body":
		return c.body(body)
	default:
		return &ast.Body{Pos: pos(body), Statements: appendNode(nil, c.convert(body))}
	}
}

func (c *converter) convert(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	kind := n.Kind()
	switch {
	case kind == "comment" || kind == "empty_statement":
		return nil
	case literalKinds[kind]:
		return &ast.Literal{Pos: pos(n), Kind: kind, Value: c.text(n)}
	case stringKinds[kind]:
		return &ast.Interpolated{Pos: pos(n), Kind: kind, Parts: c.interpolations(n)}
	case statementListKinds[kind]:
		return &ast.Parens{Pos: pos(n), Body: c.statements(n)}
	}

	switch kind {
	case "identifier":
		name := c.text(n)
		if strings.HasSuffix(name, "?") || strings.HasSuffix(name, "!") {
			return &ast.VCall{Pos: pos(n), Name: name}
		}
		return &ast.VarRef{Pos: pos(n), Name: name}

	case "method", "singleton_method":
		def := &ast.Def{
			Pos:    pos(n),
			Name:   c.text(n.ChildByFieldName("name")),
			Params: c.params(n.ChildByFieldName("parameters")),
			Body:   c.fieldBody(n),
		}
		if obj := n.ChildByFieldName("object"); obj != nil {
			def.Receiver = c.convert(obj)
		}
		return def

	case "class":
		cls := &ast.ClassDecl{Pos: pos(n), Name: c.convert(n.ChildByFieldName("name")), Body: c.fieldBody(n)}
		if sup := n.ChildByFieldName("superclass"); sup != nil {
			cls.Superclass = c.convert(firstNamed(sup))
		}
		return cls
	case "module":
		return &ast.ModuleDecl{Pos: pos(n), Name: c.convert(n.ChildByFieldName("name")), Body: c.fieldBody(n)}
	case "singleton_class":
		return &ast.SingletonClass{Pos: pos(n), Target: c.convert(n.ChildByFieldName("value")), Body: c.fieldBody(n)}

	case "begin", "body_statement":
		return &ast.Begin{Pos: pos(n), Body: c.body(n)}
	case "rescue":
		return c.rescue(n)
	case "rescue_modifier":
		return &ast.Body{
			Pos:        pos(n),
			Statements: appendNode(nil, c.convert(n.ChildByFieldName("body"))),
			Rescues: []*ast.Rescue{{
				Pos:        pos(n),
				Statements: appendNode(nil, c.convert(n.ChildByFieldName("handler"))),
			}},
		}

	case "call":
		return c.call(n)
	case "super":
		return &ast.ZSuper{Pos: pos(n)}
	case "yield", "return", "next", "break":
		return &ast.Jump{Pos: pos(n), Keyword: kind, Args: c.arguments(firstNamed(n))}
	case "redo", "retry":
		return &ast.Jump{Pos: pos(n), Keyword: kind}
	case "block", "do_block":
		return c.block(n)
	case "lambda":
		return c.lambda(n)
	case "alias":
		return &ast.Alias{
			Pos: pos(n),
			New: symbolName(c.text(n.ChildByFieldName("name"))),
			Old: symbolName(c.text(n.ChildByFieldName("alias"))),
		}

	case "assignment":
		return c.assignment(n)
	case "operator_assignment":
		return &ast.OpAssign{
			Pos:      pos(n),
			Target:   c.opTarget(n.ChildByFieldName("left")),
			Operator: c.text(n.ChildByFieldName("operator")),
			Value:    c.convert(n.ChildByFieldName("right")),
		}
	case "right_assignment_list":
		return &ast.ArrayLit{Pos: pos(n), Elements: c.arguments(n)}

	case "binary":
		return &ast.Binary{
			Pos:      pos(n),
			Operator: c.text(n.ChildByFieldName("operator")),
			Left:     c.convert(n.ChildByFieldName("left")),
			Right:    c.convert(n.ChildByFieldName("right")),
		}
	case "unary":
		operand := n.ChildByFieldName("operand")
		if operand == nil {
			operand = firstNamed(n)
		}
		return &ast.Unary{Pos: pos(n), Operator: c.text(n.ChildByFieldName("operator")), Operand: c.convert(operand)}
	case "parenthesized_statements":
		return &ast.Parens{Pos: pos(n), Body: c.statements(n)}

	case "if", "unless", "elsif":
		return &ast.If{
			Pos:     pos(n),
			Negated: kind == "unless",
			Cond:    c.convert(n.ChildByFieldName("condition")),
			Then:    c.statements(n.ChildByFieldName("consequence")),
			Else:    c.convert(n.ChildByFieldName("alternative")),
		}
	case "if_modifier", "unless_modifier":
		return &ast.If{
			Pos:     pos(n),
			Negated: kind == "unless_modifier",
			Cond:    c.convert(n.ChildByFieldName("condition")),
			Then:    appendNode(nil, c.convert(n.ChildByFieldName("body"))),
		}
	case "conditional":
		return &ast.If{
			Pos:  pos(n),
			Cond: c.convert(n.ChildByFieldName("condition")),
			Then: appendNode(nil, c.convert(n.ChildByFieldName("consequence"))),
			Else: c.convert(n.ChildByFieldName("alternative")),
		}
	case "while", "until":
		return &ast.While{
			Pos:     pos(n),
			Negated: kind == "until",
			Cond:    c.convert(n.ChildByFieldName("condition")),
			Body:    c.statements(n.ChildByFieldName("body")),
		}
	case "while_modifier", "until_modifier":
		return &ast.While{
			Pos:     pos(n),
			Negated: kind == "until_modifier",
			Cond:    c.convert(n.ChildByFieldName("condition")),
			Body:    appendNode(nil, c.convert(n.ChildByFieldName("body"))),
		}
	case "for":
		return &ast.For{
			Pos:        pos(n),
			Index:      c.target(n.ChildByFieldName("pattern")),
			Collection: c.convert(firstNamed(n.ChildByFieldName("value"))),
			Body:       c.statements(n.ChildByFieldName("body")),
		}
	case "case":
		return c.caseWhen(n)
	case "case_match":
		return c.caseMatch(n)
	case "match_pattern", "test_pattern":
		return &ast.MatchPattern{
			Pos:     pos(n),
			Value:   c.convert(n.ChildByFieldName("value")),
			Pattern: c.pattern(n.ChildByFieldName("pattern")),
		}
	case "pattern":
		return c.convert(firstNamed(n))

	case "argument_list":
		return &ast.Parens{Pos: pos(n), Body: c.arguments(n)}
	case "pair", "splat_argument", "hash_splat_argument", "block_argument":
		return c.argument(n)
	case "array":
		return &ast.ArrayLit{Pos: pos(n), Elements: c.arguments(n)}
	case "hash":
		return &ast.HashLit{Pos: pos(n), Elements: c.arguments(n)}
	case "range":
		return &ast.Range{
			Pos:   pos(n),
			Left:  c.convert(n.ChildByFieldName("begin")),
			Right: c.convert(n.ChildByFieldName("end")),
		}
	case "element_reference":
		obj := n.ChildByFieldName("object")
		idx := &ast.Index{Pos: pos(n), Collection: c.convert(obj)}
		for i, child := range namedChildren(n) {
			if i == 0 && obj != nil {
				continue
			}
			idx.Args = appendNode(idx.Args, c.argument(child))
		}
		return idx
	case "scope_resolution":
		if scope := n.ChildByFieldName("scope"); scope != nil {
			return &ast.Unknown{Pos: pos(n), Kind: kind, Nodes: appendNode(nil, c.convert(scope))}
		}
		return &ast.Literal{Pos: pos(n), Kind: kind, Value: c.text(n)}
	}

	return &ast.Unknown{Pos: pos(n), Kind: kind, Nodes: c.statements(n)}
}

// interpolations collects the embedded expressions of a string-like node.
func (c *converter) interpolations(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for _, child := range namedChildren(n) {
		switch {
		case child.Kind() == "interpolation":
			out = append(out, c.statements(child)...)
		case stringKinds[child.Kind()]:
			out = append(out, c.interpolations(child)...)
		}
	}
	return out
}

func (c *converter) rescue(n *sitter.Node) *ast.Rescue {
	r := &ast.Rescue{Pos: pos(n)}
	if ex := n.ChildByFieldName("exceptions"); ex != nil {
		r.Exceptions = c.statements(ex)
	}
	if v := n.ChildByFieldName("variable"); v != nil {
		r.Variable = c.target(firstNamed(v))
	}
	r.Statements = c.statements(n.ChildByFieldName("body"))
	return r
}

func (c *converter) caseWhen(n *sitter.Node) ast.Node {
	out := &ast.Case{Pos: pos(n), Subject: c.convert(n.ChildByFieldName("value"))}
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "when":
			w := &ast.When{Pos: pos(child)}
			for _, part := range namedChildren(child) {
				if part.Kind() == "then" {
					w.Body = c.statements(part)
					continue
				}
				w.Conds = appendNode(w.Conds, c.argument(part))
			}
			out.Whens = append(out.Whens, w)
		case "else":
			out.Else = c.statements(child)
		}
	}
	return out
}

func (c *converter) caseMatch(n *sitter.Node) ast.Node {
	out := &ast.CaseMatch{Pos: pos(n), Subject: c.convert(n.ChildByFieldName("value"))}
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "in_clause":
			clause := &ast.InClause{
				Pos:     pos(child),
				Pattern: c.pattern(child.ChildByFieldName("pattern")),
				Body:    c.statements(child.ChildByFieldName("body")),
			}
			if guard := child.ChildByFieldName("guard"); guard != nil {
				cond := guard.ChildByFieldName("condition")
				if cond == nil {
					cond = firstNamed(guard)
				}
				clause.Guard = c.convert(cond)
			}
			out.Clauses = append(out.Clauses, clause)
		case "else":
			out.Else = c.statements(child)
		}
	}
	return out
}

func symbolName(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), ":")
}
