// Package ast defines the closed node model produced by the Ruby front end and
// consumed by the analyzer.
//
// Every node type implements Node through an unexported marker method, so the
// set of kinds is fixed to this package. Children returns the child positions
// in source order; a consumer that does not care about a kind can always
// recurse through it.
package ast

// Node is a syntax tree node.
type Node interface {
	// Line is the 1-based source line where the node starts.
	Line() int
	// Children returns the child nodes in evaluation order. Nil entries are
	// never returned.
	Children() []Node

	node()
}

// Pos carries the source line of a node.
type Pos struct {
	Ln int
}

func (p Pos) Line() int { return p.Ln }

func (Pos) node() {}

// ---------------------------------------------------------------------------

// Program is the root of a parsed file.
type Program struct {
	Pos
	Body []Node
}

func (n *Program) Children() []Node { return compact(n.Body...) }

// Body is a statement list with optional rescue, else and ensure clauses, as
// found in method bodies, do-blocks and begin/end.
type Body struct {
	Pos
	Statements []Node
	Rescues    []*Rescue
	Else       []Node
	Ensure     []Node
}

func (n *Body) Children() []Node {
	if n == nil {
		return nil
	}
	out := compact(n.Statements...)
	for _, r := range n.Rescues {
		if r != nil {
			out = append(out, r)
		}
	}
	out = append(out, compact(n.Else...)...)
	return append(out, compact(n.Ensure...)...)
}

// Begin is an explicit begin/end block.
type Begin struct {
	Pos
	Body *Body
}

func (n *Begin) Children() []Node { return bodyChildren(n.Body) }

// Rescue is a rescue clause: `rescue Foo, Bar => e`.
type Rescue struct {
	Pos
	Exceptions []Node
	// Variable is the exception binding target, usually a *VarField.
	Variable   Node
	Statements []Node
}

func (n *Rescue) Children() []Node {
	out := compact(n.Exceptions...)
	out = append(out, compact(n.Variable)...)
	return append(out, compact(n.Statements...)...)
}

// ClassDecl is `class Name < Superclass ... end`.
type ClassDecl struct {
	Pos
	Name       Node
	Superclass Node
	Body       *Body
}

func (n *ClassDecl) Children() []Node {
	return append(compact(n.Name, n.Superclass), bodyChildren(n.Body)...)
}

// ModuleDecl is `module Name ... end`.
type ModuleDecl struct {
	Pos
	Name Node
	Body *Body
}

func (n *ModuleDecl) Children() []Node {
	return append(compact(n.Name), bodyChildren(n.Body)...)
}

// SingletonClass is `class << target ... end`.
type SingletonClass struct {
	Pos
	Target Node
	Body   *Body
}

func (n *SingletonClass) Children() []Node {
	return append(compact(n.Target), bodyChildren(n.Body)...)
}

// ---------------------------------------------------------------------------

// Def is a method definition. Receiver is set for singleton definitions
// such as `def self.call`.
type Def struct {
	Pos
	Name     string
	Receiver Node
	Params   *Params
	Body     *Body
}

func (n *Def) Children() []Node {
	out := compact(n.Receiver)
	out = append(out, n.Params.defaults()...)
	return append(out, bodyChildren(n.Body)...)
}

// Block is a `{ |params| ... }` or `do |params| ... end` block attached to a
// call.
type Block struct {
	Pos
	Params *Params
	Body   *Body
}

func (n *Block) Children() []Node {
	return append(n.Params.defaults(), bodyChildren(n.Body)...)
}

// Lambda is a stabby lambda literal: `->(x) { ... }`.
type Lambda struct {
	Pos
	Params *Params
	Body   *Body
}

func (n *Lambda) Children() []Node {
	return append(n.Params.defaults(), bodyChildren(n.Body)...)
}

// ParamKind classifies a formal parameter.
type ParamKind int

const (
	ParamRequired ParamKind = iota
	ParamOptional
	ParamRest
	ParamPost
	ParamKeyword
	ParamKeywordRest
	ParamBlock
	ParamForward
	ParamDestructured
	ParamNoKeywords
)

var paramKindNames = [...]string{
	ParamRequired:     "required",
	ParamOptional:     "optional",
	ParamRest:         "rest",
	ParamPost:         "post",
	ParamKeyword:      "keyword",
	ParamKeywordRest:  "keyword_rest",
	ParamBlock:        "block",
	ParamForward:      "forward",
	ParamDestructured: "destructured",
	ParamNoKeywords:   "no_keywords",
}

func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return "unknown"
}

// Param is one formal parameter. Name is empty for anonymous rest, block and
// forwarding parameters.
type Param struct {
	Kind    ParamKind
	Name    string
	Ln      int
	Default Node
	// Nested holds the components of a destructured parameter `(a, b)`.
	Nested []Param
}

// Params is a formal parameter list. Locals are block-local variables
// declared after a semicolon: `|x; y|`.
type Params struct {
	List   []Param
	Locals []Param
}

// Names returns every named parameter in declaration order, flattening
// destructured parameters. Block-locals are not included.
func (p *Params) Names() []string {
	if p == nil {
		return nil
	}
	var names []string
	var walk func([]Param)
	walk = func(list []Param) {
		for _, param := range list {
			if param.Kind == ParamDestructured {
				walk(param.Nested)
				continue
			}
			if param.Name != "" {
				names = append(names, param.Name)
			}
		}
	}
	walk(p.List)
	return names
}

func (p *Params) defaults() []Node {
	if p == nil {
		return nil
	}
	var out []Node
	for _, param := range p.List {
		if param.Default != nil {
			out = append(out, param.Default)
		}
	}
	return out
}

// ---------------------------------------------------------------------------

// Call is a method call with an optional receiver, arguments and attached
// block. Block is either a *Block or nil; a `&blk` argument is a *BlockPass in
// Args.
type Call struct {
	Pos
	Receiver Node
	Name     string
	Args     []Node
	Block    *Block
}

func (n *Call) Children() []Node {
	out := compact(n.Receiver)
	out = append(out, compact(n.Args...)...)
	if n.Block != nil {
		out = append(out, n.Block)
	}
	return out
}

// VCall is a receiver-less call the front end knows cannot be a local
// variable read, such as `valid?` or `save!`.
type VCall struct {
	Pos
	Name string
}

func (n *VCall) Children() []Node { return nil }

// VarRef is a bare identifier read. It is a local variable read when a
// definition is in scope; otherwise it is a zero-argument call.
type VarRef struct {
	Pos
	Name string
}

func (n *VarRef) Children() []Node { return nil }

// VarField is a local variable in definition position: an assignment target,
// loop index, pattern binding or rescue binding.
type VarField struct {
	Pos
	Name string
}

func (n *VarField) Children() []Node { return nil }

// Literal is a leaf that carries no identifier usage: numbers, plain strings
// and symbols, constants, instance/class/global variables, self, nil, true
// and false.
type Literal struct {
	Pos
	Kind  string
	Value string
}

func (n *Literal) Children() []Node { return nil }

// ---------------------------------------------------------------------------

// Assign is `target = value`.
type Assign struct {
	Pos
	Target Node
	Value  Node
}

func (n *Assign) Children() []Node { return compact(n.Target, n.Value) }

// OpAssign is a compound assignment such as `x += 1` or `x ||= y`.
type OpAssign struct {
	Pos
	Target   Node
	Operator string
	Value    Node
}

func (n *OpAssign) Children() []Node { return compact(n.Target, n.Value) }

// MultiAssign is `a, (b, *c) = value`.
type MultiAssign struct {
	Pos
	Targets []Node
	Value   Node
}

func (n *MultiAssign) Children() []Node {
	return append(compact(n.Targets...), compact(n.Value)...)
}

// MultiTarget is a parenthesized group of assignment targets.
type MultiTarget struct {
	Pos
	Targets []Node
}

func (n *MultiTarget) Children() []Node { return compact(n.Targets...) }

// Splat is `*value` or `**value`. Value is nil for anonymous splats.
type Splat struct {
	Pos
	Double bool
	Value  Node
}

func (n *Splat) Children() []Node { return compact(n.Value) }

// BlockPass is a `&value` argument. Value is nil for the anonymous form.
type BlockPass struct {
	Pos
	Value Node
}

func (n *BlockPass) Children() []Node { return compact(n.Value) }

// Index is `collection[args]`, both as a read and as an assignment target.
type Index struct {
	Pos
	Collection Node
	Args       []Node
}

func (n *Index) Children() []Node {
	return append(compact(n.Collection), compact(n.Args...)...)
}

// Binary is an infix operator expression, including `and`/`or`.
type Binary struct {
	Pos
	Operator string
	Left     Node
	Right    Node
}

func (n *Binary) Children() []Node { return compact(n.Left, n.Right) }

// Unary is a prefix operator expression, including `not` and `defined?`.
type Unary struct {
	Pos
	Operator string
	Operand  Node
}

func (n *Unary) Children() []Node { return compact(n.Operand) }

// Parens is a parenthesized statement list.
type Parens struct {
	Pos
	Body []Node
}

func (n *Parens) Children() []Node { return compact(n.Body...) }

// ---------------------------------------------------------------------------

// If covers if, unless, elsif chains, ternaries and modifier forms. Else is
// either another *If (elsif) or an *Parens holding the else branch.
type If struct {
	Pos
	Negated bool
	Cond    Node
	Then    []Node
	Else    Node
}

func (n *If) Children() []Node {
	out := compact(n.Cond)
	out = append(out, compact(n.Then...)...)
	return append(out, compact(n.Else)...)
}

// While covers while, until and their modifier forms.
type While struct {
	Pos
	Negated bool
	Cond    Node
	Body    []Node
}

func (n *While) Children() []Node {
	return append(compact(n.Cond), compact(n.Body...)...)
}

// For is `for index in collection ... end`. Index is a definition target.
type For struct {
	Pos
	Index      Node
	Collection Node
	Body       []Node
}

func (n *For) Children() []Node {
	out := compact(n.Index, n.Collection)
	return append(out, compact(n.Body...)...)
}

// Case is `case subject when ... else ... end`.
type Case struct {
	Pos
	Subject Node
	Whens   []*When
	Else    []Node
}

func (n *Case) Children() []Node {
	out := compact(n.Subject)
	for _, w := range n.Whens {
		if w != nil {
			out = append(out, w)
		}
	}
	return append(out, compact(n.Else...)...)
}

// When is one `when a, b then ...` branch.
type When struct {
	Pos
	Conds []Node
	Body  []Node
}

func (n *When) Children() []Node {
	return append(compact(n.Conds...), compact(n.Body...)...)
}

// CaseMatch is `case subject in pattern ... end`.
type CaseMatch struct {
	Pos
	Subject Node
	Clauses []*InClause
	Else    []Node
}

func (n *CaseMatch) Children() []Node {
	out := compact(n.Subject)
	for _, c := range n.Clauses {
		if c != nil {
			out = append(out, c)
		}
	}
	return append(out, compact(n.Else...)...)
}

// InClause is one `in pattern if guard then ...` branch.
type InClause struct {
	Pos
	Pattern Node
	Guard   Node
	Body    []Node
}

func (n *InClause) Children() []Node {
	out := compact(n.Pattern, n.Guard)
	return append(out, compact(n.Body...)...)
}

// MatchPattern is a standalone match: `value => pattern` or `value in
// pattern`.
type MatchPattern struct {
	Pos
	Value   Node
	Pattern Node
}

func (n *MatchPattern) Children() []Node { return compact(n.Value, n.Pattern) }

// PatternList groups the elements of array, hash, find, alternative and
// capture patterns. Bindings inside appear as *VarField, pinned variables as
// *VarRef.
type PatternList struct {
	Pos
	Kind     string
	Elements []Node
}

func (n *PatternList) Children() []Node { return compact(n.Elements...) }

// Pair is a `key => value` or `key: value` element of a hash literal,
// argument list or hash pattern.
type Pair struct {
	Pos
	Key   Node
	Value Node
}

func (n *Pair) Children() []Node { return compact(n.Key, n.Value) }

// ArrayLit is an array literal, including %w/%i forms and the right-hand
// side list of a multiple assignment.
type ArrayLit struct {
	Pos
	Elements []Node
}

func (n *ArrayLit) Children() []Node { return compact(n.Elements...) }

// HashLit is a hash literal.
type HashLit struct {
	Pos
	Elements []Node
}

func (n *HashLit) Children() []Node { return compact(n.Elements...) }

// Range is `left..right` or `left...right`; either end may be nil.
type Range struct {
	Pos
	Left  Node
	Right Node
}

func (n *Range) Children() []Node { return compact(n.Left, n.Right) }

// Interpolated is a string, symbol, regexp, heredoc or command literal with
// embedded expressions. Parts holds only the embedded expressions.
type Interpolated struct {
	Pos
	Kind  string
	Parts []Node
}

func (n *Interpolated) Children() []Node { return compact(n.Parts...) }

// Jump is return, next, break, redo, retry or yield with its arguments.
type Jump struct {
	Pos
	Keyword string
	Args    []Node
}

func (n *Jump) Children() []Node { return compact(n.Args...) }

// Super is `super(args)` or `super args` with an explicit argument list.
type Super struct {
	Pos
	Args  []Node
	Block *Block
}

func (n *Super) Children() []Node {
	out := compact(n.Args...)
	if n.Block != nil {
		out = append(out, n.Block)
	}
	return out
}

// ZSuper is a bare `super` that implicitly forwards the enclosing method's
// parameters.
type ZSuper struct {
	Pos
	Block *Block
}

func (n *ZSuper) Children() []Node {
	if n.Block != nil {
		return []Node{n.Block}
	}
	return nil
}

// Alias is `alias new old` or `alias_method`-free keyword alias.
type Alias struct {
	Pos
	New string
	Old string
}

func (n *Alias) Children() []Node { return nil }

// Unknown wraps any construct the front end has no dedicated type for. Its
// children are still converted so usages inside are not lost.
type Unknown struct {
	Pos
	Kind  string
	Nodes []Node
}

func (n *Unknown) Children() []Node { return compact(n.Nodes...) }

// ---------------------------------------------------------------------------

func bodyChildren(b *Body) []Node {
	if b == nil {
		return nil
	}
	return b.Children()
}

func compact(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if isNil(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// isNil catches typed nil pointers stored in a Node interface.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Body:
		return v == nil
	case *Rescue:
		return v == nil
	case *When:
		return v == nil
	case *InClause:
		return v == nil
	case *Parens:
		return v == nil
	case *If:
		return v == nil
	}
	return false
}
