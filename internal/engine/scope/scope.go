// Package scope holds the per-region usage tables the analyzer fills while
// walking a file.
package scope

// Kind identifies the construct that introduced a scope.
type Kind int

const (
	KindRoot Kind = iota
	KindMethod
	KindBlock
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindMethod:
		return "method"
	case KindBlock:
		return "block"
	case KindLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// table counts touches per name and remembers definition lines. Names are
// kept in first-registration order so reports are deterministic.
type table struct {
	counts   map[string]int
	defLines map[string][]int
	order    []string
}

func newTable() table {
	return table{
		counts:   make(map[string]int),
		defLines: make(map[string][]int),
	}
}

func (t *table) touch(name string) {
	if _, seen := t.counts[name]; !seen {
		t.order = append(t.order, name)
	}
	t.counts[name]++
}

func (t *table) define(name string, line int) {
	t.touch(name)
	t.defLines[name] = append(t.defLines[name], line)
}

func (t *table) firstLine(name string) (int, bool) {
	lines := t.defLines[name]
	if len(lines) == 0 {
		return 0, false
	}
	return lines[0], true
}

func (t *table) under(limit int) []string {
	var out []string
	for _, name := range t.order {
		if t.counts[name] <= limit {
			out = append(out, name)
		}
	}
	return out
}

// SingleUseLimit is the highest touch count (definition included) at which
// an identifier is still reported.
const SingleUseLimit = 2

// Scope is the usage table of one lexical region.
type Scope struct {
	kind      Kind
	variables table
	methods   table
	params    []string
	isParam   map[string]bool
	dynamic   bool
}

// New returns an empty scope of the given kind.
func New(kind Kind) *Scope {
	return &Scope{
		kind:      kind,
		variables: newTable(),
		methods:   newTable(),
		isParam:   make(map[string]bool),
	}
}

// Kind reports which construct introduced the scope.
func (s *Scope) Kind() Kind { return s.kind }

// RegisterVariableDef counts a definition of name and records its line.
func (s *Scope) RegisterVariableDef(name string, line int) {
	s.variables.define(name, line)
}

// RegisterParameter registers a formal parameter: a variable definition that
// is also remembered as part of the scope's parameter list.
func (s *Scope) RegisterParameter(name string, line int) {
	s.variables.define(name, line)
	if !s.isParam[name] {
		s.isParam[name] = true
		s.params = append(s.params, name)
	}
}

// RegisterVariableRef counts a read or write of an existing variable.
func (s *Scope) RegisterVariableRef(name string) {
	s.variables.touch(name)
}

// RegisterMethodDef counts a method definition and records its line.
func (s *Scope) RegisterMethodDef(name string, line int) {
	s.methods.define(name, line)
}

// RegisterMethodCall counts a call of name.
func (s *Scope) RegisterMethodCall(name string) {
	s.methods.touch(name)
}

// MarkDynamic disables method reporting for this scope. It cannot be undone.
func (s *Scope) MarkDynamic() { s.dynamic = true }

// Dynamic reports whether dynamic dispatch was observed in this scope's
// lineage.
func (s *Scope) Dynamic() bool { return s.dynamic }

// HasVariable reports whether name has a variable definition in this scope.
func (s *Scope) HasVariable(name string) bool {
	_, ok := s.variables.firstLine(name)
	return ok
}

// HasMethod reports whether name has a method definition in this scope.
func (s *Scope) HasMethod(name string) bool {
	_, ok := s.methods.firstLine(name)
	return ok
}

// IsParameter reports whether name was registered as a formal parameter.
func (s *Scope) IsParameter(name string) bool { return s.isParam[name] }

// Parameters returns the formal parameter names in registration order.
func (s *Scope) Parameters() []string {
	out := make([]string, len(s.params))
	copy(out, s.params)
	return out
}

// VariableCount returns the number of touches of the variable name.
func (s *Scope) VariableCount(name string) int { return s.variables.counts[name] }

// MethodCount returns the number of touches of the method name.
func (s *Scope) MethodCount(name string) int { return s.methods.counts[name] }

// VariableDefLines returns every recorded definition line of name.
func (s *Scope) VariableDefLines(name string) []int {
	return append([]int(nil), s.variables.defLines[name]...)
}

// MethodDefLines returns every recorded definition line of name.
func (s *Scope) MethodDefLines(name string) []int {
	return append([]int(nil), s.methods.defLines[name]...)
}

// VariableDefinitionLine returns the first definition line of name, or 0.
func (s *Scope) VariableDefinitionLine(name string) int {
	line, _ := s.variables.firstLine(name)
	return line
}

// MethodDefinitionLine returns the first definition line of name, or 0.
func (s *Scope) MethodDefinitionLine(name string) int {
	line, _ := s.methods.firstLine(name)
	return line
}

// SingleUseVariables returns the variables touched at most SingleUseLimit
// times.
func (s *Scope) SingleUseVariables() []string {
	return s.variables.under(SingleUseLimit)
}

// SingleUseMethods returns the methods defined here and touched at most
// SingleUseLimit times. Once the scope is dynamic static counts cannot be
// trusted and the result is always empty.
func (s *Scope) SingleUseMethods() []string {
	if s.dynamic {
		return nil
	}
	var out []string
	for _, name := range s.methods.under(SingleUseLimit) {
		if s.HasMethod(name) {
			out = append(out, name)
		}
	}
	return out
}

// UndefinedMethodCalls returns, in first-call order, the methods this scope
// calls without defining them, with their call counts.
func (s *Scope) UndefinedMethodCalls() []Call {
	var out []Call
	for _, name := range s.methods.order {
		if s.HasMethod(name) {
			continue
		}
		out = append(out, Call{Name: name, Count: s.methods.counts[name]})
	}
	return out
}

// Call is a method name together with how often it was called.
type Call struct {
	Name  string
	Count int
}
