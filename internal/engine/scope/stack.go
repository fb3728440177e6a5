package scope

// FinalizeFunc receives each scope once it leaves the stack.
type FinalizeFunc func(*Scope)

// Stack is the ordered chain of open scopes of one file, innermost last. The
// root scope is present from construction until Finish.
type Stack struct {
	scopes    []*Scope
	finalize  FinalizeFunc
	finished  bool
	propagate bool
}

// NewStack returns a stack holding a fresh root scope. finalize may be nil.
func NewStack(finalize FinalizeFunc) *Stack {
	if finalize == nil {
		finalize = func(*Scope) {}
	}
	return &Stack{
		scopes:   []*Scope{New(KindRoot)},
		finalize: finalize,
	}
}

// SetCallPropagation controls whether Pop hands the calls a scope makes to
// methods it does not define over to the enclosing scope. It is off by
// default.
func (st *Stack) SetCallPropagation(on bool) { st.propagate = on }

// Depth returns the number of open scopes, root included.
func (st *Stack) Depth() int { return len(st.scopes) }

// Current returns the innermost open scope.
func (st *Stack) Current() *Scope { return st.scopes[len(st.scopes)-1] }

// Root returns the outermost scope.
func (st *Stack) Root() *Scope { return st.scopes[0] }

// Push opens a new innermost scope.
func (st *Stack) Push(kind Kind) *Scope {
	s := New(kind)
	st.scopes = append(st.scopes, s)
	return s
}

// Pop closes the innermost scope and finalizes it. With call propagation on,
// calls to methods the scope does not define are handed to the enclosing
// scope first, so they reach the scope that defines the method. The root
// scope is never popped; Pop returns nil in that case.
func (st *Stack) Pop() *Scope {
	if len(st.scopes) <= 1 {
		return nil
	}
	top := st.scopes[len(st.scopes)-1]
	st.scopes = st.scopes[:len(st.scopes)-1]

	if st.propagate {
		parent := st.Current()
		for _, call := range top.UndefinedMethodCalls() {
			for i := 0; i < call.Count; i++ {
				parent.RegisterMethodCall(call.Name)
			}
		}
	}

	st.finalize(top)
	return top
}

// Finish pops every remaining scope and finalizes the root. It is a no-op
// after the first call.
func (st *Stack) Finish() {
	if st.finished {
		return
	}
	for len(st.scopes) > 1 {
		st.Pop()
	}
	st.finished = true
	st.finalize(st.scopes[0])
}

// Lookup returns the innermost scope holding a variable definition of name.
func (st *Stack) Lookup(name string) (*Scope, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if st.scopes[i].HasVariable(name) {
			return st.scopes[i], true
		}
	}
	return nil, false
}

// NearestMethod returns the innermost scope opened by a method definition.
func (st *Stack) NearestMethod() (*Scope, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if st.scopes[i].Kind() == KindMethod {
			return st.scopes[i], true
		}
	}
	return nil, false
}

// MarkDynamic flags every open scope as dynamic.
func (st *Stack) MarkDynamic() {
	for _, s := range st.scopes {
		s.MarkDynamic()
	}
}
