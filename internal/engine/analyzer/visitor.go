package analyzer

import (
	"laerad/internal/engine/ast"
	"laerad/internal/engine/result"
	"laerad/internal/engine/scope"
)

// visitor walks one file's tree, filling a scope stack and emitting
// violations into result as scopes are finalized.
type visitor struct {
	rules  *ruleSet
	stack  *scope.Stack
	result *result.Result
}

func newVisitor(rules *ruleSet, res *result.Result) *visitor {
	v := &visitor{rules: rules, result: res}
	v.stack = scope.NewStack(v.finalize)
	v.stack.SetCallPropagation(rules.propagateCalls)
	return v
}

func (v *visitor) run(prog *ast.Program) {
	for _, stmt := range prog.Body {
		v.visit(stmt)
	}
	v.stack.Finish()
}

func (v *visitor) visit(n ast.Node) {
	switch n := n.(type) {
	case nil:
		return

	case *ast.Def:
		v.visit(n.Receiver)
		v.stack.Current().RegisterMethodDef(n.Name, n.Line())
		v.stack.Push(scope.KindMethod)
		v.params(n.Params)
		v.visitBody(n.Body)
		v.stack.Pop()

	case *ast.Block:
		if n == nil {
			return
		}
		v.stack.Push(scope.KindBlock)
		v.params(n.Params)
		v.visitBody(n.Body)
		v.stack.Pop()

	case *ast.Lambda:
		v.stack.Push(scope.KindLambda)
		v.params(n.Params)
		v.visitBody(n.Body)
		v.stack.Pop()

	case *ast.VarField:
		v.define(n.Name, n.Line())

	case *ast.VarRef:
		v.reference(n.Name)

	case *ast.VCall:
		v.call(n.Name)

	case *ast.Call:
		v.visit(n.Receiver)
		for _, arg := range n.Args {
			v.visit(arg)
		}
		v.call(n.Name)
		if n.Block != nil {
			v.visit(n.Block)
		}

	case *ast.OpAssign:
		v.opAssign(n.Target)
		v.visit(n.Value)

	case *ast.Super:
		for _, arg := range n.Args {
			v.visit(arg)
		}
		if n.Block != nil {
			v.visit(n.Block)
		}

	case *ast.ZSuper:
		v.forwardParameters()
		if n.Block != nil {
			v.visit(n.Block)
		}

	case *ast.Alias:
		v.call(n.Old)

	default:
		for _, child := range n.Children() {
			v.visit(child)
		}
	}
}

func (v *visitor) visitBody(b *ast.Body) {
	if b == nil {
		return
	}
	for _, child := range b.Children() {
		v.visit(child)
	}
}

// params registers formal parameters in the current scope. A default value is
// visited right after its parameter, so later defaults may read earlier
// parameters.
func (v *visitor) params(p *ast.Params) {
	if p == nil {
		return
	}
	v.paramList(p.List)
	for _, local := range p.Locals {
		v.define(local.Name, local.Ln)
	}
}

func (v *visitor) paramList(list []ast.Param) {
	for _, param := range list {
		if param.Kind == ast.ParamDestructured {
			v.paramList(param.Nested)
			continue
		}
		if !v.rules.exempt(param.Name) {
			v.stack.Current().RegisterParameter(param.Name, param.Ln)
		}
		v.visit(param.Default)
	}
}

func (v *visitor) define(name string, line int) {
	if v.rules.exempt(name) {
		return
	}
	v.stack.Current().RegisterVariableDef(name, line)
}

// reference resolves a bare identifier outward. Without a definition on the
// stack it is a receiver-less call.
func (v *visitor) reference(name string) {
	if v.rules.exempt(name) {
		return
	}
	if s, ok := v.stack.Lookup(name); ok {
		s.RegisterVariableRef(name)
		return
	}
	v.call(name)
}

func (v *visitor) call(name string) {
	if name == "" {
		return
	}
	if v.rules.isDynamic(name) {
		v.stack.MarkDynamic()
	}
	v.stack.Current().RegisterMethodCall(name)
}

// opAssign mutates an existing binding when one is visible and defines a new
// one in the current scope otherwise.
func (v *visitor) opAssign(target ast.Node) {
	field, ok := target.(*ast.VarField)
	if !ok {
		v.visit(target)
		return
	}
	if v.rules.exempt(field.Name) {
		return
	}
	if s, found := v.stack.Lookup(field.Name); found {
		s.RegisterVariableRef(field.Name)
		return
	}
	v.stack.Current().RegisterVariableDef(field.Name, field.Line())
}

// forwardParameters counts a bare super as one read of every parameter of
// the enclosing method.
func (v *visitor) forwardParameters() {
	method, ok := v.stack.NearestMethod()
	if !ok {
		return
	}
	for _, name := range method.Parameters() {
		method.RegisterVariableRef(name)
	}
}

// finalize reports the single-use identifiers of a closed scope. Method
// parameters are only reported when never used after their definition.
func (v *visitor) finalize(s *scope.Scope) {
	for _, name := range s.SingleUseVariables() {
		count := s.VariableCount(name)
		if s.Kind() == scope.KindMethod && s.IsParameter(name) && count > 1 {
			continue
		}
		v.result.AddVariableViolation(name, s.VariableDefinitionLine(name), count)
	}
	for _, name := range s.SingleUseMethods() {
		v.result.AddMethodViolation(name, s.MethodDefinitionLine(name), s.MethodCount(name))
	}
}
