package analyzer

import "strings"

// Rules is the exemption table. The defaults are Ruby's conventions.
type Rules struct {
	// IgnorePrefix marks names that are intentionally unused (`_unused`).
	IgnorePrefix string
	// AnonymousParams are implicit block parameter names (`_1`, `it`).
	AnonymousParams []string
	// DynamicMethods disable method reporting for every open scope when
	// called.
	DynamicMethods []string
	// FallbackHook has the same effect as a dynamic method.
	FallbackHook string
	// PropagateCalls hands calls of methods a closing scope does not define
	// to the enclosing scope. Off by default: a call counts only in the scope
	// it appears in.
	PropagateCalls bool
}

// DefaultRules returns Ruby's exemption table.
func DefaultRules() Rules {
	return Rules{
		IgnorePrefix:    "_",
		AnonymousParams: []string{"_1", "_2", "_3", "_4", "_5", "_6", "_7", "_8", "_9", "it"},
		DynamicMethods:  []string{"send", "public_send", "define_method", "class_eval", "module_eval", "instance_eval"},
		FallbackHook:    "method_missing",
	}
}

type ruleSet struct {
	ignorePrefix   string
	anonymous      map[string]bool
	dynamic        map[string]bool
	propagateCalls bool
}

func (r Rules) compile() *ruleSet {
	rs := &ruleSet{
		ignorePrefix:   r.IgnorePrefix,
		anonymous:      make(map[string]bool, len(r.AnonymousParams)),
		dynamic:        make(map[string]bool, len(r.DynamicMethods)+1),
		propagateCalls: r.PropagateCalls,
	}
	for _, name := range r.AnonymousParams {
		rs.anonymous[name] = true
	}
	for _, name := range r.DynamicMethods {
		rs.dynamic[name] = true
	}
	if r.FallbackHook != "" {
		rs.dynamic[r.FallbackHook] = true
	}
	return rs
}

// exempt reports whether name is never tracked as a variable.
func (rs *ruleSet) exempt(name string) bool {
	if name == "" || rs.anonymous[name] {
		return true
	}
	return rs.ignorePrefix != "" && strings.HasPrefix(name, rs.ignorePrefix)
}

func (rs *ruleSet) isDynamic(name string) bool { return rs.dynamic[name] }
