package ast

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// every node. If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	for _, child := range n.Children() {
		Inspect(child, f)
	}
}

// Collect returns every node under n (n included) for which match returns
// true, in traversal order.
func Collect(n Node, match func(Node) bool) []Node {
	var out []Node
	Inspect(n, func(node Node) bool {
		if match(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}
