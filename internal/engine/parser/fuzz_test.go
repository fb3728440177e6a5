package parser

import (
	"testing"

	"laerad/internal/engine/ast"
)

func FuzzRubyParser(f *testing.F) {
	for _, seed := range []string{
		"x = 1\nputs x\n",
		"def run(a, b = a, *rest, k:, **opts, &blk)\n  super\nend\n",
		"items.each { |i; tmp| tmp = i }\n",
		"case v\nin {name:, tags: [first, *]} then name\nend\n",
		"begin\n  raise\nrescue Foo => e\n  e\nensure\n  done\nend\n",
		"def broken(\n",
	} {
		f.Add([]byte(seed))
	}
	p := NewParser(nil)

	f.Fuzz(func(t *testing.T, data []byte) {
		prog, err := p.Parse("fuzz.rb", data)
		if err != nil {
			return
		}
		ast.Inspect(prog, func(n ast.Node) bool {
			if n.Line() < 0 {
				t.Fatalf("negative line on %T", n)
			}
			return true
		})
	})
}
