package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/arith"
)

func TestExpression(t *testing.T) {
	tests := []struct {
		name     string
		tree     *arith.Tree
		contains []string
	}{
		{
			name: "Literal Shape",
			tree: arith.Lit(42),
			contains: []string{
				`n0(("42"))`,
				"class n0 lit;",
				"class n0 root;",
			},
		},
		{
			name: "Operator Shape And Edges",
			tree: arith.Add(arith.Lit(1), arith.Lit(2)),
			contains: []string{
				`n0["+"]`,
				"n0 --> n1",
				"n0 --> n2",
				`n1(("1"))`,
				`n2(("2"))`,
			},
		},
		{
			name: "Nested Operators",
			tree: arith.Mul(arith.Sub(arith.Lit(5), arith.Lit(3)), arith.Add(arith.Lit(3), arith.Lit(12))),
			contains: []string{
				`n0["*"]`,
				`n1["-"]`,
				`n2["+"]`,
				"class n0 root;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.Expression(tt.tree)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("Expression() missing flowchart header:\n%v", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expression() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}

func TestExpressionRootEdgesMatchStoreOrder(t *testing.T) {
	// In the flattened layout the root's operands occupy the next two slots.
	got := graph.Expression(arith.Add(arith.Mul(arith.Lit(2), arith.Lit(3)), arith.Lit(4)))

	left := strings.Index(got, "n0 --> n1")
	right := strings.Index(got, "n0 --> n2")
	if left < 0 || right < 0 || left > right {
		t.Errorf("Expression() must emit the left edge before the right edge:\n%v", got)
	}
}
