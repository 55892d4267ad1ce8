package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/arith"
)

// Expression produces Mermaid flowchart syntax for an arithmetic tree. The
// tree is flattened through the store builder first, so node ids are stable
// arena indices and arbitrarily deep documents render without recursion.
// It applies semantic shapes:
// - Literal: ((Circle))
// - Operator: [Rectangle]
// The root gets a bold border so the reduction target is obvious.
func Expression(t *arith.Tree) string {
	store := espalier.Expand(t, arith.Project, arith.MapExpr[*arith.Tree, espalier.Index])

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var lits []espalier.Index
	for i := 0; i < store.Len(); i++ {
		idx := espalier.Index(i)
		layer := store.Layer(idx)

		// Node shape based on variant
		opener, closer := "[", "]"
		label := opSymbol(layer.Kind)
		if layer.Kind == arith.KindLit {
			opener, closer = "((", "))" // Circle
			label = fmt.Sprintf("%d", layer.Lit)
			lits = append(lits, idx)
		}
		sb.WriteString(fmt.Sprintf("    n%d%s\"%s\"%s\n", idx, opener, label, closer))

		// Operand edges, left before right, so the layout mirrors the
		// expression's reading order.
		if layer.Kind != arith.KindLit {
			sb.WriteString(fmt.Sprintf("    n%d --> n%d\n", idx, layer.Left))
			sb.WriteString(fmt.Sprintf("    n%d --> n%d\n", idx, layer.Right))
		}
	}

	sb.WriteString("\n    %% Styles\n")
	// Force black text (color:#000) for high contrast on light backgrounds,
	// regardless of theme (Light/Dark).
	sb.WriteString("    classDef lit fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef root stroke-width:4px;\n")
	for _, idx := range lits {
		sb.WriteString(fmt.Sprintf("    class n%d lit;\n", idx))
	}
	sb.WriteString(fmt.Sprintf("    class n%d root;\n", espalier.Root))

	return sb.String()
}

func opSymbol(k arith.Kind) string {
	switch k {
	case arith.KindAdd:
		return "+"
	case arith.KindSub:
		return "-"
	case arith.KindMul:
		return "*"
	default:
		return k.String()
	}
}
