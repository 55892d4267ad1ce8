package espalier_test

import (
	"fmt"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/arith"
)

// ExampleFold evaluates an arithmetic tree in one fused pass. Expansion and
// collapse share an explicit work stack, so nesting depth is bounded by
// memory rather than the goroutine stack.
func ExampleFold() {
	// 1. Build (5 - 3) * (3 + 12) as a boxed tree.
	tree := arith.Mul(
		arith.Sub(arith.Lit(5), arith.Lit(3)),
		arith.Add(arith.Lit(3), arith.Lit(12)),
	)

	// 2. Fold it: Project exposes one layer at a time, the layer map carries
	// child positions, EvalExpr reduces a layer of results to a value.
	result := espalier.Fold(tree, arith.Project,
		arith.MapExpr[*arith.Tree, espalier.Hole],
		arith.MapExpr[espalier.Hole, int64],
		arith.EvalExpr,
	)

	fmt.Printf("%s = %d\n", tree, result)
	// Output:
	// ((5 - 3) * (3 + 12)) = 30
}

// ExampleExpand materializes the structure first and collapses it later,
// for callers that want to inspect or reuse the flattened form.
func ExampleExpand() {
	tree := arith.Add(arith.Lit(1), arith.Mul(arith.Lit(2), arith.Lit(3)))

	// Phase 1: flatten the tree into an indexed store.
	store := espalier.Expand(tree, arith.Project, arith.MapExpr[*arith.Tree, espalier.Index])
	fmt.Println("layers:", store.Len())

	// Phase 2: collapse the store youngest-first into a value.
	result := espalier.Collapse(store, arith.MapExpr[espalier.Index, int64], arith.EvalExpr)
	fmt.Println("result:", result)
	// Output:
	// layers: 5
	// result: 7
}

// ExampleTryFold aborts the moment a callback reports an error; no partial
// result leaks out.
func ExampleTryFold() {
	tree := arith.Sub(arith.Lit(3), arith.Lit(5))

	_, err := espalier.TryFold(tree,
		func(t *arith.Tree) (arith.Expr[*arith.Tree], error) { return arith.Project(t), nil },
		arith.MapExpr[*arith.Tree, espalier.Hole],
		arith.MapExpr[espalier.Hole, int64],
		func(e arith.Expr[int64]) (int64, error) {
			v := arith.EvalExpr(e)
			if v < 0 {
				return 0, fmt.Errorf("negative subtotal %d", v)
			}
			return v, nil
		},
	)
	fmt.Println("err:", err)
	// Output:
	// err: negative subtotal -2
}

// ExampleFold_hooks watches a fold run step by step, the mechanism behind
// recorded traces.
func ExampleFold_hooks() {
	tree := arith.Add(arith.Lit(2), arith.Lit(2))

	var ops []string
	hooks := arith.EvalHooks{OnStep: func(s arith.EvalStep) {
		ops = append(ops, s.Op.String())
	}}
	result := arith.Eval(tree, hooks)

	fmt.Println(result, ops)
	// Output:
	// 4 [expand expand collapse expand collapse collapse]
}
