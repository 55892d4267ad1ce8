package arith

import (
	"strconv"

	"github.com/aretw0/espalier"
)

// Tree is a conventional boxed expression tree, the representation callers
// build by hand or decode from documents. Left and Right are nil on
// literals.
type Tree struct {
	Kind  Kind
	Lit   int64
	Left  *Tree
	Right *Tree
}

// Lit builds a literal node.
func Lit(v int64) *Tree { return &Tree{Kind: KindLit, Lit: v} }

// Add builds an addition node.
func Add(l, r *Tree) *Tree { return &Tree{Kind: KindAdd, Left: l, Right: r} }

// Sub builds a subtraction node.
func Sub(l, r *Tree) *Tree { return &Tree{Kind: KindSub, Left: l, Right: r} }

// Mul builds a multiplication node.
func Mul(l, r *Tree) *Tree { return &Tree{Kind: KindMul, Left: l, Right: r} }

// Project exposes one layer of t with its immediate subtrees as child
// values. It is the bridge from boxed trees into the engines and never
// looks past the first layer.
func Project(t *Tree) Expr[*Tree] {
	return Expr[*Tree]{Kind: t.Kind, Lit: t.Lit, Left: t.Left, Right: t.Right}
}

// EvalHooks observes a fused evaluation of a Tree.
type EvalHooks = espalier.Hooks[*Tree, Expr[espalier.Hole], int64]

// EvalStep is one observed step of a fused evaluation.
type EvalStep = espalier.Step[*Tree, Expr[espalier.Hole], int64]

// Eval computes t's value on the fused engine. Depth is bounded by memory,
// not by the goroutine stack.
func Eval(t *Tree, hooks ...EvalHooks) int64 {
	return espalier.Fold(t, Project,
		MapExpr[*Tree, espalier.Hole],
		MapExpr[espalier.Hole, int64],
		EvalExpr,
		hooks...,
	)
}

// EvalStore computes t's value in two phases: flatten into a Store, then
// collapse the store bottom-up.
func EvalStore(t *Tree) int64 {
	s := espalier.Expand(t, Project, MapExpr[*Tree, espalier.Index])
	return espalier.Collapse(s, MapExpr[espalier.Index, int64], EvalExpr)
}

// EvalNative descends with ordinary recursion. It is the reference the
// engine paths are checked against; its depth limit is the goroutine stack.
func EvalNative(t *Tree) int64 {
	if t.Kind == KindLit {
		return t.Lit
	}
	l := EvalNative(t.Left)
	r := EvalNative(t.Right)
	switch t.Kind {
	case KindAdd:
		return l + r
	case KindSub:
		return l - r
	case KindMul:
		return l * r
	default:
		panic("arith: unknown tree kind")
	}
}

// String renders the expression in parenthesized infix form. Rendering runs
// on the fused engine, so deeply nested trees print fine.
func (t *Tree) String() string {
	return espalier.Fold(t, Project,
		MapExpr[*Tree, espalier.Hole],
		MapExpr[espalier.Hole, string],
		renderExpr,
	)
}

func renderExpr(e Expr[string]) string {
	switch e.Kind {
	case KindLit:
		return strconv.FormatInt(e.Lit, 10)
	case KindAdd:
		return "(" + e.Left + " + " + e.Right + ")"
	case KindSub:
		return "(" + e.Left + " - " + e.Right + ")"
	case KindMul:
		return "(" + e.Left + " * " + e.Right + ")"
	default:
		panic("arith: unknown expr kind")
	}
}

// DescribeFrame renders a parked frame with an underscore for each pending
// child slot, e.g. "(_ + _)". Useful for trace and log output.
func DescribeFrame(e Expr[espalier.Hole]) string {
	return renderExpr(MapExpr(e, func(espalier.Hole) string { return "_" }))
}

// Chain builds 1 + 1 + ... + 1 with n additions nested to the left, so the
// tree is n+1 layers deep. Construction is iterative; the value is n+1.
// Meant for depth demos and tests.
func Chain(n int) *Tree {
	t := Lit(1)
	for i := 0; i < n; i++ {
		t = Add(t, Lit(1))
	}
	return t
}

// SumRange computes lo + (lo+1) + ... + (hi-1) by expanding a range seed
// into a balanced addition tree and collapsing it in the same fused pass.
// The tree itself never exists in memory.
func SumRange(lo, hi int64) int64 {
	type span struct{ lo, hi int64 }
	return espalier.Fold(span{lo, hi},
		func(s span) Expr[span] {
			switch {
			case s.hi <= s.lo:
				return Expr[span]{Kind: KindLit}
			case s.hi-s.lo == 1:
				return Expr[span]{Kind: KindLit, Lit: s.lo}
			default:
				mid := s.lo + (s.hi-s.lo)/2
				return Expr[span]{Kind: KindAdd, Left: span{s.lo, mid}, Right: span{mid, s.hi}}
			}
		},
		MapExpr[span, espalier.Hole],
		MapExpr[espalier.Hole, int64],
		EvalExpr,
	)
}
