package arith

import "fmt"

// Kind discriminates the expression layer variants.
type Kind uint8

const (
	KindLit Kind = iota
	KindAdd
	KindSub
	KindMul
)

func (k Kind) String() string {
	switch k {
	case KindLit:
		return "lit"
	case KindAdd:
		return "add"
	case KindSub:
		return "sub"
	case KindMul:
		return "mul"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Expr is one layer of an arithmetic expression with child positions of
// type C. KindLit carries its value in Lit; the binary kinds carry their
// operands in Left and Right.
type Expr[C any] struct {
	Kind  Kind
	Lit   int64
	Left  C
	Right C
}

// MapExpr rebuilds e with both operands passed through fn, Left before
// Right. It is the layer map every evaluation phase shares.
func MapExpr[A, B any](e Expr[A], fn func(A) B) Expr[B] {
	switch e.Kind {
	case KindLit:
		return Expr[B]{Kind: KindLit, Lit: e.Lit}
	case KindAdd, KindSub, KindMul:
		l := fn(e.Left)
		r := fn(e.Right)
		return Expr[B]{Kind: e.Kind, Left: l, Right: r}
	default:
		panic(fmt.Sprintf("arith: unknown expr kind %d", e.Kind))
	}
}

// EvalExpr reduces one fully resolved layer to its value.
func EvalExpr(e Expr[int64]) int64 {
	switch e.Kind {
	case KindLit:
		return e.Lit
	case KindAdd:
		return e.Left + e.Right
	case KindSub:
		return e.Left - e.Right
	case KindMul:
		return e.Left * e.Right
	default:
		panic(fmt.Sprintf("arith: unknown expr kind %d", e.Kind))
	}
}
