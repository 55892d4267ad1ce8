/*
Package match evaluates boolean file-matching rules in phases ordered by
cost: path checks are free, metadata costs one stat, content costs one read.

A rule is a boolean expression over three predicate kinds. Each phase is one
fused fold over the remaining expression: it decides the predicates it is
responsible for, prunes every branch whose verdict is already forced, and
leaves a smaller residual expression for the next phase. Content predicates
sitting under a pruned branch simply disappear, which is how a rule can
match or reject a file without ever opening it.

The tree's payload type parameters record which phases are still pending;
an evaluated phase narrows its slot to Never.
*/
package match

import "fmt"

// Kind discriminates the rule layer variants.
type Kind uint8

const (
	KindLit Kind = iota
	KindNot
	KindAnd
	KindOr
	KindName
	KindMeta
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindLit:
		return "lit"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindName:
		return "name"
	case KindMeta:
		return "meta"
	case KindContent:
		return "content"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Never is the payload of predicate variants an earlier phase has already
// evaluated away. Go cannot make the variant unconstructible, so the
// evaluators back the narrowing with panics instead.
type Never struct{}

// Expr is one layer of a rule with child positions of type C. N, M, and K
// are the payload types of the name, metadata, and content predicate
// variants. KindNot uses Left only; KindAnd and KindOr use Left and Right.
type Expr[C, N, M, K any] struct {
	Kind    Kind
	Value   bool
	Left    C
	Right   C
	Name    N
	Meta    M
	Content K
}

// MapExpr rebuilds e with every child position passed through fn, Left
// before Right. Predicate payloads ride along untouched. It is the layer
// map all rule phases share.
func MapExpr[A, B, N, M, K any](e Expr[A, N, M, K], fn func(A) B) Expr[B, N, M, K] {
	out := Expr[B, N, M, K]{
		Kind:    e.Kind,
		Value:   e.Value,
		Name:    e.Name,
		Meta:    e.Meta,
		Content: e.Content,
	}
	switch e.Kind {
	case KindLit, KindName, KindMeta, KindContent:
		// leaves
	case KindNot:
		out.Left = fn(e.Left)
	case KindAnd, KindOr:
		out.Left = fn(e.Left)
		out.Right = fn(e.Right)
	default:
		panic(fmt.Sprintf("match: unknown rule kind %d", e.Kind))
	}
	return out
}
