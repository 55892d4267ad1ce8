package match

import (
	"fmt"

	"github.com/aretw0/espalier"
)

// Outcome is a phase's verdict for a rule: either decided, or a residual
// expression the remaining phases must finish.
type Outcome[N, M, K any] struct {
	// Rest is the pruned expression still awaiting later phases, nil when
	// the phase decided the rule outright.
	Rest *Tree[N, M, K]
	// Value is the verdict, meaningful only when Rest is nil.
	Value bool
}

// Decided reports whether the phase reached a verdict.
func (o Outcome[N, M, K]) Decided() bool { return o.Rest == nil }

// EvalNames runs the path-only phase. Name predicates are decided by the
// name callback; metadata and content predicates are carried into the
// residual tree. Any branch whose verdict is already forced is pruned, and
// whatever work it still owed later phases disappears with it.
func EvalNames(t *Full, name func(NamePred) bool) Outcome[Never, MetaPred, ContentPred] {
	type rest = Outcome[Never, MetaPred, ContentPred]
	return espalier.Fold(t,
		project[NamePred, MetaPred, ContentPred],
		MapExpr[*Full, espalier.Hole, NamePred, MetaPred, ContentPred],
		MapExpr[espalier.Hole, rest, NamePred, MetaPred, ContentPred],
		func(e Expr[rest, NamePred, MetaPred, ContentPred]) rest {
			switch e.Kind {
			case KindLit:
				return rest{Value: e.Value}
			case KindName:
				return rest{Value: name(e.Name)}
			case KindMeta:
				return rest{Rest: &AfterName{Kind: KindMeta, Meta: e.Meta}}
			case KindContent:
				return rest{Rest: &AfterName{Kind: KindContent, Content: e.Content}}
			case KindNot:
				return notOutcome(e.Left)
			case KindAnd:
				return andOutcome(e.Left, e.Right)
			case KindOr:
				return orOutcome(e.Left, e.Right)
			default:
				panic(fmt.Sprintf("match: unknown rule kind %d", e.Kind))
			}
		},
	)
}

// EvalMeta runs the metadata phase on what the name phase left behind.
// Only content predicates survive into the residual tree.
func EvalMeta(t *AfterName, meta func(MetaPred) bool) Outcome[Never, Never, ContentPred] {
	type rest = Outcome[Never, Never, ContentPred]
	return espalier.Fold(t,
		project[Never, MetaPred, ContentPred],
		MapExpr[*AfterName, espalier.Hole, Never, MetaPred, ContentPred],
		MapExpr[espalier.Hole, rest, Never, MetaPred, ContentPred],
		func(e Expr[rest, Never, MetaPred, ContentPred]) rest {
			switch e.Kind {
			case KindLit:
				return rest{Value: e.Value}
			case KindName:
				panic("match: name predicate survived past the name phase")
			case KindMeta:
				return rest{Value: meta(e.Meta)}
			case KindContent:
				return rest{Rest: &AfterMeta{Kind: KindContent, Content: e.Content}}
			case KindNot:
				return notOutcome(e.Left)
			case KindAnd:
				return andOutcome(e.Left, e.Right)
			case KindOr:
				return orOutcome(e.Left, e.Right)
			default:
				panic(fmt.Sprintf("match: unknown rule kind %d", e.Kind))
			}
		},
	)
}

// EvalContent runs the final phase. Everything left is a content predicate
// or an operator above one, so the verdict is always reached.
func EvalContent(t *AfterMeta, content func(ContentPred) bool) bool {
	return espalier.Fold(t,
		project[Never, Never, ContentPred],
		MapExpr[*AfterMeta, espalier.Hole, Never, Never, ContentPred],
		MapExpr[espalier.Hole, bool, Never, Never, ContentPred],
		func(e Expr[bool, Never, Never, ContentPred]) bool {
			switch e.Kind {
			case KindLit:
				return e.Value
			case KindName:
				panic("match: name predicate survived past the name phase")
			case KindMeta:
				panic("match: metadata predicate survived past the metadata phase")
			case KindContent:
				return content(e.Content)
			case KindNot:
				return !e.Left
			case KindAnd:
				return e.Left && e.Right
			case KindOr:
				return e.Left || e.Right
			default:
				panic(fmt.Sprintf("match: unknown rule kind %d", e.Kind))
			}
		},
	)
}

func notOutcome[N, M, K any](x Outcome[N, M, K]) Outcome[N, M, K] {
	if x.Rest == nil {
		return Outcome[N, M, K]{Value: !x.Value}
	}
	return Outcome[N, M, K]{Rest: &Tree[N, M, K]{Kind: KindNot, Left: x.Rest}}
}

func andOutcome[N, M, K any](l, r Outcome[N, M, K]) Outcome[N, M, K] {
	switch {
	case l.Rest == nil && !l.Value:
		return l
	case r.Rest == nil && !r.Value:
		return r
	case l.Rest == nil:
		return r
	case r.Rest == nil:
		return l
	default:
		return Outcome[N, M, K]{Rest: &Tree[N, M, K]{Kind: KindAnd, Left: l.Rest, Right: r.Rest}}
	}
}

func orOutcome[N, M, K any](l, r Outcome[N, M, K]) Outcome[N, M, K] {
	switch {
	case l.Rest == nil && l.Value:
		return l
	case r.Rest == nil && r.Value:
		return r
	case l.Rest == nil:
		return r
	case r.Rest == nil:
		return l
	default:
		return Outcome[N, M, K]{Rest: &Tree[N, M, K]{Kind: KindOr, Left: l.Rest, Right: r.Rest}}
	}
}
