package match

import (
	"fmt"
	"strconv"

	"github.com/aretw0/espalier"
)

// Tree is a boxed rule expression. The payload type parameters track which
// predicate phases are still pending; see Full, AfterName, and AfterMeta
// for the instantiations the evaluator moves through.
type Tree[N, M, K any] struct {
	Kind    Kind
	Value   bool
	Left    *Tree[N, M, K]
	Right   *Tree[N, M, K]
	Name    N
	Meta    M
	Content K
}

// Full is a rule no phase has touched yet.
type Full = Tree[NamePred, MetaPred, ContentPred]

// AfterName is what remains once name predicates are decided.
type AfterName = Tree[Never, MetaPred, ContentPred]

// AfterMeta is what remains once metadata predicates are decided too; only
// content predicates and the operators above them are left.
type AfterMeta = Tree[Never, Never, ContentPred]

// project exposes one layer of t without recursing.
func project[N, M, K any](t *Tree[N, M, K]) Expr[*Tree[N, M, K], N, M, K] {
	return Expr[*Tree[N, M, K], N, M, K]{
		Kind:    t.Kind,
		Value:   t.Value,
		Left:    t.Left,
		Right:   t.Right,
		Name:    t.Name,
		Meta:    t.Meta,
		Content: t.Content,
	}
}

// Lit builds a constant rule.
func Lit(v bool) *Full { return &Full{Kind: KindLit, Value: v} }

// Not negates a rule.
func Not(x *Full) *Full { return &Full{Kind: KindNot, Left: x} }

// And matches when both rules match. The right side is never evaluated
// beyond the phase in which the left side already forced the verdict.
func And(l, r *Full) *Full { return &Full{Kind: KindAnd, Left: l, Right: r} }

// Or matches when either rule matches.
func Or(l, r *Full) *Full { return &Full{Kind: KindOr, Left: l, Right: r} }

// NameHas matches files whose base name contains s.
func NameHas(s string) *Full {
	return &Full{Kind: KindName, Name: NamePred{Op: NameContains, Arg: s}}
}

// NameSuffixed matches files whose base name ends with s.
func NameSuffixed(s string) *Full {
	return &Full{Kind: KindName, Name: NamePred{Op: NameSuffix, Arg: s}}
}

// SizeIn matches files whose size is in [min, max).
func SizeIn(min, max int64) *Full {
	return &Full{Kind: KindMeta, Meta: MetaPred{Op: MetaSizeIn, Min: min, Max: max}}
}

// Executable matches files with any execute bit set.
func Executable() *Full {
	return &Full{Kind: KindMeta, Meta: MetaPred{Op: MetaExecutable}}
}

// ContentHas matches files whose contents contain s.
func ContentHas(s string) *Full {
	return &Full{Kind: KindContent, Content: ContentPred{Op: ContentContains, Arg: s}}
}

// String renders the rule in infix form. Rendering runs on the fused
// engine.
func (t *Tree[N, M, K]) String() string {
	return espalier.Fold(t, project[N, M, K],
		MapExpr[*Tree[N, M, K], espalier.Hole, N, M, K],
		MapExpr[espalier.Hole, string, N, M, K],
		renderExpr[N, M, K],
	)
}

func renderExpr[N, M, K any](e Expr[string, N, M, K]) string {
	switch e.Kind {
	case KindLit:
		return strconv.FormatBool(e.Value)
	case KindNot:
		return "!(" + e.Left + ")"
	case KindAnd:
		return "(" + e.Left + " && " + e.Right + ")"
	case KindOr:
		return "(" + e.Left + " || " + e.Right + ")"
	case KindName:
		return fmt.Sprint(e.Name)
	case KindMeta:
		return fmt.Sprint(e.Meta)
	case KindContent:
		return fmt.Sprint(e.Content)
	default:
		panic(fmt.Sprintf("match: unknown rule kind %d", e.Kind))
	}
}
