package match

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleLayers() []Expr[string, NamePred, MetaPred, ContentPred] {
	type layer = Expr[string, NamePred, MetaPred, ContentPred]
	return []layer{
		{Kind: KindLit, Value: true},
		{Kind: KindNot, Left: "x"},
		{Kind: KindAnd, Left: "l", Right: "r"},
		{Kind: KindOr, Left: "l", Right: "r"},
		{Kind: KindName, Name: NamePred{Op: NameContains, Arg: ".rs"}},
		{Kind: KindMeta, Meta: MetaPred{Op: MetaSizeIn, Min: 0, Max: 1024}},
		{Kind: KindContent, Content: ContentPred{Op: ContentContains, Arg: "eval"}},
	}
}

func TestMapExprIdentity(t *testing.T) {
	for _, e := range sampleLayers() {
		got := MapExpr(e, func(s string) string { return s })
		assert.Equal(t, e, got)
	}
}

func TestMapExprComposition(t *testing.T) {
	f := func(s string) int { return len(s) }
	g := func(n int) string { return strconv.Itoa(n) }

	for _, e := range sampleLayers() {
		twoPasses := MapExpr(MapExpr(e, f), g)
		onePass := MapExpr(e, func(s string) string { return g(f(s)) })
		assert.Equal(t, onePass, twoPasses)
	}
}

func TestMapExprOrder(t *testing.T) {
	var seen []string
	MapExpr(Expr[string, Never, Never, Never]{Kind: KindAnd, Left: "first", Right: "second"},
		func(s string) string {
			seen = append(seen, s)
			return s
		})
	assert.Equal(t, []string{"first", "second"}, seen)

	seen = nil
	MapExpr(Expr[string, Never, Never, Never]{Kind: KindNot, Left: "only"},
		func(s string) string {
			seen = append(seen, s)
			return s
		})
	assert.Equal(t, []string{"only"}, seen)
}

func TestMapExprUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		MapExpr(Expr[string, Never, Never, Never]{Kind: Kind(42)},
			func(s string) string { return s })
	})
}

func TestPredicateStrings(t *testing.T) {
	cases := []struct {
		have string
		want string
	}{
		{NamePred{Op: NameContains, Arg: ".rs"}.String(), `name_has(".rs")`},
		{NamePred{Op: NameSuffix, Arg: "_test.go"}.String(), `name_suffix("_test.go")`},
		{MetaPred{Op: MetaSizeIn, Min: 0, Max: 1024}.String(), "size_in(0, 1024)"},
		{MetaPred{Op: MetaExecutable}.String(), "executable()"},
		{ContentPred{Op: ContentContains, Arg: "eval"}.String(), `content_has("eval")`},
	}
	for _, tc := range cases {
		if tc.have != tc.want {
			t.Errorf("got %s, want %s", tc.have, tc.want)
		}
	}
}

func TestRuleString(t *testing.T) {
	rule := Or(
		And(NameHas(".rs"), ContentHas("eval")),
		And(SizeIn(0, 1024), Executable()),
	)
	want := `((name_has(".rs") && content_has("eval")) || (size_in(0, 1024) && executable()))`
	assert.Equal(t, want, rule.String())

	assert.Equal(t, "!(true)", Not(Lit(true)).String())
}
