package arith

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleLayers() []Expr[string] {
	return []Expr[string]{
		{Kind: KindLit, Lit: 42},
		{Kind: KindAdd, Left: "l", Right: "r"},
		{Kind: KindSub, Left: "l", Right: "r"},
		{Kind: KindMul, Left: "l", Right: "r"},
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
	g := func(n int) string { return strconv.Itoa(n * 10) }

	for _, e := range sampleLayers() {
		twoPasses := MapExpr(MapExpr(e, f), g)
		onePass := MapExpr(e, func(s string) string { return g(f(s)) })
		assert.Equal(t, onePass, twoPasses)
	}
}

func TestMapExprOrder(t *testing.T) {
	var seen []string
	MapExpr(Expr[string]{Kind: KindAdd, Left: "first", Right: "second"},
		func(s string) string {
			seen = append(seen, s)
			return s
		})
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestMapExprUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		MapExpr(Expr[string]{Kind: Kind(42)}, func(s string) string { return s })
	})
}

func TestEvalExpr(t *testing.T) {
	cases := []struct {
		name string
		e    Expr[int64]
		want int64
	}{
		{"lit", Expr[int64]{Kind: KindLit, Lit: 7}, 7},
		{"add", Expr[int64]{Kind: KindAdd, Left: 2, Right: 3}, 5},
		{"sub", Expr[int64]{Kind: KindSub, Left: 2, Right: 3}, -1},
		{"mul", Expr[int64]{Kind: KindMul, Left: 2, Right: 3}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvalExpr(tc.e); got != tc.want {
				t.Errorf("EvalExpr(%s) = %d, want %d", tc.name, got, tc.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "lit", KindLit.String())
	assert.Equal(t, "add", KindAdd.String())
	assert.Equal(t, "sub", KindSub.String())
	assert.Equal(t, "mul", KindMul.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
