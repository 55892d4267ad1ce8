package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
or:
  - and:
      - name_has: ".rs"
      - content_has: "eval"
  - and:
      - size_in: {min: 0, max: 1024}
      - executable: true
`

func TestDecodeRuleGolden(t *testing.T) {
	rule, err := DecodeRule([]byte(scenarioYAML))
	require.NoError(t, err)

	want := `((name_has(".rs") && content_has("eval")) || (size_in(0, 1024) && executable()))`
	assert.Equal(t, want, rule.String())
}

func TestDecodedRuleMatchesLikeBuiltRule(t *testing.T) {
	rule, err := DecodeRule([]byte(scenarioYAML))
	require.NoError(t, err)

	m := New(rule)
	ctx := context.Background()
	fsys := scenarioFS()

	got, err := m.Match(ctx, fsys, "eval.rs")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = m.Match(ctx, fsys, "my_executable")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDecodeRuleHumanSizes(t *testing.T) {
	rule, err := DecodeRule([]byte(`size_in: {min: "1KB", max: "2MB"}`))
	require.NoError(t, err)

	require.Equal(t, KindMeta, rule.Kind)
	assert.Equal(t, int64(1024), rule.Meta.Min)
	assert.Equal(t, int64(2*1024*1024), rule.Meta.Max)
}

func TestDecodeRuleSizeDefaults(t *testing.T) {
	rule, err := DecodeRule([]byte(`size_in: {min: 10}`))
	require.NoError(t, err)

	assert.Equal(t, int64(10), rule.Meta.Min)
	assert.Greater(t, rule.Meta.Max, int64(1<<60), "omitted max means unbounded")
}

func TestDecodeRuleNAryNestsRight(t *testing.T) {
	rule, err := DecodeRule([]byte(`and: [{name_has: "a"}, {name_has: "b"}, {name_has: "c"}]`))
	require.NoError(t, err)
	assert.Equal(t, `(name_has("a") && (name_has("b") && name_has("c")))`, rule.String())
}

func TestDecodeRuleExecutableFalse(t *testing.T) {
	rule, err := DecodeRule([]byte(`executable: false`))
	require.NoError(t, err)
	assert.Equal(t, "!(executable())", rule.String())
}

func TestDecodeRuleBareBoolean(t *testing.T) {
	rule, err := DecodeRule([]byte(`true`))
	require.NoError(t, err)
	assert.Equal(t, "true", rule.String())
}

func TestDecodeRuleNameSuffix(t *testing.T) {
	rule, err := DecodeRule([]byte(`not: {name_suffix: "_test.go"}`))
	require.NoError(t, err)
	assert.Equal(t, `!(name_suffix("_test.go"))`, rule.String())
}

func TestDecodeRuleRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown key", `glob: "*.rs"`},
		{"and with one operand", `and: [{lit: true}]`},
		{"and with scalar", `and: 3`},
		{"lit with number", `lit: 3`},
		{"name_has with number", `name_has: 5`},
		{"executable with string", `executable: "yes"`},
		{"size bounds inverted", `size_in: {min: 100, max: 10}`},
		{"size negative", `size_in: {min: -1}`},
		{"size unknown field", `size_in: {min: 0, maximum: 10}`},
		{"size bad unit", `size_in: {max: "10 parsecs"}`},
		{"two keys", `{name_has: "a", content_has: "b"}`},
		{"bare string", `"zap"`},
		{"null", `null`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRule([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadRule)
		})
	}
}

func TestDecodeRuleErrorNamesPath(t *testing.T) {
	_, err := DecodeRule([]byte(`or: [{name_has: ".rs"}, {and: [{lit: true}, {glob: "x"}]}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.or[1].and[1]")
}
