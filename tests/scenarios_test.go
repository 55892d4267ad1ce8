package tests

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/match"
)

const ruleDoc = `
or:
  - and:
      - name_has: ".rs"
      - content_has: "eval"
  - and:
      - size_in: {min: 0, max: 1KB}
      - executable: true
`

// countingFS counts file opens while delegating stats, so a test can prove
// that a verdict was reached without reading content.
type countingFS struct {
	inner fstest.MapFS
	opens map[string]int
}

func newCountingFS(inner fstest.MapFS) *countingFS {
	return &countingFS{inner: inner, opens: map[string]int{}}
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens[name]++
	return c.inner.Open(name)
}

func (c *countingFS) Stat(name string) (fs.FileInfo, error) {
	return c.inner.Stat(name)
}

func scenarioFS() fstest.MapFS {
	return fstest.MapFS{
		"my_executable": &fstest.MapFile{Data: make([]byte, 64), Mode: 0o755},
		"eval.rs":       &fstest.MapFile{Data: []byte("fn eval() {}\n"), Mode: 0o644},
	}
}

// The short-circuit scenario: a small executable is decided in the metadata
// phase, so its contents are never opened.
func TestMatcherShortCircuitsBeforeContent(t *testing.T) {
	rule, err := match.DecodeRule([]byte(ruleDoc))
	require.NoError(t, err)

	fsys := newCountingFS(scenarioFS())
	ok, err := match.New(rule).Match(context.Background(), fsys, "my_executable")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Zero(t, fsys.opens["my_executable"], "content must not be read when metadata decides")
}

// The full-evaluation scenario: eval.rs survives the name and metadata
// phases and is decided by one content read.
func TestMatcherFullEvaluation(t *testing.T) {
	rule, err := match.DecodeRule([]byte(ruleDoc))
	require.NoError(t, err)

	fsys := newCountingFS(scenarioFS())
	ok, err := match.New(rule).Match(context.Background(), fsys, "eval.rs")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, 1, fsys.opens["eval.rs"], "content phase reads the file exactly once")
}

// Phase-by-phase replay of both scenarios with counting callbacks, pinning
// down which predicates each phase actually evaluates.
func TestMatcherPhaseCallCounts(t *testing.T) {
	rule, err := match.DecodeRule([]byte(ruleDoc))
	require.NoError(t, err)

	t.Run("my_executable stops after metadata", func(t *testing.T) {
		names, metas, contents := 0, 0, 0

		afterName := match.EvalNames(rule, func(p match.NamePred) bool {
			names++
			return p.Eval("my_executable")
		})
		require.False(t, afterName.Decided())

		info, err := fs.Stat(scenarioFS(), "my_executable")
		require.NoError(t, err)
		afterMeta := match.EvalMeta(afterName.Rest, func(p match.MetaPred) bool {
			metas++
			return p.Eval(info)
		})
		require.True(t, afterMeta.Decided())

		assert.True(t, afterMeta.Value)
		assert.Equal(t, 1, names)
		assert.Equal(t, 2, metas)
		assert.Zero(t, contents)
	})

	t.Run("eval.rs needs all three phases once each", func(t *testing.T) {
		names, metas, contents := 0, 0, 0

		afterName := match.EvalNames(rule, func(p match.NamePred) bool {
			names++
			return p.Eval("eval.rs")
		})
		require.False(t, afterName.Decided())

		info, err := fs.Stat(scenarioFS(), "eval.rs")
		require.NoError(t, err)
		afterMeta := match.EvalMeta(afterName.Rest, func(p match.MetaPred) bool {
			metas++
			return p.Eval(info)
		})
		require.False(t, afterMeta.Decided())

		data, err := fs.ReadFile(scenarioFS(), "eval.rs")
		require.NoError(t, err)
		verdict := match.EvalContent(afterMeta.Rest, func(p match.ContentPred) bool {
			contents++
			return p.Eval(data)
		})

		assert.True(t, verdict)
		assert.Equal(t, 1, names)
		assert.Equal(t, 2, metas, "both metadata predicates are leaves of the same phase")
		assert.Equal(t, 1, contents)
	})
}
