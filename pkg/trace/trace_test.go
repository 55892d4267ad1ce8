package trace_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/arith"
	"github.com/aretw0/espalier/pkg/trace"
)

// recordedEval runs (5 - 3) * (3 + 12) with a fully wired recorder attached.
func recordedEval(t *testing.T) *trace.Trace {
	t.Helper()

	expr := arith.Mul(
		arith.Sub(arith.Lit(5), arith.Lit(3)),
		arith.Add(arith.Lit(3), arith.Lit(12)),
	)

	rec := trace.NewRecorder(
		trace.WithLabel[*arith.Tree, arith.Expr[espalier.Hole], int64](expr.String()),
		trace.WithSeedRenderer[*arith.Tree, arith.Expr[espalier.Hole], int64](
			func(t *arith.Tree) string { return t.String() },
		),
		trace.WithFrameRenderer[*arith.Tree, arith.Expr[espalier.Hole], int64](
			arith.DescribeFrame,
		),
	)

	got := arith.Eval(expr, rec.Hooks())
	require.Equal(t, int64(30), got)

	return rec.Finish(got)
}

func TestRecorderCapturesEveryStep(t *testing.T) {
	tr := recordedEval(t)

	_, err := uuid.Parse(tr.ID)
	require.NoError(t, err, "trace id should be a valid uuid")
	require.False(t, tr.CreatedAt.IsZero())
	assert.Equal(t, "((5 - 3) * (3 + 12))", tr.Label)
	assert.Equal(t, "30", tr.Result)

	// 7 nodes, each expanded once and collapsed once.
	require.Len(t, tr.Steps, 14)

	first := tr.Steps[0]
	assert.Equal(t, 0, first.N)
	assert.Equal(t, "expand", first.Op)
	assert.Equal(t, []string{
		"collapse (_ * _)",
		"expand (5 - 3)",
		"expand (3 + 12)",
	}, first.Work)
	assert.Empty(t, first.Results)

	last := tr.Steps[len(tr.Steps)-1]
	assert.Equal(t, 13, last.N)
	assert.Equal(t, "collapse", last.Op)
	assert.Empty(t, last.Work)
	assert.Equal(t, []string{"30"}, last.Results)

	for i, s := range tr.Steps {
		if s.N != i {
			t.Fatalf("step %d recorded ordinal %d", i, s.N)
		}
	}
}

func TestRecorderDefaultRenderersUseSprint(t *testing.T) {
	rec := trace.NewRecorder[int, string, int]()

	rec.Hooks().OnStep(espalier.Step[int, string, int]{
		N:  0,
		Op: espalier.OpExpand,
		Work: []espalier.Task[int, string]{
			{Op: espalier.OpExpand, Seed: 7},
			{Op: espalier.OpCollapse, Frame: "seven"},
		},
		Results: []int{3},
	})
	tr := rec.Finish(10)

	require.Len(t, tr.Steps, 1)
	assert.Equal(t, []string{"expand 7", "collapse seven"}, tr.Steps[0].Work)
	assert.Equal(t, []string{"3"}, tr.Steps[0].Results)
	assert.Equal(t, "10", tr.Result)
}

func TestTraceJSONRoundTrip(t *testing.T) {
	tr := recordedEval(t)

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	var got trace.Trace
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, tr.Label, got.Label)
	assert.Equal(t, tr.Result, got.Result)
	assert.Equal(t, tr.Steps, got.Steps)
	if !got.CreatedAt.Equal(tr.CreatedAt) {
		t.Errorf("created_at drifted through JSON: got %v, want %v", got.CreatedAt, tr.CreatedAt)
	}
}

func TestMarkdownReplay(t *testing.T) {
	tr := recordedEval(t)

	md := trace.Markdown(tr)

	assert.Contains(t, md, "# Trace ((5 - 3) * (3 + 12))")
	assert.Contains(t, md, "- steps: 14")
	assert.Contains(t, md, "- result: `30`")
	assert.Contains(t, md, "## Step 0: expand")
	assert.Contains(t, md, "`collapse (_ * _)`")
	assert.Contains(t, md, "## Step 13: collapse")
}

func TestRenderStyled(t *testing.T) {
	tr := recordedEval(t)

	var buf bytes.Buffer
	require.NoError(t, trace.Render(&buf, tr))
	assert.Contains(t, buf.String(), "Trace")
	assert.Contains(t, buf.String(), "Step 13")
}

func TestRenderPlain(t *testing.T) {
	tr := recordedEval(t)

	var buf bytes.Buffer
	trace.RenderPlain(&buf, tr)

	out := buf.String()
	// Header, one line per step, result line.
	assert.Equal(t, 16, strings.Count(out, "\n"))
	assert.Contains(t, out, "expand")
	assert.Contains(t, out, "collapse")
	assert.Contains(t, out, "result: 30")
}
