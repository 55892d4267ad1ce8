package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGraph(t *testing.T) {
	t.Run("renders the flattened expression", func(t *testing.T) {
		path := writeDocument(t, "expr.yaml", "mul:\n  - sub: [5, 3]\n  - add: [3, 12]\n")
		var out bytes.Buffer

		require.NoError(t, RunGraph(GraphOptions{Path: path, Out: &out}))
		assert.Contains(t, out.String(), "graph TD")
		assert.Contains(t, out.String(), `n0["*"]`)
		assert.Contains(t, out.String(), "n0 --> n1")
	})

	t.Run("bad document fails", func(t *testing.T) {
		path := writeDocument(t, "expr.yaml", "div: [1, 2]")
		err := RunGraph(GraphOptions{Path: path, Out: &bytes.Buffer{}})
		assert.ErrorContains(t, err, "unknown operator")
	})
}
