package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/arith"
)

// GraphOptions contains the configuration for the graph command.
type GraphOptions struct {
	Path  string // document path, "-" for stdin
	Debug bool
	Out   io.Writer
}

// RunGraph renders an expression document as a Mermaid flowchart. Paste the
// output into any Mermaid renderer to see the tree the engine evaluates.
func RunGraph(opts GraphOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	data, err := readDocument(opts.Path)
	if err != nil {
		return err
	}

	tree, err := arith.DecodeYAML(data)
	if err != nil {
		return err
	}
	logger.Debug("document decoded", "rendered", tree.String())

	fmt.Fprint(opts.Out, graph.Expression(tree))
	return nil
}
