package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// defaultWrap bounds the replay width when the writer is not a terminal
// or the terminal is wider than comfortable reading allows.
const defaultWrap = 100

// Markdown builds a step-by-step replay document for a trace. Each step
// shows the remaining work stack (next item on top) and the result stack.
func Markdown(tr *Trace) string {
	var b strings.Builder

	title := tr.Label
	if title == "" {
		title = tr.ID
	}
	fmt.Fprintf(&b, "# Trace %s\n\n", title)
	fmt.Fprintf(&b, "- id: `%s`\n", tr.ID)
	fmt.Fprintf(&b, "- recorded: %s\n", tr.CreatedAt.Format(time.RFC3339))
	if tr.Result != "" {
		fmt.Fprintf(&b, "- result: `%s`\n", tr.Result)
	}
	fmt.Fprintf(&b, "- steps: %d\n", len(tr.Steps))

	for _, s := range tr.Steps {
		fmt.Fprintf(&b, "\n## Step %d: %s\n\n", s.N, s.Op)

		b.WriteString("Work, next on top:\n\n")
		if len(s.Work) == 0 {
			b.WriteString("- _empty_\n")
		}
		for i := len(s.Work) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "- `%s`\n", s.Work[i])
		}

		b.WriteString("\nResults:\n\n")
		if len(s.Results) == 0 {
			b.WriteString("- _empty_\n")
		}
		for _, out := range s.Results {
			fmt.Fprintf(&b, "- `%s`\n", out)
		}
	}

	return b.String()
}

// Render writes the replay to w through glamour, auto-detecting the
// light/dark style and wrapping to the terminal width when w is a TTY.
func Render(w io.Writer, tr *Trace) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth(w)),
	)
	if err != nil {
		return fmt.Errorf("trace: init renderer: %w", err)
	}

	styled, err := r.Render(Markdown(tr))
	if err != nil {
		return fmt.Errorf("trace: render markdown: %w", err)
	}

	_, err = io.WriteString(w, styled)
	return err
}

// RenderPlain writes a compact one-line-per-step replay, color coding the
// operations when w supports ANSI. Suited to logs and narrow panes.
func RenderPlain(w io.Writer, tr *Trace) {
	out := termenv.NewOutput(w)

	header := tr.Label
	if header == "" {
		header = tr.ID
	}
	fmt.Fprintln(w, out.String(header).Bold())

	for _, s := range tr.Steps {
		op := out.String(fmt.Sprintf("%-8s", s.Op))
		switch s.Op {
		case "expand":
			op = op.Foreground(out.Color("6"))
		case "collapse":
			op = op.Foreground(out.Color("5"))
		}
		top := ""
		if n := len(s.Work); n > 0 {
			top = s.Work[n-1]
		}
		fmt.Fprintf(w, "%4d  %s work=%-3d results=%-3d %s\n",
			s.N, op, len(s.Work), len(s.Results), top)
	}

	if tr.Result != "" {
		fmt.Fprintf(w, "result: %s\n", out.String(tr.Result).Bold())
	}
}

// wrapWidth picks the word wrap column for a writer.
func wrapWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWrap
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return defaultWrap
	}

	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 || width > defaultWrap {
		return defaultWrap
	}
	return width
}
