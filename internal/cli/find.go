package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	units "github.com/docker/go-units"

	"github.com/aretw0/espalier/pkg/match"
)

// FindOptions contains all the configuration for the find command.
type FindOptions struct {
	Root       string
	RulesPath  string // rule document; empty means compose from the flags below
	NameHas    string
	NameSuffix string
	ContentHas string
	Executable bool
	MinSize    string // human byte counts, e.g. "1KB"
	MaxSize    string
	JSON       bool
	Debug      bool
	Out        io.Writer
}

// findResult is the JSON shape printed in --json mode.
type findResult struct {
	Rule    string   `json:"rule"`
	Matches []string `json:"matches"`
	Checked int      `json:"checked"`
}

// BuildRule resolves the find flags into one rule expression. A rules file
// wins; otherwise the predicate flags are folded into a conjunction.
func BuildRule(opts FindOptions) (*match.Full, error) {
	if opts.RulesPath != "" {
		data, err := readDocument(opts.RulesPath)
		if err != nil {
			return nil, err
		}
		return match.DecodeRule(data)
	}

	var preds []*match.Full
	if opts.NameHas != "" {
		preds = append(preds, match.NameHas(opts.NameHas))
	}
	if opts.NameSuffix != "" {
		preds = append(preds, match.NameSuffixed(opts.NameSuffix))
	}
	if opts.MinSize != "" || opts.MaxSize != "" {
		min, max, err := parseSizeBounds(opts.MinSize, opts.MaxSize)
		if err != nil {
			return nil, err
		}
		preds = append(preds, match.SizeIn(min, max))
	}
	if opts.Executable {
		preds = append(preds, match.Executable())
	}
	if opts.ContentHas != "" {
		preds = append(preds, match.ContentHas(opts.ContentHas))
	}

	if len(preds) == 0 {
		return nil, fmt.Errorf("no rule given: pass --rules or at least one predicate flag")
	}

	rule := preds[0]
	for _, p := range preds[1:] {
		rule = match.And(rule, p)
	}
	return rule, nil
}

// RunFind walks the root directory and prints every file the rule matches.
func RunFind(ctx context.Context, opts FindOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := createLogger(opts.Debug)

	rule, err := BuildRule(opts)
	if err != nil {
		return err
	}
	logger.Debug("rule resolved", "rule", rule.String())

	root := opts.Root
	if root == "" {
		root = "."
	}

	matcher := match.New(rule, match.WithLogger(logger))
	fsys := os.DirFS(root)

	res := findResult{Rule: rule.String(), Matches: []string{}}
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Version control internals are never interesting matches.
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res.Checked++
		ok, err := matcher.Match(ctx, fsys, path)
		if err != nil {
			return fmt.Errorf("matching %s: %w", path, err)
		}
		if ok {
			res.Matches = append(res.Matches, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(opts.Out, res)
	}
	for _, m := range res.Matches {
		fmt.Fprintln(opts.Out, m)
	}
	printSystemMessage(opts.Out, "%d of %d files matched.", len(res.Matches), res.Checked)
	return nil
}

// parseSizeBounds turns the human-readable size flags into [min, max).
func parseSizeBounds(minStr, maxStr string) (int64, int64, error) {
	min := int64(0)
	max := int64(math.MaxInt64)
	if minStr != "" {
		n, err := units.RAMInBytes(minStr)
		if err != nil {
			return 0, 0, fmt.Errorf("bad --min-size %q: %w", minStr, err)
		}
		min = n
	}
	if maxStr != "" {
		n, err := units.RAMInBytes(maxStr)
		if err != nil {
			return 0, 0, fmt.Errorf("bad --max-size %q: %w", maxStr, err)
		}
		max = n
	}
	if max < min {
		return 0, 0, fmt.Errorf("size bounds [%d, %d) are inverted", min, max)
	}
	return min, max, nil
}
