package match

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/aretw0/espalier/internal/logging"
)

// Matcher evaluates one rule against files, cheapest phase first. Path
// checks cost nothing, metadata costs one stat, content costs one read, and
// a later phase only runs while the verdict is still undecided. A rule that
// short-circuits on names or metadata never opens the file.
type Matcher struct {
	rule   *Full
	logger *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger routes per-phase decisions to logger at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) { m.logger = l }
}

// New builds a Matcher for rule.
func New(rule *Full, opts ...Option) *Matcher {
	m := &Matcher{
		rule:   rule,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Rule returns the matcher's rule.
func (m *Matcher) Rule() *Full { return m.rule }

// Match evaluates the rule against path inside fsys. Stat failures abort
// with an error; unreadable content does not, it just makes every content
// predicate false.
func (m *Matcher) Match(ctx context.Context, fsys fs.FS, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	afterName := EvalNames(m.rule, func(p NamePred) bool { return p.Eval(path) })
	if afterName.Decided() {
		m.logger.Debug("verdict after name phase", "path", path, "match", afterName.Value)
		return afterName.Value, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := fs.Stat(fsys, path)
	if err != nil {
		return false, fmt.Errorf("match: stat %s: %w", path, err)
	}
	afterMeta := EvalMeta(afterName.Rest, func(p MetaPred) bool { return p.Eval(info) })
	if afterMeta.Decided() {
		m.logger.Debug("verdict after metadata phase", "path", path, "match", afterMeta.Value)
		return afterMeta.Value, nil
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}
	contentFn := func(p ContentPred) bool { return false }
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		m.logger.Debug("content unreadable, content predicates count as false", "path", path, "err", err)
	} else {
		contentFn = func(p ContentPred) bool { return p.Eval(data) }
	}

	verdict := EvalContent(afterMeta.Rest, contentFn)
	m.logger.Debug("verdict after content phase", "path", path, "match", verdict)
	return verdict, nil
}
