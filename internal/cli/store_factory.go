package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	journal "github.com/aretw0/espalier/pkg/adapters/loam"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/persistence/middleware"
	"github.com/aretw0/espalier/pkg/ports"
)

// DefaultJournalDir is where traces land when no explicit store is picked.
const DefaultJournalDir = ".espalier"

// Environment variables that wrap the chosen store with persistence
// middleware. The key is hex-encoded, the redact list comma-separated.
const (
	EnvTraceKey = "ESPALIER_TRACE_KEY"
	EnvRedact   = "ESPALIER_REDACT"
)

// StoreOptions selects the trace store backing a command.
type StoreOptions struct {
	RedisAddr  string
	JournalDir string
	Versioned  bool
}

// NewTraceStore initializes a trace store with standard CLI conventions.
// Redis wins over the journal when both are configured. ESPALIER_TRACE_KEY
// (64 hex chars) encrypts stored traces at rest and ESPALIER_REDACT
// (comma-separated regexps) scrubs matching text before they are written.
// The returned closer releases the store's resources and is safe to call on
// every path.
func NewTraceStore(opts StoreOptions, logger *slog.Logger) (ports.TraceStore, func() error, error) {
	noop := func() error { return nil }

	var (
		store  ports.TraceStore
		closer = noop
	)

	switch {
	case opts.RedisAddr != "":
		rs := redis.New(opts.RedisAddr, "", 0)
		logger.Debug("using redis trace store", "address", opts.RedisAddr)
		store, closer = rs, rs.Close

	default:
		dir := opts.JournalDir

		// Smart Convention: a local journal directory opts the command into
		// durable traces without any flags. Explicit flags still win.
		if dir == "" {
			if fi, err := os.Stat(DefaultJournalDir); err == nil && fi.IsDir() {
				dir = DefaultJournalDir
			}
		}

		if dir != "" {
			j, err := journal.Open(dir, journal.WithVersioning(opts.Versioned))
			if err != nil {
				return nil, noop, fmt.Errorf("opening journal: %w", err)
			}
			logger.Debug("using journal trace store", "dir", j.Dir())
			store = j
		} else {
			logger.Debug("using in-memory trace store")
			store = memory.NewStore()
		}
	}

	store, err := applyEnvMiddleware(store, logger)
	if err != nil {
		closer()
		return nil, noop, err
	}

	return store, closer, nil
}

// applyEnvMiddleware wraps the store per the ESPALIER_* environment.
// Redaction wraps outermost so scrubbing happens before any ciphertext is
// produced on the save path.
func applyEnvMiddleware(store ports.TraceStore, logger *slog.Logger) (ports.TraceStore, error) {
	if key := os.Getenv(EnvTraceKey); key != "" {
		raw, err := hex.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", EnvTraceKey, err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", EnvTraceKey, len(raw))
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: raw})(store)
		logger.Debug("trace encryption enabled")
	}

	if raw := os.Getenv(EnvRedact); raw != "" {
		patterns := strings.Split(raw, ",")
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("bad %s pattern %q: %w", EnvRedact, p, err)
			}
		}
		store = middleware.NewRedactionMiddleware(patterns)(store)
		logger.Debug("trace redaction enabled", "patterns", len(patterns))
	}

	return store, nil
}
