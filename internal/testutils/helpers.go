package testutils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	journal "github.com/aretw0/espalier/pkg/adapters/loam"
)

// SetupJournal creates a temporary directory and opens a trace journal in
// it. It returns the absolute path to the temp dir and the opened journal,
// failing the test immediately on error.
func SetupJournal(t *testing.T, opts ...journal.Option) (string, *journal.Journal) {
	t.Helper()

	tmpDir := t.TempDir()

	// t.TempDir usually returns an absolute path already; making sure keeps
	// Loam happy on every platform.
	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	j, err := journal.Open(absPath, opts...)
	require.NoError(t, err, "Failed to open journal")

	return absPath, j
}
