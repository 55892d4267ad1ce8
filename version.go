package espalier

import _ "embed"

// Version is the library release, embedded from the VERSION file.
// Callers should strings.TrimSpace it before display.
//
//go:embed VERSION
var Version string
