// Package api carries the OpenAPI contract for the HTTP adapter.
package api

import _ "embed"

// OpenAPI is the raw service contract. The HTTP adapter validates it at
// startup and serves it at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
