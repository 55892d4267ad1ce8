// Package http exposes the evaluator, the rule matcher and the trace store
// over a JSON API described by the embedded OpenAPI contract.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"testing/fstest"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/api"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/arith"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/ports"
)

// Spec parses and validates the embedded OpenAPI contract. A handler refuses
// to start when the contract it advertises does not validate.
func Spec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("http: loading openapi contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("http: invalid openapi contract: %w", err)
	}
	return doc, nil
}

// Server bundles the handlers for the evaluation API.
type Server struct {
	store  ports.TraceStore
	logger *slog.Logger
	spec   *openapi3.T
}

// Option configures a Server.
type Option func(*Server)

// WithLogger routes access and error logs to l instead of discarding them.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer validates the API contract and prepares a handler set backed by
// the given trace store.
func NewServer(store ports.TraceStore, opts ...Option) (*Server, error) {
	doc, err := Spec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:  store,
		logger: logging.NewNop(),
		spec:   doc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Routes wires every endpoint into a chi router, instrumented and with CORS
// enabled for browser consumers such as the bundled Swagger UI.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.instrument)

	r.Post("/eval", s.Eval)
	r.Post("/match", s.Match)
	r.Get("/traces", s.ListTraces)
	r.Get("/traces/{id}", s.GetTrace)
	r.Delete("/traces/{id}", s.DeleteTrace)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/docs", s.GetDocs)

	return enableCORS(r)
}

type evalRequest struct {
	Expression json.RawMessage `json:"expression"`
	Trace      bool            `json:"trace"`
}

type evalResponse struct {
	Result   int64  `json:"result"`
	Rendered string `json:"rendered"`
	Steps    int    `json:"steps"`
	TraceID  string `json:"trace_id,omitempty"`
}

// Eval decodes an expression document, evaluates it and optionally records
// the run as a stored trace.
func (s *Server) Eval(w http.ResponseWriter, r *http.Request) {
	var body evalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Expression) == 0 {
		s.writeError(w, http.StatusBadRequest, "missing expression")
		return
	}

	tree, err := arith.DecodeJSON(body.Expression)
	if err != nil {
		evalsTotal.WithLabelValues("error").Inc()
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := evalResponse{Rendered: tree.String()}
	steps := 0
	counter := arith.EvalHooks{OnStep: func(st arith.EvalStep) { steps = st.N + 1 }}

	if body.Trace {
		rec := arith.NewEvalRecorder(resp.Rendered)
		resp.Result = arith.Eval(tree, rec.Hooks(), counter)
		tr := rec.Finish(resp.Result)
		if err := s.store.Save(r.Context(), tr); err != nil {
			evalsTotal.WithLabelValues("error").Inc()
			s.logger.Error("failed to store trace", "id", tr.ID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "failed to store trace")
			return
		}
		resp.TraceID = tr.ID
	} else {
		resp.Result = arith.Eval(tree, counter)
	}
	resp.Steps = steps

	evalsTotal.WithLabelValues("ok").Inc()
	evalSteps.Observe(float64(steps))
	s.writeJSON(w, http.StatusOK, resp)
}

type fileSpec struct {
	Path       string `json:"path"`
	Content    string `json:"content"`
	Executable bool   `json:"executable"`
}

type matchRequest struct {
	Rule  json.RawMessage `json:"rule"`
	Files []fileSpec      `json:"files"`
}

type matchResponse struct {
	Matches []string `json:"matches"`
	Checked int      `json:"checked"`
}

// Match evaluates a rule document against a set of inline file descriptions
// and reports which of them satisfy it.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var body matchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(body.Rule) == 0 {
		s.writeError(w, http.StatusBadRequest, "missing rule")
		return
	}

	rule, err := match.DecodeRule(body.Rule)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fsys := fstest.MapFS{}
	for _, f := range body.Files {
		if !fs.ValidPath(f.Path) {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid file path %q", f.Path))
			return
		}
		mode := fs.FileMode(0o644)
		if f.Executable {
			mode = 0o755
		}
		fsys[f.Path] = &fstest.MapFile{Data: []byte(f.Content), Mode: mode}
	}

	matcher := match.New(rule, match.WithLogger(s.logger))
	matches := make([]string, 0, len(body.Files))
	for _, f := range body.Files {
		ok, err := matcher.Match(r.Context(), fsys, f.Path)
		if err != nil {
			s.logger.Error("match failed", "path", f.Path, "error", err)
			s.writeError(w, http.StatusInternalServerError, "match failed")
			return
		}
		if ok {
			matches = append(matches, f.Path)
		}
	}

	s.writeJSON(w, http.StatusOK, matchResponse{Matches: matches, Checked: len(body.Files)})
}

// ListTraces returns the ids of every stored trace, oldest first.
func (s *Server) ListTraces(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list traces", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list traces")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"traces": ids})
}

// GetTrace returns one stored trace in full, steps included.
func (s *Server) GetTrace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tr, err := s.store.Load(r.Context(), id)
	if errors.Is(err, ports.ErrTraceNotFound) {
		s.writeError(w, http.StatusNotFound, "trace not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load trace", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load trace")
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

// DeleteTrace removes a stored trace. Deleting an unknown id is not an error.
func (s *Server) DeleteTrace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.logger.Error("failed to delete trace", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete trace")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports build and contract versions.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "espalier-http",
		"version":     strings.TrimSpace(espalier.Version),
		"api_version": s.spec.Info.Version,
	})
}

// GetSpec serves the raw OpenAPI document.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(api.OpenAPI)
}

// GetDocs serves a minimal Swagger UI page pointed at the served contract.
func (s *Server) GetDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(swaggerHTML))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.logger.Warn("request rejected", "status", status, "error", msg)
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Espalier API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = () => {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
            });
        };
    </script>
</body>
</html>`
