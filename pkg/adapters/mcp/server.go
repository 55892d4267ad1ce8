// Package mcp exposes the evaluator, the rule matcher and the trace store to
// MCP clients over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"testing/fstest"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/arith"
	"github.com/aretw0/espalier/pkg/match"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/aretw0/espalier/pkg/trace"
)

// EvalResponse aligns with the OpenAPI schema and provides a unified
// structure across adapters.
type EvalResponse struct {
	Result   int64  `json:"result" jsonschema_description:"The evaluated value"`
	Rendered string `json:"rendered" jsonschema_description:"The expression in infix notation"`
	Steps    int    `json:"steps" jsonschema_description:"Engine steps taken"`
	TraceID  string `json:"trace_id,omitempty" jsonschema_description:"ID of the stored trace, when tracing was requested"`
}

// MatchResponse lists which of the described files satisfied the rule.
type MatchResponse struct {
	Matches []string `json:"matches" jsonschema_description:"Paths that satisfied the rule"`
	Checked int      `json:"checked" jsonschema_description:"Number of files checked"`
}

// TraceList carries the ids of every stored trace, oldest first.
type TraceList struct {
	Traces []string `json:"traces" jsonschema_description:"Stored trace ids, oldest first"`
}

// Server exposes the engine as an MCP server backed by a trace store.
type Server struct {
	store     ports.TraceStore
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger routes diagnostics to l. Stdio transports should point this at
// stderr so protocol frames stay clean.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(store ports.TraceStore, opts ...Option) *Server {
	s := &Server{
		store:     store,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: eval_expression
	evalTool := mcp.NewTool("eval_expression",
		mcp.WithDescription("Evaluate an arithmetic expression document and report the result."),
		mcp.WithString("expression", mcp.Required(),
			mcp.Description(`JSON expression document, e.g. {"mul": [{"sub": [5, 3]}, {"add": [3, 12]}]}`)),
		mcp.WithString("trace",
			mcp.Description("Set to 'true' to record the run as a stored trace (optional)")),
		mcp.WithOutputSchema[EvalResponse](),
	)
	s.mcpServer.AddTool(evalTool, mcp.NewStructuredToolHandler(s.handleEval))

	// TOOL: match_files
	matchTool := mcp.NewTool("match_files",
		mcp.WithDescription("Evaluate a rule document against a set of inline file descriptions."),
		mcp.WithString("rule", mcp.Required(),
			mcp.Description(`YAML or JSON rule document, e.g. {"and": [{"name_suffix": ".go"}, {"content_has": "func"}]}`)),
		mcp.WithString("files", mcp.Required(),
			mcp.Description(`JSON array of files, each {"path": ..., "content": ..., "executable": bool}`)),
		mcp.WithOutputSchema[MatchResponse](),
	)
	s.mcpServer.AddTool(matchTool, mcp.NewStructuredToolHandler(s.handleMatch))

	// TOOL: get_trace
	getTraceTool := mcp.NewTool("get_trace",
		mcp.WithDescription("Fetch one stored trace in full, steps included."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Trace id")),
		mcp.WithOutputSchema[trace.Trace](),
	)
	s.mcpServer.AddTool(getTraceTool, mcp.NewStructuredToolHandler(s.handleGetTrace))

	// TOOL: list_traces
	listTool := mcp.NewTool("list_traces",
		mcp.WithDescription("List the ids of every stored trace, oldest first."),
		mcp.WithOutputSchema[TraceList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListTraces))
}

// Handler methods for structured tools

func (s *Server) handleEval(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvalResponse, error) {
	exprStr, _ := args["expression"].(string)
	if exprStr == "" {
		return EvalResponse{}, errors.New("expression is required")
	}

	tree, err := arith.DecodeJSON([]byte(exprStr))
	if err != nil {
		return EvalResponse{}, err
	}

	traced := false
	if ts, ok := args["trace"].(string); ok && ts != "" {
		traced, _ = strconv.ParseBool(ts)
	}

	resp := EvalResponse{Rendered: tree.String()}
	steps := 0
	counter := arith.EvalHooks{OnStep: func(st arith.EvalStep) { steps = st.N + 1 }}

	if traced {
		rec := arith.NewEvalRecorder(resp.Rendered)
		resp.Result = arith.Eval(tree, rec.Hooks(), counter)
		tr := rec.Finish(resp.Result)
		if err := s.store.Save(ctx, tr); err != nil {
			s.logger.Error("MCP eval: trace store rejected save", "error", err)
			return EvalResponse{}, fmt.Errorf("storing trace: %w", err)
		}
		resp.TraceID = tr.ID
	} else {
		resp.Result = arith.Eval(tree, counter)
	}
	resp.Steps = steps

	return resp, nil
}

func (s *Server) handleMatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MatchResponse, error) {
	ruleStr, _ := args["rule"].(string)
	if ruleStr == "" {
		return MatchResponse{}, errors.New("rule is required")
	}
	rule, err := match.DecodeRule([]byte(ruleStr))
	if err != nil {
		return MatchResponse{}, err
	}

	type fileSpec struct {
		Path       string `json:"path"`
		Content    string `json:"content"`
		Executable bool   `json:"executable"`
	}
	var files []fileSpec
	if filesStr, ok := args["files"].(string); ok && filesStr != "" {
		if err := json.Unmarshal([]byte(filesStr), &files); err != nil {
			return MatchResponse{}, fmt.Errorf("parsing files: %w", err)
		}
	}

	fsys := fstest.MapFS{}
	for _, f := range files {
		if !fs.ValidPath(f.Path) {
			return MatchResponse{}, fmt.Errorf("invalid file path %q", f.Path)
		}
		mode := fs.FileMode(0o644)
		if f.Executable {
			mode = 0o755
		}
		fsys[f.Path] = &fstest.MapFile{Data: []byte(f.Content), Mode: mode}
	}

	matcher := match.New(rule, match.WithLogger(s.logger))
	matches := make([]string, 0, len(files))
	for _, f := range files {
		ok, err := matcher.Match(ctx, fsys, f.Path)
		if err != nil {
			return MatchResponse{}, fmt.Errorf("matching %s: %w", f.Path, err)
		}
		if ok {
			matches = append(matches, f.Path)
		}
	}

	return MatchResponse{Matches: matches, Checked: len(files)}, nil
}

func (s *Server) handleGetTrace(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (trace.Trace, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return trace.Trace{}, errors.New("id is required")
	}
	tr, err := s.store.Load(ctx, id)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("loading trace %s: %w", id, err)
	}
	return *tr, nil
}

func (s *Server) handleListTraces(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TraceList, error) {
	ids, err := s.store.List(ctx)
	if err != nil {
		return TraceList{}, fmt.Errorf("listing traces: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return TraceList{Traces: ids}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://traces
	s.mcpServer.AddResource(mcp.NewResource("espalier://traces", "Stored Traces",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list traces: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://traces",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
