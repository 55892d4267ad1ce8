package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/trace"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	s, err := NewServer(memory.NewStore())
	require.NoError(t, err)
	return s.Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSpecValidates(t *testing.T) {
	doc, err := Spec()
	require.NoError(t, err)
	assert.Equal(t, "Espalier API", doc.Info.Title)
	assert.Equal(t, "0.1.0", doc.Info.Version)
}

func TestEval(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/eval",
		`{"expression": {"mul": [{"sub": [5, 3]}, {"add": [3, 12]}]}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp evalResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(30), resp.Result)
	assert.Equal(t, "((5 - 3) * (3 + 12))", resp.Rendered)
	assert.Equal(t, 14, resp.Steps)
	assert.Empty(t, resp.TraceID)
}

func TestEvalLiteralIsExact(t *testing.T) {
	h := newTestHandler(t)

	// 2^53+1 would be corrupted by a float64 round trip.
	rr := do(t, h, http.MethodPost, "/eval", `{"expression": 9007199254740993}`)
	require.Equal(t, http.StatusOK, rr.Code)

	dec := json.NewDecoder(rr.Body)
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))
	assert.Equal(t, "9007199254740993", raw["result"].(json.Number).String())
}

func TestEvalRejectsBadDocuments(t *testing.T) {
	h := newTestHandler(t)

	cases := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{"expression": `, "invalid request body"},
		{"missing expression", `{}`, "missing expression"},
		{"unknown operator", `{"expression": {"div": [1, 2]}}`, "unknown operator"},
		{"arity", `{"expression": {"add": [1]}}`, "wants [left, right]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/eval", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.want)
		})
	}
}

func TestTraceLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/eval",
		`{"expression": {"add": [1, {"mul": [2, 3]}]}, "trace": true}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp evalResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.TraceID)
	assert.Equal(t, int64(7), resp.Result)

	rr = do(t, h, http.MethodGet, "/traces/"+resp.TraceID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var tr trace.Trace
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tr))
	assert.Equal(t, "(1 + (2 * 3))", tr.Label)
	assert.Equal(t, "7", tr.Result)
	assert.Len(t, tr.Steps, 10)

	rr = do(t, h, http.MethodGet, "/traces", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), resp.TraceID)

	rr = do(t, h, http.MethodDelete, "/traces/"+resp.TraceID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/traces/"+resp.TraceID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListTracesEmpty(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/traces", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"traces": []}`, rr.Body.String())
}

func TestMatch(t *testing.T) {
	h := newTestHandler(t)

	body := `{
		"rule": {"or": [
			{"and": [{"name_suffix": ".rs"}, {"content_has": "eval"}]},
			{"executable": true}
		]},
		"files": [
			{"path": "src/eval.rs", "content": "fn eval() {}"},
			{"path": "bin/tool", "content": "#!/bin/sh", "executable": true},
			{"path": "notes.txt", "content": "nothing to see"}
		]
	}`
	rr := do(t, h, http.MethodPost, "/match", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp matchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"src/eval.rs", "bin/tool"}, resp.Matches)
	assert.Equal(t, 3, resp.Checked)
}

func TestMatchRejectsBadInput(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodPost, "/match", `{"rule": {"frobnicate": true}, "files": []}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown rule")

	rr = do(t, h, http.MethodPost, "/match",
		`{"rule": {"lit": true}, "files": [{"path": "/etc/passwd"}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid file path")
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "espalier-http", info["app"])
	assert.Equal(t, "0.1.0", info["api_version"])
	assert.NotEmpty(t, info["version"])
}

func TestContractEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "openapi: 3.0.3")

	rr = do(t, h, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "SwaggerUIBundle")

	rr = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "espalier_eval_steps")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t)

	rr := do(t, h, http.MethodOptions, "/eval", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
