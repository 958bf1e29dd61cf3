package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexanderramin/pursuit/internal/intelligence"
	"github.com/alexanderramin/pursuit/internal/llm"
	"github.com/alexanderramin/pursuit/internal/repository"
	"github.com/alexanderramin/pursuit/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	last intelligence.ConceptRequest
	fb   *intelligence.ConceptFeedback
	err  error
}

func (g *stubGateway) GenerateConcept(_ context.Context, req intelligence.ConceptRequest) (*intelligence.ConceptFeedback, error) {
	g.last = req
	return g.fb, g.err
}

func sampleFeedback() *intelligence.ConceptFeedback {
	return &intelligence.ConceptFeedback{
		Summary:             "Students open a bakery.",
		Strengths:           "- Real customers",
		AreasForImprovement: "- Budget",
		Suggestions:         "- Add a pitch day",
		Scores:              []intelligence.CriterionScore{{Criterion: "Clarity of Concept", Score: 3, Feedback: "ok"}},
		Questions:           []intelligence.FollowUpQuestion{{Question: "Who buys?", Criterion: "Student Relevance", Reason: "Audience"}},
	}
}

type fixture struct {
	router  *gin.Engine
	gateway *stubGateway
	prompts service.PromptService
	reg     *prometheus.Registry
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	gw := &stubGateway{fb: sampleFeedback()}
	prompts := service.NewPromptService("default prompt", repository.NewMemoryKVRepo(), nil, nil)

	router := NewRouter(Deps{
		Gateway:      gw,
		Prompts:      prompts,
		LLMAvailable: func(context.Context) bool { return true },
		Log:          zap.New(core),
		Gatherer:     reg,
		HTTPMetrics:  metrics,
		CORSOrigins:  []string{"http://localhost:5173"},
	})
	return &fixture{router: router, gateway: gw, prompts: prompts, reg: reg, logs: logs}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestGenerateConcept_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/generate-concept", `{"idea":"bake bread","stage":"idea"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Students open a bakery.", body["conceptSummary"])
	assert.Len(t, body["questions"], 1)

	assert.Equal(t, "bake bread", f.gateway.last.IdeaOrSummaryText)
	assert.Equal(t, "default prompt", f.gateway.last.PromptOverride, "active prompt fills a missing override")
}

func TestGenerateConcept_ExplicitPromptWins(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/generate-concept", `{"idea":"x","prompt":"mine"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mine", f.gateway.last.PromptOverride)
}

func TestGenerateConcept_IdeaRequired(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{}`, `{"idea":"   "}`, `not json`} {
		rec := f.do(http.MethodPost, "/api/generate-concept", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"Idea is required"}`, rec.Body.String())
	}
}

func TestGenerateConcept_Failure(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = llm.ErrInvalidOutput

	rec := f.do(http.MethodPost, "/api/generate-concept", `{"idea":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate concept"}`, rec.Body.String())
	assert.Equal(t, 1, f.logs.FilterMessage("concept generation failed").Len())
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","llm":true}`, rec.Body.String())
}

func TestPromptEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/prompt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[promptResponse](t, rec)
	assert.Equal(t, "default prompt", state.Prompt)
	assert.Equal(t, "default prompt", state.DefaultPrompt)
	assert.Empty(t, state.Versions)

	rec = f.do(http.MethodPut, "/api/prompt", `{"prompt":"grade kindly"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decode[promptResponse](t, rec)
	assert.Equal(t, "saved new version", state.Outcome)
	assert.Equal(t, "grade kindly", state.Prompt)
	require.Len(t, state.Versions, 1)
	id := state.Versions[0].ID
	assert.Equal(t, id, state.ActiveVersionID)

	rec = f.do(http.MethodPost, "/api/prompt/default", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "default prompt", f.prompts.Active())

	rec = f.do(http.MethodPost, "/api/prompt/versions/"+id+"/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grade kindly", f.prompts.Active())

	rec = f.do(http.MethodDelete, "/api/prompt/versions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "default prompt", f.prompts.Active())

	rec = f.do(http.MethodDelete, "/api/prompt/versions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type brokenStore struct{ repository.KVStore }

func (brokenStore) Set(context.Context, string, string) error { return errors.New("read-only") }
func (brokenStore) Remove(context.Context, string) error      { return errors.New("read-only") }

func TestPromptEndpoints_StoreFailure(t *testing.T) {
	router := NewRouter(Deps{
		Prompts: service.NewPromptService("d", brokenStore{repository.NewMemoryKVRepo()}, nil, nil),
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/prompt/default", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPromptEndpoints_Unconfigured(t *testing.T) {
	router := NewRouter(Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/prompt", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/generate-concept", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodGet, "/healthz", "")
	f.do(http.MethodGet, "/healthz", "")

	assert.Equal(t, 1, promtest.CollectAndCount(f.reg, "pursuit_http_requests_total"), "one series for GET /healthz 200")
	rec := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pursuit_http_requests_total{method="GET",route="/healthz",status="200"} 2`)
}
