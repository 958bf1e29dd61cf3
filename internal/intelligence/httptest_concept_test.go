package intelligence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/pursuit/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping HTTP integration test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

// The Ollama wire format and the concept decoder must agree end to end.
func TestConceptService_WithOllamaHTTPTestServer(t *testing.T) {
	var got map[string]any
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.2",
			"response": "```json\n" + validFeedbackJSON + "\n```",
			"done":     true,
		})
	})
	defer srv.Close()

	cfg := llm.DefaultConfig()
	cfg.Endpoint = srv.URL
	svc := NewConceptService(llm.NewOllamaClient(cfg, nil), nil)

	fb, err := svc.GenerateConcept(context.Background(), ConceptRequest{IdeaOrSummaryText: "Freeform idea:\nmuseum"})
	require.NoError(t, err)
	assert.Equal(t, "Students run a pop-up museum.", fb.Summary)
	assert.Len(t, fb.Questions, 2)

	assert.Equal(t, DefaultPrompt, got["system"])
	assert.Equal(t, "Freeform idea:\nmuseum", got["prompt"])
	format, ok := got["format"].(map[string]any)
	require.True(t, ok, "format should carry the JSON schema")
	assert.Equal(t, "object", format["type"])
}

func TestHTTPGateway_Success(t *testing.T) {
	var got ConceptRequest
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, GenerateConceptPath, r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(validFeedbackJSON))
	})
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL+"/", srv.Client())
	fb, err := gw.GenerateConcept(context.Background(), ConceptRequest{
		IdeaOrSummaryText: "Concept Summary:\nS",
		PromptOverride:    "custom",
		Stage:             "refinement",
	})
	require.NoError(t, err)
	assert.Len(t, fb.Scores, 2)
	assert.Equal(t, ConceptRequest{IdeaOrSummaryText: "Concept Summary:\nS", PromptOverride: "custom", Stage: "refinement"}, got)
}

func TestHTTPGateway_ErrorBody(t *testing.T) {
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to generate concept"}`))
	})
	defer srv.Close()

	_, err := NewHTTPGateway(srv.URL, srv.Client()).GenerateConcept(context.Background(), ConceptRequest{IdeaOrSummaryText: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to generate concept")
}

func TestHTTPGateway_EmptyBody(t *testing.T) {
	srv := newHTTPTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer srv.Close()

	_, err := NewHTTPGateway(srv.URL, srv.Client()).GenerateConcept(context.Background(), ConceptRequest{IdeaOrSummaryText: "x"})
	assert.ErrorIs(t, err, llm.ErrInvalidOutput)
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	srv := newHTTPTestServer(t, func(http.ResponseWriter, *http.Request) {})
	url := srv.URL
	srv.Close()

	_, err := NewHTTPGateway(url, nil).GenerateConcept(context.Background(), ConceptRequest{IdeaOrSummaryText: "x"})
	assert.ErrorIs(t, err, llm.ErrProviderUnavailable)
}

func TestHTTPGateway_BlankIdea(t *testing.T) {
	_, err := NewHTTPGateway("http://127.0.0.1:1", nil).GenerateConcept(context.Background(), ConceptRequest{})
	assert.ErrorIs(t, err, ErrIdeaRequired)
}
