package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAITestConfig(endpoint string) LLMConfig {
	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.Endpoint = endpoint
	cfg.Model = "gpt-4o-2024-08-06"
	cfg.APIKey = "sk-test"
	cfg.MaxRetries = 0
	return cfg
}

func writeResponses(w http.ResponseWriter, parts ...map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"model": "gpt-4o-2024-08-06",
		"output": []any{
			map[string]any{"type": "reasoning"},
			map[string]any{"type": "message", "role": "assistant", "content": parts},
		},
	})
}

func TestOpenAIClient_Generate_StructuredOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-2024-08-06", body["model"])

		input := body["input"].([]any)
		require.Len(t, input, 2)
		assert.Equal(t, "system", input[0].(map[string]any)["role"])
		assert.Equal(t, "the rubric", input[0].(map[string]any)["content"])
		assert.Equal(t, "the idea", input[1].(map[string]any)["content"])

		format := body["text"].(map[string]any)["format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		assert.Equal(t, "test_payload", format["name"])
		assert.Equal(t, true, format["strict"])

		writeResponses(w,
			map[string]any{"type": "output_text", "text": `{"conceptSummary":`},
			map[string]any{"type": "output_text", "text": `"x"}`},
		)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(openAITestConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Task:           TaskIdea,
		SystemPrompt:   "the rubric",
		UserPrompt:     "the idea",
		ResponseFormat: testFormat(),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"conceptSummary":"x"}`, resp.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.Model)
}

func TestOpenAIClient_Generate_Refusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResponses(w, map[string]any{"type": "refusal", "refusal": "cannot help"})
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(openAITestConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskIdea, UserPrompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot help")
}

func TestOpenAIClient_Generate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(openAITestConfig(srv.URL), NoopObserver{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Task: TaskIdea, UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAIClient_RequiresAPIKey(t *testing.T) {
	cfg := openAITestConfig("http://unused")
	cfg.APIKey = " "
	_, err := NewOpenAIClient(cfg, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenAIClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/gpt-4o-2024-08-06", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(openAITestConfig(srv.URL), nil)
	require.NoError(t, err)
	assert.True(t, client.Available(context.Background()))
}
