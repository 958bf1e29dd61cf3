package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// openAIClient implements LLMClient on the OpenAI Responses API.
type openAIClient struct {
	cfg    LLMConfig
	http   *http.Client
	caller caller
}

// NewOpenAIClient returns ErrMissingAPIKey when cfg.APIKey is empty.
func NewOpenAIClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoints[ProviderOpenAI]
	}
	return &openAIClient{cfg: cfg, http: newHTTPClient(), caller: newCaller(cfg, observer)}, nil
}

type responsesInput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string           `json:"model"`
	Input []responsesInput `json:"input"`
	Text  *struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"max_output_tokens,omitempty"`
}

type responsesResponse struct {
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
}

// outputText joins the assistant's output_text parts.
func (r responsesResponse) outputText() (text, refusal string) {
	var out strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			switch c.Type {
			case "output_text":
				out.WriteString(c.Text)
			case "refusal":
				refusal = c.Refusal
			}
		}
	}
	return out.String(), refusal
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return c.caller.run(ctx, req, func(ctx context.Context, p resolvedParams) (string, string, error) {
		body := responsesRequest{
			Model: c.cfg.Model,
			Input: []responsesInput{
				{Role: "system", Content: req.SystemPrompt},
				{Role: "user", Content: req.UserPrompt},
			},
			Temperature:     p.Temperature,
			MaxOutputTokens: p.MaxTokens,
		}
		if rf := req.ResponseFormat; rf != nil && rf.Schema != nil {
			body.Text = &struct {
				Format map[string]any `json:"format,omitempty"`
			}{Format: map[string]any{
				"type":   "json_schema",
				"name":   rf.Name,
				"schema": rf.Schema.JSONSchema(),
				"strict": true,
			}}
		}

		var resp responsesResponse
		if err := c.post(ctx, "/v1/responses", body, &resp); err != nil {
			return "", "", err
		}
		text, refusal := resp.outputText()
		if refusal != "" {
			return "", "", fmt.Errorf("%w: model refused: %s", ErrInvalidOutput, refusal)
		}
		if strings.TrimSpace(text) == "" {
			return "", "", fmt.Errorf("%w: no output_text in response", ErrInvalidOutput)
		}
		return text, resp.Model, nil
	})
}

func (c *openAIClient) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("openai returned status %d: %s", httpResp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *openAIClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/v1/models/"+c.cfg.Model, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
