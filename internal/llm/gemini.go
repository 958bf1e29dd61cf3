package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiClient implements LLMClient with the Google GenAI SDK.
type geminiClient struct {
	cfg    LLMConfig
	client *genai.Client
	caller caller
}

// NewGeminiClient creates a Gemini-backed client. httpClient may be nil.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer, httpClient *http.Client) (LLMClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[ProviderGemini]
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}
	if httpClient != nil {
		cc.HTTPClient = httpClient
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client, caller: newCaller(cfg, observer)}, nil
}

func (c *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return c.caller.run(ctx, req, func(ctx context.Context, p resolvedParams) (string, string, error) {
		config := &genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(p.Temperature)),
		}
		if p.MaxTokens > 0 {
			config.MaxOutputTokens = int32(p.MaxTokens)
		}
		if req.SystemPrompt != "" {
			config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
		}
		if rf := req.ResponseFormat; rf != nil && rf.Schema != nil {
			config.ResponseMIMEType = "application/json"
			config.ResponseSchema = toGenaiSchema(rf.Schema)
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(req.UserPrompt), config)
		if err != nil {
			return "", "", fmt.Errorf("gemini generate: %w", err)
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			return "", "", fmt.Errorf("%w: empty gemini response", ErrInvalidOutput)
		}
		return text, resp.ModelVersion, nil
	})
}

func (c *geminiClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := c.client.Models.Get(ctx, c.cfg.Model, nil)
	return err == nil
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toGenaiSchema(p)
		}
		out.Required = append([]string{}, s.Order...)
		out.PropertyOrdering = append([]string{}, s.Order...)
	}
	return out
}
