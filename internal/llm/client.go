package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task           TaskType
	SystemPrompt   string
	UserPrompt     string
	Temperature    *float64 // nil uses task default
	MaxTokens      *int     // nil uses task default
	ResponseFormat *ResponseFormat
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the provider is reachable.
	Available(ctx context.Context) bool
}

// NewClient builds the client for cfg.Provider.
func NewClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, observer)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, observer, nil)
	case ProviderOllama, "":
		return NewOllamaClient(cfg, observer), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
	}
}

// attemptFunc performs one provider round trip and returns the output text
// and the model that produced it.
type attemptFunc func(ctx context.Context, p resolvedParams) (text, model string, err error)

// resolvedParams are the request settings after task defaults are applied.
type resolvedParams struct {
	Temperature float64
	MaxTokens   int
}

// caller applies the shared timeout, retry and observer policy.
type caller struct {
	cfg      LLMConfig
	observer Observer
}

func newCaller(cfg LLMConfig, observer Observer) caller {
	if observer == nil {
		observer = NoopObserver{}
	}
	return caller{cfg: cfg, observer: observer}
}

func (c caller) resolve(req GenerateRequest) resolvedParams {
	taskCfg := c.cfg.Tasks[req.Task]
	p := resolvedParams{Temperature: taskCfg.Temperature, MaxTokens: taskCfg.MaxTokens}
	if req.Temperature != nil {
		p.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		p.MaxTokens = *req.MaxTokens
	}
	return p
}

// run calls fn up to 1+MaxRetries times. Each attempt gets its own task
// timeout; a cancelled parent context stops the loop.
func (c caller) run(ctx context.Context, req GenerateRequest, fn attemptFunc) (*GenerateResponse, error) {
	start := time.Now()
	params := c.resolve(req)
	timeout := time.Duration(c.cfg.TaskTimeout(req.Task)) * time.Millisecond

	var lastErr error
	timedOut := false
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		text, model, err := fn(attemptCtx, params)
		deadlineHit := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()

		if err == nil {
			latency := time.Since(start).Milliseconds()
			if model == "" {
				model = c.cfg.Model
			}
			c.observer.OnCallComplete(LLMCallEvent{
				Task:      req.Task,
				Provider:  c.cfg.Provider,
				Model:     model,
				LatencyMs: latency,
				Success:   true,
			})
			return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
		}
		lastErr = err
		timedOut = deadlineHit

		if ctx.Err() != nil || errors.Is(err, ErrMissingAPIKey) {
			break
		}
	}

	var finalErr error
	switch {
	case errors.Is(lastErr, ErrMissingAPIKey):
		finalErr = lastErr
	case timedOut || errors.Is(ctx.Err(), context.DeadlineExceeded):
		finalErr = ErrTimeout
	case ctx.Err() != nil:
		finalErr = ctx.Err()
	case isConnectionError(lastErr):
		finalErr = fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
	default:
		finalErr = fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
	}

	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Provider:  c.cfg.Provider,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(finalErr),
	})
	return nil, finalErr
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrProviderUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrMissingAPIKey):
		return "MISSING_API_KEY"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}
