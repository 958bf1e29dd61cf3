package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/pursuit/internal/llm"
)

// GenerateConceptPath is the gateway route served by the HTTP API.
const GenerateConceptPath = "/api/generate-concept"

type httpGateway struct {
	baseURL string
	http    *http.Client
}

// NewHTTPGateway creates a gateway client for a running `pursuit serve`.
// httpClient may be nil.
func NewHTTPGateway(baseURL string, httpClient *http.Client) ConceptGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &httpGateway{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type gatewayError struct {
	Error string `json:"error"`
}

func (g *httpGateway) GenerateConcept(ctx context.Context, req ConceptRequest) (*ConceptFeedback, error) {
	if strings.TrimSpace(req.IdeaOrSummaryText) == "" {
		return nil, ErrIdeaRequired
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+GenerateConceptPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, llm.ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", llm.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge gatewayError
		if json.Unmarshal(body, &ge) == nil && ge.Error != "" {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, ge.Error)
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty gateway response", llm.ErrInvalidOutput)
	}
	return DecodeConceptFeedback(string(body))
}
