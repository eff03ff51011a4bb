package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// HTTPConfig configures the remote advisory endpoint.
type HTTPConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPAdvisor posts the request as JSON and decodes an Advice from the response body.
type HTTPAdvisor struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPAdvisor creates a remote advisor.
// If config.APIKey is empty, it falls back to the FUSION_ADVISOR_API_KEY environment variable.
func NewHTTPAdvisor(config HTTPConfig) *HTTPAdvisor {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("FUSION_ADVISOR_API_KEY")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPAdvisor{
		endpoint: config.Endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Available reports whether an endpoint is configured.
func (h *HTTPAdvisor) Available() bool {
	return h.endpoint != ""
}

func (h *HTTPAdvisor) Advise(ctx context.Context, req Request) (Advice, error) {
	if !h.Available() {
		return Advice{}, ErrNoAdvisor
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return Advice{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Advice{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return Advice{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Advice{}, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Advice{}, fmt.Errorf("advisor returned status %d: %s", resp.StatusCode, string(body))
	}

	return ParseAdvice(body)
}

// ParseAdvice decodes and validates an advice document.
func ParseAdvice(body []byte) (Advice, error) {
	var adv Advice
	if err := json.Unmarshal(body, &adv); err != nil {
		return Advice{}, fmt.Errorf("%w: %v", ErrMalformedAdvice, err)
	}
	if err := adv.Validate(); err != nil {
		return Advice{}, err
	}
	return adv, nil
}
