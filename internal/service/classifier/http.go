package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured signals a missing upstream base URL.
var ErrNotConfigured = errors.New("classifier base URL is not configured")

// UpstreamResponse carries the raw upstream reply so callers can relay it
// without re-encoding.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the upstream returned a success status.
func (r *UpstreamResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPClient talks to the prediction service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the given base URL. An empty base URL
// is allowed; requests then fail with ErrNotConfigured.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Configured reports whether a base URL was provided.
func (c *HTTPClient) Configured() bool {
	return c.baseURL != ""
}

// Do posts the text to <base>/predict and returns the raw upstream reply.
// Exactly one outbound request per call, no retries.
func (c *HTTPClient) Do(ctx context.Context, text string) (*UpstreamResponse, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	return &UpstreamResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// Classify posts the text and decodes the prediction.
func (c *HTTPClient) Classify(ctx context.Context, text string) (Prediction, error) {
	res, err := c.Do(ctx, text)
	if err != nil {
		return Prediction{}, err
	}

	if !res.OK() {
		return Prediction{}, fmt.Errorf("upstream returned status %d", res.StatusCode)
	}

	var prediction Prediction
	if err := json.Unmarshal(res.Body, &prediction); err != nil {
		return Prediction{}, fmt.Errorf("decode upstream body: %w", err)
	}

	return prediction, nil
}
