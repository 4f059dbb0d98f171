package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stegportal/portal/internal/logger"
)

// maxBodySize bounds how much of a backend response is read.
const maxBodySize = 1 << 20

var (
	// ErrNoResponse means the request left but nothing came back:
	// timeout, refused connection, reset, cancelled context.
	ErrNoResponse = errors.New("no response from backend")
	// ErrRequest means the request could not be built or sent at all.
	ErrRequest = errors.New("could not build request")
)

// ResponseError is returned when the backend answered but did not accept the
// call. Message is the backend's "message" field and may be empty.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.StatusCode, e.Message)
}

// APIClient handles all communication with the auth backend.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client whose calls are bounded by timeout.
func New(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: timeout},
	}
}

// do sends body as JSON. Errors are wrapped in ErrRequest or ErrNoResponse.
func (c *APIClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	target, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrRequest, target.Scheme)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal body: %w", ErrRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.Log.Debug("calling backend", "method", method, "url", target.String())
	start := time.Now()
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		logger.Log.Warn("backend unavailable", "method", method, "url", target.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	logger.Log.Debug("backend responded", "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
