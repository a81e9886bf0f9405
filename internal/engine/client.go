// Package engine provides the HTTP client for a local inference engine and
// the lifecycle manager that gates generation on a loaded model.
//
// The engine is a llama.cpp-style server on localhost. It exposes
// OpenAI-compatible chat completions plus a small model-management surface:
//
//   - POST /v1/chat/completions  - streaming and non-streaming generation
//   - GET  /v1/models            - model list with load status and progress
//   - POST /models/load          - kick off an asynchronous model load
//   - POST /models/defaults      - apply default sampling parameters
//   - GET  /health               - liveness
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/models"
)

// Engine endpoints
const (
	EndpointChat     = "/v1/chat/completions"
	EndpointModels   = "/v1/models"
	EndpointLoad     = "/models/load"
	EndpointDefaults = "/models/defaults"
	EndpointHealth   = "/health"
)

// Model status values reported by the engine
const (
	StatusReady   = "ready"
	StatusLoading = "loading"
	StatusFailed  = "failed"
)

// DefaultBaseURL is where a local engine usually listens.
// Uses the explicit IPv4 address to avoid IPv6 resolution issues.
const DefaultBaseURL = "http://127.0.0.1:8080"

// ChatRequest is the payload for a completion request
type ChatRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// ModelStatus describes one engine model and its load state
type ModelStatus struct {
	ID       string
	Loaded   bool
	Status   string  // "ready", "loading", "failed", ...
	Progress float64 // fractional load completion 0..1
	Error    string  // failure detail when Status is "failed"
}

// Client is the HTTP client for the local inference engine
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streaming uses a client without timeout; the request context governs it
	streamClient *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the engine base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTimeout sets the timeout for non-streaming requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new engine client
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the configured engine base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks that the engine is reachable
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+EndpointHealth, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewNetworkError(EndpointHealth, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apierrors.NewEngineError(resp.StatusCode, EndpointHealth, "health check failed")
	}

	return nil
}

// ListModels returns the engine's models with their load status
func (c *Client) ListModels(ctx context.Context) ([]ModelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+EndpointModels, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError(EndpointModels, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewEngineError(resp.StatusCode, EndpointModels, "list models failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, apierrors.NewParseError("missing data array in models response", "data")
	}

	var statuses []ModelStatus
	data.ForEach(func(_, item gjson.Result) bool {
		statuses = append(statuses, ModelStatus{
			ID:       item.Get("id").String(),
			Loaded:   item.Get("loaded").Bool(),
			Status:   item.Get("status.value").String(),
			Progress: item.Get("status.progress").Float(),
			Error:    item.Get("status.error").String(),
		})
		return true
	})

	return statuses, nil
}

// GetModelStatus returns the status of a single model
func (c *Client) GetModelStatus(ctx context.Context, modelID string) (*ModelStatus, error) {
	statuses, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	for i := range statuses {
		if statuses[i].ID == modelID {
			return &statuses[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", apierrors.ErrModelNotFound, modelID)
}

// LoadModel asks the engine to load a model. The load itself is
// asynchronous; poll GetModelStatus for progress.
func (c *Client) LoadModel(ctx context.Context, modelID string) error {
	payload := map[string]string{"model": modelID}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointLoad, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewNetworkError(EndpointLoad, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", apierrors.ErrModelNotFound, modelID)
	}
	if resp.StatusCode != http.StatusOK {
		return apierrors.NewEngineError(resp.StatusCode, EndpointLoad, readErrorBody(resp.Body))
	}

	return nil
}

// ApplyDefaults sets default generation parameters on the engine
func (c *Client) ApplyDefaults(ctx context.Context, temperature float64) error {
	payload := map[string]float64{"temperature": temperature}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointDefaults, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierrors.NewNetworkError(EndpointDefaults, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apierrors.NewEngineError(resp.StatusCode, EndpointDefaults, readErrorBody(resp.Body))
	}

	return nil
}

// Complete sends a non-streaming completion request and returns the full text
func (c *Client) Complete(ctx context.Context, chatReq ChatRequest) (string, error) {
	chatReq.Stream = false

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointChat, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apierrors.NewNetworkError(EndpointChat, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apierrors.NewEngineError(resp.StatusCode, EndpointChat, readErrorBody(resp.Body))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	content := gjson.GetBytes(respBody, "choices.0.message.content")
	if !content.Exists() {
		return "", apierrors.NewParseError("missing message content in response", "choices.0.message.content")
	}

	return content.String(), nil
}

// readErrorBody extracts a short diagnostic from an error response.
// Engines report errors either as {"error": {"message": ...}} or plain text.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "request failed"
	}

	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() && msg.Type == gjson.String {
		return msg.String()
	}

	return string(body)
}
