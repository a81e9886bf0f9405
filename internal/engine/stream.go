package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/localchat/internal/errors"
)

// ssePrefix marks a data line in a server-sent-events stream
const ssePrefix = "data: "

// sseDone is the terminal marker of a completion stream
const sseDone = "[DONE]"

// FragmentFunc receives one streamed text fragment. Returning an error
// aborts the stream.
type FragmentFunc func(fragment string) error

// StreamComplete sends a streaming completion request and invokes fn for
// each text fragment in arrival order. It returns the concatenated text.
//
// Cancelling ctx aborts the underlying request; the context error is
// returned so callers can distinguish cancellation from failure.
func (c *Client) StreamComplete(ctx context.Context, chatReq ChatRequest, fn FragmentFunc) (string, error) {
	chatReq.Stream = true

	body, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointChat, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
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

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}

		data := strings.TrimPrefix(line, ssePrefix)
		if data == sseDone {
			break
		}

		fragment := gjson.Get(data, "choices.0.delta.content")
		if !fragment.Exists() || fragment.String() == "" {
			continue
		}

		full.WriteString(fragment.String())
		if err := fn(fragment.String()); err != nil {
			return full.String(), err
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return full.String(), ctx.Err()
		}
		return full.String(), apierrors.NewNetworkError(EndpointChat, err)
	}
	if ctx.Err() != nil {
		return full.String(), ctx.Err()
	}

	return full.String(), nil
}
