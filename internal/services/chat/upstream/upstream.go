// Package upstream relays chat messages to the assistant endpoint.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/services/chat/history"
)

// Assistant produces one reply for a user message given the session
// transcript so far.
type Assistant interface {
	Reply(ctx context.Context, sessionID string, transcript []history.Message, message string) (string, error)
}

// Client relays messages to an opaque HTTP assistant endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates an assistant relay for the given endpoint URL.
func NewClient(endpoint string) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("assistant endpoint is required")
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type relayRequest struct {
	SessionID string            `json:"session_id"`
	Message   string            `json:"message"`
	History   []history.Message `json:"history,omitempty"`
}

type relayResponse struct {
	Reply string `json:"reply"`
}

// Reply forwards the message and transcript to the assistant endpoint.
func (c *Client) Reply(ctx context.Context, sessionID string, transcript []history.Message, message string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("assistant client is nil")
	}
	body, err := json.Marshal(relayRequest{
		SessionID: sessionID,
		Message:   message,
		History:   transcript,
	})
	if err != nil {
		return "", fmt.Errorf("encode relay request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeChatUpstreamFailure, "assistant endpoint unreachable", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.WithMetadata(
			apperrors.CodeChatUpstreamFailure,
			"assistant endpoint returned an error",
			map[string]string{"Status": fmt.Sprintf("%d", resp.StatusCode)},
		)
	}
	var parsed relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Wrap(apperrors.CodeChatUpstreamFailure, "assistant response is not valid JSON", err)
	}
	if strings.TrimSpace(parsed.Reply) == "" {
		return "", apperrors.New(apperrors.CodeChatUpstreamFailure, "assistant response is empty")
	}
	return parsed.Reply, nil
}

var _ Assistant = (*Client)(nil)
