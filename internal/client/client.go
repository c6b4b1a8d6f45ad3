// Package client is the Go client for the progress REST API, plus the
// step-form and session helpers built on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/platform/httpapi"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/timeline"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token.
type StaticToken string

// Token returns the fixed token.
func (s StaticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// Client calls the progress REST API for one authenticated party.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// New creates a progress API client for the given base URL.
func New(baseURL string, tokens TokenSource) *Client {
	return NewWithHTTPClient(baseURL, tokens, &http.Client{Timeout: 10 * time.Second})
}

// NewWithHTTPClient creates a client using the provided HTTP client.
func NewWithHTTPClient(baseURL string, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		tokens:     tokens,
	}
}

// checkIdentifiers rejects requests before any network traffic when the
// identifiers or token source cannot possibly succeed.
func (c *Client) checkIdentifiers(ctx context.Context, userID, transactionID string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(userID) == "" {
		return "", apperrors.New(apperrors.CodeProgressUserIDRequired, "user id is required")
	}
	if strings.TrimSpace(transactionID) == "" {
		return "", apperrors.New(apperrors.CodeProgressTransactionIDRequired, "transaction id is required")
	}
	if c.tokens == nil {
		return "", apperrors.New(apperrors.CodeAuthTokenMissing, "token source is not configured")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", apperrors.New(apperrors.CodeAuthTokenMissing, "bearer token is required")
	}
	return token, nil
}

func (c *Client) progressURL(userID, transactionID, suffix string) string {
	return c.baseURL + "/api/users/" + url.PathEscape(strings.TrimSpace(userID)) +
		"/transactions/" + url.PathEscape(strings.TrimSpace(transactionID)) + suffix
}

func (c *Client) do(ctx context.Context, method, requestURL, token string, body, target any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, requestURL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeErrorResponse(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeErrorResponse rebuilds a domain error from a JSON error body, or
// falls back to the HTTP status when the body is not one.
func decodeErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(body) > 0 {
		var payload httpapi.ErrorPayload
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Code != "" {
			return apperrors.WithMetadata(apperrors.Code(payload.Code), payload.Message, payload.Metadata)
		}
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}

// GetProgress fetches the progress record for the user and transaction.
func (c *Client) GetProgress(ctx context.Context, userID, transactionID string) (progress.Record, error) {
	token, err := c.checkIdentifiers(ctx, userID, transactionID)
	if err != nil {
		return progress.Record{}, err
	}
	var record progress.Record
	if err := c.do(ctx, http.MethodGet, c.progressURL(userID, transactionID, "/progress"), token, nil, &record); err != nil {
		return progress.Record{}, err
	}
	record.UserID = strings.TrimSpace(userID)
	record.TransactionID = strings.TrimSpace(transactionID)
	return record, nil
}

// UpdateProgress submits a partial update and returns the stored record.
func (c *Client) UpdateProgress(ctx context.Context, userID, transactionID string, update progress.Update) (progress.Record, error) {
	token, err := c.checkIdentifiers(ctx, userID, transactionID)
	if err != nil {
		return progress.Record{}, err
	}
	var record progress.Record
	if err := c.do(ctx, http.MethodPut, c.progressURL(userID, transactionID, "/progress"), token, update, &record); err != nil {
		return progress.Record{}, err
	}
	record.UserID = strings.TrimSpace(userID)
	record.TransactionID = strings.TrimSpace(transactionID)
	return record, nil
}

// ConfirmStep records the caller's confirmation of a closing step.
func (c *Client) ConfirmStep(ctx context.Context, userID, transactionID, step string) (progress.Record, error) {
	token, err := c.checkIdentifiers(ctx, userID, transactionID)
	if err != nil {
		return progress.Record{}, err
	}
	if strings.TrimSpace(step) == "" {
		return progress.Record{}, apperrors.New(apperrors.CodeProgressStepUnknown, "step is required")
	}
	var record progress.Record
	payload := map[string]string{"step": strings.TrimSpace(step)}
	if err := c.do(ctx, http.MethodPost, c.progressURL(userID, transactionID, "/progress/confirm"), token, payload, &record); err != nil {
		return progress.Record{}, err
	}
	record.UserID = strings.TrimSpace(userID)
	record.TransactionID = strings.TrimSpace(transactionID)
	return record, nil
}

// Timeline is the server-derived two-track timeline.
type Timeline struct {
	Role   progress.Role   `json:"role"`
	Buyer  []timeline.Step `json:"buyer"`
	Seller []timeline.Step `json:"seller"`
	Rows   []TimelineRow   `json:"rows"`
}

// TimelineRow is one rendered row of the server-derived timeline.
type TimelineRow struct {
	Buyer     timeline.Step   `json:"buyer"`
	Seller    timeline.Step   `json:"seller"`
	DotStatus timeline.Status `json:"dot_status"`
	CanOpen   bool            `json:"can_open"`
}

// GetTimeline fetches the server-derived timeline for the given role.
func (c *Client) GetTimeline(ctx context.Context, userID, transactionID string, role progress.Role, input timeline.Input) (Timeline, error) {
	token, err := c.checkIdentifiers(ctx, userID, transactionID)
	if err != nil {
		return Timeline{}, err
	}
	query := url.Values{}
	if role != "" {
		query.Set("role", string(role))
	}
	if !input.OfferAccepted {
		query.Set("offer_accepted", "false")
	}
	if input.OfferDocumentAttached {
		query.Set("offer_document_attached", "true")
	}
	requestURL := c.progressURL(userID, transactionID, "/timeline")
	if encoded := query.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}
	var result Timeline
	if err := c.do(ctx, http.MethodGet, requestURL, token, nil, &result); err != nil {
		return Timeline{}, err
	}
	return result, nil
}
