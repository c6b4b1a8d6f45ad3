package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maisonhq/maison/internal/auth"
	apperrors "github.com/maisonhq/maison/internal/platform/errors"
	"github.com/maisonhq/maison/internal/progress"
	"github.com/maisonhq/maison/internal/services/chat/history"
)

type scriptedAssistant struct {
	reply string
	err   error
	calls int
}

func (a *scriptedAssistant) Reply(ctx context.Context, sessionID string, transcript []history.Message, message string) (string, error) {
	a.calls++
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func testAuthConfig() auth.Config {
	return auth.Config{
		Issuer:   "maison-test",
		Audience: "maison-api",
		Secret:   []byte("test-secret"),
		Now:      time.Now,
	}
}

func newTestServer(t *testing.T, assistant *scriptedAssistant) (*httptest.Server, *history.MemoryCache) {
	t.Helper()
	cache := history.NewMemoryCache()
	server := httptest.NewServer(NewHandler(cache, assistant).Mux(testAuthConfig()))
	t.Cleanup(server.Close)
	return server, cache
}

func userToken(t *testing.T) string {
	t.Helper()
	token, err := auth.Mint(testAuthConfig(), "user-1", progress.RoleBuyer, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func postMessage(t *testing.T, server *httptest.Server, token string, body map[string]string) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/chat/message", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestPostMessageRequiresToken(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &scriptedAssistant{reply: "hello"})
	resp := postMessage(t, server, "", map[string]string{"message": "hi"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestPostMessageRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	assistant := &scriptedAssistant{reply: "hello"}
	server, _ := newTestServer(t, assistant)
	resp := postMessage(t, server, userToken(t), map[string]string{"message": "  "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if assistant.calls != 0 {
		t.Fatalf("assistant called %d times for empty message", assistant.calls)
	}
}

func TestPostMessageCreatesSessionAndAppendsTurns(t *testing.T) {
	t.Parallel()

	server, cache := newTestServer(t, &scriptedAssistant{reply: "conveyancing is the legal transfer"})
	resp := postMessage(t, server, userToken(t), map[string]string{"message": "what is conveyancing?"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var payload MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if payload.Reply != "conveyancing is the legal transfer" {
		t.Fatalf("reply = %q", payload.Reply)
	}

	messages, err := cache.Get(context.Background(), payload.SessionID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if messages[0].Role != history.RoleUser || messages[1].Role != history.RoleAssistant {
		t.Fatalf("roles = %q, %q", messages[0].Role, messages[1].Role)
	}
}

func TestPostMessageReusesSessionID(t *testing.T) {
	t.Parallel()

	server, cache := newTestServer(t, &scriptedAssistant{reply: "ok"})
	token := userToken(t)

	resp := postMessage(t, server, token, map[string]string{"message": "first"})
	var first MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	resp = postMessage(t, server, token, map[string]string{"message": "second", "sessionId": first.SessionID})
	var second MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Fatalf("session id changed: %q -> %q", first.SessionID, second.SessionID)
	}

	messages, err := cache.Get(context.Background(), first.SessionID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(messages))
	}
}

func TestPostMessageUpstreamFailureDoesNotCacheTurn(t *testing.T) {
	t.Parallel()

	assistant := &scriptedAssistant{err: apperrors.Wrap(apperrors.CodeChatUpstreamFailure, "relay unavailable", errors.New("connection refused"))}
	server, cache := newTestServer(t, assistant)
	resp := postMessage(t, server, userToken(t), map[string]string{"message": "hi", "sessionId": "session-1"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadGateway)
	}
	messages, err := cache.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("messages = %d, want 0 after failure", len(messages))
	}
}

func TestGetAndClearSession(t *testing.T) {
	t.Parallel()

	server, cache := newTestServer(t, &scriptedAssistant{reply: "ok"})
	token := userToken(t)
	if err := cache.Put(context.Background(), "session-1",
		history.Message{Role: history.RoleUser, Content: "hello"},
	); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/chat/sessions/session-1", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer resp.Body.Close()
	var payload SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(payload.Messages))
	}

	deleteReq, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/chat/sessions/session-1", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	deleteReq.Header.Set("Authorization", "Bearer "+token)
	deleteResp, err := http.DefaultClient.Do(deleteReq)
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	defer deleteResp.Body.Close()
	if deleteResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", deleteResp.StatusCode)
	}

	messages, err := cache.Get(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("messages = %d, want 0 after clear", len(messages))
	}
}
