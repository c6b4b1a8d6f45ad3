package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maisonhq/maison/internal/auth"
	"github.com/maisonhq/maison/internal/progress"
)

func TestServer_ChatRoundTripOverHTTP(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "you asked: " + req.Message})
	}))
	t.Cleanup(relay.Close)

	dbPath := t.TempDir() + "/chat.db"
	t.Setenv("MAISON_CHAT_DB_PATH", dbPath)
	t.Setenv("MAISON_CHAT_UPSTREAM_URL", relay.URL)
	t.Setenv("MAISON_AUTH_ISSUER", "maison-test")
	t.Setenv("MAISON_AUTH_AUDIENCE", "maison-api")
	t.Setenv("MAISON_AUTH_SECRET", "test-secret")

	srv, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})

	token, err := auth.Mint(auth.Config{
		Issuer:   "maison-test",
		Audience: "maison-api",
		Secret:   []byte("test-secret"),
		Now:      time.Now,
	}, "user-1", progress.RoleBuyer, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	base := "http://" + srv.Addr()

	health, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	_ = health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", health.StatusCode)
	}

	postReq, err := http.NewRequest(http.MethodPost,
		base+"/api/v1/chat/message",
		bytes.NewReader([]byte(`{"message":"what is conveyancing?"}`)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	postReq.Header.Set("Authorization", "Bearer "+token)
	postResp, err := http.DefaultClient.Do(postReq)
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	defer postResp.Body.Close()
	if postResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(postResp.Body)
		t.Fatalf("post status = %d: %s", postResp.StatusCode, body)
	}

	var message struct {
		SessionID string `json:"sessionId"`
		Reply     string `json:"reply"`
	}
	if err := json.NewDecoder(postResp.Body).Decode(&message); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if message.SessionID == "" {
		t.Fatal("expected generated session id")
	}
	if message.Reply != "you asked: what is conveyancing?" {
		t.Fatalf("reply = %q", message.Reply)
	}

	getReq, err := http.NewRequest(http.MethodGet,
		base+"/api/v1/chat/sessions/"+message.SessionID, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	getReq.Header.Set("Authorization", "Bearer "+token)
	getResp, err := http.DefaultClient.Do(getReq)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer getResp.Body.Close()

	var session struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(getResp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(session.Messages))
	}
}

func TestServer_NewWithAddrRequiresUpstreamURL(t *testing.T) {
	t.Setenv("MAISON_CHAT_UPSTREAM_URL", "")
	t.Setenv("MAISON_AUTH_ISSUER", "maison-test")
	t.Setenv("MAISON_AUTH_AUDIENCE", "maison-api")
	t.Setenv("MAISON_AUTH_SECRET", "test-secret")

	if _, err := NewWithAddr("127.0.0.1:0"); err == nil {
		t.Fatal("expected missing upstream url error")
	}
}
