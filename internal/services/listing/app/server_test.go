package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/maisonhq/maison/internal/auth"
	"github.com/maisonhq/maison/internal/progress"
	listingrest "github.com/maisonhq/maison/internal/services/listing/api/rest"
)

func TestServer_CreateAndGetListingRoundTrip(t *testing.T) {
	dbPath := t.TempDir() + "/listing.db"
	t.Setenv("MAISON_LISTING_DB_PATH", dbPath)
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
	}, "seller-1", progress.RoleSeller, time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	base := "http://" + srv.Addr()
	body, err := json.Marshal(map[string]any{
		"id":    "lst-1",
		"title": "Two-bed terrace",
		"price": 48500000,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, base+"/api/listings", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	createResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(createResp.Body)
		t.Fatalf("create status = %d: %s", createResp.StatusCode, respBody)
	}

	getResp, err := http.Get(base + "/api/listings/lst-1")
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	defer getResp.Body.Close()
	var payload listingrest.ListingPayload
	if err := json.NewDecoder(getResp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if payload.Title != "Two-bed terrace" {
		t.Fatalf("title = %q", payload.Title)
	}
	if payload.SellerID != "seller-1" {
		t.Fatalf("seller_id = %q", payload.SellerID)
	}
}
