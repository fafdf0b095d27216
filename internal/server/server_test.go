package server_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/todoapp/todoapp/internal/auth"
	"github.com/todoapp/todoapp/internal/server"
	"github.com/todoapp/todoapp/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T) *server.Server {
	t.Helper()

	manager, err := store.Open(store.MemoryPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	secret := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("v", 32)))
	tokens, err := auth.NewTokenIssuer(secret, time.Hour)
	if err != nil {
		t.Fatalf("failed to create token issuer: %v", err)
	}

	return server.New("localhost:0", manager, tokens, zaptest.NewLogger(t))
}

func waitReady(t *testing.T, srv *server.Server) {
	t.Helper()
	select {
	case <-srv.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := newServer(t)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()
	waitReady(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("shutdown error: %v", err)
	}

	// Start must return after Shutdown
	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("unexpected error from Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("server did not stop after shutdown")
	}
}

func TestServer_ServesHealth(t *testing.T) {
	srv := newServer(t)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()
	waitReady(t, srv)

	addr := srv.Addr()
	if addr == "" {
		t.Fatal("server address not available")
	}

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("failed to make request: %v", err)
	}

	var health map[string]string
	err = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if health["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", health["status"])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("shutdown error: %v", err)
	}
	<-errChan
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	srv := newServer(t)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
	if srv.Addr() != "" {
		t.Errorf("expected empty address before start, got %q", srv.Addr())
	}
}
