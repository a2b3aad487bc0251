package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Trhproduct/OfflineAI/internal/config"
	"github.com/Trhproduct/OfflineAI/internal/ollama"
)

func testHandler() http.Handler {
	cfg := config.Config{Port: 8080, ServerName: "offlineai", DefaultModel: "llama3.2", OllamaURL: "http://127.0.0.1:11434"}
	return New(cfg, ollama.New(cfg.OllamaURL, cfg.DefaultModel), "test")
}

func TestRoutes(t *testing.T) {
	ts := httptest.NewServer(testHandler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}
	if !strings.Contains(string(b), `"ok":true`) {
		t.Fatalf("health body %s", b)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	b, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(b), "OfflineAI") {
		t.Fatalf("status page body %s", b)
	}
}

func TestEchoRoute(t *testing.T) {
	ts := httptest.NewServer(testHandler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/echo", "application/json", strings.NewReader(`{"prompt":"ping"}`))
	if err != nil {
		t.Fatalf("POST /api/echo: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if !strings.Contains(string(b), "echo: ping") {
		t.Fatalf("echo body %s", b)
	}
}
