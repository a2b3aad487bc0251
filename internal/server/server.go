package server

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Trhproduct/OfflineAI/internal/api"
	"github.com/Trhproduct/OfflineAI/internal/config"
	"github.com/Trhproduct/OfflineAI/internal/ollama"
	"github.com/Trhproduct/OfflineAI/internal/relay"
)

//go:embed status.html
var statusHTML string

// New constructs the HTTP handler for the server.
func New(cfg config.Config, client *ollama.Client, version string) http.Handler {
	rl := &relay.Relay{Upstream: client, DefaultModel: cfg.DefaultModel}

	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}

	r.Get("/", statusHandler)
	r.Get("/health", api.HealthHandler(cfg, version))
	r.Post("/api/chat", api.ChatHandler(rl, cfg.RequestTimeout))
	r.Post("/api/echo", api.EchoHandler())
	r.Get("/api/models", api.ModelsHandler(client))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(statusHTML))
}
