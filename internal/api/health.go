package api

import (
	"encoding/json"
	"net/http"

	"github.com/Trhproduct/OfflineAI/internal/config"
	"github.com/Trhproduct/OfflineAI/internal/logx"
)

type healthDoc struct {
	OK      bool   `json:"ok"`
	Server  string `json:"server"`
	Model   string `json:"model"`
	Ollama  string `json:"ollama"`
	Version string `json:"version"`
}

// HealthHandler reports the resolved configuration the server runs with.
// The document only changes when the configuration does.
func HealthHandler(cfg config.Config, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		doc := healthDoc{OK: true, Server: cfg.ServerName, Model: cfg.DefaultModel, Ollama: cfg.OllamaURL, Version: version}
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			logx.Log.Error().Err(err).Msg("encode health")
		}
	}
}
