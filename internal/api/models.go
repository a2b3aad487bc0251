package api

import (
	"encoding/json"
	"net/http"

	"github.com/Trhproduct/OfflineAI/internal/logx"
	"github.com/Trhproduct/OfflineAI/internal/ollama"
)

// ModelsHandler handles GET /api/models, listing the models the runtime
// currently knows about.
func ModelsHandler(c *ollama.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models, err := c.Tags(r.Context())
		if err != nil {
			logx.Log.Warn().Err(err).Msg("list models")
			writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string][]string{"models": models}); err != nil {
			logx.Log.Error().Err(err).Msg("encode models")
		}
	}
}
