package api

import (
	"encoding/json"
	"net/http"

	"github.com/Trhproduct/OfflineAI/internal/logx"
	"github.com/Trhproduct/OfflineAI/internal/relay"
)

// EchoHandler handles POST /api/echo, a loopback for exercising clients
// without a generation runtime behind the server.
func EchoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req relay.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
			return
		}
		text := req.Prompt
		if n := len(req.Messages); n > 0 {
			text = req.Messages[n-1].Content
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"response": "echo: " + text}); err != nil {
			logx.Log.Error().Err(err).Msg("encode echo result")
		}
	}
}
