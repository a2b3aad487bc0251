package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Trhproduct/OfflineAI/internal/drain"
	"github.com/Trhproduct/OfflineAI/internal/logx"
	"github.com/Trhproduct/OfflineAI/internal/metrics"
	"github.com/Trhproduct/OfflineAI/internal/relay"
)

// ChatHandler handles POST /api/chat.
func ChatHandler(rl *relay.Relay, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if drain.IsDraining() {
			writeError(w, http.StatusServiceUnavailable, "draining", "server is shutting down")
			return
		}
		var req relay.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
			return
		}
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		p := relay.Normalize(req, rl.DefaultModel)
		streamID := uuid.NewString()
		reqID := chiMiddleware.GetReqID(r.Context())
		logx.Log.Info().Str("request_id", reqID).Str("stream_id", streamID).Str("model", p.Model).Bool("stream", p.Stream).Msg("dispatch")

		start := time.Now()
		success := false
		defer func() {
			metrics.RecordRequest("chat", success)
			metrics.ObserveRequestDuration("chat", p.Model, time.Since(start))
		}()

		if p.Stream {
			if err := rl.Stream(ctx, p, w); err != nil {
				handleRelayErr(w, reqID, err)
				return
			}
			success = true
			logx.Log.Info().Str("request_id", reqID).Str("stream_id", streamID).Msg("complete")
			return
		}
		res, err := rl.Once(ctx, p)
		if err != nil {
			handleRelayErr(w, reqID, err)
			return
		}
		success = true
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			logx.Log.Error().Err(err).Msg("encode chat result")
		}
	}
}

func handleRelayErr(w http.ResponseWriter, reqID string, err error) {
	var ue *relay.UpstreamError
	switch {
	case errors.As(err, &ue):
		logx.Log.Warn().Str("request_id", reqID).Int("status", ue.Status).Str("detail", ue.Detail).Msg("upstream rejected")
		writeError(w, http.StatusBadGateway, "upstream_error", ue.Detail)
	case errors.Is(err, relay.ErrUpstreamUnreachable):
		logx.Log.Warn().Str("request_id", reqID).Err(err).Msg("upstream unreachable")
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		logx.Log.Error().Str("request_id", reqID).Err(err).Msg("chat failure")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}
