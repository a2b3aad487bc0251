package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Trhproduct/OfflineAI/internal/logx"
	"github.com/Trhproduct/OfflineAI/internal/metrics"
)

// ErrUpstreamUnreachable marks a network-level failure reaching the
// generation runtime.
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// UpstreamError reports a reachable upstream that rejected the call,
// carrying whatever diagnostic text could be read from its reply.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d: %s", e.Status, e.Detail)
}

// Upstream issues HTTP calls to the generation runtime.
type Upstream interface {
	Send(ctx context.Context, path string, payload any, streaming bool) (*http.Response, error)
}

// Relay forwards chat requests to the generation runtime and returns the
// reply to the client, streaming or whole.
type Relay struct {
	Upstream     Upstream
	DefaultModel string
}

// Result is the non-streaming reply returned to the client.
type Result struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

const maxDetailBytes = 4 << 10

// Once forwards a non-streaming request and collapses the upstream reply
// into a single document. Absent text fields yield an empty response.
func (rl *Relay) Once(ctx context.Context, p Payload) (Result, error) {
	resp, err := rl.Upstream.Send(ctx, p.Endpoint(), p.Body(), false)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &UpstreamError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	var c chunk
	_ = json.Unmarshal(b, &c)
	text := c.Response
	if text == "" && c.Message != nil {
		text = c.Message.Content
	}
	return Result{Response: text, Model: p.Model}, nil
}

// Stream forwards a streaming request and relays extracted text fragments
// to w in arrival order. An error is returned only before the response has
// been committed; once streaming begins, upstream faults end the stream
// without touching the status code or the bytes already sent.
func (rl *Relay) Stream(ctx context.Context, p Payload, w http.ResponseWriter) error {
	resp, err := rl.Upstream.Send(ctx, p.Endpoint(), p.Body(), true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 || resp.Body == http.NoBody {
		return &UpstreamError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	st := newLineStream(w)
	buf := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			st.feed(buf[:n])
		}
		if rerr != nil {
			if rerr != io.EOF && ctx.Err() == nil {
				logx.Log.Warn().Err(rerr).Str("model", p.Model).Msg("upstream stream ended early")
			}
			break
		}
	}
	st.finish()
	metrics.RecordFragments(p.Model, st.count)
	return nil
}

// readDetail captures whatever diagnostic text the upstream offered.
// Best effort: a failed read yields an empty detail, never an error.
func readDetail(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(r, maxDetailBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
