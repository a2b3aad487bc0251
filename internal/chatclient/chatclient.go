// Package chatclient implements the client-side conversation state
// machine used by front ends talking to the relay server.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Trhproduct/OfflineAI/internal/relay"
)

const (
	// HistoryWindow bounds how many turns are sent per request. Older
	// turns stay in the conversation but are not forwarded.
	HistoryWindow = 20

	// ErrorNotice replaces the pending assistant turn when a request
	// fails.
	ErrorNotice = "Something went wrong talking to the model. Please try again."
)

// ErrBusy is returned when a submit arrives while a reply is pending.
var ErrBusy = errors.New("a request is already in flight")

// Conversation is the ordered turn history plus a busy flag. It is not
// safe for concurrent use; one conversation belongs to one front end.
type Conversation struct {
	turns []relay.Turn
	busy  bool
}

// Turns returns the full local history, placeholder included.
func (c *Conversation) Turns() []relay.Turn { return c.turns }

// Busy reports whether a reply is pending.
func (c *Conversation) Busy() bool { return c.busy }

// window returns the most recent turns to forward, excluding the trailing
// assistant placeholder. Oldest turns drop first.
func (c *Conversation) window() []relay.Turn {
	h := c.turns[:len(c.turns)-1]
	if len(h) > HistoryWindow {
		h = h[len(h)-HistoryWindow:]
	}
	out := make([]relay.Turn, len(h))
	copy(out, h)
	return out
}

func (c *Conversation) setLast(content string) {
	c.turns[len(c.turns)-1].Content = content
}

func (c *Conversation) appendFragment(fragment string) {
	last := &c.turns[len(c.turns)-1]
	if last.Role == relay.RoleAssistant {
		last.Content += fragment
	}
}

// Client drives a conversation against a running relay server.
type Client struct {
	BaseURL string
	Model   string

	httpClient *http.Client
}

// New builds a client for the relay server at baseURL.
func New(baseURL, model string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Model: model, httpClient: &http.Client{}}
}

// Send submits prompt as a user turn and fills the assistant reply into
// conv. When onFragment is non-nil it observes each streamed fragment as
// it arrives. On any failure the pending assistant turn becomes a fixed
// error notice; the busy flag clears on every path out.
func (cl *Client) Send(ctx context.Context, conv *Conversation, prompt string, onFragment func(string)) error {
	if conv.busy {
		return ErrBusy
	}
	conv.busy = true
	defer func() { conv.busy = false }()

	conv.turns = append(conv.turns, relay.Turn{Role: relay.RoleUser, Content: prompt})
	conv.turns = append(conv.turns, relay.Turn{Role: relay.RoleAssistant})

	body, err := json.Marshal(relay.ChatRequest{Messages: conv.window(), Model: cl.Model})
	if err != nil {
		conv.setLast(ErrorNotice)
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cl.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		conv.setLast(ErrorNotice)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := cl.httpClient.Do(req)
	if err != nil {
		conv.setLast(ErrorNotice)
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		conv.setLast(ErrorNotice)
		return fmt.Errorf("chat status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	// Non-streaming replies arrive as one JSON document.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var res relay.Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			conv.setLast(ErrorNotice)
			return err
		}
		conv.setLast(res.Response)
		if onFragment != nil && res.Response != "" {
			onFragment(res.Response)
		}
		return nil
	}

	var full strings.Builder
	buf := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			fragment := string(buf[:n])
			full.WriteString(fragment)
			conv.appendFragment(fragment)
			if onFragment != nil {
				onFragment(fragment)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			conv.setLast(ErrorNotice)
			return rerr
		}
	}
	conv.setLast(full.String())
	return nil
}
