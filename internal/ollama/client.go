// Package ollama is a small HTTP client for the local generation runtime.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the runtime's HTTP API. All requests go through one
// pooled transport, so idle keep-alive connections are reused per scheme
// and host instead of being opened per call.
type Client struct {
	BaseURL      string
	DefaultModel string

	stream *http.Client
	once   *http.Client
}

// New builds a client for the runtime at baseURL. The transport handles
// both plain and TLS upstreams; the URL scheme picks which.
func New(baseURL, defaultModel string) *Client {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		DefaultModel: defaultModel,
		stream:       &http.Client{Transport: t},
		once:         &http.Client{Transport: t, Timeout: 2 * time.Minute},
	}
}

// Send posts payload to path under the runtime base URL and returns the
// response for the caller to consume. Streaming calls use a client with
// no deadline so long generations are not cut off mid-stream; the request
// context still bounds them.
func (c *Client) Send(ctx context.Context, path string, payload any, streaming bool) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	cl := c.once
	if streaming {
		cl = c.stream
	}
	return cl.Do(req)
}

// WarmUp sends a throwaway generate call with a long keep-alive hint so
// the default model is resident before the first real request.
func (c *Client) WarmUp(ctx context.Context) error {
	payload := map[string]any{
		"model":   c.DefaultModel,
		"prompt":  "",
		"stream":  false,
		"options": map[string]any{"keep_alive": "30m"},
	}
	resp, err := c.Send(ctx, "/api/generate", payload, false)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	// Drain so the connection goes back to the pool.
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("warm-up status %d", resp.StatusCode)
	}
	return nil
}

// Tags lists the model names known to the runtime.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tags status %d", resp.StatusCode)
	}
	var v struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, err
	}
	var models []string
	for _, m := range v.Models {
		models = append(models, m.Name)
	}
	return models, nil
}
