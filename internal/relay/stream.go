package relay

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// chunk is one decoded NDJSON object from the upstream stream. It carries
// at most one of a generate-shape response, a chat-shape message, or an
// error string.
type chunk struct {
	Response string `json:"response"`
	Message  *struct {
		Content string `json:"content"`
	} `json:"message"`
	Error *string `json:"error"`
}

// lineStream buffers raw upstream bytes, carves complete lines out of them
// and writes extracted fragments to the client. Everything after the last
// newline stays buffered until its line completes, so a multi-byte
// character split across reads is never decoded half-way.
type lineStream struct {
	w     http.ResponseWriter
	flush http.Flusher
	rest  []byte
	wrote bool
	count uint64
}

func newLineStream(w http.ResponseWriter) *lineStream {
	f, _ := w.(http.Flusher)
	return &lineStream{w: w, flush: f}
}

func (s *lineStream) feed(b []byte) {
	s.rest = append(s.rest, b...)
	for {
		i := bytes.IndexByte(s.rest, '\n')
		if i < 0 {
			return
		}
		line := string(s.rest[:i])
		s.rest = s.rest[i+1:]
		s.line(line)
	}
}

// line applies the extraction rules to one candidate line. The generate
// and chat shape checks run independently, an error field only counts
// while nothing has been written yet, and a line that fails to parse is
// forwarded verbatim rather than dropped.
func (s *lineStream) line(raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	var c chunk
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.write(raw)
		return
	}
	if c.Response != "" {
		s.write(c.Response)
	}
	if c.Message != nil && c.Message.Content != "" {
		s.write(c.Message.Content)
	}
	if c.Error != nil && !s.wrote {
		s.write(*c.Error)
	}
}

// finish handles any residue left after the final read and guarantees at
// least one write so the client can tell an empty reply from a stalled one.
func (s *lineStream) finish() {
	if len(s.rest) > 0 {
		s.line(string(s.rest))
		s.rest = nil
	}
	if !s.wrote {
		s.write("")
	}
}

func (s *lineStream) write(text string) {
	s.wrote = true
	if text != "" {
		s.count++
	}
	if _, err := io.WriteString(s.w, text); err != nil {
		// Client went away; later writes will fail the same way.
		return
	}
	if s.flush != nil {
		s.flush.Flush()
	}
}
