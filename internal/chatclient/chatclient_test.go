package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Trhproduct/OfflineAI/internal/relay"
)

func TestSendStreamsIntoConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		f := w.(http.Flusher)
		w.Write([]byte("He"))
		f.Flush()
		w.Write([]byte("llo"))
		f.Flush()
	}))
	defer srv.Close()

	cl := New(srv.URL, "llama3.2")
	var conv Conversation
	var got []string
	if err := cl.Send(context.Background(), &conv, "hi", func(s string) { got = append(got, s) }); err != nil {
		t.Fatalf("send: %v", err)
	}
	turns := conv.Turns()
	if len(turns) != 2 {
		t.Fatalf("turns %v", turns)
	}
	if turns[0].Role != relay.RoleUser || turns[0].Content != "hi" {
		t.Fatalf("user turn %+v", turns[0])
	}
	if turns[1].Role != relay.RoleAssistant || turns[1].Content != "Hello" {
		t.Fatalf("assistant turn %+v", turns[1])
	}
	if len(got) == 0 {
		t.Fatalf("no fragments observed")
	}
	if conv.Busy() {
		t.Fatalf("busy not cleared")
	}
}

func TestSendTruncatesHistory(t *testing.T) {
	var gotReq relay.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var conv Conversation
	for i := 0; i < 15; i++ {
		conv.turns = append(conv.turns,
			relay.Turn{Role: relay.RoleUser, Content: fmt.Sprintf("q%d", i)},
			relay.Turn{Role: relay.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}

	cl := New(srv.URL, "m")
	if err := cl.Send(context.Background(), &conv, "latest", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(gotReq.Messages) != HistoryWindow {
		t.Fatalf("sent %d messages", len(gotReq.Messages))
	}
	if last := gotReq.Messages[HistoryWindow-1]; last.Content != "latest" {
		t.Fatalf("last sent %+v", last)
	}
	// Order preserved: the turn before the new prompt is the newest answer.
	if prev := gotReq.Messages[HistoryWindow-2]; prev.Content != "a14" {
		t.Fatalf("previous sent %+v", prev)
	}
	if len(conv.Turns()) != 32 {
		t.Fatalf("local history truncated: %d", len(conv.Turns()))
	}
}

func TestSendFailureReplacesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"upstream_error","detail":"oom"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	cl := New(srv.URL, "m")
	var conv Conversation
	if err := cl.Send(context.Background(), &conv, "hi", nil); err == nil {
		t.Fatalf("expected error")
	}
	turns := conv.Turns()
	if turns[len(turns)-1].Content != ErrorNotice {
		t.Fatalf("placeholder %+v", turns[len(turns)-1])
	}
	if conv.Busy() {
		t.Fatalf("busy not cleared on failure")
	}
}

func TestSendNonStreamingReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(relay.Result{Response: "whole", Model: "m"})
	}))
	defer srv.Close()

	cl := New(srv.URL, "m")
	var conv Conversation
	if err := cl.Send(context.Background(), &conv, "hi", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	turns := conv.Turns()
	if turns[len(turns)-1].Content != "whole" {
		t.Fatalf("assistant turn %+v", turns[len(turns)-1])
	}
}

func TestSendWhileBusy(t *testing.T) {
	var conv Conversation
	conv.busy = true
	cl := New("http://127.0.0.1:0", "m")
	if err := cl.Send(context.Background(), &conv, "hi", nil); err != ErrBusy {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}
