package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/Trhproduct/OfflineAI/internal/chatclient"
)

func main() {
	url := flag.String("url", "http://127.0.0.1:8080", "relay server URL")
	model := flag.String("model", "", "model override; empty uses the server default")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), ".offlineai_history")
	if f, err := os.Open(histPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	cl := chatclient.New(*url, *model)
	var conv chatclient.Conversation
	for {
		prompt, err := line.Prompt("> ")
		if err != nil {
			fmt.Println()
			return
		}
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			continue
		}
		if prompt == "/quit" || prompt == "/exit" {
			return
		}
		line.AppendHistory(prompt)
		if err := cl.Send(ctx, &conv, prompt, func(s string) { fmt.Print(s) }); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println()
		if ctx.Err() != nil {
			return
		}
	}
}
