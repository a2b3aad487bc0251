package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Trhproduct/OfflineAI/internal/config"
	"github.com/Trhproduct/OfflineAI/internal/drain"
	"github.com/Trhproduct/OfflineAI/internal/logx"
	"github.com/Trhproduct/OfflineAI/internal/metrics"
	"github.com/Trhproduct/OfflineAI/internal/ollama"
	"github.com/Trhproduct/OfflineAI/internal/server"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	var cfg config.Config
	// Resolve config with precedence: defaults < file < env < args
	cfg.SetDefaults()
	cfg.ApplyEnv()
	// Allow --config to override the file path before loading it.
	for i := 1; i < len(os.Args); i++ {
		a := os.Args[i]
		if a == "--config" && i+1 < len(os.Args) {
			cfg.ConfigFile = os.Args[i+1]
			break
		}
		if strings.HasPrefix(a, "--config=") {
			cfg.ConfigFile = strings.TrimPrefix(a, "--config=")
			break
		}
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFile(cfg.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			logx.Log.Fatal().Err(err).Str("path", cfg.ConfigFile).Msg("load config")
		}
	}
	cfg.ApplyEnv()
	cfg.BindFlags()
	flag.Parse()
	if *showVersion {
		fmt.Printf("offlineai %s (%s, built %s)\n", version, buildSHA, buildDate)
		return
	}
	logx.Configure(cfg.LogLevel)

	metrics.Register(prometheus.DefaultRegisterer)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	client := ollama.New(cfg.OllamaURL, cfg.DefaultModel)
	handler := server.New(cfg, client, version)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		drain.Start()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// Warm-up is fire-and-forget; requests are served whether or not it
	// ever finishes.
	if cfg.WarmUp {
		go func() {
			wctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			if err := client.WarmUp(wctx); err != nil {
				metrics.RecordWarmUp(false)
				logx.Log.Warn().Err(err).Str("model", cfg.DefaultModel).Msg("warm-up failed")
				return
			}
			metrics.RecordWarmUp(true)
			logx.Log.Info().Str("model", cfg.DefaultModel).Msg("warm-up complete")
		}()
	}

	logx.Log.Info().Int("port", cfg.Port).Str("ollama", cfg.OllamaURL).Str("model", cfg.DefaultModel).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logx.Log.Fatal().Err(err).Msg("server error")
	}
}
