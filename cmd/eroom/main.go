// eroom server — accepts escape-room creation requests over HTTP, runs
// each job through the LLM and text-to-3D providers on a worker pool, and
// serves the assembled result for one-shot polling.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eroom-dev/eroom/pkg/api"
	"github.com/eroom-dev/eroom/pkg/config"
	"github.com/eroom-dev/eroom/pkg/llm"
	"github.com/eroom-dev/eroom/pkg/mesh"
	"github.com/eroom-dev/eroom/pkg/pipeline"
	"github.com/eroom-dev/eroom/pkg/queue"
	"github.com/eroom-dev/eroom/pkg/store"
	"github.com/eroom-dev/eroom/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config",
		getEnv("CONFIG_PATH", "config/eroom.json"),
		"Path to the configuration file")
	flag.Parse()

	// One positional argument: the listening port.
	port := "8080"
	if args := flag.Args(); len(args) > 0 {
		port = args[0]
	}

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	slog.Info("Starting eroom server",
		"version", version.Full(),
		"port", port,
		"config_path", *configPath)

	cfg, err := config.Initialize(*configPath)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// Gateways. The LLM client resolves its key lazily on first use; the
	// mesh client collects MESHY_KEY_1..3 now.
	llmClient := llm.NewClient(cfg.Model, llm.WithBaseURL(cfg.LLM.BaseURL))
	defer llmClient.Close()

	meshClient := mesh.NewClient(cfg.Mesh.BaseURL)
	defer meshClient.Close()

	// Result store, pipeline, worker pool.
	jobStore := store.New()
	jobPipeline := pipeline.New(cfg.Prompts, llmClient, meshClient, jobStore)

	ctx := context.Background()
	manager := queue.NewManager(cfg.Queue, jobStore, jobPipeline)
	manager.Start(ctx)

	// HTTP surface.
	token := api.ResolveAuthToken()
	httpServer := api.NewServer(token, jobStore, manager)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + port
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("eroom server started", "workers", cfg.Queue.Workers)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// Shutdown order: stop taking HTTP traffic, drain the queue, release
	// the gateway connection pools (deferred).
	httpCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := httpServer.Shutdown(httpCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	queueCtx, queueCancel := context.WithTimeout(ctx, cfg.Queue.ShutdownTimeout()+5*time.Second)
	defer queueCancel()
	manager.Stop(queueCtx)

	slog.Info("Shutdown complete")
}
