package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logtide/logtide/internal/config"
	"github.com/logtide/logtide/internal/event"
	"github.com/logtide/logtide/internal/logging"
	"github.com/logtide/logtide/internal/router"
	"github.com/logtide/logtide/internal/sink"
	"github.com/logtide/logtide/internal/subscriber"
	"github.com/logtide/logtide/internal/table"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("logtide starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Table storage backend
	logger.Info("Connecting to table backend", "type", cfg.Table.Type)
	client, err := table.NewClient(cfg.Table)
	if err != nil {
		logger.Fatal("Failed to create table client", "error", err)
	}
	defer func() { _ = client.Close() }()

	// Sink provisions the table before accepting any submissions
	s, err := sink.NewFromConfig(ctx, client, cfg.Sink, logger)
	if err != nil {
		logger.Fatal("Failed to create sink", "error", err)
	}

	// Optional ingest bus
	var bus subscriber.Subscriber
	if cfg.Bus.Enabled {
		logger.Info("Connecting to ingest bus", "type", cfg.Bus.Type, "subject", cfg.Bus.Subject)
		bus, err = subscriber.NewSubscriber(cfg.Bus)
		if err != nil {
			logger.Fatal("Failed to create bus subscriber", "error", err)
		}
		err = bus.Subscribe(ctx, cfg.Bus.Subject, func(_ context.Context, subject string, data []byte) error {
			ev, perr := event.ParseJSON(data)
			if perr != nil {
				logger.Warn("Dropping malformed bus event", "subject", subject, "error", perr)
				return nil // malformed payloads are not retryable
			}
			return s.Submit(ev)
		})
		if err != nil {
			logger.Fatal("Failed to subscribe to bus subject", "error", err)
		}
	}

	// HTTP intake server
	app := router.New(logger, s)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop intake first so the final flush sees a quiescent queue
	if err := app.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if bus != nil {
		if err := bus.Close(); err != nil {
			logger.Error("Bus shutdown failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := s.Close(shutdownCtx); err != nil {
		logger.Error("Sink shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}
