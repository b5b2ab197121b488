package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopflow/shopflow/internal"
	"github.com/shopflow/shopflow/internal/events"
	"github.com/shopflow/shopflow/internal/worker"
)

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	if cfg.NATSUrl == "" {
		return fmt.Errorf("NATS_URL must be set for the worker")
	}

	w, err := worker.New(cfg.NATSUrl, worker.Handler{
		OrderCreated: func(evt events.OrderCreated) error {
			// Email delivery hangs off this hook once an SMTP provider is
			// configured. Until then events are just logged.
			return nil
		},
	}, logger)
	if err != nil {
		return err
	}

	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
