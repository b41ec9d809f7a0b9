package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inventory-demo/customer-shop/internal/api"
	"github.com/inventory-demo/customer-shop/internal/config"
	"github.com/inventory-demo/customer-shop/internal/shop"
	"github.com/inventory-demo/customer-shop/internal/ui"
	"github.com/inventory-demo/customer-shop/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting customer shop client",
		"api_url", cfg.API.BaseURL,
		"log_level", cfg.LogLevel,
	)

	client := api.New(cfg.API.BaseURL, time.Duration(cfg.API.RequestTimeout)*time.Second, log)
	controller := shop.NewController(client, log)
	front := ui.New(controller, os.Stdin, os.Stdout, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := front.Run(ctx); err != nil {
		log.Error("session ended with error", "error", err)
		os.Exit(1)
	}

	log.Info("session ended")
}
