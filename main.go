package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	service "github.com/bidwise/competitor-price-ingest/internal"
	"github.com/bidwise/competitor-price-ingest/internal/config"
)

func main() {
	logger := log.New(os.Stdout, "price-ingest ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// A stuck drain must not keep the process alive past its shutdown budget.
	go func() {
		<-ctx.Done()
		time.AfterFunc(cfg.ShutdownTimeout+5*time.Second, func() {
			logger.Println("shutdown drain exceeded hard timeout, forcing exit")
			os.Exit(1)
		})
	}()

	app := service.NewApp(cfg, logger)

	if err := app.Run(ctx); err != nil {
		logger.Fatalf("service exited with error: %v", err)
	}
}
