package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/bidwise/competitor-price-ingest/internal/catalog"
	"github.com/bidwise/competitor-price-ingest/internal/config"
	"github.com/bidwise/competitor-price-ingest/internal/kafka"
	"github.com/bidwise/competitor-price-ingest/internal/rest"
	"github.com/bidwise/competitor-price-ingest/internal/scheduler"
	"github.com/bidwise/competitor-price-ingest/internal/store"
	"golang.org/x/sync/errgroup"
)

// App centralizes dependency wiring for the price ingestion service.
type App struct {
	cfg    config.Config
	logger *log.Logger

	storeMgr  *store.Manager
	prices    *store.PriceStore
	bids      *store.BidStore
	fetcher   *catalog.Client
	publisher *kafka.PricePublisher
	sched     *scheduler.Scheduler

	httpServer *http.Server
}

// NewApp builds an App with all required dependencies.
func NewApp(cfg config.Config, logger *log.Logger) *App {
	storeMgr := store.NewManager(cfg, logger)
	prices := store.NewPriceStore(storeMgr, cfg.PricesKey, cfg.PricesCap)
	bids := store.NewBidStore(storeMgr, cfg.BidsKey, cfg.BidsCap)
	fetcher := catalog.NewClient(cfg)
	publisher := kafka.NewPricePublisher(cfg)
	sched := scheduler.New(fetcher, prices, publisher, cfg.FetchInterval, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		storeMgr:  storeMgr,
		prices:    prices,
		bids:      bids,
		fetcher:   fetcher,
		publisher: publisher,
		sched:     sched,
	}
}

// Run starts background services and blocks until ctx cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.cleanup()

	if err := a.storeMgr.Connect(ctx); err != nil {
		// Not fatal: the manager keeps probing and the health endpoint
		// reports the outage in the meantime.
		a.logger.Printf("initial store connect: %v (reconnecting in background)", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("run scheduler: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.runHTTPServer(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func (a *App) runHTTPServer(ctx context.Context) error {
	r, srv := rest.NewServer(a.cfg)
	a.httpServer = srv

	priceController := rest.NewPriceController(a.prices, a.storeMgr)
	priceController.RegisterPriceRoutes(r.Group(""))
	bidController := rest.NewBidController(a.bids)
	bidController.RegisterBidRoutes(r.Group(""))

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Printf("HTTP server started at: %s", srv.Addr)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	// App context shutdown:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		err := <-serverErr
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	// HTTP server error:
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (a *App) cleanup() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Printf("error closing Kafka publisher: %v", err)
		}
	}
	if a.storeMgr != nil {
		if err := a.storeMgr.Close(); err != nil {
			a.logger.Printf("error closing store connection: %v", err)
		}
	}
}
