package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/domain"
	"github.com/google/uuid"
)

// Fetcher produces one batch of competitor price records.
type Fetcher interface {
	FetchBatch(ctx context.Context) ([]domain.CompetitorPriceRecord, error)
}

// BatchWriter appends one batch to the shared store.
type BatchWriter interface {
	StoreBatch(ctx context.Context, records []domain.CompetitorPriceRecord) (int, error)
}

// BatchPublisher fans a stored batch out to downstream consumers.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, cycleID string, records []domain.CompetitorPriceRecord) error
}

// Scheduler drives the fetch-store cycle: once at startup, then on a fixed
// interval until the context is canceled. Missed ticks are not backfilled.
type Scheduler struct {
	fetcher   Fetcher
	writer    BatchWriter
	publisher BatchPublisher
	interval  time.Duration
	logger    *log.Logger

	running atomic.Bool
}

func New(fetcher Fetcher, writer BatchWriter, publisher BatchPublisher, interval time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		fetcher:   fetcher,
		writer:    writer,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Run blocks until ctx cancellation, executing one cycle immediately and
// one per tick after that.
func (s *Scheduler) Run(ctx context.Context) error {
	s.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle executes one fetch-and-store cycle. At most one cycle is in
// flight at a time; a tick firing mid-cycle is skipped, never run
// concurrently, which keeps the push-then-trim retention invariant intact.
// Failures end the cycle and leave the previous batch untouched.
func (s *Scheduler) RunCycle(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Printf("previous cycle still in flight, skipping tick")
		return
	}
	defer s.running.Store(false)

	cycleID := uuid.NewString()

	records, err := s.fetcher.FetchBatch(ctx)
	if err != nil {
		s.logger.Printf("cycle %s fetch: %v", cycleID, err)
		return
	}

	count, err := s.writer.StoreBatch(ctx, records)
	if err != nil {
		s.logger.Printf("cycle %s store: %v", cycleID, err)
		return
	}
	s.logger.Printf("cycle %s stored %d records", cycleID, count)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBatch(ctx, cycleID, records); err != nil {
		s.logger.Printf("cycle %s publish: %v", cycleID, err)
	}
}
