package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/domain"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleBatch() []domain.CompetitorPriceRecord {
	return []domain.CompetitorPriceRecord{
		{ProductID: 1, ProductName: "Widget", Price: 9.99},
		{ProductID: 2, ProductName: "Gadget", Price: 19.5},
	}
}

type fakeFetcher struct {
	mu      sync.Mutex
	records []domain.CompetitorPriceRecord
	err     error
	calls   int

	started chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) FetchBatch(ctx context.Context) ([]domain.CompetitorPriceRecord, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.records, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeWriter struct {
	mu    sync.Mutex
	got   [][]domain.CompetitorPriceRecord
	err   error
	calls int
}

func (w *fakeWriter) StoreBatch(ctx context.Context, records []domain.CompetitorPriceRecord) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return 0, w.err
	}
	w.got = append(w.got, records)
	return len(records), nil
}

func (w *fakeWriter) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type fakePublisher struct {
	mu       sync.Mutex
	cycleIDs []string
	batches  [][]domain.CompetitorPriceRecord
	err      error
}

func (p *fakePublisher) PublishBatch(ctx context.Context, cycleID string, records []domain.CompetitorPriceRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cycleIDs = append(p.cycleIDs, cycleID)
	p.batches = append(p.batches, records)
	return p.err
}

func TestRunCycleStoresAndPublishes(t *testing.T) {
	fetcher := &fakeFetcher{records: sampleBatch()}
	writer := &fakeWriter{}
	publisher := &fakePublisher{}

	s := New(fetcher, writer, publisher, time.Hour, testLogger())
	s.RunCycle(context.Background())

	if writer.callCount() != 1 {
		t.Fatalf("writer calls = %d, want 1", writer.callCount())
	}
	if len(writer.got[0]) != 2 {
		t.Errorf("stored batch size = %d, want 2", len(writer.got[0]))
	}
	if len(publisher.batches) != 1 || len(publisher.batches[0]) != 2 {
		t.Fatalf("published batches = %v, want one batch of 2", publisher.batches)
	}
	if publisher.cycleIDs[0] == "" {
		t.Error("cycle id is empty")
	}
}

func TestRunCycleFetchFailureShortCircuits(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	writer := &fakeWriter{}

	s := New(fetcher, writer, nil, time.Hour, testLogger())
	s.RunCycle(context.Background())

	if writer.callCount() != 0 {
		t.Errorf("writer calls = %d, want 0 after fetch failure", writer.callCount())
	}
}

func TestRunCycleWriteFailureSkipsPublish(t *testing.T) {
	fetcher := &fakeFetcher{records: sampleBatch()}
	writer := &fakeWriter{err: errors.New("store down")}
	publisher := &fakePublisher{}

	s := New(fetcher, writer, publisher, time.Hour, testLogger())
	s.RunCycle(context.Background())

	if len(publisher.batches) != 0 {
		t.Errorf("publisher called %d times, want 0 after write failure", len(publisher.batches))
	}
}

func TestRunCycleWithoutPublisher(t *testing.T) {
	fetcher := &fakeFetcher{records: sampleBatch()}
	writer := &fakeWriter{}

	s := New(fetcher, writer, nil, time.Hour, testLogger())
	s.RunCycle(context.Background())

	if writer.callCount() != 1 {
		t.Errorf("writer calls = %d, want 1", writer.callCount())
	}
}

func TestRunCycleSkipsWhileInFlight(t *testing.T) {
	fetcher := &fakeFetcher{
		records: sampleBatch(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	writer := &fakeWriter{}

	s := New(fetcher, writer, nil, time.Hour, testLogger())

	done := make(chan struct{})
	go func() {
		s.RunCycle(context.Background())
		close(done)
	}()
	<-fetcher.started

	// Second tick while the first cycle is blocked in fetch.
	s.RunCycle(context.Background())
	if got := fetcher.callCount(); got != 1 {
		t.Errorf("fetch calls = %d, want 1 (overlapping tick must be skipped)", got)
	}

	close(fetcher.release)
	<-done

	if writer.callCount() != 1 {
		t.Errorf("writer calls = %d, want 1", writer.callCount())
	}
}

func TestRunExecutesInitialCycle(t *testing.T) {
	fetcher := &fakeFetcher{records: sampleBatch()}
	writer := &fakeWriter{}

	s := New(fetcher, writer, nil, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for fetcher.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial cycle did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("fetch calls = %d, want 1 before first tick", fetcher.callCount())
	}
}
