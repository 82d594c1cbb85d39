package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/domain"
	redis "github.com/redis/go-redis/v9"
)

// PriceStore writes and reads competitor price batches on the shared list.
type PriceStore struct {
	manager *Manager
	key     string
	cap     int64
}

func NewPriceStore(manager *Manager, key string, cap int64) *PriceStore {
	return &PriceStore{manager: manager, key: key, cap: cap}
}

// StoreBatch left-pushes the whole batch in one MULTI/EXEC call and trims
// the list to the retention cap. The trim runs on every write regardless of
// batch size. Readers observe either the whole batch or none of it.
func (s *PriceStore) StoreBatch(ctx context.Context, records []domain.CompetitorPriceRecord) (int, error) {
	if s.key == "" {
		return 0, fmt.Errorf("price list key is not configured")
	}
	if !s.manager.Connected() {
		return 0, ErrUnavailable
	}
	if len(records) == 0 {
		return 0, nil
	}

	// Push in reverse so the batch keeps its catalog order at the head.
	vals := make([]interface{}, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		data, err := json.Marshal(records[i])
		if err != nil {
			return 0, fmt.Errorf("marshal price record: %w", err)
		}
		vals = append(vals, data)
	}

	_, err := s.manager.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, vals...)
		pipe.LTrim(ctx, s.key, 0, s.cap-1)
		return nil
	})
	if err != nil {
		s.manager.MarkFailure()
		return 0, fmt.Errorf("redis LPUSH/LTRIM %s: %w", s.key, err)
	}
	return len(records), nil
}

// Latest returns the first n records in current list order, newest batches
// first.
func (s *PriceStore) Latest(ctx context.Context, n int) ([]domain.CompetitorPriceRecord, error) {
	if s.key == "" {
		return nil, fmt.Errorf("price list key is not configured")
	}
	items, err := s.manager.Client().LRange(ctx, s.key, 0, int64(n)-1).Result()
	if err != nil {
		s.manager.MarkFailure()
		return nil, fmt.Errorf("redis LRANGE %s: %w", s.key, err)
	}

	records := make([]domain.CompetitorPriceRecord, 0, len(items))
	for _, item := range items {
		var rec domain.CompetitorPriceRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			// Skip malformed entries but continue.
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Count reports how many records are currently retained.
func (s *PriceStore) Count(ctx context.Context) (int64, error) {
	count, err := s.manager.Client().LLen(ctx, s.key).Result()
	if err != nil {
		s.manager.MarkFailure()
		return 0, fmt.Errorf("redis LLEN %s: %w", s.key, err)
	}
	return count, nil
}

// LastCapture returns the capture timestamp of the newest stored record, or
// the zero time when the list is empty.
func (s *PriceStore) LastCapture(ctx context.Context) (time.Time, error) {
	item, err := s.manager.Client().LIndex(ctx, s.key, 0).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		s.manager.MarkFailure()
		return time.Time{}, fmt.Errorf("redis LINDEX %s: %w", s.key, err)
	}

	var rec domain.CompetitorPriceRecord
	if err := json.Unmarshal([]byte(item), &rec); err != nil {
		return time.Time{}, fmt.Errorf("unmarshal head record: %w", err)
	}
	return rec.CapturedAt, nil
}
