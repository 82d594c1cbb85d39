package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bidwise/competitor-price-ingest/internal/domain"
	redis "github.com/redis/go-redis/v9"
)

// BidStore keeps a bounded window of recent bid adjustments. The audit only
// ever looks at the last few days, so old entries age out via the cap like
// price records do.
type BidStore struct {
	manager *Manager
	key     string
	cap     int64
}

func NewBidStore(manager *Manager, key string, cap int64) *BidStore {
	return &BidStore{manager: manager, key: key, cap: cap}
}

func (s *BidStore) Add(ctx context.Context, bid domain.ProductBid) error {
	if s.key == "" {
		return fmt.Errorf("bid list key is not configured")
	}
	if !s.manager.Connected() {
		return ErrUnavailable
	}
	data, err := json.Marshal(bid)
	if err != nil {
		return fmt.Errorf("marshal bid: %w", err)
	}

	_, err = s.manager.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, s.cap-1)
		return nil
	})
	if err != nil {
		s.manager.MarkFailure()
		return fmt.Errorf("redis LPUSH/LTRIM %s: %w", s.key, err)
	}
	return nil
}

// All returns every retained bid, newest first.
func (s *BidStore) All(ctx context.Context) ([]domain.ProductBid, error) {
	if s.key == "" {
		return nil, fmt.Errorf("bid list key is not configured")
	}
	items, err := s.manager.Client().LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		s.manager.MarkFailure()
		return nil, fmt.Errorf("redis LRANGE %s: %w", s.key, err)
	}

	bids := make([]domain.ProductBid, 0, len(items))
	for _, item := range items {
		var bid domain.ProductBid
		if err := json.Unmarshal([]byte(item), &bid); err != nil {
			// Skip malformed entries but continue.
			continue
		}
		bids = append(bids, bid)
	}
	return bids, nil
}
