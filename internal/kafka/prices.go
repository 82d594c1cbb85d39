package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bidwise/competitor-price-ingest/internal/config"
	"github.com/bidwise/competitor-price-ingest/internal/domain"
	"github.com/segmentio/kafka-go"
)

// PricePublisher publishes captured price snapshots to Kafka for downstream
// bid recalculation. Redis stays the source of truth; publishing is
// best-effort per cycle.
type PricePublisher struct {
	writer *kafka.Writer
	Topic  string
}

func NewPricePublisher(cfg config.Config) *PricePublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &PricePublisher{writer: writer, Topic: cfg.KafkaTopic}
}

// PublishBatch writes one message per record, keyed by product id, with the
// cycle id carried as a header so consumers can group a batch.
func (p *PricePublisher) PublishBatch(ctx context.Context, cycleID string, records []domain.CompetitorPriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal price record: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatInt(rec.ProductID, 10)),
			Value: value,
			Headers: []kafka.Header{
				{Key: "cycle_id", Value: []byte(cycleID)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *PricePublisher) Close() error {
	return p.writer.Close()
}
