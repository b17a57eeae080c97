// Package events publishes asset-change notifications so downstream cache
// layers can purge stale CDN paths.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adilzhan/gameportal/internal/config"
	"github.com/adilzhan/gameportal/internal/metrics"
	kafka "github.com/segmentio/kafka-go"
)

// AssetChange describes a mutation of stored assets for one entity.
type AssetChange struct {
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Action    string    `json:"action"`
	Paths     []string  `json:"paths"`
	ChangedAt time.Time `json:"changed_at"`
}

// Publisher delivers asset-change events to the invalidation topic.
type Publisher interface {
	Publish(ctx context.Context, change AssetChange) error
	Close() error
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(cfg config.EventsConfig) Publisher {
	if len(cfg.Brokers) == 0 {
		return noopPublisher{}
	}
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func (p *kafkaPublisher) Publish(ctx context.Context, change AssetChange) error {
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal asset change: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(change.Entity + ":" + change.EntityID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish asset change: %w", err)
	}

	metrics.EventsPublished.Inc()
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, AssetChange) error { return nil }
func (noopPublisher) Close() error                               { return nil }
