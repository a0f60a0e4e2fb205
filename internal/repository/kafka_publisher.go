package repository

import (
	"context"
	"fmt"

	"PriceTrust/internal/domain/models"
	pkgkafka "PriceTrust/pkg/kafka"
)

// KafkaAuditPublisher implements AuditPublisher over the shared producer.
type KafkaAuditPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAuditPublisher(producer *pkgkafka.Producer, topic string) *KafkaAuditPublisher {
	return &KafkaAuditPublisher{producer: producer, topic: topic}
}

// Publish emits one audit event keyed by symbol, so all proofs for one
// instrument land on the same partition in order.
func (p *KafkaAuditPublisher) Publish(ctx context.Context, ev *models.ProofAuditEvent) error {
	if ev == nil {
		return fmt.Errorf("event is nil")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

func (p *KafkaAuditPublisher) Close() error {
	return p.producer.Close()
}
