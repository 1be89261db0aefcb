package repository

import (
	"context"

	"GapSight/internal/domain/models"
	"GapSight/internal/domain/repository"
	pkgkafka "GapSight/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

// Publish keys by symbol so a consumer sees one symbol's signals in order.
func (p *KafkaSignalPublisher) Publish(ctx context.Context, sig *models.GapSignal) error {
	return p.producer.Publish(ctx, p.topic, []byte(sig.Symbol), sig)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
