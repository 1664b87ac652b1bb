// Package events publishes settlement events to Kafka for downstream
// consumers (accounting, analytics).
package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/sentience-labs/x402-gateway/internal/models"
)

// Topic carries one message per successfully settled payment.
const Topic = "payment.settled"

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) PublishSettled(ctx context.Context, event models.SettledEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PaymentID),
		Value: data,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
