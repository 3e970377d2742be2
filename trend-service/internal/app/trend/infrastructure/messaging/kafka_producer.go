package messaging

import (
	"context"
	"fmt"
	"time"

	"trenddrop/pkg/metrics"
	"trenddrop/trend-service/internal/app/trend/infrastructure"

	"github.com/segmentio/kafka-go"
)

const serviceName = "trend-service"

// KafkaProducer публикует события о товарах (PRODUCT_DISCOVERED, PRODUCT_TREND_UPDATED)
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // события одного товара попадают в одну партицию
		BatchSize:    100,
		BatchTimeout: 20 * time.Millisecond,
		MaxAttempts:  3,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

func (p *KafkaProducer) PublishMessages(ctx context.Context, messages ...infrastructure.Message) error {
	if len(messages) == 0 {
		return nil
	}

	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)

	now := time.Now()
	batch := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		batch = append(batch, kafka.Message{
			Key:   []byte(m.Key),
			Value: m.Value,
			Time:  now,
		})
	}

	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write messages to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
