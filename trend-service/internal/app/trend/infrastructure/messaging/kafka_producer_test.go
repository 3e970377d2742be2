package messaging

import (
	"context"
	"testing"

	"trenddrop/trend-service/internal/app/trend/infrastructure"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaProducer(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:9092", "localhost:9093"}, "trend.products")
	defer producer.Close()

	assert.Equal(t, "trend.products", producer.writer.Topic)
	assert.IsType(t, &kafka.Hash{}, producer.writer.Balancer)
	assert.Equal(t, kafka.RequireOne, producer.writer.RequiredAcks)
}

func TestPublishMessages_EmptyBatch(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:1"}, "trend.products")
	defer producer.Close()

	assert.NoError(t, producer.PublishMessages(context.Background()))
}

func TestPublishMessages_CanceledContext(t *testing.T) {
	producer := NewKafkaProducer([]string{"localhost:1"}, "trend.products")
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := producer.PublishMessages(ctx, infrastructure.Message{Key: "1", Value: []byte(`{}`)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write messages to kafka")
}
