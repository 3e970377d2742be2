package infrastructure

import "context"

// Message - одно событие для брокера
type Message struct {
	Key   string
	Value []byte
}

type MessagePublisher interface {
	PublishMessages(ctx context.Context, messages ...Message) error
	Close() error
}
