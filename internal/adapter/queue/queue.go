package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// Supported drivers
const (
	DriverNone     = ""
	DriverNATS     = "nats"
	DriverRabbitMQ = "rabbitmq"
)

// New connects to the configured broker. An empty driver yields a queue that drops messages.
func New(driver, url string, log *zap.Logger) (MessageQueue, error) {
	switch driver {
	case DriverNone:
		log.Info("No message queue configured, play events will be dropped")
		return NoopQueue{}, nil
	case DriverNATS:
		return NewNATSQueue(url, log)
	case DriverRabbitMQ:
		return NewRabbitMQQueue(url, log)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", driver)
	}
}

// NoopQueue discards everything
type NoopQueue struct{}

func (NoopQueue) Publish(ctx context.Context, subject string, data []byte) error { return nil }

func (NoopQueue) Subscribe(subject string, handler func(data []byte) error) error { return nil }

func (NoopQueue) Close() error { return nil }
