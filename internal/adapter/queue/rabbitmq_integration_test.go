//go:build integration

package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// rabbitURL returns RABBITMQ_URL when set (CI), otherwise starts a container.
func rabbitURL(t *testing.T) string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Skipf("RabbitMQ container not available: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get rabbitmq host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5672")
	if err != nil {
		t.Fatalf("Failed to get rabbitmq port: %v", err)
	}
	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestRabbitMQQueue_RecoversFromChannelClose(t *testing.T) {
	// Arrange
	mq, err := NewRabbitMQQueue(rabbitURL(t), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRabbitMQQueue failed: %v", err)
	}
	defer mq.Close()
	q := mq.(*RabbitMQQueue)

	received := make(chan string, 16)
	if err := mq.Subscribe("ambience.test.played", func(data []byte) error {
		received <- string(data)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// Act: the broker closes the channel when publishing to a missing exchange.
	q.mu.Lock()
	closed := q.channel
	_ = closed.PublishWithContext(context.Background(), "ambience.missing", "", false, false, amqp.Publishing{Body: []byte("x")})
	q.mu.Unlock()

	deadline := time.Now().Add(15 * time.Second)
	for {
		q.mu.RLock()
		reopened := q.channel != closed && !q.channel.IsClosed()
		q.mu.RUnlock()
		if reopened {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("channel was not reopened after a channel-level close")
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Assert
	if err := mq.Publish(context.Background(), "ambience.test.played", []byte("after")); err != nil {
		t.Fatalf("Publish after reopen failed: %v", err)
	}
	select {
	case msg := <-received:
		if msg != "after" {
			t.Errorf("unexpected message %q", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not restored on the reopened channel")
	}
}

func TestRabbitMQQueue_CloseStopsPublishing(t *testing.T) {
	mq, err := NewRabbitMQQueue(rabbitURL(t), zap.NewNop())
	if err != nil {
		t.Fatalf("NewRabbitMQQueue failed: %v", err)
	}

	if err := mq.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := mq.Publish(context.Background(), "ambience.test.played", []byte("late")); !errors.Is(err, errChannelClosed) {
		t.Errorf("expected errChannelClosed after Close, got %v", err)
	}
	if !mq.(*RabbitMQQueue).isClosing() {
		t.Error("queue should report closing")
	}
}
