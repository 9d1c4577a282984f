package main

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seu-repo/ambience/internal/adapter/queue"
	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/mocks"
)

func TestPlayEventWorker(t *testing.T) {
	// Arrange
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	mq := mocks.NewMockMessageQueue()
	startBackgroundWorkers(mq, queue.DefaultPlaySubject, logger)

	publisher := queue.NewPlayPublisher(mq, "", logger)
	event := domain.PlayEvent{ID: "e-1", SessionID: "s-1", Title: "Forest: Day", Source: "exact_title"}

	// Act
	if err := publisher.PublishPlay(context.Background(), event); err != nil {
		t.Fatalf("PublishPlay failed: %v", err)
	}
	for _, msg := range mq.Published(queue.DefaultPlaySubject) {
		if err := mq.Deliver(queue.DefaultPlaySubject, msg); err != nil {
			t.Fatalf("worker returned error: %v", err)
		}
	}
	mq.Deliver(queue.DefaultPlaySubject, []byte("not json"))

	// Assert
	played := logs.FilterMessage("Track played").All()
	if len(played) != 1 {
		t.Fatalf("expected 1 play log, got %d", len(played))
	}
	if played[0].ContextMap()["title"] != "Forest: Day" {
		t.Errorf("unexpected log fields %v", played[0].ContextMap())
	}
	if logs.FilterMessage("Dropping malformed play event").Len() != 1 {
		t.Error("expected malformed event to be logged and dropped")
	}
}
