package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/ports"
)

// DefaultPlaySubject is where play events go unless configured otherwise.
const DefaultPlaySubject = "ambience.tracks.played"

type PlayPublisher struct {
	mq      MessageQueue
	subject string
	log     *zap.Logger
}

func NewPlayPublisher(mq MessageQueue, subject string, log *zap.Logger) ports.EventPublisher {
	if subject == "" {
		subject = DefaultPlaySubject
	}
	return &PlayPublisher{
		mq:      mq,
		subject: subject,
		log:     log,
	}
}

func (p *PlayPublisher) PublishPlay(ctx context.Context, event domain.PlayEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode play event: %w", err)
	}
	if err := p.mq.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("failed to publish play event: %w", err)
	}
	p.log.Debug("Play event published",
		zap.String("subject", p.subject),
		zap.String("title", event.Title),
	)
	return nil
}
