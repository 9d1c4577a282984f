package ports

import (
	"context"

	"github.com/seu-repo/ambience/internal/domain"
)

// RandomSource picks indexes uniformly in [0, n). n is always positive.
type RandomSource interface {
	Intn(n int) int
}

// CatalogService makes sure a session carries a catalog before matching.
type CatalogService interface {
	EnsureCatalog(ctx context.Context, session *domain.Session) (domain.Catalog, error)
}

// Assistant handles one conversation turn.
type Assistant interface {
	HandleTurn(ctx context.Context, req domain.IntentRequest) (*domain.Response, error)
}

// EventPublisher emits play events for downstream consumers.
type EventPublisher interface {
	PublishPlay(ctx context.Context, event domain.PlayEvent) error
}
