package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/ambience/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a string key/value store with per-key expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// SessionStore loads and saves conversation state.
// Load returns (nil, nil) when the session does not exist yet.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// CatalogFetcher retrieves the track catalog from the remote source.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (domain.Catalog, error)
}
