package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/observability/telemetry"
	"github.com/seu-repo/ambience/internal/ports"
)

const sharedCacheKey = "catalog:v1"

// Config controls catalog loading
type Config struct {
	FetchTimeout   time.Duration
	SharedCacheTTL time.Duration // zero disables the cross-session cache
}

// DefaultConfig returns default catalog settings
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 10 * time.Second,
	}
}

// Service loads the catalog into sessions. Each session fetches at most once;
// with a shared cache, sessions started within the TTL reuse the same document.
type Service struct {
	fetcher ports.CatalogFetcher
	cache   ports.Cache
	cfg     Config
	group   singleflight.Group
	log     *zap.Logger
}

func NewService(fetcher ports.CatalogFetcher, cache ports.Cache, cfg Config, log *zap.Logger) *Service {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		log:     log,
	}
}

// EnsureCatalog returns the session catalog, loading it on the first call.
func (s *Service) EnsureCatalog(ctx context.Context, session *domain.Session) (domain.Catalog, error) {
	if session.HasCatalog() {
		return session.Catalog, nil
	}

	catalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	session.Catalog = catalog
	s.log.Debug("Catalog loaded into session",
		zap.String("session_id", session.ID),
		zap.Int("tracks", len(catalog)),
	)
	return catalog, nil
}

func (s *Service) sharedEnabled() bool {
	return s.cache != nil && s.cfg.SharedCacheTTL > 0
}

func (s *Service) load(ctx context.Context) (domain.Catalog, error) {
	if !s.sharedEnabled() {
		return s.fetch(ctx)
	}

	if catalog, ok := s.fromCache(ctx); ok {
		return catalog, nil
	}

	// Concurrent first turns share one remote fetch; a cancelled caller must
	// not fail the others.
	v, err, _ := s.group.Do(sharedCacheKey, func() (interface{}, error) {
		catalog, err := s.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.toCache(ctx, catalog)
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Catalog), nil
}

func (s *Service) fetch(ctx context.Context) (domain.Catalog, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "catalog.fetch")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	catalog, err := s.fetcher.FetchCatalog(ctx)
	telemetry.CatalogFetchLatency.Observe(time.Since(start).Seconds())

	if err == nil {
		err = catalog.Validate()
	}
	if err != nil {
		telemetry.CatalogFetchesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("Failed to fetch catalog", zap.Error(err))
		if errors.Is(err, domain.ErrCatalogUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	telemetry.CatalogFetchesTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.Int("catalog.tracks", len(catalog)))
	return catalog, nil
}

func (s *Service) fromCache(ctx context.Context) (domain.Catalog, bool) {
	raw, err := s.cache.Get(ctx, sharedCacheKey)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.log.Warn("Catalog cache read failed", zap.Error(err))
		}
		telemetry.CatalogCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var catalog domain.Catalog
	if err := json.Unmarshal([]byte(raw), &catalog); err != nil || catalog.Validate() != nil {
		s.log.Warn("Discarding malformed cached catalog", zap.Error(err))
		telemetry.CatalogCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	telemetry.CatalogCacheTotal.WithLabelValues("hit").Inc()
	return catalog, true
}

func (s *Service) toCache(ctx context.Context, catalog domain.Catalog) {
	data, err := json.Marshal(catalog)
	if err != nil {
		s.log.Warn("Failed to encode catalog for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), sharedCacheKey, data, s.cfg.SharedCacheTTL); err != nil {
		s.log.Warn("Failed to store catalog in cache", zap.Error(err))
	}
}
