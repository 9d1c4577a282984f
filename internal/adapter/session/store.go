package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/ports"
)

const keyPrefix = "session:"

// DefaultTTL bounds how long an idle conversation keeps its state.
const DefaultTTL = 30 * time.Minute

// Store keeps conversation state in a cache under a sliding TTL.
// Nothing outlives the TTL; an expired session starts over.
type Store struct {
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewStore(cache ports.Cache, ttl time.Duration, log *zap.Logger) ports.SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.cache.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.log.Warn("Dropping unreadable session state", zap.String("session_id", id), zap.Error(err))
		return nil, nil
	}
	return &session, nil
}

func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.cache.Set(ctx, keyPrefix+session.ID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, keyPrefix+id)
}
