package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/ports"
)

var _ ports.Cache = (*LocalCache)(nil)

type localEntry struct {
	value    string
	deadline time.Time // zero means no expiry
}

func (e localEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && !now.Before(e.deadline)
}

// LocalCache keeps sessions in process memory. It is only correct with a
// single replica; use RedisCache otherwise.
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]localEntry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
	log     *zap.Logger
}

// NewLocalCache starts a cache that sweeps expired entries every interval.
func NewLocalCache(interval time.Duration, log *zap.Logger) *LocalCache {
	if interval <= 0 {
		interval = time.Minute
	}

	c := &LocalCache{
		entries: make(map[string]localEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
		log:     log,
	}
	go c.sweepLoop(interval)

	log.Info("Using in-memory cache", zap.Duration("sweep_interval", interval))
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		return "", fmt.Errorf("%w: %s", ports.ErrCacheMiss, key)
	}
	return e.value, nil
}

// Set stores strings and byte slices as-is and JSON-encodes anything else,
// matching what the Redis client would persist.
func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s, err := encodeValue(value)
	if err != nil {
		return err
	}

	e := localEntry{value: s}
	if expiration > 0 {
		e.deadline = c.now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close stops the sweeper. It is safe to call more than once.
func (c *LocalCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *LocalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *LocalCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *LocalCache) sweep() {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.log.Debug("Swept expired cache entries", zap.Int("removed", removed))
	}
}

func encodeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode cache value: %w", err)
		}
		return string(data), nil
	}
}
