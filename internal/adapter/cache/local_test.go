package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/ports"
)

func TestLocalCache_SetGet(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"String", "value", "value"},
		{"Bytes", []byte(`{"a":1}`), `{"a":1}`},
		{"Struct", struct {
			Title string `json:"title"`
		}{"Rain"}, `{"title":"Rain"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, "key:"+tt.name, tt.value, 0); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := c.Get(ctx, "key:"+tt.name)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLocalCache_MissAndExpiry(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "absent"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for absent key, got %v", err)
	}

	c.Set(ctx, "short", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss for expired key, got %v", err)
	}
}

func TestLocalCache_Delete(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestLocalCache_SweepRemovesExpired(t *testing.T) {
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "session:a", "a", time.Minute)
	c.Set(ctx, "session:b", "b", time.Hour)
	c.Set(ctx, "catalog", "c", 0)

	now = now.Add(2 * time.Minute)
	c.sweep()

	if n := c.Len(); n != 2 {
		t.Errorf("expected 2 entries after sweep, got %d", n)
	}
	if _, err := c.Get(ctx, "catalog"); err != nil {
		t.Errorf("entry without expiry should survive, got %v", err)
	}
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}
