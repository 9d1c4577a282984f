package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/adapter/cache"
	catalogclient "github.com/seu-repo/ambience/internal/adapter/catalog"
	"github.com/seu-repo/ambience/internal/adapter/queue"
	"github.com/seu-repo/ambience/internal/adapter/session"
	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/service/assistant"
	"github.com/seu-repo/ambience/internal/service/catalog"
	"github.com/seu-repo/ambience/internal/service/health"
	"github.com/seu-repo/ambience/internal/service/tracks"
	"github.com/seu-repo/ambience/pkg/config"
)

const catalogJSON = `{"tracks": [
	{"track_title": "Forest: Day", "track_genre": ["Ambient"], "tags": ["nature"], "link": "https://cdn.test/forest.mp3", "flavor_text": "Birdsong."},
	{"track_title": "Tavern Night", "track_genre": ["Medieval"], "tags": ["combat"], "link": "https://cdn.test/tavern.mp3"},
	{"track_title": "Siege Engines", "track_genre": ["Battle"], "tags": ["combat"], "link": "https://cdn.test/siege.mp3"}
]}`

func setupTestApp(t *testing.T, catalogURL string) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	cfg := &config.Config{
		App:            config.AppConfig{Name: "ambience-test", Version: "test"},
		Prometheus:     config.PrometheusConfig{Enabled: true, Path: "/metrics"},
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: true},
		CORS:           config.CORSConfig{Enabled: true},
	}

	store := cache.NewLocalCache(time.Minute, logger)
	t.Cleanup(func() { store.Close() })

	client := catalogclient.NewHTTPClient(catalogclient.DefaultConfig(catalogURL), logger)
	skill := assistant.NewAssistant(
		assistant.DefaultRouter(),
		session.NewStore(store, session.DefaultTTL, logger),
		catalog.NewService(client, store, catalog.DefaultConfig(), logger),
		queue.NewPlayPublisher(queue.NoopQueue{}, "", logger),
		tracks.NewSeededRandomSource(7),
		assistant.DefaultConfig(),
		logger,
	)
	healthService := health.NewService(&health.Config{Version: "test", Cache: store, Catalog: client}, logger)

	return newApp(cfg, skill, healthService, logger)
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, catalogJSON)
	}))
	t.Cleanup(server.Close)
	return server
}

func fulfill(t *testing.T, app *fiber.App, session, intent string, params map[string]interface{}) domain.Response {
	t.Helper()
	payload := map[string]interface{}{
		"session": session,
		"queryResult": map[string]interface{}{
			"intent":     map[string]string{"displayName": intent},
			"parameters": params,
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fulfillment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var out domain.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func TestAPI_Conversation(t *testing.T) {
	app := setupTestApp(t, newCatalogServer(t).URL)

	t.Run("Play", func(t *testing.T) {
		resp := fulfill(t, app, "conv-1", domain.IntentPlay, map[string]interface{}{"search": "forest day"})
		m, ok := resp.Find(domain.FragmentMedia)
		if !ok || m.Media.Title != "Forest: Day" {
			t.Fatalf("Expected Forest: Day media, got %+v", resp.Fragments)
		}
		if resp.SessionID != "conv-1" || !resp.ExpectUserResponse {
			t.Errorf("Unexpected envelope %+v", resp)
		}
	})

	t.Run("Current", func(t *testing.T) {
		resp := fulfill(t, app, "conv-1", domain.IntentCurrent, nil)
		c, ok := resp.Find(domain.FragmentBasicCard)
		if !ok || c.Card.Title != "Forest: Day" {
			t.Errorf("Expected card for current track, got %+v", resp.Fragments)
		}
	})

	t.Run("Search", func(t *testing.T) {
		resp := fulfill(t, app, "conv-1", domain.IntentSearch, map[string]interface{}{"search": "combat"})
		s, _ := resp.Find(domain.FragmentSimpleResponse)
		if s.Simple == nil || !strings.Contains(s.Simple.Speech, "There are 2 tracks") {
			t.Errorf("Expected two combat tracks, got %+v", s.Simple)
		}
	})

	t.Run("OtherSessionHasNoCurrentTrack", func(t *testing.T) {
		resp := fulfill(t, app, "conv-2", domain.IntentRepeat, nil)
		if _, ok := resp.Find(domain.FragmentMedia); ok {
			t.Error("A new session must not inherit the current track")
		}
	})
}

func TestAPI_CatalogDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	app := setupTestApp(t, server.URL)

	resp := fulfill(t, app, "conv-1", domain.IntentWelcome, nil)

	s, _ := resp.Find(domain.FragmentSimpleResponse)
	if s.Simple == nil || !strings.HasPrefix(s.Simple.Speech, "Sorry, something went wrong") {
		t.Errorf("Expected apology, got %+v", resp.Fragments)
	}
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	app := setupTestApp(t, newCatalogServer(t).URL)
	fulfill(t, app, "conv-1", domain.IntentHelp, nil)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/health", http.StatusOK, `"status":"healthy"`},
		{"/ready", http.StatusOK, `"ready":true`},
		{"/metrics", http.StatusOK, "ambience_intents_total"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("Expected %q in body, got %s", tt.contains, body)
			}
		})
	}
}

func TestBreakerSettings(t *testing.T) {
	s := breakerSettings(config.CircuitBreakerConfig{FailureThreshold: 9, FailureRatio: 0.5, MinRequests: 4}, "x")

	if s.Name != "x" || s.FailureThreshold != 9 || s.FailureRatio != 0.5 || s.MinRequests != 4 {
		t.Errorf("Unexpected settings %+v", s)
	}
	if s.MaxRequests != 3 || s.Timeout != 30*time.Second {
		t.Errorf("Defaults should fill unset fields, got %+v", s)
	}
}
