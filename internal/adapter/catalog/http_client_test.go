package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/domain"
)

const catalogJSON = `{
  "tracks": [
    {
      "track_title": "Forest: Day",
      "track_genre": ["Ambient", "Nature"],
      "tags": ["nature", "calm"],
      "link": "https://cdn.test/forest.mp3",
      "large_image": "https://cdn.test/forest.jpg",
      "flavor_text": "Birdsong over rustling leaves."
    },
    {
      "track_title": "",
      "track_genre": ["Ambient"],
      "tags": []
    },
    {
      "track_title": "Tavern Night",
      "track_genre": [],
      "tags": ["combat"],
      "link": "https://cdn.test/tavern.mp3"
    }
  ]
}`

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(DefaultConfig(url), zap.NewNop())
}

func TestFetchCatalog_DecodesDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	catalog, err := newTestClient(server.URL).FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog failed: %v", err)
	}

	if len(catalog) != 2 {
		t.Fatalf("expected 2 valid tracks, got %d", len(catalog))
	}

	forest := catalog[0]
	if forest.Title != "Forest: Day" {
		t.Errorf("expected title 'Forest: Day', got %q", forest.Title)
	}
	if g, _ := forest.PrimaryGenre(); g != "Ambient" {
		t.Errorf("expected primary genre 'Ambient', got %q", g)
	}
	if forest.MediaURL != "https://cdn.test/forest.mp3" {
		t.Errorf("unexpected media url %q", forest.MediaURL)
	}
	if forest.ImageURL != "https://cdn.test/forest.jpg" {
		t.Errorf("unexpected image url %q", forest.ImageURL)
	}
	if forest.FlavorText == "" {
		t.Error("expected flavor text")
	}

	if _, ok := catalog[1].PrimaryGenre(); ok {
		t.Error("track without genres should report no primary genre")
	}
}

func TestFetchCatalog_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"NotFound", http.StatusNotFound, "missing"},
		{"ServerError", http.StatusBadGateway, "upstream down"},
		{"NotJSON", http.StatusOK, "<html>oops</html>"},
		{"NoTracks", http.StatusOK, `{"tracks": []}`},
		{"OnlyInvalidTracks", http.StatusOK, `{"tracks": [{"track_title": "  "}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).FetchCatalog(context.Background())
			if !errors.Is(err, domain.ErrCatalogUnavailable) {
				t.Errorf("expected ErrCatalogUnavailable, got %v", err)
			}
		})
	}
}

func TestFetchCatalog_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).FetchCatalog(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Errorf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestFetchCatalog_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultConfig(server.URL)
	cfg.Breaker.FailureThreshold = 2
	client := NewHTTPClient(cfg, zap.NewNop())

	for i := 0; i < 4; i++ {
		client.FetchCatalog(context.Background())
	}

	if hits.Load() != 2 {
		t.Errorf("expected breaker to stop calls after 2 failures, server saw %d", hits.Load())
	}
}
