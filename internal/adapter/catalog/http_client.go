package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/ambience/internal/ports"
)

// maxDocumentSize bounds the catalog body we are willing to decode.
const maxDocumentSize = 8 << 20

// Config holds the remote catalog client configuration
type Config struct {
	URL     string
	Timeout time.Duration
	Breaker circuitbreaker.Settings
}

// DefaultConfig returns default catalog client configuration
func DefaultConfig(url string) Config {
	return Config{
		URL:     url,
		Timeout: 10 * time.Second,
		Breaker: circuitbreaker.DefaultSettings("catalog"),
	}
}

// HTTPClient fetches the track catalog JSON document from a fixed endpoint.
type HTTPClient struct {
	http *circuitbreaker.HTTPClient
	url  string
	log  *zap.Logger
}

var _ ports.CatalogFetcher = (*HTTPClient)(nil)

func NewHTTPClient(cfg Config, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		http: circuitbreaker.NewHTTPClientWithSettings(circuitbreaker.HTTPClientSettings{
			Timeout: cfg.Timeout,
			Breaker: cfg.Breaker,
		}, log),
		url: cfg.URL,
		log: log,
	}
}

func (c *HTTPClient) FetchCatalog(ctx context.Context) (domain.Catalog, error) {
	resp, err := c.http.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", domain.ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, &circuitbreaker.StatusError{StatusCode: resp.StatusCode})
	}

	var doc domain.CatalogDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", domain.ErrCatalogUnavailable, err)
	}

	catalog := make(domain.Catalog, 0, len(doc.Tracks))
	for i, t := range doc.Tracks {
		if err := t.Validate(); err != nil {
			c.log.Warn("Skipping catalog entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		catalog = append(catalog, t)
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, domain.ErrEmptyCatalog)
	}

	c.log.Info("Catalog fetched", zap.String("url", c.url), zap.Int("tracks", len(catalog)))
	return catalog, nil
}

// BreakerState reports the circuit state guarding the catalog endpoint.
func (c *HTTPClient) BreakerState() string {
	return c.http.State()
}
