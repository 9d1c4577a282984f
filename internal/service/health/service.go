package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses so the worst check decides the overall one.
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse is ready unless some check is unhealthy; degraded checks
// still accept traffic.
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type Checker func(ctx context.Context) CheckResult

// Pinger is anything with a connectivity probe, such as the session cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the circuit state of an outbound dependency
type BreakerReporter interface {
	BreakerState() string
}

type Config struct {
	Version      string
	Cache        Pinger
	Catalog      BreakerReporter
	CheckTimeout time.Duration
}

type Service struct {
	version      string
	started      time.Time
	checkTimeout time.Duration
	log          *zap.Logger

	mu       sync.RWMutex
	checkers map[string]Checker
}

func NewService(config *Config, log *zap.Logger) *Service {
	timeout := config.CheckTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Service{
		version:      config.Version,
		started:      time.Now(),
		checkTimeout: timeout,
		log:          log,
		checkers:     make(map[string]Checker),
	}

	if config.Cache != nil {
		s.RegisterChecker("cache", pingChecker("cache", config.Cache, log))
	}
	if config.Catalog != nil {
		s.RegisterChecker("catalog", breakerChecker("catalog", config.Catalog))
	}
	return s
}

func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	s.checkers[name] = checker
	s.mu.Unlock()
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Health is the liveness probe; it never touches dependencies.
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now(),
	}
}

// Ready runs every registered check concurrently, each under its own timeout.
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for name, c := range s.checkers {
		checkers[name] = c
	}
	s.mu.RUnlock()

	var (
		mu      sync.Mutex
		results = make(map[string]CheckResult, len(checkers))
		g       errgroup.Group
	)
	for name, check := range checkers {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
			defer cancel()

			r := check(checkCtx)
			mu.Lock()
			results[name] = r
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	overall := StatusHealthy
	for _, r := range results {
		if r.Status.severity() > overall.severity() {
			overall = r.Status
		}
	}

	return &ReadyResponse{
		Ready:     overall != StatusUnhealthy,
		Status:    overall,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// pingChecker is unhealthy when the dependency does not answer a ping.
func pingChecker(name string, p Pinger, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := p.Ping(ctx)

		r := CheckResult{
			Name:      name,
			Status:    StatusHealthy,
			Message:   "connection ok",
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}
		if err != nil {
			r.Status = StatusUnhealthy
			r.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Health check failed", zap.String("check", name), zap.Error(err))
		}
		return r
	}
}

// breakerChecker degrades while the circuit is not closed. Sessions that
// already hold a catalog keep working, so this never fails readiness.
func breakerChecker(name string, b BreakerReporter) Checker {
	return func(ctx context.Context) CheckResult {
		state := b.BreakerState()
		r := CheckResult{
			Name:      name,
			Status:    StatusHealthy,
			Message:   "circuit " + state,
			Timestamp: time.Now(),
		}
		if state != "closed" {
			r.Status = StatusDegraded
		}
		return r
	}
}
