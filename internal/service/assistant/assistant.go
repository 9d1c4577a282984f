package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/observability/telemetry"
	"github.com/seu-repo/ambience/internal/ports"
	"github.com/seu-repo/ambience/internal/service/tracks"
)

type Config struct {
	SuggestionCount int
	// SessionEntities pushes titles, genres and tags to the NLU layer on the
	// first turn so the entity-driven play intent can resolve them.
	SessionEntities bool
}

func DefaultConfig() Config {
	return Config{SuggestionCount: tracks.DefaultSuggestionCount}
}

type Assistant struct {
	router   *Router
	sessions ports.SessionStore
	catalog  ports.CatalogService
	events   ports.EventPublisher
	random   ports.RandomSource
	cfg      Config
	now      func() time.Time
	log      *zap.Logger
}

func NewAssistant(
	router *Router,
	sessions ports.SessionStore,
	catalog ports.CatalogService,
	events ports.EventPublisher,
	random ports.RandomSource,
	cfg Config,
	log *zap.Logger,
) *Assistant {
	if cfg.SuggestionCount <= 0 {
		cfg.SuggestionCount = tracks.DefaultSuggestionCount
	}
	if cfg.SuggestionCount > domain.MaxSuggestionChips {
		cfg.SuggestionCount = domain.MaxSuggestionChips
	}
	a := &Assistant{
		router:   router,
		sessions: sessions,
		catalog:  catalog,
		events:   events,
		random:   random,
		cfg:      cfg,
		now:      time.Now,
		log:      log,
	}
	log.Info("Assistant ready", zap.Strings("intents", router.Intents()))
	return a
}

// HandleTurn processes one inbound intent. Every failure inside the turn is
// turned into a spoken apology; the error is only non-nil when ctx is done.
func (a *Assistant) HandleTurn(ctx context.Context, req domain.IntentRequest) (*domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.Intent == "" {
		req.Intent = domain.IntentFallback
	}

	ctx, span := telemetry.Tracer().Start(ctx, "assistant.HandleTurn")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", req.SessionID),
		attribute.String("intent", req.Intent),
	)

	log := a.log.With(zap.String("session_id", req.SessionID), zap.String("intent", req.Intent))

	resp, err := a.turn(ctx, req, log)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("Turn failed", zap.Error(err))
		r := apologyResponse()
		resp = &r
	}
	resp.SessionID = req.SessionID

	telemetry.IntentsTotal.WithLabelValues(req.Intent, status).Inc()
	telemetry.TurnLatency.WithLabelValues(req.Intent).Observe(time.Since(start).Seconds())
	return resp, nil
}

func (a *Assistant) turn(ctx context.Context, req domain.IntentRequest, log *zap.Logger) (*domain.Response, error) {
	session, err := a.sessions.Load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = domain.NewSession(req.SessionID, a.now())
		log.Debug("Starting new session")
	}

	catalog, err := a.catalog.EnsureCatalog(ctx, session)
	if err != nil {
		return nil, err
	}

	handler, known := a.router.Lookup(req.Intent)
	if !known {
		log.Warn("Unknown intent, using fallback")
	}

	t := &Turn{
		Session:         session,
		Intent:          req.Intent,
		QueryText:       req.QueryText,
		Parameters:      req.Parameters,
		Catalog:         catalog,
		Random:          a.random,
		SuggestionCount: a.cfg.SuggestionCount,
	}
	if t.Parameters == nil {
		t.Parameters = domain.Parameters{}
	}

	resp, err := dispatch(ctx, handler, t)
	if err != nil {
		return nil, err
	}

	if !resp.ExpectUserResponse {
		if err := a.sessions.Delete(ctx, session.ID); err != nil {
			log.Warn("Failed to delete ended session", zap.Error(err))
		} else {
			log.Debug("Conversation ended")
		}
	} else {
		if a.cfg.SessionEntities && !session.EntitiesSent {
			resp.Add(sessionEntities(catalog))
			session.EntitiesSent = true
		}

		session.UpdatedAt = a.now()
		if err := a.sessions.Save(ctx, session); err != nil {
			// The answer is still valid for this turn; only follow-ups lose state.
			log.Error("Failed to save session", zap.Error(err))
		}
	}

	if t.played != nil {
		a.publishPlay(ctx, req, t.played, log)
	}

	return &resp, nil
}

// dispatch runs handler, converting a panic into an error.
func dispatch(ctx context.Context, handler HandlerFunc, t *Turn) (resp domain.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, t)
}

func (a *Assistant) publishPlay(ctx context.Context, req domain.IntentRequest, p *playback, log *zap.Logger) {
	telemetry.TracksPlayedTotal.Inc()
	if a.events == nil {
		return
	}

	event := domain.PlayEvent{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		Intent:    req.Intent,
		Title:     p.track.Title,
		Source:    p.source,
		PlayedAt:  a.now().Unix(),
	}
	if err := a.events.PublishPlay(ctx, event); err != nil {
		log.Warn("Failed to publish play event", zap.Error(err))
	}
}
