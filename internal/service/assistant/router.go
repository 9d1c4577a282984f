package assistant

import (
	"context"
	"sort"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/ports"
)

// Turn is everything a handler sees for one conversation turn. Handlers may
// mutate Session; the assistant persists it afterwards.
type Turn struct {
	Session         *domain.Session
	Intent          string
	QueryText       string
	Parameters      domain.Parameters
	Catalog         domain.Catalog
	Random          ports.RandomSource
	SuggestionCount int

	played *playback
}

type playback struct {
	track  domain.Track
	source string
}

// play makes track the session's current track and marks the turn for a play event.
func (t *Turn) play(track domain.Track, source string) {
	t.Session.Play(track)
	t.played = &playback{track: track, source: source}
}

type HandlerFunc func(ctx context.Context, turn *Turn) (domain.Response, error)

// Router maps intent names to handlers.
type Router struct {
	handlers map[string]HandlerFunc
	fallback HandlerFunc
}

func NewRouter(fallback HandlerFunc) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		fallback: fallback,
	}
}

func (r *Router) Handle(intent string, h HandlerFunc) {
	r.handlers[intent] = h
}

// Lookup returns the handler for intent, or the fallback when none is registered.
func (r *Router) Lookup(intent string) (HandlerFunc, bool) {
	if h, ok := r.handlers[intent]; ok {
		return h, true
	}
	return r.fallback, false
}

// Intents lists the registered intent names, sorted.
func (r *Router) Intents() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRouter wires every intent the skill understands.
func DefaultRouter() *Router {
	r := NewRouter(Fallback)
	r.Handle(domain.IntentWelcome, Welcome)
	r.Handle(domain.IntentFallback, Fallback)
	r.Handle(domain.IntentPlay, Play)
	r.Handle(domain.IntentPlayEntity, PlayEntity)
	r.Handle(domain.IntentSearch, Search)
	r.Handle(domain.IntentRepeat, Repeat)
	r.Handle(domain.IntentCurrent, Current)
	r.Handle(domain.IntentNew, New)
	r.Handle(domain.IntentHelp, Help)
	r.Handle(domain.IntentMediaStatus, MediaStatus)
	r.Handle(domain.IntentGoodbye, Goodbye)
	return r
}
