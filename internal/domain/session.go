package domain

import "time"

// Session holds per-conversation state. It is owned by a single conversation
// and only mutated by the turn currently being handled.
type Session struct {
	ID           string    `json:"id"`
	Catalog      Catalog   `json:"catalog,omitempty"`
	CurrentTrack *Track    `json:"current_track,omitempty"`
	EntitiesSent bool      `json:"entities_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasCatalog reports whether the catalog was already loaded for this session.
func (s *Session) HasCatalog() bool {
	return len(s.Catalog) > 0
}

// Play records track as the one now playing.
func (s *Session) Play(track Track) {
	t := track
	s.CurrentTrack = &t
}
