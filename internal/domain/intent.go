package domain

import "strings"

// Intent names as registered with the NLU agent.
const (
	IntentWelcome     = "Default Welcome Intent"
	IntentFallback    = "Default Fallback Intent"
	IntentPlay        = "Play"
	IntentPlayEntity  = "Play Entity"
	IntentSearch      = "Search"
	IntentRepeat      = "Repeat"
	IntentCurrent     = "Current"
	IntentNew         = "New"
	IntentHelp        = "Help"
	IntentMediaStatus = "Media Status"
	IntentGoodbye     = "Goodbye"
)

// Parameter names supplied by the NLU layer.
const (
	ParamSearch      = "search"
	ParamTitle       = "title"
	ParamGenre       = "genre"
	ParamTag         = "tag"
	ParamMediaStatus = "media_status"
)

// MediaStatusFinished is reported by the platform when playback completes.
const MediaStatusFinished = "FINISHED"

type Parameters map[string]string

// Get returns the trimmed value of a parameter.
func (p Parameters) Get(name string) string {
	return strings.TrimSpace(p[name])
}

// First returns the first non-empty parameter among names.
func (p Parameters) First(names ...string) (string, string) {
	for _, n := range names {
		if v := p.Get(n); v != "" {
			return n, v
		}
	}
	return "", ""
}

type IntentRequest struct {
	SessionID  string     `json:"session_id"`
	Intent     string     `json:"intent"`
	QueryText  string     `json:"query_text,omitempty"`
	Parameters Parameters `json:"parameters,omitempty"`
}
