package domain

type FragmentType string

const (
	FragmentText            FragmentType = "text"
	FragmentSimpleResponse  FragmentType = "simple_response"
	FragmentMedia           FragmentType = "media"
	FragmentBasicCard       FragmentType = "basic_card"
	FragmentSuggestions     FragmentType = "suggestions"
	FragmentSessionEntities FragmentType = "session_entities"
)

// MaxSuggestionChips is the largest chip list the platforms render.
const MaxSuggestionChips = 8

type SimpleResponse struct {
	DisplayText string `json:"display_text"`
	Speech      string `json:"speech"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type MediaObject struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Image       *Image `json:"image,omitempty"`
}

type Button struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type BasicCard struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Body     string  `json:"body,omitempty"`
	Image    *Image  `json:"image,omitempty"`
	Button   *Button `json:"button,omitempty"`
}

// Fragment is one element of an outgoing response; exactly one payload field
// is set and matches Type.
type Fragment struct {
	Type            FragmentType        `json:"type"`
	Text            string              `json:"text,omitempty"`
	Simple          *SimpleResponse     `json:"simple_response,omitempty"`
	Media           *MediaObject        `json:"media,omitempty"`
	Card            *BasicCard          `json:"basic_card,omitempty"`
	Suggestions     []string            `json:"suggestions,omitempty"`
	SessionEntities map[string][]string `json:"session_entities,omitempty"`
}

type Response struct {
	SessionID          string     `json:"session"`
	Fragments          []Fragment `json:"fragments"`
	ExpectUserResponse bool       `json:"expectUserResponse"`
}

func (r *Response) Add(f Fragment) {
	r.Fragments = append(r.Fragments, f)
}

// Find returns the first fragment of the given type.
func (r Response) Find(t FragmentType) (Fragment, bool) {
	for _, f := range r.Fragments {
		if f.Type == t {
			return f, true
		}
	}
	return Fragment{}, false
}

// PlayEvent is published whenever a track starts playing.
type PlayEvent struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	PlayedAt  int64  `json:"played_at"`
}
