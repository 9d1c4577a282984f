package assistant

import (
	"fmt"
	"strings"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/service/tracks"
)

const (
	apologyText  = "Sorry, something went wrong. Please try again in a moment."
	welcomeText  = "Welcome to Ambience! Ask me to play a track by its title, a genre or a tag."
	helpText     = "You can say things like \"play forest day\", \"search combat\", \"what's new\" or \"what's playing\"."
	fallbackText = "Sorry, I didn't catch that."
	goodbyeText  = "Goodbye. Come back whenever you need some atmosphere."
)

func simple(display, speech string) domain.Fragment {
	if speech == "" {
		speech = display
	}
	return domain.Fragment{
		Type:   domain.FragmentSimpleResponse,
		Simple: &domain.SimpleResponse{DisplayText: display, Speech: speech},
	}
}

func chips(values []string) domain.Fragment {
	if len(values) > domain.MaxSuggestionChips {
		values = values[:domain.MaxSuggestionChips]
	}
	return domain.Fragment{Type: domain.FragmentSuggestions, Suggestions: values}
}

func media(t domain.Track) domain.Fragment {
	m := &domain.MediaObject{
		Title:       t.Title,
		URL:         t.MediaURL,
		Description: t.FlavorText,
	}
	if t.ImageURL != "" {
		m.Image = &domain.Image{URL: t.ImageURL, Alt: t.Title}
	}
	return domain.Fragment{Type: domain.FragmentMedia, Media: m}
}

func card(t domain.Track) domain.Fragment {
	c := &domain.BasicCard{
		Title: t.Title,
		Body:  t.FlavorText,
	}
	if g, ok := t.PrimaryGenre(); ok {
		c.Subtitle = g
	}
	if t.ImageURL != "" {
		c.Image = &domain.Image{URL: t.ImageURL, Alt: t.Title}
	}
	if t.MediaURL != "" {
		c.Button = &domain.Button{Title: "Listen", URL: t.MediaURL}
	}
	return domain.Fragment{Type: domain.FragmentBasicCard, Card: c}
}

// joinTitles renders "a", "a and b", "a, b and c".
func joinTitles(titles []string) string {
	switch len(titles) {
	case 0:
		return ""
	case 1:
		return titles[0]
	default:
		return strings.Join(titles[:len(titles)-1], ", ") + " and " + titles[len(titles)-1]
	}
}

// suggest runs the suggestion generator over the whole session catalog.
func (t *Turn) suggest() ([]string, error) {
	return tracks.Suggest(t.Catalog, t.SuggestionCount, t.Random)
}

func (t *Turn) respond(fragments ...domain.Fragment) domain.Response {
	return domain.Response{Fragments: fragments, ExpectUserResponse: true}
}

func (t *Turn) playingResponse(track domain.Track) (domain.Response, error) {
	suggestions, err := t.suggest()
	if err != nil {
		return domain.Response{}, err
	}
	line := fmt.Sprintf("Playing %s.", track.Title)
	return t.respond(simple(line, ""), media(track), chips(suggestions)), nil
}

func (t *Turn) noMatchResponse(term string) (domain.Response, error) {
	suggestions, err := t.suggest()
	if err != nil {
		return domain.Response{}, err
	}
	what := "that"
	if term != "" {
		what = term
	}
	line := fmt.Sprintf("Sorry, I couldn't find %s. How about %s?", what, suggestions[0])
	return t.respond(simple(line, ""), chips(suggestions)), nil
}

func (t *Turn) searchResponse(result tracks.SearchResult) (domain.Response, error) {
	suggestions, err := t.suggest()
	if err != nil {
		return domain.Response{}, err
	}

	switch result.Count() {
	case 0:
		what := "that"
		if result.Term != "" {
			what = result.Term
		}
		line := fmt.Sprintf("Sorry, there are no tracks matching %s. How about %s?", what, suggestions[0])
		return t.respond(simple(line, ""), chips(suggestions)), nil
	case 1:
		title := result.Hits[0].Title
		line := fmt.Sprintf("I found one track: %s. Want me to play it?", title)
		return t.respond(simple(line, ""), chips(append([]string{title}, suggestions...))), nil
	default:
		preview := result.Preview()
		line := fmt.Sprintf("There are %d tracks matching %s, including %s.", result.Count(), result.Term, joinTitles(preview))
		return t.respond(simple(line, ""), chips(append(preview, suggestions...))), nil
	}
}

// suggestionsResponse is the common "line plus chips" shape.
func (t *Turn) suggestionsResponse(line string) (domain.Response, error) {
	suggestions, err := t.suggest()
	if err != nil {
		return domain.Response{}, err
	}
	return t.respond(simple(line, ""), chips(suggestions)), nil
}

func apologyResponse() domain.Response {
	return domain.Response{
		Fragments:          []domain.Fragment{simple(apologyText, "")},
		ExpectUserResponse: true,
	}
}

// sessionEntities lists distinct titles, genres and tags so the NLU layer can
// recognize them as entities for the rest of the conversation.
func sessionEntities(catalog domain.Catalog) domain.Fragment {
	entities := map[string][]string{
		domain.ParamTitle: {},
		domain.ParamGenre: {},
		domain.ParamTag:   {},
	}
	seen := make(map[string]bool)
	add := func(kind, value string) {
		key := kind + "\x00" + strings.ToLower(value)
		if strings.TrimSpace(value) == "" || seen[key] {
			return
		}
		seen[key] = true
		entities[kind] = append(entities[kind], value)
	}

	for _, t := range catalog {
		add(domain.ParamTitle, t.Title)
		for _, g := range t.Genres {
			add(domain.ParamGenre, g)
		}
		for _, tag := range t.Tags {
			add(domain.ParamTag, tag)
		}
	}
	return domain.Fragment{Type: domain.FragmentSessionEntities, SessionEntities: entities}
}
