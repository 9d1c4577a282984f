package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/observability/telemetry"
	"github.com/seu-repo/ambience/internal/service/tracks"
)

// newestCount is how many tracks the "what's new" intent reads out.
const newestCount = 3

func Welcome(ctx context.Context, t *Turn) (domain.Response, error) {
	return t.suggestionsResponse(welcomeText)
}

func Help(ctx context.Context, t *Turn) (domain.Response, error) {
	return t.suggestionsResponse(helpText)
}

func Fallback(ctx context.Context, t *Turn) (domain.Response, error) {
	return t.suggestionsResponse(fallbackText + " " + helpText)
}

// Play handles free-text play requests.
func Play(ctx context.Context, t *Turn) (domain.Response, error) {
	return playResult(t, tracks.Match(t.Catalog, t.Parameters.Get(domain.ParamSearch)))
}

// PlayEntity handles play requests resolved against session entities. Genre
// and tag values only select from their category; titles and free text use
// the play rule.
func PlayEntity(ctx context.Context, t *Turn) (domain.Response, error) {
	name, value := t.Parameters.First(domain.ParamTitle, domain.ParamGenre, domain.ParamTag, domain.ParamSearch)
	switch name {
	case domain.ParamGenre, domain.ParamTag:
		return playResult(t, tracks.MatchCategory(t.Catalog, value))
	default:
		return playResult(t, tracks.Match(t.Catalog, value))
	}
}

func playResult(t *Turn, result tracks.MatchResult) (domain.Response, error) {
	term := result.Term
	telemetry.MatchResultsTotal.WithLabelValues("play", result.Kind.String()).Inc()

	track, ok := tracks.Pick(result, t.Random)
	if !ok {
		return t.noMatchResponse(term)
	}

	t.play(track, result.Kind.String())
	return t.playingResponse(track)
}

func Search(ctx context.Context, t *Turn) (domain.Response, error) {
	result := tracks.Search(t.Catalog, t.Parameters.Get(domain.ParamSearch))
	kind := "none"
	switch {
	case result.Count() == 1:
		kind = "one"
	case result.Count() > 1:
		kind = "many"
	}
	telemetry.MatchResultsTotal.WithLabelValues("search", kind).Inc()

	return t.searchResponse(result)
}

// Repeat replays the current track.
func Repeat(ctx context.Context, t *Turn) (domain.Response, error) {
	if t.Session.CurrentTrack == nil {
		return t.suggestionsResponse("Nothing has played yet. Try one of these.")
	}

	track := *t.Session.CurrentTrack
	t.play(track, "repeat")
	return t.playingResponse(track)
}

// Current describes the track that is playing.
func Current(ctx context.Context, t *Turn) (domain.Response, error) {
	if t.Session.CurrentTrack == nil {
		return t.suggestionsResponse("Nothing is playing right now. Want to try one of these?")
	}

	track := *t.Session.CurrentTrack
	suggestions, err := t.suggest()
	if err != nil {
		return domain.Response{}, err
	}

	line := fmt.Sprintf("This is %s.", track.Title)
	if track.FlavorText != "" {
		line += " " + track.FlavorText
	}
	return t.respond(simple(line, ""), card(track), chips(suggestions)), nil
}

// New reads out the most recent tracks; catalog order is newest first.
func New(ctx context.Context, t *Turn) (domain.Response, error) {
	titles := t.Catalog.Recent(newestCount).Titles()
	line := fmt.Sprintf("The newest tracks are %s.", joinTitles(titles))
	if len(titles) == 1 {
		line = fmt.Sprintf("The newest track is %s.", titles[0])
	}
	return t.respond(simple(line, ""), chips(titles)), nil
}

// Goodbye ends the conversation; the assistant drops the session afterwards.
func Goodbye(ctx context.Context, t *Turn) (domain.Response, error) {
	return domain.Response{Fragments: []domain.Fragment{simple(goodbyeText, "")}}, nil
}

// MediaStatus handles platform playback notifications.
func MediaStatus(ctx context.Context, t *Turn) (domain.Response, error) {
	status := strings.ToUpper(t.Parameters.Get(domain.ParamMediaStatus))
	if status != domain.MediaStatusFinished {
		return t.suggestionsResponse("Okay. Want to hear something else?")
	}

	line := "Want to hear something else?"
	if t.Session.CurrentTrack != nil {
		line = fmt.Sprintf("Hope you enjoyed %s. Want to hear something else?", t.Session.CurrentTrack.Title)
	}
	return t.suggestionsResponse(line)
}
