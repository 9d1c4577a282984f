package tracks

import (
	"strings"

	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/ports"
)

// PreviewSize is how many titles a search result lists back to the user.
const PreviewSize = 3

type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactTitle
	CategorySet
)

func (k MatchKind) String() string {
	switch k {
	case ExactTitle:
		return "exact_title"
	case CategorySet:
		return "category_set"
	default:
		return "no_match"
	}
}

// MatchResult is the outcome of the play rule. For ExactTitle Tracks holds the
// single matched track; for CategorySet every matching track in catalog order.
type MatchResult struct {
	Kind   MatchKind
	Term   string
	Tracks domain.Catalog
}

// Match applies the play rule: the first track whose normalized title contains
// the normalized term, otherwise every track with a genre or tag equal to the term.
func Match(catalog domain.Catalog, term string) MatchResult {
	term = strings.TrimSpace(term)
	result := MatchResult{Kind: NoMatch, Term: term}
	if term == "" {
		return result
	}

	needle := Normalize(term)
	for _, t := range catalog {
		if titleContains(t, needle) {
			result.Kind = ExactTitle
			result.Tracks = domain.Catalog{t}
			return result
		}
	}

	return matchCategory(catalog, result)
}

// MatchCategory resolves a typed genre or tag value: every track with a genre
// or tag equal to the term, in catalog order. Titles are not consulted.
func MatchCategory(catalog domain.Catalog, term string) MatchResult {
	term = strings.TrimSpace(term)
	result := MatchResult{Kind: NoMatch, Term: term}
	if term == "" {
		return result
	}
	return matchCategory(catalog, result)
}

func matchCategory(catalog domain.Catalog, result MatchResult) MatchResult {
	category := strings.ToLower(result.Term)
	for _, t := range catalog {
		if inCategory(t, category) {
			result.Tracks = append(result.Tracks, t)
		}
	}
	if len(result.Tracks) > 0 {
		result.Kind = CategorySet
	}
	return result
}

// Pick selects the track to play: the exact hit, or a uniform draw from a category set.
func Pick(result MatchResult, rnd ports.RandomSource) (domain.Track, bool) {
	switch result.Kind {
	case ExactTitle:
		return result.Tracks[0], true
	case CategorySet:
		return result.Tracks[rnd.Intn(len(result.Tracks))], true
	default:
		return domain.Track{}, false
	}
}

// SearchResult is the outcome of the search rule.
type SearchResult struct {
	Term string
	Hits domain.Catalog
}

func (r SearchResult) Count() int {
	return len(r.Hits)
}

// Preview returns the first PreviewSize matching titles.
func (r SearchResult) Preview() []string {
	return r.Hits.Recent(PreviewSize).Titles()
}

// Search applies the search rule: a track is a hit when its title contains the
// term, or one of its genres or tags equals the term.
func Search(catalog domain.Catalog, term string) SearchResult {
	term = strings.TrimSpace(term)
	result := SearchResult{Term: term}
	if term == "" {
		return result
	}

	needle := Normalize(term)
	category := strings.ToLower(term)
	for _, t := range catalog {
		if titleContains(t, needle) || inCategory(t, category) {
			result.Hits = append(result.Hits, t)
		}
	}
	return result
}

func titleContains(t domain.Track, needle string) bool {
	return strings.Contains(Normalize(t.Title), needle)
}

// inCategory compares whole genre and tag values; partial matches don't count.
func inCategory(t domain.Track, category string) bool {
	for _, g := range t.Genres {
		if strings.ToLower(g) == category {
			return true
		}
	}
	for _, tag := range t.Tags {
		if strings.ToLower(tag) == category {
			return true
		}
	}
	return false
}
