package tracks

import (
	"github.com/seu-repo/ambience/internal/domain"
	"github.com/seu-repo/ambience/internal/ports"
)

// DefaultSuggestionCount is the chip count used when none is configured.
const DefaultSuggestionCount = 6

type extractor func(domain.Track) string

// extractors rotate per slot: title, primary genre, first tag.
var extractors = []extractor{
	func(t domain.Track) string { return t.Title },
	func(t domain.Track) string {
		if g, ok := t.PrimaryGenre(); ok {
			return g
		}
		return t.Title
	},
	func(t domain.Track) string {
		if tag, ok := t.FirstTag(); ok {
			return tag
		}
		return t.Title
	},
}

// Suggest draws count tracks independently (repeats allowed) and extracts one
// chip from each, rotating through the extractors by slot index.
func Suggest(catalog domain.Catalog, count int, rnd ports.RandomSource) ([]string, error) {
	if len(catalog) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	if count < 0 {
		count = 0
	}

	chips := make([]string, count)
	for i := range chips {
		track := catalog[rnd.Intn(len(catalog))]
		chips[i] = extractors[i%len(extractors)](track)
	}
	return chips, nil
}
