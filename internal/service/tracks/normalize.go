package tracks

import (
	"regexp"
	"strings"
)

var wordColonWord = regexp.MustCompile(`(\w):(\w)`)

// Normalize canonicalizes a title or search phrase for comparison:
// lower-cased, "word:word" split into "word word", other colons dropped.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = wordColonWord.ReplaceAllString(s, "$1 $2")
	return strings.ReplaceAll(s, ":", "")
}
