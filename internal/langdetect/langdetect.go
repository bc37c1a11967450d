// Package langdetect guesses whether a chat message is Indonesian or English
// so error bubbles can answer in kind. It is a keyword-hit heuristic, not a
// real language model.
package langdetect

import "strings"

// Language is the detector's verdict.
type Language string

const (
	Indonesian Language = "indonesian"
	English    Language = "english"
)

var indonesianWords = []string{
	"apa", "bagaimana", "gimana", "bisa", "gak", "tidak", "dengan",
	"untuk", "dari", "dan", "kok", "sih", "dong",
}

var englishWords = []string{
	"what", "how", "can", "could", "would", "the", "and", "with",
	"for", "from", "when", "where",
}

// Detect counts keyword hits in text and returns the winning language.
// Ties fall back to English.
func Detect(text string) Language {
	lower := strings.ToLower(text)

	idScore := 0
	for _, w := range indonesianWords {
		if strings.Contains(lower, w) {
			idScore++
		}
	}
	enScore := 0
	for _, w := range englishWords {
		if strings.Contains(lower, w) {
			enScore++
		}
	}

	if idScore > enScore {
		return Indonesian
	}
	return English
}
