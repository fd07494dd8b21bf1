package knowledge

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scoring constants. The fallback baseline equals the confidence floor, so a
// message matching nothing always resolves to the fallback at exactly the
// floor score.
const (
	ConfidenceFloor  = 0.15
	fallbackBaseline = 0.15
)

// foldMarks strips diacritics: decompose, drop combining marks, recompose.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize lowercases text, strips diacritics and splits it into runs of
// ASCII letters and digits.
func Tokenize(text string) []string {
	folded, _, err := transform.String(foldMarks, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	return strings.FieldsFunc(folded, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
}

// Score rates a message against one entry. An entry without keywords scores
// the fixed fallback baseline. Otherwise the score is the number of message
// tokens found in the entry's tokenized keywords, divided by the total
// keyword token count. Duplicate message tokens count multiple times and
// duplicate keyword tokens inflate the denominator; both are kept as-is.
func Score(message string, entry Entry) float64 {
	if len(entry.Keywords) == 0 {
		return fallbackBaseline
	}

	keywordTokens := make(map[string]bool)
	total := 0
	for _, keyword := range entry.Keywords {
		for _, token := range Tokenize(keyword) {
			keywordTokens[token] = true
			total++
		}
	}
	if total == 0 {
		return 0
	}

	matches := 0
	for _, token := range Tokenize(message) {
		if keywordTokens[token] {
			matches++
		}
	}
	if matches == 0 {
		return 0
	}
	return float64(matches) / float64(total)
}

// Match is the result of selecting a playbook entry for a message.
type Match struct {
	EntryID string
	Score   float64
}

// SelectBest scores every entry and returns the best match, first maximum
// winning in declaration order. A best score under the confidence floor
// forces the fallback entry at exactly the floor score.
func (b *Base) SelectBest(message string) Match {
	best := Match{}
	for _, entry := range b.entries {
		if score := Score(message, entry); score > best.Score {
			best = Match{EntryID: entry.ID, Score: score}
		}
	}

	if best.EntryID == "" || best.Score < ConfidenceFloor {
		return Match{EntryID: b.fallbackID, Score: ConfidenceFloor}
	}
	return best
}
