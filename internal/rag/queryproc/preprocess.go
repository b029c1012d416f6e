package queryproc

import "strings"

// Preprocess normalizes a raw user question: surrounding whitespace is
// dropped and interior runs collapse to single spaces. The text itself is
// never rewritten, casing and punctuation stay as typed.
func Preprocess(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// Keywords lowercases and tokenizes a query for overlap scoring.
func Keywords(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
