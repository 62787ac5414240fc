package shred

import "strings"

// Tokenize splits text on runs of Unicode whitespace. Tokens are exact
// substrings of the input: punctuation and case are preserved for display.
// strings.Fields never yields an empty token, so no further filtering is
// needed. The result is never nil.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	if words == nil {
		return []string{}
	}
	return words
}
