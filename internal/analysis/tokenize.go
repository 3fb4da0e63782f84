package analysis

import "strings"

// minClusterTokenLen is the shortest token kept for clustering, exclusive.
const minClusterTokenLen = 2

// TokenSet is an unordered set of lowercase tokens.
type TokenSet map[string]struct{}

// Has reports whether token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Tokenize splits text on every character that is not an ASCII letter or
// digit and lowercases the pieces. Order and duplicates are preserved.
func Tokenize(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool { return !isASCIIAlnum(r) })
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, strings.ToLower(part))
	}
	return tokens
}

// TokenizeForClustering returns the deduplicated tokens of text that are
// longer than two characters and not stopwords.
func TokenizeForClustering(text string, stopwords TokenSet) TokenSet {
	set := make(TokenSet)
	for _, token := range Tokenize(text) {
		if len(token) <= minClusterTokenLen || stopwords.Has(token) {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}
