package analysis

import "strings"

// Normalize collapses every run of whitespace into a single space and trims
// both ends. Whitespace-only input yields "".
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
