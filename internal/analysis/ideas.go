package analysis

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const (
	// MaxIdeas caps the ranked idea list.
	MaxIdeas = 10

	topTermsPerIdea = 3

	MixedPerspectives = "Feedback highlights mixed perspectives."
)

// Idea summarizes one cluster.
type Idea struct {
	Summary string
	Count   int
}

type termCount struct {
	term  string
	count int
}

// Summarize turns clusters into ranked ideas: count descending, then summary
// ascending, at most MaxIdeas. It never returns an empty list; without any
// cluster a single mixed-perspectives idea with count 1 is returned.
func Summarize(clusters []*Cluster) []Idea {
	ideas := make([]Idea, 0, len(clusters))
	for _, c := range clusters {
		ideas = append(ideas, Idea{
			Summary: summaryFor(topTerms(c.Counts, topTermsPerIdea)),
			Count:   len(c.Members),
		})
	}

	if len(ideas) == 0 {
		return []Idea{{Summary: MixedPerspectives, Count: 1}}
	}

	slices.SortFunc(ideas, func(a, b Idea) int {
		if n := cmp.Compare(b.Count, a.Count); n != 0 {
			return n
		}
		return strings.Compare(a.Summary, b.Summary)
	})

	if len(ideas) > MaxIdeas {
		ideas = ideas[:MaxIdeas]
	}
	return ideas
}

// topTerms ranks terms by count descending, then lexicographically.
func topTerms(counts map[string]int, limit int) []string {
	ranked := make([]termCount, 0, len(counts))
	for term, count := range counts {
		if term == "" {
			continue
		}
		ranked = append(ranked, termCount{term: term, count: count})
	}

	slices.SortFunc(ranked, func(a, b termCount) int {
		if n := cmp.Compare(b.count, a.count); n != 0 {
			return n
		}
		return strings.Compare(a.term, b.term)
	})

	terms := make([]string, 0, limit)
	for _, tc := range ranked {
		if len(terms) == limit {
			break
		}
		terms = append(terms, tc.term)
	}
	return terms
}

func summaryFor(terms []string) string {
	switch len(terms) {
	case 0:
		return MixedPerspectives
	case 1:
		return fmt.Sprintf("Feedback repeatedly mentions %s.", terms[0])
	default:
		return fmt.Sprintf("Feedback highlights %s and %s.", terms[0], terms[1])
	}
}
