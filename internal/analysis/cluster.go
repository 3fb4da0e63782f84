package analysis

// SimilarityThreshold is the minimum Jaccard similarity for an answer to
// join an existing cluster.
const SimilarityThreshold = 0.35

// Cluster is a group of answers sharing a theme. Members are indices into
// the slice passed to BuildClusters, in insertion order.
type Cluster struct {
	Members []int
	Counts  map[string]int

	// tokens is the union of all member token sets; only used for
	// similarity comparison.
	tokens TokenSet
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for token := range small {
		if large.Has(token) {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// BuildClusters greedily groups texts in order. Each text is compared with
// the accumulated token set of every existing cluster; it joins the first
// cluster with the highest similarity if that reaches SimilarityThreshold,
// otherwise it starts a new cluster. Texts without clustering tokens are
// skipped. Answers are never reassigned.
func BuildClusters(texts []string, stopwords TokenSet) []*Cluster {
	var clusters []*Cluster

	for index, text := range texts {
		set := TokenizeForClustering(text, stopwords)
		if len(set) == 0 {
			continue
		}

		best := -1
		bestScore := 0.0
		for i, c := range clusters {
			if score := Jaccard(c.tokens, set); score > bestScore {
				best, bestScore = i, score
			}
		}

		if best >= 0 && bestScore >= SimilarityThreshold {
			clusters[best].add(index, set)
			continue
		}

		c := &Cluster{
			Counts: make(map[string]int, len(set)),
			tokens: make(TokenSet, len(set)),
		}
		c.add(index, set)
		clusters = append(clusters, c)
	}

	return clusters
}

func (c *Cluster) add(index int, set TokenSet) {
	c.Members = append(c.Members, index)
	for token := range set {
		c.tokens[token] = struct{}{}
		c.Counts[token]++
	}
}
