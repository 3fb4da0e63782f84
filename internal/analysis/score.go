package analysis

// Label is the three-way sentiment classification.
type Label string

const (
	Positive Label = "POSITIVE"
	Neutral  Label = "NEUTRAL"
	Negative Label = "NEGATIVE"
)

const (
	// NeutralScore is returned when there is no signal to score.
	NeutralScore = 0.5

	positiveThreshold = 0.6
	negativeThreshold = 0.4
)

// Score maps a token sequence onto [0, 1]. Each positive word adds one,
// each negative word subtracts one; the tally is averaged over all tokens
// and rescaled from [-1, 1].
func Score(tokens []string, lex *Lexicon) float64 {
	if len(tokens) == 0 {
		return NeutralScore
	}

	tally := 0.0
	for _, token := range tokens {
		if lex.IsPositive(token) {
			tally++
		}
		if lex.IsNegative(token) {
			tally--
		}
	}

	normalized := clamp(tally/float64(len(tokens)), -1, 1)
	return clamp((normalized+1)/2, 0, 1)
}

// LabelFor classifies a score. Both bounds are inclusive on the polar side.
func LabelFor(score float64) Label {
	switch {
	case score >= positiveThreshold:
		return Positive
	case score <= negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
