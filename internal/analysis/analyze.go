package analysis

// AnswerRecord is one analyzed, non-empty answer.
type AnswerRecord struct {
	Text  string
	Score float64
	Label Label
}

// Breakdown holds label percentages of the analyzed answers.
type Breakdown struct {
	PositivePct float64
	NeutralPct  float64
	NegativePct float64
}

// Result is everything derived from one batch of answers.
type Result struct {
	Answers   []AnswerRecord
	Ideas     []Idea
	Sentiment Breakdown
	Score     float64
	Label     Label
}

// Analyze normalizes, scores and clusters answers. Answers that normalize to
// "" are dropped before any counting. Analyze never fails and is
// deterministic for a given input and lexicon.
func Analyze(answers []string, lex *Lexicon) Result {
	records := make([]AnswerRecord, 0, len(answers))
	var positive, neutral, negative int
	sum := 0.0

	for _, raw := range answers {
		text := Normalize(raw)
		if text == "" {
			continue
		}

		score := Score(Tokenize(text), lex)
		label := LabelFor(score)
		switch label {
		case Positive:
			positive++
		case Negative:
			negative++
		default:
			neutral++
		}

		sum += score
		records = append(records, AnswerRecord{Text: text, Score: score, Label: label})
	}

	var breakdown Breakdown
	aggregate := NeutralScore
	if total := float64(len(records)); total > 0 {
		breakdown = Breakdown{
			PositivePct: float64(positive) / total * 100,
			NeutralPct:  float64(neutral) / total * 100,
			NegativePct: float64(negative) / total * 100,
		}
		aggregate = sum / total
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}

	return Result{
		Answers:   records,
		Ideas:     Summarize(BuildClusters(texts, lex.Stopwords())),
		Sentiment: breakdown,
		Score:     aggregate,
		Label:     LabelFor(aggregate),
	}
}
