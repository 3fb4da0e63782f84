package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/ideaflow/internal/analysis"
)

// VADER compound scores at or beyond this magnitude are polar.
const VADER_THRESHOLD = 0.20

var (
	analyzer = govader.NewSentimentIntensityAnalyzer()

	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup and
// links, leaving whitespace-collapsed prose.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), "")
	return strings.Join(strings.Fields(plain), " ")
}

// AnalyzeWithVADER returns the VADER compound score in [-1, 1] for text and
// the label it maps onto.
func AnalyzeWithVADER(text string) (float64, analysis.Label) {
	plainText := ConvertMarkdownToText(text)

	score := analyzer.PolarityScores(plainText).Compound

	switch {
	case score >= VADER_THRESHOLD:
		return score, analysis.Positive
	case score <= -VADER_THRESHOLD:
		return score, analysis.Negative
	default:
		return score, analysis.Neutral
	}
}
