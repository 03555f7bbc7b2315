package sentiment

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/momentflow/internal/models"
)

const (
	VADER_POSITIVE_THRESHOLD = 0.20
	VADER_NEGATIVE_THRESHOLD = -0.20
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting HTML so
// only prose reaches the analyzer.
func ConvertMarkdownToText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

// VaderAnalyzer scores records locally with VADER. It needs no network and
// never fails, so it suits offline runs.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderAnalyzer) Name() string { return "vader" }

// Analyze maps the compound score in [-1, 1] onto the sentiment scale and
// uses its magnitude as the impact.
func (v *VaderAnalyzer) Analyze(_ context.Context, record models.ContentRecord) (models.Sentiment, error) {
	text := ConvertMarkdownToText(strings.TrimSpace(record.Title + ". " + record.Body))
	scores := v.analyzer.PolarityScores(text)
	compound := scores.Compound

	return models.Sentiment{
		SentimentScore:  round2(compound * 10),
		EmotionalImpact: round2(math.Abs(compound) * 10),
		PrimaryEmotion:  VaderLabel(compound),
		Triggers:        []string{},
		Explanation:     "Lexicon-based VADER polarity",
	}, nil
}

func VaderLabel(compound float64) string {
	switch {
	case compound >= VADER_POSITIVE_THRESHOLD:
		return "positive"
	case compound <= VADER_NEGATIVE_THRESHOLD:
		return "negative"
	default:
		return "neutral"
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
