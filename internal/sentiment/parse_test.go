package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	s, err := ParseAnalysis(`{"sentiment_score": -8, "emotional_impact": 9, "primary_emotion": "fear",
		"emotional_triggers": ["disaster", "loss"], "explanation": "A deadly quake"}`)
	require.NoError(t, err)

	assert.Equal(t, -8.0, s.SentimentScore)
	assert.Equal(t, 9.0, s.EmotionalImpact)
	assert.Equal(t, "fear", s.PrimaryEmotion)
	assert.Equal(t, []string{"disaster", "loss"}, s.Triggers)
	assert.Equal(t, "A deadly quake", s.Explanation)
}

func TestParseAnalysisStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"sentiment_score\": 4.5, \"emotional_impact\": 2}\n```"
	s, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, 4.5, s.SentimentScore)
	assert.Equal(t, 2.0, s.EmotionalImpact)
	assert.NotNil(t, s.Triggers)
}

func TestParseAnalysisAcceptsOutOfRangeValues(t *testing.T) {
	s, err := ParseAnalysis(`{"sentiment_score": 42, "emotional_impact": -3}`)
	require.NoError(t, err)
	assert.Equal(t, 42.0, s.SentimentScore)
	assert.Equal(t, -3.0, s.EmotionalImpact)
}

func TestParseAnalysisRejects(t *testing.T) {
	testCases := map[string]string{
		"empty":        "   ",
		"prose":        "I think this is quite sad.",
		"array":        `[1, 2, 3]`,
		"no fields":    `{"mood": "happy"}`,
		"fenced prose": "```\nnot json\n```",
	}
	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAnalysis(raw)
			assert.Error(t, err)
		})
	}
}

func TestBuildPromptCarriesTitleAndBody(t *testing.T) {
	prompt := BuildPrompt("Quake hits", "Stay safe")
	assert.Contains(t, prompt, "TITLE: Quake hits")
	assert.Contains(t, prompt, "CONTENT: Stay safe")
	assert.Contains(t, prompt, "emotional_triggers")
}

func TestBuildPromptTruncatesBody(t *testing.T) {
	body := strings.Repeat("é", MAX_PROMPT_BODY+50)
	prompt := BuildPrompt("t", body)
	assert.Equal(t, MAX_PROMPT_BODY, strings.Count(prompt, "é"))
}
