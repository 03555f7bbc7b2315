package sentiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spacesedan/momentflow/internal/models"
)

var ErrNoSentimentFields = errors.New("response has none of the sentiment fields")

// rawAnalysis keeps every field optional so a missing field can be told
// apart from a zero value.
type rawAnalysis struct {
	SentimentScore  *float64 `json:"sentiment_score"`
	EmotionalImpact *float64 `json:"emotional_impact"`
	PrimaryEmotion  *string  `json:"primary_emotion"`
	Triggers        []string `json:"emotional_triggers"`
	Explanation     *string  `json:"explanation"`
}

// ParseAnalysis turns raw model output into a Sentiment. It has no side
// effects; callers decide what to do with the error.
func ParseAnalysis(raw string) (models.Sentiment, error) {
	cleaned := cleanModelResponse(raw)
	if cleaned == "" {
		return models.Sentiment{}, errors.New("empty response")
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return models.Sentiment{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if parsed.SentimentScore == nil && parsed.EmotionalImpact == nil &&
		parsed.PrimaryEmotion == nil && parsed.Triggers == nil && parsed.Explanation == nil {
		return models.Sentiment{}, ErrNoSentimentFields
	}

	s := models.Sentiment{Triggers: []string{}}
	if parsed.SentimentScore != nil {
		s.SentimentScore = *parsed.SentimentScore
	}
	if parsed.EmotionalImpact != nil {
		s.EmotionalImpact = *parsed.EmotionalImpact
	}
	if parsed.PrimaryEmotion != nil {
		s.PrimaryEmotion = *parsed.PrimaryEmotion
	}
	if parsed.Triggers != nil {
		s.Triggers = parsed.Triggers
	}
	if parsed.Explanation != nil {
		s.Explanation = *parsed.Explanation
	}
	return s, nil
}

func cleanModelResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
