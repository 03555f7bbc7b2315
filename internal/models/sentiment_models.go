package models

// Sentiment is the emotional assessment attached to a record.
// SentimentScore is documented as [-10, 10] and EmotionalImpact as [0, 10].
type Sentiment struct {
	SentimentScore  float64  `json:"sentiment_score" dynamodbav:"sentiment_score"`
	EmotionalImpact float64  `json:"emotional_impact" dynamodbav:"emotional_impact"`
	PrimaryEmotion  string   `json:"primary_emotion" dynamodbav:"primary_emotion"`
	Triggers        []string `json:"emotional_triggers" dynamodbav:"emotional_triggers"`
	Explanation     string   `json:"explanation" dynamodbav:"explanation"`
}

const (
	FallbackEmotion     = "unknown"
	FallbackExplanation = "Failed to analyze"
)

// FallbackSentiment is substituted when an item cannot be analyzed.
func FallbackSentiment() Sentiment {
	return Sentiment{
		SentimentScore:  0,
		EmotionalImpact: 0,
		PrimaryEmotion:  FallbackEmotion,
		Triggers:        []string{},
		Explanation:     FallbackExplanation,
	}
}

type AnnotatedRecord struct {
	ContentRecord
	Sentiment Sentiment `json:"sentiment_analysis" dynamodbav:"sentiment_analysis"`
	// Analyzed is false when Sentiment is the fallback value.
	Analyzed bool `json:"analyzed" dynamodbav:"analyzed"`
}
