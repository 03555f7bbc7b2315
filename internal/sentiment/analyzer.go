package sentiment

import (
	"context"
	"fmt"

	"github.com/spacesedan/momentflow/internal/models"
)

// Analyzer produces a Sentiment for one record.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, record models.ContentRecord) (models.Sentiment, error)
}

// Completer is satisfied by clients.OpenAIClient.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// OpenAIAnalyzer asks a chat model for one JSON analysis per record.
type OpenAIAnalyzer struct {
	completer Completer
}

func NewOpenAIAnalyzer(c Completer) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{completer: c}
}

func (o *OpenAIAnalyzer) Name() string { return "openai" }

func (o *OpenAIAnalyzer) Analyze(ctx context.Context, record models.ContentRecord) (models.Sentiment, error) {
	raw, err := o.completer.CompleteJSON(ctx, BuildPrompt(record.Title, record.Body))
	if err != nil {
		return models.Sentiment{}, fmt.Errorf("[OpenAIAnalyzer] completion failed: %w", err)
	}
	s, err := ParseAnalysis(raw)
	if err != nil {
		return models.Sentiment{}, fmt.Errorf("[OpenAIAnalyzer] unusable response: %w", err)
	}
	return s, nil
}
