package sentiment

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/momentflow/internal/metrics"
	"github.com/spacesedan/momentflow/internal/models"
)

type fakeAnalyzer struct {
	calls atomic.Int32
	fn    func(models.ContentRecord) (models.Sentiment, error)
}

func (f *fakeAnalyzer) Name() string { return "fake" }

func (f *fakeAnalyzer) Analyze(_ context.Context, r models.ContentRecord) (models.Sentiment, error) {
	f.calls.Add(1)
	return f.fn(r)
}

type fakeCompleter struct {
	response string
	err      error
	prompt   string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func makeRecords(n int) []models.ContentRecord {
	records := make([]models.ContentRecord, n)
	for i := range records {
		records[i] = models.ContentRecord{
			ID:         fmt.Sprintf("r-%d", i),
			Title:      fmt.Sprintf("title %d", i),
			SourceType: models.SourceNews,
		}
	}
	return records
}

func TestAnnotatePreservesOrderAndLength(t *testing.T) {
	analyzer := &fakeAnalyzer{fn: func(r models.ContentRecord) (models.Sentiment, error) {
		if r.ID == "r-1" || r.ID == "r-4" {
			return models.Sentiment{}, errors.New("model unavailable")
		}
		return models.Sentiment{SentimentScore: 5, EmotionalImpact: 5, PrimaryEmotion: "joy"}, nil
	}}
	m := metrics.New(prometheus.NewRegistry())

	records := makeRecords(6)
	out := NewAnnotator(analyzer, 3, m).Annotate(context.Background(), records)

	require.Len(t, out, len(records))
	for i, rec := range out {
		assert.Equal(t, records[i].ID, rec.ID)
		assert.NotNil(t, rec.Sentiment.Triggers)
	}
	assert.False(t, out[1].Analyzed)
	assert.Equal(t, models.FallbackSentiment(), out[1].Sentiment)
	assert.False(t, out[4].Analyzed)
	assert.True(t, out[0].Analyzed)
	assert.Equal(t, "joy", out[0].Sentiment.PrimaryEmotion)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnnotationFallbacks))
}

func TestAnnotateCancelledContextSkipsAnalyzer(t *testing.T) {
	analyzer := &fakeAnalyzer{fn: func(models.ContentRecord) (models.Sentiment, error) {
		return models.Sentiment{SentimentScore: 1}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := NewAnnotator(analyzer, 2, nil).Annotate(ctx, makeRecords(4))

	require.Len(t, out, 4)
	assert.Zero(t, analyzer.calls.Load())
	for _, rec := range out {
		assert.False(t, rec.Analyzed)
	}
}

func TestAnnotateEmptyInput(t *testing.T) {
	analyzer := &fakeAnalyzer{fn: func(models.ContentRecord) (models.Sentiment, error) {
		return models.Sentiment{}, nil
	}}
	out := NewAnnotator(analyzer, 0, nil).Annotate(context.Background(), nil)
	assert.Empty(t, out)
}

func TestOpenAIAnalyzer(t *testing.T) {
	record := models.ContentRecord{ID: "x", Title: "Quake hits", Body: "Stay safe"}

	t.Run("parses model output", func(t *testing.T) {
		c := &fakeCompleter{response: `{"sentiment_score": -7, "emotional_impact": 8, "primary_emotion": "fear"}`}
		s, err := NewOpenAIAnalyzer(c).Analyze(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, -7.0, s.SentimentScore)
		assert.Contains(t, c.prompt, "Quake hits")
		assert.Contains(t, c.prompt, "Stay safe")
	})

	t.Run("completion error", func(t *testing.T) {
		c := &fakeCompleter{err: errors.New("429")}
		_, err := NewOpenAIAnalyzer(c).Analyze(context.Background(), record)
		assert.ErrorContains(t, err, "completion failed")
	})

	t.Run("garbage output", func(t *testing.T) {
		c := &fakeCompleter{response: "sorry, I cannot help"}
		_, err := NewOpenAIAnalyzer(c).Analyze(context.Background(), record)
		assert.ErrorContains(t, err, "unusable response")
	})
}
