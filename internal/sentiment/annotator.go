package sentiment

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/metrics"
	"github.com/spacesedan/momentflow/internal/models"
)

const DEFAULT_CONCURRENCY = 4

// Annotator attaches a Sentiment to every record. A record the analyzer
// cannot handle gets models.FallbackSentiment and Analyzed=false.
type Annotator struct {
	analyzer    Analyzer
	concurrency int
	metrics     *metrics.Metrics
}

func NewAnnotator(analyzer Analyzer, concurrency int, m *metrics.Metrics) *Annotator {
	if concurrency <= 0 {
		concurrency = DEFAULT_CONCURRENCY
	}
	return &Annotator{analyzer: analyzer, concurrency: concurrency, metrics: m}
}

// Annotate returns one AnnotatedRecord per input, in input order.
func (a *Annotator) Annotate(ctx context.Context, records []models.ContentRecord) []models.AnnotatedRecord {
	out := make([]models.AnnotatedRecord, len(records))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := range records {
		i := i
		g.Go(func() error {
			out[i] = a.annotateOne(ctx, records[i])
			return nil
		})
	}
	_ = g.Wait()

	slog.Debug("[Annotator] Annotation finished",
		slog.String("analyzer", a.analyzer.Name()),
		slog.Int("records", len(records)))
	return out
}

func (a *Annotator) annotateOne(ctx context.Context, record models.ContentRecord) models.AnnotatedRecord {
	if err := ctx.Err(); err != nil {
		return a.fallback(record, err)
	}
	s, err := a.analyzer.Analyze(ctx, record)
	if err != nil {
		return a.fallback(record, err)
	}
	if s.Triggers == nil {
		s.Triggers = []string{}
	}
	return models.AnnotatedRecord{ContentRecord: record, Sentiment: s, Analyzed: true}
}

func (a *Annotator) fallback(record models.ContentRecord, cause error) models.AnnotatedRecord {
	err := apperr.Annotation(record.ID, cause)
	slog.Warn("[Annotator] Using fallback sentiment",
		slog.String("record_id", record.ID),
		slog.String("error", err.Error()))
	a.metrics.AnnotationFallback()
	return models.AnnotatedRecord{ContentRecord: record, Sentiment: models.FallbackSentiment()}
}
