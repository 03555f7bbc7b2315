// Package ranking orders annotated records by how strongly they register
// emotionally.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/models"
)

const (
	DEFAULT_TOP_K = 2

	SENTIMENT_WEIGHT = 0.7
	IMPACT_WEIGHT    = 0.3
)

// CombinedScore weights sentiment magnitude over impact, so strongly
// negative and strongly positive records score the same.
func CombinedScore(s models.Sentiment) float64 {
	return SENTIMENT_WEIGHT*math.Abs(s.SentimentScore) + IMPACT_WEIGHT*s.EmotionalImpact
}

// Ranker is stateless. With Clamp set, scores are forced into their
// documented ranges before weighting.
type Ranker struct {
	Clamp bool
}

// Rank returns the top k records, best first, with 1-based ranks. Equal
// scores keep their input order. k <= 0 means DEFAULT_TOP_K.
func (r Ranker) Rank(records []models.AnnotatedRecord, k int) ([]models.RankedRecord, error) {
	if len(records) == 0 {
		return nil, apperr.InvalidInput("ranker", "no records to rank")
	}
	if k <= 0 {
		k = DEFAULT_TOP_K
	}

	scored := make([]models.RankedRecord, len(records))
	for i, rec := range records {
		s := rec.Sentiment
		if r.Clamp {
			s.SentimentScore = min(max(s.SentimentScore, -10), 10)
			s.EmotionalImpact = min(max(s.EmotionalImpact, 0), 10)
		}
		scored[i] = models.RankedRecord{AnnotatedRecord: rec, MomentScore: CombinedScore(s)}
	}

	slices.SortStableFunc(scored, func(a, b models.RankedRecord) int {
		return cmp.Compare(b.MomentScore, a.MomentScore)
	})

	top := scored[:min(k, len(scored))]
	for i := range top {
		top[i].Rank = i + 1
	}
	return slices.Clip(top), nil
}
