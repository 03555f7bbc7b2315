package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/momentflow/internal/models"
)

const (
	TwitterSourceName      = "twitter"
	DEFAULT_TWITTER_FILTER = "1"
)

type trendsFetcher interface {
	TrendsByPlace(ctx context.Context, woeid string) (models.TwitterTrendsResponse, error)
}

// TwitterSource reads trending topics for a location. Trends carry no
// body, so the trend name doubles as the text.
type TwitterSource struct {
	client trendsFetcher
	now    func() time.Time
}

func NewTwitterSource(client trendsFetcher) *TwitterSource {
	return &TwitterSource{client: client, now: time.Now}
}

func (s *TwitterSource) Name() string            { return TwitterSourceName }
func (s *TwitterSource) Type() models.SourceType { return models.SourceMicroblog }

func (s *TwitterSource) Fetch(ctx context.Context, params Params) ([]models.ContentRecord, error) {
	if err := checkParams(TwitterSourceName, params); err != nil {
		return nil, err
	}
	woeid := params.Filter
	if woeid == "" {
		woeid = DEFAULT_TWITTER_FILTER
	}

	resp, err := s.client.TrendsByPlace(ctx, woeid)
	if err != nil {
		return nil, requestError(TwitterSourceName, err)
	}
	if len(resp) == 0 || resp[0].Trends == nil {
		return nil, malformed(TwitterSourceName, "expected a non-empty array with trends")
	}

	trends := resp[0].Trends
	if len(trends) > params.Limit {
		trends = trends[:params.Limit]
	}

	fetchedAt := s.now().UTC()
	records := make([]models.ContentRecord, 0, len(trends))
	for i, trend := range trends {
		if trend.Name == "" {
			return nil, malformed(TwitterSourceName, "trend %d has no name", i)
		}
		volume := 0
		if trend.TweetVolume != nil {
			volume = *trend.TweetVolume
		}
		records = append(records, models.ContentRecord{
			ID:         fmt.Sprintf("twitter-trend-%d-%d", fetchedAt.UnixMilli(), i),
			Title:      trend.Name,
			Body:       trend.Name,
			URL:        trend.URL,
			SourceType: models.SourceMicroblog,
			Source:     TwitterSourceName,
			CreatedAt:  fetchedAt,
			SourceMetrics: map[string]any{
				"tweet_volume": volume,
				"position":     i + 1,
				"woeid":        woeid,
			},
		})
	}

	slog.Info("[TwitterSource] Successfully fetched trends",
		slog.String("woeid", woeid), slog.Int("count", len(records)))
	return records, nil
}
