package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/momentflow/internal/models"
)

const (
	RedditSourceName      = "reddit"
	DEFAULT_REDDIT_FILTER = "all"
	REDDIT_PERMALINK_HOST = "https://reddit.com"
)

type redditFetcher interface {
	FetchHot(ctx context.Context, subreddit string, limit int) (*models.RedditAPIResponse, error)
}

// RedditSource reads the hot listing of a subreddit.
type RedditSource struct {
	client redditFetcher
}

func NewRedditSource(client redditFetcher) *RedditSource {
	return &RedditSource{client: client}
}

func (s *RedditSource) Name() string            { return RedditSourceName }
func (s *RedditSource) Type() models.SourceType { return models.SourceForum }

func (s *RedditSource) Fetch(ctx context.Context, params Params) ([]models.ContentRecord, error) {
	if err := checkParams(RedditSourceName, params); err != nil {
		return nil, err
	}
	subreddit := params.Filter
	if subreddit == "" {
		subreddit = DEFAULT_REDDIT_FILTER
	}

	resp, err := s.client.FetchHot(ctx, subreddit, params.Limit)
	if err != nil {
		return nil, requestError(RedditSourceName, err)
	}
	if resp == nil || resp.Data == nil || resp.Data.Children == nil {
		return nil, malformed(RedditSourceName, "missing data.children")
	}

	records := make([]models.ContentRecord, 0, len(resp.Data.Children))
	for i, child := range resp.Data.Children {
		post := child.Data
		if post == nil || post.ID == "" {
			return nil, malformed(RedditSourceName, "child %d has no post id", i)
		}
		records = append(records, models.ContentRecord{
			ID:         "reddit-" + post.ID,
			Title:      post.Title,
			Body:       post.Selftext,
			URL:        REDDIT_PERMALINK_HOST + post.Permalink,
			SourceType: models.SourceForum,
			Source:     RedditSourceName,
			CreatedAt:  time.Unix(int64(post.CreatedUTC), 0).UTC(),
			SourceMetrics: map[string]any{
				"score":        post.Score,
				"num_comments": post.NumComments,
				"author":       post.Author,
				"subreddit":    post.Subreddit,
				"is_video":     post.IsVideo,
			},
		})
	}
	uniqueIDs(records)
	records = capRecords(records, params.Limit)

	slog.Info("[RedditSource] Successfully fetched posts",
		slog.String("subreddit", subreddit), slog.Int("count", len(records)))
	return records, nil
}
