package sources

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/spacesedan/momentflow/internal/models"
)

const (
	GNewsSourceName      = "gnews"
	DEFAULT_GNEWS_FILTER = "world"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

type gnewsSearcher interface {
	Search(ctx context.Context, query string, max int) (*models.GNewsSearchResponse, error)
}

// GNewsSource searches GNews for articles matching a query.
type GNewsSource struct {
	client gnewsSearcher
}

func NewGNewsSource(client gnewsSearcher) *GNewsSource {
	return &GNewsSource{client: client}
}

func (s *GNewsSource) Name() string            { return GNewsSourceName }
func (s *GNewsSource) Type() models.SourceType { return models.SourceNews }

func (s *GNewsSource) Fetch(ctx context.Context, params Params) ([]models.ContentRecord, error) {
	if err := checkParams(GNewsSourceName, params); err != nil {
		return nil, err
	}
	query := params.Filter
	if query == "" {
		query = DEFAULT_GNEWS_FILTER
	}

	resp, err := s.client.Search(ctx, query, params.Limit)
	if err != nil {
		return nil, requestError(GNewsSourceName, err)
	}
	if resp == nil || resp.Articles == nil {
		return nil, malformed(GNewsSourceName, "missing articles")
	}

	records := make([]models.ContentRecord, 0, len(resp.Articles))
	for i, article := range resp.Articles {
		if article.URL == "" {
			return nil, malformed(GNewsSourceName, "article %d has no url", i)
		}
		records = append(records, models.ContentRecord{
			ID:         gnewsID(article),
			Title:      article.Title,
			Body:       article.Description,
			URL:        article.URL,
			SourceType: models.SourceNews,
			Source:     GNewsSourceName,
			CreatedAt:  parseTimestamp(article.PublishedAt),
			SourceMetrics: map[string]any{
				"publisher": article.Source.Name,
				"image":     article.Image,
				"content":   article.Content,
			},
		})
	}
	uniqueIDs(records)
	records = capRecords(records, params.Limit)

	slog.Info("[GNewsSource] Successfully fetched articles",
		slog.String("query", query), slog.Int("count", len(records)))
	return records, nil
}

// gnewsID is "gnews-<publishedAt>-<first 20 runes of title, dashed>", lowercased.
func gnewsID(article models.GNewsArticle) string {
	title := []rune(article.Title)
	if len(title) > 20 {
		title = title[:20]
	}
	slug := whitespaceRun.ReplaceAllString(string(title), "-")
	return strings.ToLower("gnews-" + article.PublishedAt + "-" + slug)
}
