package sources

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/spacesedan/momentflow/internal/models"
)

const (
	YouTubeSourceName      = "youtube"
	DEFAULT_YOUTUBE_FILTER = "US"
	YOUTUBE_WATCH_URL      = "https://www.youtube.com/watch?v="
	SHORT_VIDEO_SECONDS    = 60
)

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

type popularFetcher interface {
	MostPopular(ctx context.Context, regionCode string, maxResults int) (*models.YouTubeVideosResponse, error)
}

// YouTubeSource reads the most-popular chart of a region.
type YouTubeSource struct {
	client popularFetcher
}

func NewYouTubeSource(client popularFetcher) *YouTubeSource {
	return &YouTubeSource{client: client}
}

func (s *YouTubeSource) Name() string            { return YouTubeSourceName }
func (s *YouTubeSource) Type() models.SourceType { return models.SourceVideo }

func (s *YouTubeSource) Fetch(ctx context.Context, params Params) ([]models.ContentRecord, error) {
	if err := checkParams(YouTubeSourceName, params); err != nil {
		return nil, err
	}
	region := params.Filter
	if region == "" {
		region = DEFAULT_YOUTUBE_FILTER
	}

	resp, err := s.client.MostPopular(ctx, region, params.Limit)
	if err != nil {
		return nil, requestError(YouTubeSourceName, err)
	}
	if resp == nil || resp.Items == nil {
		return nil, malformed(YouTubeSourceName, "missing items")
	}

	records := make([]models.ContentRecord, 0, len(resp.Items))
	for i, video := range resp.Items {
		if video.ID == "" {
			return nil, malformed(YouTubeSourceName, "item %d has no video id", i)
		}
		snippet := video.Snippet
		title := snippet.Title
		if title == "" {
			title = "Untitled"
		}
		seconds := ParseDuration(video.ContentDetails.Duration)

		records = append(records, models.ContentRecord{
			ID:         "youtube-" + video.ID,
			Title:      title,
			Body:       snippet.Title + " - " + snippet.Description,
			URL:        YOUTUBE_WATCH_URL + video.ID,
			SourceType: models.SourceVideo,
			Source:     YouTubeSourceName,
			CreatedAt:  parseTimestamp(snippet.PublishedAt),
			SourceMetrics: map[string]any{
				"channel":          snippet.ChannelTitle,
				"thumbnail":        thumbnail(snippet),
				"views":            parseCount(video.Statistics.ViewCount),
				"likes":            parseCount(video.Statistics.LikeCount),
				"comments":         parseCount(video.Statistics.CommentCount),
				"duration":         video.ContentDetails.Duration,
				"duration_seconds": seconds,
				"is_short":         seconds < SHORT_VIDEO_SECONDS,
				"position":         i + 1,
			},
		})
	}
	uniqueIDs(records)
	records = capRecords(records, params.Limit)

	slog.Info("[YouTubeSource] Successfully fetched videos",
		slog.String("region", region), slog.Int("count", len(records)))
	return records, nil
}

// ParseDuration converts an ISO-8601 "PT#H#M#S" duration to seconds.
// Anything else yields 0.
func ParseDuration(duration string) int {
	match := isoDuration.FindStringSubmatch(duration)
	if match == nil {
		return 0
	}
	hours, _ := strconv.Atoi(orZero(match[1]))
	minutes, _ := strconv.Atoi(orZero(match[2]))
	seconds, _ := strconv.Atoi(orZero(match[3]))
	return hours*3600 + minutes*60 + seconds
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func parseCount(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func thumbnail(snippet models.YouTubeSnippet) string {
	if t, ok := snippet.Thumbnails["high"]; ok && t.URL != "" {
		return t.URL
	}
	if t, ok := snippet.Thumbnails["default"]; ok {
		return t.URL
	}
	return ""
}
