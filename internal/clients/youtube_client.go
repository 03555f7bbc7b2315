package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/models"
)

const YOUTUBE_API_URL = "https://www.googleapis.com"

type YouTubeClient struct {
	Client   *http.Client
	APIKey   string
	BaseURL  string
	Category string
}

func NewYouTubeClient(cfg config.YouTubeConfig, timeout time.Duration) *YouTubeClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = YOUTUBE_API_URL
	}
	category := cfg.Category
	if category == "" {
		category = "0"
	}
	return &YouTubeClient{
		Client:   &http.Client{Timeout: timeout},
		APIKey:   cfg.APIKey,
		BaseURL:  baseURL,
		Category: category,
	}
}

// MostPopular returns the trending chart for a region.
func (yc *YouTubeClient) MostPopular(ctx context.Context, regionCode string, maxResults int) (*models.YouTubeVideosResponse, error) {
	if yc.APIKey == "" {
		return nil, fmt.Errorf("[YouTubeClient] API key: %w", ErrMissingCredentials)
	}

	parsedURL, err := url.Parse(strings.TrimRight(yc.BaseURL, "/") + "/youtube/v3/videos")
	if err != nil {
		return nil, fmt.Errorf("[YouTubeClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("part", "snippet,statistics,contentDetails")
	queryParams.Add("chart", "mostPopular")
	queryParams.Add("regionCode", regionCode)
	queryParams.Add("maxResults", strconv.Itoa(maxResults))
	queryParams.Add("videoCategoryId", yc.Category)
	queryParams.Add("key", yc.APIKey)
	parsedURL.RawQuery = queryParams.Encode()

	slog.Debug("[YouTubeClient] Fetching most popular videos",
		slog.String("region", regionCode), slog.Int("max_results", maxResults))

	var response models.YouTubeVideosResponse
	if err := getJSON(ctx, yc.Client, parsedURL.String(), nil, &response); err != nil {
		return nil, fmt.Errorf("[YouTubeClient] %w", err)
	}
	return &response, nil
}
