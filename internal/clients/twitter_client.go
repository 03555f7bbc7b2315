package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/models"
)

const TWITTER_API_URL = "https://api.twitter.com"

type TwitterClient struct {
	Client      *http.Client
	BearerToken string
	BaseURL     string
}

func NewTwitterClient(cfg config.TwitterConfig, timeout time.Duration) *TwitterClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = TWITTER_API_URL
	}
	return &TwitterClient{
		Client:      &http.Client{Timeout: timeout},
		BearerToken: cfg.BearerToken,
		BaseURL:     baseURL,
	}
}

// TrendsByPlace returns the trending topics for a Where On Earth ID.
func (tc *TwitterClient) TrendsByPlace(ctx context.Context, woeid string) (models.TwitterTrendsResponse, error) {
	if tc.BearerToken == "" {
		return nil, fmt.Errorf("[TwitterClient] bearer token: %w", ErrMissingCredentials)
	}

	parsedURL, err := url.Parse(strings.TrimRight(tc.BaseURL, "/") + "/2/trends/place.json")
	if err != nil {
		return nil, fmt.Errorf("[TwitterClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("id", woeid)
	parsedURL.RawQuery = queryParams.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+tc.BearerToken)

	slog.Debug("[TwitterClient] Fetching trends", slog.String("woeid", woeid))

	var response models.TwitterTrendsResponse
	if err := getJSON(ctx, tc.Client, parsedURL.String(), header, &response); err != nil {
		return nil, fmt.Errorf("[TwitterClient] %w", err)
	}
	return response, nil
}
