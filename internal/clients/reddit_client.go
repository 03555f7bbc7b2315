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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/models"
)

const (
	REDDIT_AUTH_URL   = "https://www.reddit.com/api/v1/access_token"
	REDDIT_OAUTH_URL  = "https://oauth.reddit.com"
	REDDIT_PUBLIC_URL = "https://www.reddit.com"
)

type RedditClient struct {
	Client  *http.Client
	BaseURL string
}

// NewRedditClient uses the app-only OAuth flow when a client id and secret
// are configured and the public JSON listing otherwise.
func NewRedditClient(cfg config.RedditConfig, timeout time.Duration) *RedditClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	baseURL := cfg.BaseURL

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		oauthConf := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     REDDIT_AUTH_URL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		httpClient := oauthConf.Client(tokenCtx)
		httpClient.Timeout = timeout
		if baseURL == "" {
			baseURL = REDDIT_OAUTH_URL
		}
		slog.Info("[RedditClient] Using OAuth client credentials")
		return &RedditClient{Client: httpClient, BaseURL: baseURL}
	}

	if baseURL == "" {
		baseURL = REDDIT_PUBLIC_URL
	}
	return &RedditClient{Client: &http.Client{Timeout: timeout}, BaseURL: baseURL}
}

// FetchHot returns the hot listing of a subreddit ("all" for r/all).
func (rc *RedditClient) FetchHot(ctx context.Context, subreddit string, limit int) (*models.RedditAPIResponse, error) {
	parsedURL, err := url.Parse(fmt.Sprintf("%s/r/%s/hot.json", strings.TrimRight(rc.BaseURL, "/"), url.PathEscape(subreddit)))
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("limit", strconv.Itoa(limit))
	queryParams.Add("raw_json", "1")
	parsedURL.RawQuery = queryParams.Encode()

	slog.Debug("[RedditClient] Fetching hot posts",
		slog.String("subreddit", subreddit), slog.Int("limit", limit))

	var response models.RedditAPIResponse
	if err := getJSON(ctx, rc.Client, parsedURL.String(), nil, &response); err != nil {
		return nil, fmt.Errorf("[RedditClient] %w", err)
	}
	return &response, nil
}
