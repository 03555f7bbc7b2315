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

const GNEWS_API_URL = "https://gnews.io"

type GNewsClient struct {
	Client  *http.Client
	APIKey  string
	BaseURL string
}

func NewGNewsClient(cfg config.GNewsConfig, timeout time.Duration) *GNewsClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = GNEWS_API_URL
	}
	return &GNewsClient{
		Client:  &http.Client{Timeout: timeout},
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}
}

func (g *GNewsClient) Search(ctx context.Context, query string, max int) (*models.GNewsSearchResponse, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("[GNewsClient] API key: %w", ErrMissingCredentials)
	}

	parsedURL, err := url.Parse(strings.TrimRight(g.BaseURL, "/") + "/api/v4/search")
	if err != nil {
		return nil, fmt.Errorf("[GNewsClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedURL.Query()
	queryParams.Add("q", query)
	queryParams.Add("max", strconv.Itoa(max))
	queryParams.Add("apikey", g.APIKey)
	queryParams.Add("lang", "en")
	parsedURL.RawQuery = queryParams.Encode()

	slog.Debug("[GNewsClient] Searching articles",
		slog.String("query", query), slog.Int("max", max))

	var response models.GNewsSearchResponse
	if err := getJSON(ctx, g.Client, parsedURL.String(), nil, &response); err != nil {
		return nil, fmt.Errorf("[GNewsClient] %w", err)
	}
	return &response, nil
}
