package sources

import (
	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/clients"
)

// NewAll builds the four adapters in their canonical order. A source with
// missing credentials is still registered and reports a fetch error.
func NewAll(cfg *config.Config) []ContentSource {
	return []ContentSource{
		NewRedditSource(clients.NewRedditClient(cfg.Reddit, cfg.SourceTimeout)),
		NewGNewsSource(clients.NewGNewsClient(cfg.GNews, cfg.SourceTimeout)),
		NewTwitterSource(clients.NewTwitterClient(cfg.Twitter, cfg.SourceTimeout)),
		NewYouTubeSource(clients.NewYouTubeClient(cfg.YouTube, cfg.SourceTimeout)),
	}
}

// DefaultParams maps source names to their configured params.
func DefaultParams(cfg *config.Config) map[string]Params {
	return map[string]Params{
		RedditSourceName:  {Limit: cfg.Reddit.Defaults.Limit, Filter: cfg.Reddit.Defaults.Filter},
		GNewsSourceName:   {Limit: cfg.GNews.Defaults.Limit, Filter: cfg.GNews.Defaults.Filter},
		TwitterSourceName: {Limit: cfg.Twitter.Defaults.Limit, Filter: cfg.Twitter.Defaults.Filter},
		YouTubeSourceName: {Limit: cfg.YouTube.Defaults.Limit, Filter: cfg.YouTube.Defaults.Filter},
	}
}
