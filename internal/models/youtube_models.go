package models

type YouTubeVideosResponse struct {
	Items []YouTubeVideo `json:"items"`
}

type YouTubeVideo struct {
	ID             string                `json:"id"`
	Snippet        YouTubeSnippet        `json:"snippet"`
	Statistics     YouTubeStatistics     `json:"statistics"`
	ContentDetails YouTubeContentDetails `json:"contentDetails"`
}

type YouTubeSnippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
	Thumbnails   map[string]struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// YouTubeStatistics counts arrive as decimal strings.
type YouTubeStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type YouTubeContentDetails struct {
	Duration string `json:"duration"`
}
