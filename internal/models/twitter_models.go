package models

// TwitterTrendsResponse is the array returned by trends/place.
type TwitterTrendsResponse []TwitterTrendLocation

type TwitterTrendLocation struct {
	Trends    []TwitterTrend `json:"trends"`
	AsOf      string         `json:"as_of"`
	CreatedAt string         `json:"created_at"`
}

type TwitterTrend struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Query       string `json:"query"`
	TweetVolume *int   `json:"tweet_volume"`
}
