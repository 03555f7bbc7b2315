package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/momentflow/config"
)

func TestGetJSONStatusErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		wantMsg string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantMsg: "invalid credentials"},
		{name: "forbidden", status: http.StatusForbidden, wantMsg: "access forbidden"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantMsg: "rate limit"},
		{name: "server error", status: http.StatusBadGateway, wantMsg: "unexpected status 502"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			var out map[string]any
			err := getJSON(context.Background(), srv.Client(), srv.URL, nil, &out)
			require.Error(t, err)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tc.status, statusErr.StatusCode)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestGetJSONMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	var out map[string]any
	err := getJSON(context.Background(), srv.Client(), srv.URL, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestRedditClientFetchHot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/worldnews/hot.json", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"data":{"children":[{"data":{"id":"abc","title":"hello"}}]}}`))
	}))
	defer srv.Close()

	rc := NewRedditClient(config.RedditConfig{BaseURL: srv.URL}, time.Second)
	resp, err := rc.FetchHot(context.Background(), "worldnews", 5)
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Children, 1)
	assert.Equal(t, "abc", resp.Data.Children[0].Data.ID)
}

func TestTwitterClientSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "23424977", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`[{"trends":[{"name":"#Go","url":"http://x/go"}]}]`))
	}))
	defer srv.Close()

	tc := NewTwitterClient(config.TwitterConfig{BearerToken: "token-1", BaseURL: srv.URL}, time.Second)
	resp, err := tc.TrendsByPlace(context.Background(), "23424977")
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "#Go", resp[0].Trends[0].Name)
}

func TestClientsRequireCredentials(t *testing.T) {
	ctx := context.Background()

	_, err := NewGNewsClient(config.GNewsConfig{}, time.Second).Search(ctx, "world", 3)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewTwitterClient(config.TwitterConfig{}, time.Second).TrendsByPlace(ctx, "1")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewYouTubeClient(config.YouTubeConfig{}, time.Second).MostPopular(ctx, "US", 3)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = NewOpenAIClient(config.OpenAIConfig{})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
	assert.True(t, isConnectionError(errors.New("read: i/o timeout")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE Operation against a key")))
	assert.False(t, isConnectionError(nil))
}
