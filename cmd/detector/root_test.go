package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/models"
	"github.com/spacesedan/momentflow/internal/pipeline"
	"github.com/spacesedan/momentflow/internal/sources"
)

func TestRunFlagsBuildParams(t *testing.T) {
	root := newRootCmd()
	runCmd, _, err := root.Find([]string{"run"})
	require.NoError(t, err)

	require.NoError(t, runCmd.Flags().Parse([]string{
		"--top-k", "5",
		"--reddit-filter", "worldnews",
		"--youtube-limit", "3",
	}))

	limit, err := runCmd.Flags().GetInt("youtube-limit")
	require.NoError(t, err)
	assert.Equal(t, 3, limit)
}

func TestParamsSkipsUnsetSources(t *testing.T) {
	flags := &runFlags{limits: map[string]*int{}, filters: map[string]*string{}}
	for _, name := range []string{sources.RedditSourceName, sources.GNewsSourceName} {
		flags.limits[name] = new(int)
		flags.filters[name] = new(string)
	}
	*flags.filters[sources.RedditSourceName] = "worldnews"
	flags.topK = 4

	params := flags.params()
	assert.Equal(t, 4, params.TopK)
	assert.Equal(t, map[string]sources.Params{
		sources.RedditSourceName: {Filter: "worldnews"},
	}, params.Sources)
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "detector dev\n", out.String())
}

func TestRunReportsConfigErrors(t *testing.T) {
	t.Setenv("SENTIMENT_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"run"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, stderr.String(), "OPENAI_API_KEY")
	assert.Empty(t, stdout.String())
}

type fakeStoreRetrier struct {
	errs  []error
	calls int
}

func (f *fakeStoreRetrier) StoreOnly(_ context.Context, ranked []models.RankedRecord) (*models.StoreResult, error) {
	err := f.errs[f.calls]
	f.calls++
	if err != nil {
		return nil, err
	}
	return &models.StoreResult{StoredCount: len(ranked), BatchID: "batch-2"}, nil
}

func TestRetryStore(t *testing.T) {
	storageErr := apperr.Storage("failed to write moments", errors.New("throttled"))
	ranked := []models.RankedRecord{{Rank: 1}, {Rank: 2}}

	testCases := []struct {
		name      string
		runErr    error
		retries   int
		errs      []error
		wantCalls int
		wantErr   bool
		wantStore bool
	}{
		{name: "succeeds on second attempt", runErr: storageErr, retries: 3, errs: []error{storageErr, nil}, wantCalls: 2, wantStore: true},
		{name: "gives up after retries", runErr: storageErr, retries: 2, errs: []error{storageErr, storageErr}, wantCalls: 2, wantErr: true},
		{name: "retries disabled", runErr: storageErr, retries: 0, wantCalls: 0, wantErr: true},
		{name: "no content is not retried", runErr: apperr.NoContent("nothing"), retries: 3, wantCalls: 0, wantErr: true},
		{name: "successful run untouched", retries: 3, wantCalls: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			retrier := &fakeStoreRetrier{errs: tc.errs}
			summary := &pipeline.Summary{TopMoments: ranked}

			err := retryStore(context.Background(), retrier, summary, tc.runErr, tc.retries)
			assert.Equal(t, tc.wantCalls, retrier.calls)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tc.wantStore {
				require.NotNil(t, summary.Storage)
				assert.Equal(t, 2, summary.Storage.StoredCount)
				assert.Equal(t, "batch-2", summary.Storage.BatchID)
			} else {
				assert.Nil(t, summary.Storage)
			}
		})
	}
}
