// Package sources turns external content APIs into models.ContentRecord.
// Each adapter is the only code that knows its API's response schema.
package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/models"
)

// Params are the per-run knobs of a fetch. Filter is source specific:
// subreddit, search query, WOEID or region code.
type Params struct {
	Limit  int    `json:"limit"`
	Filter string `json:"filter,omitempty"`
}

type ContentSource interface {
	Name() string
	Type() models.SourceType
	Fetch(ctx context.Context, params Params) ([]models.ContentRecord, error)
}

func checkParams(source string, params Params) error {
	if params.Limit <= 0 {
		return apperr.InvalidInput(source, fmt.Sprintf("limit must be > 0, got %d", params.Limit))
	}
	return nil
}

// requestError converts a transport failure into a fetch error, keeping
// the cause so callers can tell timeouts apart.
func requestError(source string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Fetch(source, "request timed out", err)
	case errors.Is(err, context.Canceled):
		return apperr.Fetch(source, "request cancelled", err)
	default:
		return apperr.Fetch(source, "request failed", err)
	}
}

func malformed(source, format string, args ...any) error {
	return apperr.Fetchf(source, "malformed response: "+format, args...)
}

func capRecords(records []models.ContentRecord, limit int) []models.ContentRecord {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// uniqueIDs suffixes repeated ids so ids stay unique within one fetch.
func uniqueIDs(records []models.ContentRecord) {
	seen := make(map[string]int, len(records))
	for i := range records {
		id := records[i].ID
		if n, ok := seen[id]; ok {
			seen[id] = n + 1
			records[i].ID = id + "-" + strconv.Itoa(n+1)
			continue
		}
		seen[id] = 0
	}
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
