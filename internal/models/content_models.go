package models

import (
	"errors"
	"fmt"
	"time"
)

type SourceType string

const (
	SourceForum     SourceType = "forum"
	SourceNews      SourceType = "news"
	SourceMicroblog SourceType = "microblog"
	SourceVideo     SourceType = "video"
)

func (t SourceType) Valid() bool {
	switch t {
	case SourceForum, SourceNews, SourceMicroblog, SourceVideo:
		return true
	}
	return false
}

// ContentRecord is the normalized unit every source adapter produces.
// SourceMetrics is opaque to the pipeline.
type ContentRecord struct {
	ID            string         `json:"id" dynamodbav:"id"`
	Title         string         `json:"title" dynamodbav:"title"`
	Body          string         `json:"body" dynamodbav:"body"`
	URL           string         `json:"url" dynamodbav:"url"`
	SourceType    SourceType     `json:"source_type" dynamodbav:"source_type"`
	Source        string         `json:"source" dynamodbav:"source"`
	CreatedAt     time.Time      `json:"created_at" dynamodbav:"created_at"`
	SourceMetrics map[string]any `json:"source_metrics,omitempty" dynamodbav:"source_metrics,omitempty"`
}

func (r ContentRecord) Validate() error {
	if r.ID == "" {
		return errors.New("record id is empty")
	}
	if !r.SourceType.Valid() {
		return fmt.Errorf("record %s has unknown source type %q", r.ID, r.SourceType)
	}
	return nil
}
