package models

import "time"

type RankedRecord struct {
	AnnotatedRecord
	MomentScore float64 `json:"moment_score" dynamodbav:"moment_score"`
	Rank        int     `json:"rank" dynamodbav:"rank"`
}

// StoredMoment is the document written to the moment store.
type StoredMoment struct {
	MomentID string `json:"moment_id" dynamodbav:"moment_id"`
	BatchID  string `json:"batch_id" dynamodbav:"batch_id"`
	DayID    string `json:"day_id" dynamodbav:"day_id"`
	RankedRecord
	StoredAt time.Time `json:"stored_at" dynamodbav:"stored_at"`
}

type StoreResult struct {
	StoredCount int       `json:"stored_count"`
	IDs         []string  `json:"moments_ids"`
	BatchID     string    `json:"batch_id"`
	DayID       string    `json:"day_id"`
	StoredAt    time.Time `json:"stored_at"`
}
