// Package pipeline runs one fetch, annotate, rank and store cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/metrics"
	"github.com/spacesedan/momentflow/internal/models"
	"github.com/spacesedan/momentflow/internal/sources"
)

const (
	DEFAULT_SOURCE_TIMEOUT = 15 * time.Second
	DEFAULT_RETRY_DELAY    = time.Second
	MAX_RETRY_DELAY        = 10 * time.Second

	OutcomeSuccess   = "success"
	OutcomeNoContent = "no_content"
	OutcomeStorage   = "storage_failed"
	OutcomeFailed    = "failed"
)

type Annotator interface {
	Annotate(ctx context.Context, records []models.ContentRecord) []models.AnnotatedRecord
}

type Ranker interface {
	Rank(records []models.AnnotatedRecord, k int) ([]models.RankedRecord, error)
}

type Store interface {
	StoreMoments(ctx context.Context, records []models.RankedRecord) ([]models.StoredMoment, models.StoreResult, error)
}

// Deduper remembers URLs of moments stored by earlier runs.
type Deduper interface {
	Seen(ctx context.Context, urls []string) ([]bool, error)
	MarkStored(ctx context.Context, urls []string) error
}

type Publisher interface {
	PublishMoments(ctx context.Context, moments []models.StoredMoment) error
}

// Options wires an Orchestrator. Deduper, Publisher and Metrics are optional.
type Options struct {
	Sources   []sources.ContentSource
	Defaults  map[string]sources.Params
	Annotator Annotator
	Ranker    Ranker
	Store     Store
	Deduper   Deduper
	Publisher Publisher
	Metrics   *metrics.Metrics

	TopK          int
	SourceTimeout time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
}

type Orchestrator struct {
	opts Options
}

func New(opts Options) (*Orchestrator, error) {
	if len(opts.Sources) == 0 {
		return nil, errors.New("[Pipeline] at least one source is required")
	}
	if opts.Annotator == nil || opts.Ranker == nil || opts.Store == nil {
		return nil, errors.New("[Pipeline] annotator, ranker and store are required")
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DEFAULT_SOURCE_TIMEOUT
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DEFAULT_RETRY_DELAY
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Orchestrator{opts: opts}, nil
}

// RunParams override the configured defaults for one run. A zero Limit or
// empty Filter keeps the default; a zero TopK keeps the configured value.
type RunParams struct {
	Sources map[string]sources.Params `json:"sources,omitempty"`
	TopK    int                       `json:"top_k,omitempty"`
}

type SourceReport struct {
	Name  string            `json:"name"`
	Type  models.SourceType `json:"type"`
	Count int               `json:"count"`
	Error string            `json:"error,omitempty"`
}

type Summary struct {
	RunID        string                `json:"run_id"`
	StartedAt    time.Time             `json:"started_at"`
	Duration     time.Duration         `json:"duration"`
	Sources      []SourceReport        `json:"sources"`
	TotalFetched int                   `json:"total_fetched"`
	Deduplicated int                   `json:"deduplicated"`
	Annotated    int                   `json:"annotated"`
	Fallbacks    int                   `json:"fallbacks"`
	TopMoments   []models.RankedRecord `json:"top_moments"`
	Storage      *models.StoreResult   `json:"storage,omitempty"`
}

type fetchResult struct {
	records []models.ContentRecord
	err     error
}

// Run executes one cycle. On a storage failure it returns the summary with
// its rankings alongside the error so StoreOnly can retry the write.
func (o *Orchestrator) Run(ctx context.Context, params RunParams) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	logger := slog.With(slog.String("run_id", summary.RunID))

	outcome := OutcomeFailed
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		o.opts.Metrics.ObserveRun(summary.Duration, outcome)
	}()

	records := o.fetchAll(ctx, params, summary)
	if ctx.Err() != nil {
		return summary, fmt.Errorf("[Pipeline] run cancelled: %w", ctx.Err())
	}
	if len(records) == 0 {
		outcome = OutcomeNoContent
		return summary, apperr.NoContent("no source returned any content")
	}

	records = o.dedupe(ctx, logger, records, summary)
	if len(records) == 0 {
		outcome = OutcomeNoContent
		return summary, apperr.NoContent("every fetched record was a duplicate or already stored")
	}

	annotated := o.opts.Annotator.Annotate(ctx, records)
	summary.Annotated = len(annotated)
	for _, rec := range annotated {
		if !rec.Analyzed {
			summary.Fallbacks++
		}
	}

	topK := params.TopK
	if topK <= 0 {
		topK = o.opts.TopK
	}
	ranked, err := o.opts.Ranker.Rank(annotated, topK)
	if err != nil {
		return summary, fmt.Errorf("[Pipeline] ranking failed: %w", err)
	}
	summary.TopMoments = ranked

	if ctx.Err() != nil {
		return summary, fmt.Errorf("[Pipeline] run cancelled before store: %w", ctx.Err())
	}

	result, err := o.StoreOnly(ctx, ranked)
	if err != nil {
		outcome = OutcomeStorage
		return summary, err
	}
	summary.Storage = result
	outcome = OutcomeSuccess

	logger.Info("[Pipeline] Run completed",
		slog.Int("fetched", summary.TotalFetched),
		slog.Int("fallbacks", summary.Fallbacks),
		slog.Int("stored", result.StoredCount))
	return summary, nil
}

// StoreOnly writes already ranked moments, then marks them for dedupe and
// publishes them. Only the write itself can fail the call.
func (o *Orchestrator) StoreOnly(ctx context.Context, ranked []models.RankedRecord) (*models.StoreResult, error) {
	moments, result, err := o.opts.Store.StoreMoments(ctx, ranked)
	if err != nil {
		return nil, fmt.Errorf("[Pipeline] store failed: %w", err)
	}
	o.opts.Metrics.Stored(result.StoredCount)

	if o.opts.Deduper != nil {
		urls := make([]string, 0, len(moments))
		for _, m := range moments {
			if m.URL != "" {
				urls = append(urls, m.URL)
			}
		}
		if err := o.opts.Deduper.MarkStored(ctx, urls); err != nil {
			slog.Warn("[Pipeline] Failed to mark stored moments",
				slog.String("error", err.Error()))
		}
	}
	if o.opts.Publisher != nil {
		if err := o.opts.Publisher.PublishMoments(ctx, moments); err != nil {
			slog.Warn("[Pipeline] Failed to publish stored moments",
				slog.String("batch_id", result.BatchID),
				slog.String("error", err.Error()))
		}
	}
	return &result, nil
}

// fetchAll queries every source concurrently and concatenates the results
// in registration order.
func (o *Orchestrator) fetchAll(ctx context.Context, params RunParams, summary *Summary) []models.ContentRecord {
	results := make([]fetchResult, len(o.opts.Sources))

	var g errgroup.Group
	for i, src := range o.opts.Sources {
		i, src := i, src
		g.Go(func() error {
			records, err := o.fetchOne(ctx, src, o.paramsFor(src.Name(), params))
			results[i] = fetchResult{records: records, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var all []models.ContentRecord
	summary.Sources = make([]SourceReport, len(o.opts.Sources))
	for i, src := range o.opts.Sources {
		report := SourceReport{Name: src.Name(), Type: src.Type()}
		res := results[i]
		o.opts.Metrics.ObserveFetch(src.Name(), len(res.records), res.err)
		if res.err != nil {
			report.Error = res.err.Error()
			slog.Warn("[Pipeline] Source excluded from run",
				slog.String("source", src.Name()),
				slog.String("error", res.err.Error()))
		} else {
			report.Count = len(res.records)
			all = append(all, res.records...)
		}
		summary.Sources[i] = report
	}
	summary.TotalFetched = len(all)
	return all
}

func (o *Orchestrator) fetchOne(ctx context.Context, src sources.ContentSource, params sources.Params) ([]models.ContentRecord, error) {
	attempt := func() ([]models.ContentRecord, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, o.opts.SourceTimeout)
		defer cancel()
		return src.Fetch(fetchCtx, params)
	}

	var (
		records []models.ContentRecord
		err     error
	)
	if o.opts.MaxRetries > 0 {
		policy := retrypolicy.NewBuilder[[]models.ContentRecord]().
			WithBackoff(o.opts.RetryDelay, max(2*o.opts.RetryDelay, MAX_RETRY_DELAY)).
			WithMaxRetries(o.opts.MaxRetries).
			HandleIf(func(_ []models.ContentRecord, err error) bool {
				return err != nil && ctx.Err() == nil && apperr.Is(err, apperr.KindFetch)
			}).
			Build()
		records, err = failsafe.With(policy).WithContext(ctx).Get(attempt)
	} else {
		records, err = attempt()
	}
	if err == nil {
		return records, nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return nil, appErr
	}
	return nil, apperr.Fetch(src.Name(), "fetch failed", err)
}

func (o *Orchestrator) paramsFor(name string, run RunParams) sources.Params {
	p := o.opts.Defaults[name]
	if override, ok := run.Sources[name]; ok {
		if override.Limit != 0 {
			p.Limit = override.Limit
		}
		if override.Filter != "" {
			p.Filter = override.Filter
		}
	}
	return p
}

// dedupe drops repeated URLs within the run, then records whose URL an
// earlier run already stored. Lookup failures keep every record.
func (o *Orchestrator) dedupe(ctx context.Context, logger *slog.Logger, records []models.ContentRecord, summary *Summary) []models.ContentRecord {
	fetched := len(records)
	records = dropRepeatedURLs(records)
	defer func() {
		if summary.Deduplicated > 0 {
			logger.Info("[Pipeline] Dropped duplicate records",
				slog.Int("count", summary.Deduplicated))
		}
	}()
	summary.Deduplicated = fetched - len(records)

	if o.opts.Deduper == nil || len(records) == 0 {
		return records
	}
	urls := make([]string, len(records))
	for i, rec := range records {
		urls[i] = rec.URL
	}
	seen, err := o.opts.Deduper.Seen(ctx, urls)
	if err != nil || len(seen) != len(records) {
		if err == nil {
			err = fmt.Errorf("got %d answers for %d urls", len(seen), len(records))
		}
		logger.Warn("[Pipeline] Dedupe lookup failed, keeping all records",
			slog.String("error", err.Error()))
		return records
	}

	kept := make([]models.ContentRecord, 0, len(records))
	for i, rec := range records {
		if rec.URL != "" && seen[i] {
			continue
		}
		kept = append(kept, rec)
	}
	summary.Deduplicated = fetched - len(kept)
	return kept
}

// dropRepeatedURLs keeps the first record for each non-empty URL.
func dropRepeatedURLs(records []models.ContentRecord) []models.ContentRecord {
	seen := make(map[string]struct{}, len(records))
	kept := make([]models.ContentRecord, 0, len(records))
	for _, rec := range records {
		if rec.URL != "" {
			if _, dup := seen[rec.URL]; dup {
				continue
			}
			seen[rec.URL] = struct{}{}
		}
		kept = append(kept, rec)
	}
	return kept
}
