package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacesedan/momentflow/config"
	"github.com/spacesedan/momentflow/internal/clients"
	"github.com/spacesedan/momentflow/internal/clients/kafka_client"
	"github.com/spacesedan/momentflow/internal/db"
	"github.com/spacesedan/momentflow/internal/metrics"
	"github.com/spacesedan/momentflow/internal/pipeline"
	"github.com/spacesedan/momentflow/internal/ranking"
	"github.com/spacesedan/momentflow/internal/sentiment"
	"github.com/spacesedan/momentflow/internal/sources"
)

// app owns every long-lived client. close releases them in reverse order.
type app struct {
	cfg          *config.Config
	orchestrator *pipeline.Orchestrator
	registry     *prometheus.Registry
	closers      []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newAnalyzer(cfg *config.Config) (sentiment.Analyzer, error) {
	switch cfg.SentimentProvider {
	case config.ProviderVader:
		return sentiment.NewVaderAnalyzer(), nil
	default:
		client, err := clients.NewOpenAIClient(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return sentiment.NewOpenAIAnalyzer(client), nil
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	m := metrics.New(a.registry)

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := clients.LoadAWSConfig(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	store := db.NewMomentStore(db.NewDynamoConnector(awsCfg, cfg.Store.Endpoint), cfg.Store)

	opts := pipeline.Options{
		Sources:       sources.NewAll(cfg),
		Defaults:      sources.DefaultParams(cfg),
		Annotator:     sentiment.NewAnnotator(analyzer, cfg.SentimentConcurrency, m),
		Ranker:        ranking.Ranker{Clamp: cfg.ClampScores},
		Store:         store,
		Metrics:       m,
		TopK:          cfg.TopK,
		SourceTimeout: cfg.SourceTimeout,
		MaxRetries:    cfg.SourceMaxRetries,
		RetryDelay:    cfg.SourceRetryDelay,
	}

	if cfg.Valkey.Address != "" {
		vc, err := clients.NewValkeyClient(ctx, cfg.Valkey)
		if err != nil {
			slog.Warn("[Detector] Dedupe disabled", slog.String("error", err.Error()))
		} else {
			opts.Deduper = vc
			a.closers = append(a.closers, vc.Close)
		}
	}

	if cfg.Kafka.Broker != "" {
		pub, err := kafka_client.NewMomentPublisher(ctx, cfg.Kafka)
		if err != nil {
			slog.Warn("[Detector] Moment events disabled", slog.String("error", err.Error()))
		} else {
			opts.Publisher = pub
			a.closers = append(a.closers, pub.Close)
		}
	}

	a.orchestrator, err = pipeline.New(opts)
	if err != nil {
		a.close()
		return nil, err
	}

	slog.Info("[Detector] Pipeline ready",
		slog.String("analyzer", analyzer.Name()),
		slog.String("table", store.Table()),
		slog.Bool("dedupe", opts.Deduper != nil),
		slog.Bool("events", opts.Publisher != nil))
	return a, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("[Detector] invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("[Detector] invalid configuration: %w", err)
	}
	return cfg, nil
}
