package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/momentflow/internal/apperr"
	"github.com/spacesedan/momentflow/internal/logging"
	"github.com/spacesedan/momentflow/internal/metrics"
	"github.com/spacesedan/momentflow/internal/models"
	"github.com/spacesedan/momentflow/internal/pipeline"
	"github.com/spacesedan/momentflow/internal/sources"
)

var version = "dev"

type runFlags struct {
	topK       int
	storeRetry int
	limits     map[string]*int
	filters    map[string]*string
	interval   time.Duration
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &runFlags{limits: map[string]*int{}, filters: map[string]*string{}}

	root := &cobra.Command{
		Use:          "detector",
		Short:        "Find the most emotionally salient moments across content sources",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once and print the summary as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runOnce(ctx, flags, cmd.OutOrStdout())
		},
	}
	addSourceFlags(runCmd, flags)
	runCmd.Flags().IntVar(&flags.storeRetry, "store-retries", 0, "retry only the store step this many times after a storage failure")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on an interval and serve /metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return schedule(ctx, flags)
		},
	}
	addSourceFlags(scheduleCmd, flags)
	scheduleCmd.Flags().DurationVar(&flags.interval, "interval", 0, "override SCHEDULE_INTERVAL")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "detector %s\n", version)
		},
	}

	root.AddCommand(runCmd, scheduleCmd, versionCmd)
	return root
}

func addSourceFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().IntVar(&flags.topK, "top-k", 0, "number of moments to keep (default TOP_K)")

	filterHelp := map[string]string{
		sources.RedditSourceName:  "subreddit",
		sources.GNewsSourceName:   "search query",
		sources.TwitterSourceName: "trend WOEID",
		sources.YouTubeSourceName: "region code",
	}
	for _, name := range []string{sources.RedditSourceName, sources.GNewsSourceName, sources.TwitterSourceName, sources.YouTubeSourceName} {
		limit, ok := flags.limits[name]
		if !ok {
			limit = new(int)
			flags.limits[name] = limit
		}
		filter, ok := flags.filters[name]
		if !ok {
			filter = new(string)
			flags.filters[name] = filter
		}
		cmd.Flags().IntVar(limit, name+"-limit", 0, "max records from "+name)
		cmd.Flags().StringVar(filter, name+"-filter", "", name+" "+filterHelp[name])
	}
}

func (f *runFlags) params() pipeline.RunParams {
	params := pipeline.RunParams{TopK: f.topK, Sources: map[string]sources.Params{}}
	for name, limit := range f.limits {
		p := sources.Params{Limit: *limit, Filter: *f.filters[name]}
		if p != (sources.Params{}) {
			params.Sources[name] = p
		}
	}
	return params
}

func setup(ctx context.Context, flags *runFlags) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	logging.InitLogger(cfg.LogLevel)
	return newApp(ctx, cfg)
}

func runOnce(ctx context.Context, flags *runFlags, out io.Writer) error {
	a, err := setup(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	summary, runErr := a.orchestrator.Run(ctx, flags.params())
	runErr = retryStore(ctx, a.orchestrator, summary, runErr, flags.storeRetry)

	if summary != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("[Detector] failed to write summary: %w", err)
		}
	}
	if runErr != nil {
		slog.Error("[Detector] Run failed", slog.String("error", runErr.Error()))
	}
	return runErr
}

type storeRetrier interface {
	StoreOnly(ctx context.Context, ranked []models.RankedRecord) (*models.StoreResult, error)
}

// retryStore repeats only the store step while runErr is a storage error,
// up to retries times. It returns the last error, nil once a write lands.
func retryStore(ctx context.Context, s storeRetrier, summary *pipeline.Summary, runErr error, retries int) error {
	for attempt := 1; runErr != nil && summary != nil && apperr.Is(runErr, apperr.KindStorage) && attempt <= retries; attempt++ {
		slog.Warn("[Detector] Retrying store step",
			slog.Int("attempt", attempt),
			slog.String("error", runErr.Error()))
		result, err := s.StoreOnly(ctx, summary.TopMoments)
		summary.Storage = result
		runErr = err
	}
	return runErr
}

func schedule(ctx context.Context, flags *runFlags) error {
	a, err := setup(ctx, flags)
	if err != nil {
		return err
	}
	defer a.close()

	interval := a.cfg.ScheduleInterval
	if flags.interval > 0 {
		interval = flags.interval
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	server := &http.Server{Addr: a.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("[Detector] Serving metrics", slog.String("addr", a.cfg.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Detector] Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runScheduled(ctx, a, flags)
	for {
		select {
		case <-ticker.C:
			runScheduled(ctx, a, flags)
		case <-ctx.Done():
			slog.Info("[Detector] Shutting down scheduler gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	}
}

func runScheduled(ctx context.Context, a *app, flags *runFlags) {
	summary, err := a.orchestrator.Run(ctx, flags.params())
	if err != nil {
		slog.Error("[Detector] Scheduled run failed", slog.String("error", err.Error()))
		return
	}
	slog.Info("[Detector] Scheduled run finished",
		slog.String("run_id", summary.RunID),
		slog.Int("stored", summary.Storage.StoredCount),
		slog.Duration("duration", summary.Duration))
}
