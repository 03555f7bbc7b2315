package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/momentflow/config"
)

const VALKEY_STORED_MOMENTS_KEY = "moments:stored_urls"

type ValkeyClient struct {
	Client valkey.Client
	Key    string
	TTL    time.Duration
}

func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", cfg.Address))
	return &ValkeyClient{Client: client, Key: VALKEY_STORED_MOMENTS_KEY, TTL: ttl}, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

// Seen reports, per member, whether it is already in the stored set.
// The result lines up with members.
func (vc *ValkeyClient) Seen(ctx context.Context, members []string) ([]bool, error) {
	if len(members) == 0 {
		return nil, nil
	}
	completed := make([]valkey.Completed, 0, len(members))
	for _, m := range members {
		completed = append(completed, vc.Client.B().Sismember().Key(vc.Key).Member(m).Build())
	}

	seen := make([]bool, len(members))
	for i, res := range vc.DoMultiWithRetry(ctx, completed, 3) {
		ok, err := res.AsBool()
		if err != nil {
			return nil, fmt.Errorf("[ValkeyClient] sismember failed: %w", err)
		}
		seen[i] = ok
	}
	return seen, nil
}

// MarkStored adds members to the stored set and refreshes its expiry.
func (vc *ValkeyClient) MarkStored(ctx context.Context, members []string) error {
	if len(members) == 0 {
		return nil
	}
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(vc.Key).Member(members...).Build(),
		vc.Client.B().Expire().Key(vc.Key).Seconds(int64(vc.TTL / time.Second)).Build(),
	}

	for _, res := range vc.DoMultiWithRetry(ctx, completed, 3) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] mark stored failed: %w", err)
		}
	}

	slog.Info("[ValkeyClient] Marked moments as stored", slog.Int("count", len(members)))
	return nil
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if err := r.Error(); err != nil && !valkey.IsValkeyNil(err) {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", err.Error()))
				break
			}
		}
		if !hasErr || !isConnectionError(firstError(results)) {
			break
		}
		select {
		case <-ctx.Done():
			return results
		case <-time.After(250 * time.Millisecond):
		}
	}

	return results
}

func firstError(results []valkey.ValkeyResult) error {
	for _, r := range results {
		if err := r.Error(); err != nil {
			return err
		}
	}
	return nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
