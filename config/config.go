package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DEFAULT_OPENAI_MODEL     = "gpt-4o"
	DEFAULT_STORE_ENDPOINT   = "http://localhost:8000"
	DEFAULT_STORE_REGION     = "us-west-2"
	DEFAULT_STORE_DATABASE   = "moments_db"
	DEFAULT_STORE_COLLECTION = "moments"
	DEFAULT_MOMENTS_TOPIC    = "stored-moments"
	DEFAULT_SOURCE_LIMIT     = 10
	DEFAULT_TOP_K            = 2
)

const (
	ProviderOpenAI = "openai"
	ProviderVader  = "vader"
)

// SourceDefaults holds the params a source falls back to when a run
// does not override them.
type SourceDefaults struct {
	Limit  int
	Filter string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type StoreConfig struct {
	Endpoint   string
	Region     string
	Database   string
	Collection string
}

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Defaults     SourceDefaults
}

type GNewsConfig struct {
	APIKey   string
	BaseURL  string
	Defaults SourceDefaults
}

type TwitterConfig struct {
	BearerToken string
	BaseURL     string
	Defaults    SourceDefaults
}

type YouTubeConfig struct {
	APIKey   string
	BaseURL  string
	Category string
	Defaults SourceDefaults
}

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
	TTL      time.Duration
}

type KafkaConfig struct {
	Broker string
	Topic  string
}

// Config is the explicit configuration handed to every collaborator
// constructor. Nothing below cmd/ reads the environment.
type Config struct {
	Env      string
	LogLevel string

	OpenAI  OpenAIConfig
	Store   StoreConfig
	Reddit  RedditConfig
	GNews   GNewsConfig
	Twitter TwitterConfig
	YouTube YouTubeConfig
	Valkey  ValkeyConfig
	Kafka   KafkaConfig

	SentimentProvider    string
	SentimentConcurrency int
	ClampScores          bool

	TopK             int
	SourceTimeout    time.Duration
	SourceMaxRetries int
	SourceRetryDelay time.Duration

	MetricsAddr      string
	ScheduleInterval time.Duration
}

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Env:      getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("OPENAI_MODEL", DEFAULT_OPENAI_MODEL),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Timeout: getDuration("OPENAI_TIMEOUT", 60*time.Second, &errs),
		},
		Store: StoreConfig{
			Endpoint:   getEnv("STORE_ENDPOINT", DEFAULT_STORE_ENDPOINT),
			Region:     getEnv("STORE_REGION", DEFAULT_STORE_REGION),
			Database:   getEnv("STORE_DATABASE", DEFAULT_STORE_DATABASE),
			Collection: getEnv("STORE_COLLECTION", DEFAULT_STORE_COLLECTION),
		},
		Reddit: RedditConfig{
			ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
			ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
			BaseURL:      os.Getenv("REDDIT_BASE_URL"),
			Defaults: SourceDefaults{
				Limit:  getInt("REDDIT_LIMIT", DEFAULT_SOURCE_LIMIT, &errs),
				Filter: getEnv("REDDIT_SUBREDDIT", "all"),
			},
		},
		GNews: GNewsConfig{
			APIKey:  os.Getenv("GNEWS_API_KEY"),
			BaseURL: os.Getenv("GNEWS_BASE_URL"),
			Defaults: SourceDefaults{
				Limit:  getInt("GNEWS_LIMIT", DEFAULT_SOURCE_LIMIT, &errs),
				Filter: getEnv("GNEWS_QUERY", "world"),
			},
		},
		Twitter: TwitterConfig{
			BearerToken: os.Getenv("TWITTER_BEARER_TOKEN"),
			BaseURL:     os.Getenv("TWITTER_BASE_URL"),
			Defaults: SourceDefaults{
				Limit:  getInt("TWITTER_LIMIT", DEFAULT_SOURCE_LIMIT, &errs),
				Filter: getEnv("TWITTER_WOEID", "1"),
			},
		},
		YouTube: YouTubeConfig{
			APIKey:   os.Getenv("YOUTUBE_API_KEY"),
			BaseURL:  os.Getenv("YOUTUBE_BASE_URL"),
			Category: getEnv("YOUTUBE_CATEGORY", "0"),
			Defaults: SourceDefaults{
				Limit:  getInt("YOUTUBE_LIMIT", DEFAULT_SOURCE_LIMIT, &errs),
				Filter: getEnv("YOUTUBE_REGION", "US"),
			},
		},
		Valkey: ValkeyConfig{
			Address:  os.Getenv("VALKEY_INIT_ADDRESS"),
			Password: os.Getenv("VALKEY_PASSWORD"),
			TLS:      os.Getenv("VALKEY_TLS") == "true",
			TTL:      getDuration("VALKEY_TTL", 24*time.Hour, &errs),
		},
		Kafka: KafkaConfig{
			Broker: os.Getenv("KAFKA_BROKER"),
			Topic:  getEnv("KAFKA_MOMENTS_TOPIC", DEFAULT_MOMENTS_TOPIC),
		},
		SentimentProvider:    strings.ToLower(getEnv("SENTIMENT_PROVIDER", ProviderOpenAI)),
		SentimentConcurrency: getInt("SENTIMENT_CONCURRENCY", 4, &errs),
		ClampScores:          os.Getenv("RANK_CLAMP_SCORES") == "true",
		TopK:                 getInt("TOP_K", DEFAULT_TOP_K, &errs),
		SourceTimeout:        getDuration("SOURCE_TIMEOUT", 15*time.Second, &errs),
		SourceMaxRetries:     getInt("SOURCE_MAX_RETRIES", 0, &errs),
		SourceRetryDelay:     getDuration("SOURCE_RETRY_DELAY", time.Second, &errs),
		MetricsAddr:          getEnv("METRICS_ADDR", ":9100"),
		ScheduleInterval:     getDuration("SCHEDULE_INTERVAL", time.Hour, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that would make a run impossible.
// Missing per-source credentials are not errors: the source is skipped.
func (c *Config) Validate() error {
	var errs []error

	switch c.SentimentProvider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when SENTIMENT_PROVIDER=openai"))
		}
	case ProviderVader:
	default:
		errs = append(errs, fmt.Errorf("unknown SENTIMENT_PROVIDER %q (valid: openai, vader)", c.SentimentProvider))
	}

	if c.Store.Database == "" || c.Store.Collection == "" {
		errs = append(errs, errors.New("STORE_DATABASE and STORE_COLLECTION must not be empty"))
	}
	if c.TopK < 1 {
		errs = append(errs, fmt.Errorf("TOP_K must be >= 1, got %d", c.TopK))
	}
	if c.SentimentConcurrency < 1 {
		errs = append(errs, fmt.Errorf("SENTIMENT_CONCURRENCY must be >= 1, got %d", c.SentimentConcurrency))
	}
	if c.SourceMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("SOURCE_MAX_RETRIES must be >= 0, got %d", c.SourceMaxRetries))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return defaultValue
	}
	return d
}
