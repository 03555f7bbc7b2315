package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/spacesedan/momentflow/config"
)

const openAIRequestTimeout = 60 * time.Second

var ErrEmptyCompletion = errors.New("empty completion")

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[OpenAIClient] OPENAI_API_KEY: %w", ErrMissingCredentials)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = openAIRequestTimeout
	}
	model := cfg.Model
	if model == "" {
		model = config.DEFAULT_OPENAI_MODEL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", model), slog.Duration("timeout", timeout))

	return &OpenAIClient{
		Client: openai.NewClient(opts...),
		Model:  model,
	}, nil
}

// CompleteJSON sends a single user prompt in JSON-object mode and returns
// the raw content of the first choice.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model: openai.F(openai.ChatModel(c.Model)),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONObjectParam{
				Type: openai.F(openai.ResponseFormatJSONObjectTypeJSONObject),
			},
		),
	})
	if err != nil {
		return "", fmt.Errorf("[OpenAIClient] chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("[OpenAIClient] %w", ErrEmptyCompletion)
	}

	slog.Debug("[OpenAIClient] Completion received",
		slog.String("finish_reason", string(completion.Choices[0].FinishReason)))

	return completion.Choices[0].Message.Content, nil
}
