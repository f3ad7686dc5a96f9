package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/yanqian/nutrition-advisor/internal/infra/llm"
	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

// DefaultBaseURL is Gemini's OpenAI compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

const defaultTimeout = 60 * time.Second

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Client calls Gemini through the OpenAI chat completions protocol.
type Client struct {
	client openai.Client
}

// NewClient constructs a Gemini client. Retries are disabled.
func NewClient(apiKey, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := openai.NewClient(
		option.WithBaseURL(ensureTrailingSlash(baseURL)),
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	)
	return &Client{client: client}, nil
}

// Generate submits the prompt once and returns the first choice.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(float64(req.Temperature))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, describeError(err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return llm.Response{}, ErrEmptyResponse
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return llm.Response{}, ErrEmptyResponse
	}
	return llm.Response{
		Text: text,
		Usage: metrics.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

func describeError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("gemini: %w: %w", llm.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("gemini request failed: status=%d: %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

func ensureTrailingSlash(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}

var _ llm.Generator = (*Client)(nil)
