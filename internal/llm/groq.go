package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// GroqClient implements Client for Groq through its OpenAI-compatible chat
// completions endpoint.
type GroqClient struct {
	client openai.Client
	config *Config
}

// NewGroqClient creates a new Groq client.
func NewGroqClient(apiKey string, config *Config) *GroqClient {
	return &GroqClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(groqBaseURL),
		),
		config: config,
	}
}

// Generate sends the prompts to Groq and returns the reply text.
func (c *GroqClient) Generate(ctx context.Context, system, user string, opts Options) (string, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = c.config.Model(ProviderGroq)
	}

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	msgs = append(msgs, openai.UserMessage(user))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelName),
		Messages:    msgs,
		Temperature: openai.Float(float64(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", Classify(ProviderGroq, err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{
			Provider: ProviderGroq,
			Kind:     KindGeneric,
			Cause:    fmt.Errorf("empty choices in response"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// Provider returns ProviderGroq.
func (c *GroqClient) Provider() Provider {
	return ProviderGroq
}

// Close is a no-op; the underlying HTTP client holds no resources that
// need releasing.
func (c *GroqClient) Close() error {
	return nil
}
