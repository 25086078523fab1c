package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers.
type Client interface {
	// Generate sends a system instruction and a user prompt to the
	// provider and returns the raw text reply.
	Generate(ctx context.Context, system, user string, opts Options) (string, error)
	// Provider returns the backend identity.
	Provider() Provider
	// Close releases any resources held by the client.
	Close() error
}

// NewClient constructs the client for the requested provider, resolving its
// API key from the environment. A provider whose key is absent fails here,
// before any network call.
func NewClient(ctx context.Context, provider Provider, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch provider {
	case ProviderGroq:
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, &CredentialError{Provider: ProviderGroq, EnvVars: []string{"GROQ_API_KEY"}}
		}
		return NewGroqClient(key, config), nil
	case ProviderGemini:
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		if key == "" {
			return nil, &CredentialError{Provider: ProviderGemini, EnvVars: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}}
		}
		return NewGeminiClient(ctx, key, config)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string, config *Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Generate sends the prompts to Gemini and returns the reply text.
func (c *GeminiClient) Generate(ctx context.Context, system, user string, opts Options) (string, error) {
	modelName := opts.Model
	if modelName == "" {
		modelName = c.config.Model(ProviderGemini)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", Classify(ProviderGemini, err)
	}
	return extractTextFromResponse(resp)
}

// Provider returns ProviderGemini.
func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &ProviderError{
			Provider: ProviderGemini,
			Kind:     KindGeneric,
			Cause:    fmt.Errorf("no candidates in response"),
		}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &ProviderError{
			Provider: ProviderGemini,
			Kind:     KindGeneric,
			Cause:    fmt.Errorf("no content in response"),
		}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &ProviderError{
			Provider: ProviderGemini,
			Kind:     KindGeneric,
			Cause:    fmt.Errorf("no text parts in response"),
		}
	}
	return strings.Join(parts, ""), nil
}
