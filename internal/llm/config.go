// Package llm provides the provider abstraction used by generation and
// detection: a Gemini client, a Groq client behind an OpenAI-compatible
// endpoint, a retry wrapper, and failure classification.
package llm

// Provider identifies an LLM backend.
type Provider string

const (
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini Provider = "Gemini"
	// ProviderGroq is the Groq provider, reached through its
	// OpenAI-compatible endpoint.
	ProviderGroq Provider = "Groq"
)

// Default model names per provider.
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultGroqModel   = "meta-llama/llama-4-maverick-17b-128e-instruct"
)

// groqBaseURL is the OpenAI-compatible endpoint Groq serves.
const groqBaseURL = "https://api.groq.com/openai/v1"

// Options carries the per-call sampling parameters. An empty Model falls
// back to the client's configured default.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
}

// GenerationOptions returns the sampling parameters used when writing
// papers.
func GenerationOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 8000}
}

// DetectionOptions returns the sampling parameters used when scoring text.
// Deterministic output keeps the score parser's job simple.
func DetectionOptions() Options {
	return Options{Temperature: 0.0, MaxTokens: 256}
}

// Config holds the per-provider model overrides.
type Config struct {
	GeminiModel string
	GroqModel   string
}

// DefaultConfig returns the stock model configuration.
func DefaultConfig() *Config {
	return &Config{
		GeminiModel: DefaultGeminiModel,
		GroqModel:   DefaultGroqModel,
	}
}

// Model returns the configured model name for a provider.
func (c *Config) Model(p Provider) string {
	switch p {
	case ProviderGroq:
		if c.GroqModel != "" {
			return c.GroqModel
		}
		return DefaultGroqModel
	default:
		if c.GeminiModel != "" {
			return c.GeminiModel
		}
		return DefaultGeminiModel
	}
}
