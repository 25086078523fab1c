package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"rate limit phrase", errors.New("Rate limit reached for model"), KindRateLimit},
		{"http 429", errors.New("googleapi: Error 429: Resource has been exhausted"), KindRateLimit},
		{"too many requests", errors.New("Too Many Requests"), KindRateLimit},
		{"overloaded", errors.New("the model is overloaded, try again later"), KindRateLimit},
		{"quota", errors.New("You exceeded your current quota"), KindQuota},
		{"invalid key", errors.New("API key not valid. Please pass a valid API key."), KindInvalidKey},
		{"unauthorized", errors.New("401 Unauthorized"), KindInvalidKey},
		{"generic", errors.New("connection reset by peer"), KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := Classify(ProviderGemini, tt.err)
			assert.Equal(t, tt.want, perr.Kind)
			assert.ErrorIs(t, perr, tt.err)
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(Classify(ProviderGroq, errors.New("rate limit exceeded"))))
	assert.True(t, Retryable(Classify(ProviderGroq, errors.New("quota exceeded"))))
	assert.False(t, Retryable(Classify(ProviderGroq, errors.New("invalid api key"))))
	assert.False(t, Retryable(Classify(ProviderGroq, errors.New("boom"))))
	assert.False(t, Retryable(errors.New("not a provider error")))
}

func TestUserMessage(t *testing.T) {
	rate := Classify(ProviderGemini, errors.New("429 too many requests"))
	assert.Contains(t, UserMessage(rate), "rate limiting")

	quota := Classify(ProviderGroq, errors.New("insufficient quota"))
	assert.Contains(t, UserMessage(quota), "quota")

	key := Classify(ProviderGemini, errors.New("API key not valid"))
	assert.Contains(t, UserMessage(key), "API key")

	generic := Classify(ProviderGroq, errors.New("something odd"))
	assert.Contains(t, UserMessage(generic), "something odd")

	cred := &CredentialError{Provider: ProviderGroq, EnvVars: []string{"GROQ_API_KEY"}}
	assert.Contains(t, UserMessage(cred), "GROQ_API_KEY")

	wrapped := fmt.Errorf("calling provider: %w", rate)
	assert.Contains(t, UserMessage(wrapped), "rate limiting")
}
