package llm

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies a provider error for user-facing reporting and
// retry decisions.
type FailureKind string

const (
	// KindRateLimit marks transient throttling. Retryable.
	KindRateLimit FailureKind = "rate_limit"
	// KindQuota marks an exhausted plan or billing quota. Retryable, since
	// some providers report short-window quota windows the same way.
	KindQuota FailureKind = "quota"
	// KindInvalidKey marks a rejected credential. Never retried.
	KindInvalidKey FailureKind = "invalid_key"
	// KindGeneric is everything else. Never retried.
	KindGeneric FailureKind = "generic"
)

// ProviderError wraps a failure returned by an LLM provider together with
// its classification.
type ProviderError struct {
	Provider Provider
	Kind     FailureKind
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error (%s): %v", e.Provider, e.Kind, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CredentialError reports an API key that could not be resolved from the
// environment. It is a configuration error raised before any network call.
type CredentialError struct {
	Provider Provider
	EnvVars  []string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s API key not configured: set %s", e.Provider, strings.Join(e.EnvVars, " or "))
}

// Classify inspects a raw provider error and assigns a failure kind based
// on the provider's error text. Providers do not expose structured codes
// uniformly, so substring matching is the common denominator.
func Classify(provider Provider, err error) *ProviderError {
	msg := strings.ToLower(err.Error())
	kind := KindGeneric
	switch {
	case strings.Contains(msg, "quota"):
		kind = KindQuota
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "overloaded"):
		kind = KindRateLimit
	case strings.Contains(msg, "api key not valid"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "invalid_api_key"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "unauthorized"):
		kind = KindInvalidKey
	}
	return &ProviderError{Provider: provider, Kind: kind, Cause: err}
}

// Retryable reports whether the error is transient enough to retry.
func Retryable(err error) bool {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == KindRateLimit || perr.Kind == KindQuota
}

// UserMessage renders a provider failure as a message suitable for end
// users, hiding transport detail for the classified causes.
func UserMessage(err error) string {
	var cerr *CredentialError
	if errors.As(err, &cerr) {
		return cerr.Error()
	}
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return err.Error()
	}
	switch perr.Kind {
	case KindRateLimit:
		return fmt.Sprintf("%s is rate limiting requests right now. Please wait a moment and try again.", perr.Provider)
	case KindQuota:
		return fmt.Sprintf("The %s API quota is exhausted. Check the plan and billing details for the configured key.", perr.Provider)
	case KindInvalidKey:
		return fmt.Sprintf("The configured %s API key was rejected. Verify the credential and restart.", perr.Provider)
	default:
		return fmt.Sprintf("%s request failed: %v", perr.Provider, perr.Cause)
	}
}
