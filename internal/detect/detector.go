// Package detect scores text for the likelihood it was machine written,
// delegating judgement to an LLM and parsing its reply defensively.
package detect

import (
	"context"
	"unicode/utf8"

	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/prompts"
)

// maxInputChars bounds the payload sent to the provider so long documents
// stay under token limits. Excess input is truncated, not rejected.
const maxInputChars = 20000

// Result is a detection verdict: a 0-100 likelihood score and the model's
// stated rationale.
type Result struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// Detector runs AI-generation detection through an LLM client.
type Detector struct {
	client      llm.Client
	logger      *logger.AppLogger
	maxAttempts int
}

// New returns a Detector backed by the given client.
func New(client llm.Client, log *logger.AppLogger, maxAttempts int) *Detector {
	if maxAttempts < 1 {
		maxAttempts = llm.DefaultMaxAttempts
	}
	return &Detector{client: client, logger: log, maxAttempts: maxAttempts}
}

// Detect scores the given text. Input longer than the payload bound is
// truncated before the provider call.
func (d *Detector) Detect(ctx context.Context, text string) (Result, error) {
	if len(text) > maxInputChars {
		d.logger.Debug("truncating detection input", "original_len", len(text), "max", maxInputChars)
		text = truncateAtRune(text, maxInputChars)
	}

	system, err := prompts.Get("detection.json", "system_instruction")
	if err != nil {
		return Result{}, err
	}

	raw, err := llm.WithRetry(ctx, d.logger, d.maxAttempts, func(ctx context.Context) (string, error) {
		return d.client.Generate(ctx, system, text, llm.DetectionOptions())
	})
	if err != nil {
		return Result{}, err
	}

	res, err := parseScoreReply(raw)
	if err != nil {
		return Result{}, err
	}
	d.logger.Info("detection complete", "provider", d.client.Provider(), "score", res.Score)
	return res, nil
}

// truncateAtRune cuts s to at most max bytes without splitting a rune, so
// the provider never receives an invalid UTF-8 tail.
func truncateAtRune(s string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
