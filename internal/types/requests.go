// Package types provides the request and response shapes shared by the API
// server and the CLI.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// GenerateRequest asks for a paper on a topic from a specific provider.
type GenerateRequest struct {
	Topic    string `json:"topic" validate:"required,min=3"`
	Provider string `json:"provider" validate:"required,oneof=Gemini Groq"`
}

// GenerateResponse reports the artifacts of a completed generation run.
// PDFFilename is empty when compilation failed or no toolchain exists.
type GenerateResponse struct {
	RunID       string `json:"run_id"`
	Provider    string `json:"provider"`
	TexFilename string `json:"tex_filename"`
	PDFFilename string `json:"pdf_filename,omitempty"`
}

// DetectRequest asks for an AI-generation verdict on a previous run.
type DetectRequest struct {
	RunID string `json:"run_id" validate:"required,min=8"`
}

// DetectRawRequest asks for a verdict on caller-supplied LaTeX or plain
// text.
type DetectRawRequest struct {
	LaTeX string `json:"latex" validate:"required,min=50"`
}

// DetectResponse is the detection verdict. RunID is set only when the
// verdict was computed over a stored run's artifact.
type DetectResponse struct {
	RunID     string `json:"run_id,omitempty"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// ErrorResponse is the uniform error body returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Validate validates the GenerateRequest using the validator. The topic is
// trimmed first so surrounding whitespace neither satisfies the length rule
// nor reaches the provider.
func (r *GenerateRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the DetectRequest using the validator.
func (r *DetectRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the DetectRawRequest using the validator.
func (r *DetectRawRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
