// Package latex provides template loading and the sanitization pipeline
// that turns untrusted model output into a compilable LaTeX document.
package latex

import "fmt"

// TemplateError represents a failure to load the template file.
type TemplateError struct {
	Path  string
	Cause error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Path)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a generated document that does not satisfy
// the structural start/end marker invariant.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("document validation error: %s", e.Message)
}
