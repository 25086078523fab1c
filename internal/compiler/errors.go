// Package compiler drives the two-pass pdflatex build of a generated
// document, with a containerized texlive fallback when no local toolchain
// is installed.
package compiler

import "fmt"

// CompilationError represents a build that produced no usable PDF.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// RuntimeMissingError reports an absent toolchain or container runtime.
// It is a configuration error, distinct from a compilation failure, and is
// never retried.
type RuntimeMissingError struct {
	Runtime string
	Cause   error
}

func (e *RuntimeMissingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s not found in PATH: %v", e.Runtime, e.Cause)
	}
	return fmt.Sprintf("%s not found in PATH", e.Runtime)
}

func (e *RuntimeMissingError) Unwrap() error {
	return e.Cause
}
