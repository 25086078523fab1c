package detect

import "fmt"

// ParseError reports a detector reply that no parsing strategy could
// extract a score from. Raw carries the reply for diagnostics.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected detector output: %s", e.Raw)
}
