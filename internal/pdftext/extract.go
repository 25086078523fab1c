// Package pdftext extracts plain text from PDF documents for detection.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minExtractedChars is the floor below which an extraction is considered
// unusable. Scanned or image-only PDFs typically land here.
const minExtractedChars = 50

// ExtractionError reports a PDF whose text could not be recovered.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("PDF text extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("PDF text extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Extract pulls the text of every page out of data. Pages that fail to
// decode are skipped; the result only errors when the whole document yields
// too little text to analyze.
func Extract(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Message: "unreadable document", Cause: err}
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	out := strings.TrimSpace(sb.String())
	if len(out) < minExtractedChars {
		return "", &ExtractionError{Message: "document contains too little extractable text"}
	}
	return out, nil
}
