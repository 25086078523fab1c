package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_GarbageBytes(t *testing.T) {
	_, err := Extract([]byte("not a pdf at all"))
	require.Error(t, err)

	var eerr *ExtractionError
	assert.ErrorAs(t, err, &eerr)
}

func TestExtract_EmptyInput(t *testing.T) {
	_, err := Extract(nil)
	require.Error(t, err)
}

func TestExtract_TruncatedHeader(t *testing.T) {
	// A valid magic number with no body behind it.
	_, err := Extract([]byte("%PDF-1.7\n"))
	require.Error(t, err)
}
