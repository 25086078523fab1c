package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartika/paper-generator/internal/compiler"
	"github.com/kartika/paper-generator/internal/latex"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/runs"
)

// stubCompiler writes a placeholder PDF or fails, without a toolchain.
type stubCompiler struct {
	fail bool
}

func (c *stubCompiler) Compile(_ context.Context, texPath, exportDir, _ string) (string, string, error) {
	if c.fail {
		return "", "log", &compiler.CompilationError{Message: "PDF was not generated"}
	}
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return "", "", err
	}
	name := strings.TrimSuffix(filepath.Base(texPath), ".tex") + ".pdf"
	pdfPath := filepath.Join(exportDir, name)
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.7"), 0644); err != nil {
		return "", "", err
	}
	return pdfPath, "log", nil
}

const testTemplate = `\documentclass{article}
\usepackage{fancyhdr}
\usepackage{cite}
\usepackage{natbib}
\pagestyle{fancy}
\begin{document}
[TITLE]
[ABSTRACT]
\end{document}`

const modelReply = "```latex\n" + `\documentclass{article}
\begin{document}
\section{Introduction}
Quantum computing -- a paradigm shift :) -- changes everything.
\begin{thebibliography}{9}
\bibitem{a} Author, A. & Author, B. Title. Journal, 1(2), 3--4.
\end{thebibliography}
\end{document}` + "\n```"

func newTestGenerator(t *testing.T, client llm.Client, comp Compiler) (*Generator, *runs.Store) {
	t.Helper()
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.tex")
	require.NoError(t, os.WriteFile(templatePath, []byte(testTemplate), 0644))

	log := logger.New()
	store := runs.NewStore(filepath.Join(dir, "runs"))
	return NewGenerator(client, comp, store, log, templatePath, 1), store
}

func TestGenerate_WritesSanitizedDocument(t *testing.T) {
	mock := &llm.MockClient{Reply: modelReply}
	g, store := newTestGenerator(t, mock, &stubCompiler{})

	res, err := g.Generate(context.Background(), "Quantum Computing")
	require.NoError(t, err)

	// The fenced reply was sanitized into a bare document.
	assert.True(t, strings.HasPrefix(res.Tex, `\documentclass`))
	assert.True(t, strings.HasSuffix(res.Tex, `\end{document}`))
	assert.NotContains(t, res.Tex, "```")
	// Bibliography ampersands were escaped.
	assert.Contains(t, res.Tex, `\&`)

	// Artifact on disk matches the returned text.
	data, err := os.ReadFile(res.Run.TexPath)
	require.NoError(t, err)
	assert.Equal(t, res.Tex, string(data))
	assert.True(t, strings.HasPrefix(filepath.Base(res.Run.TexPath), "research_paper_"))

	// Run is registered and findable.
	found, err := store.FindTex(res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Run.TexPath, found)
}

func TestGenerate_PromptsCarryTemplateAndTopic(t *testing.T) {
	mock := &llm.MockClient{Reply: modelReply}
	g, _ := newTestGenerator(t, mock, &stubCompiler{})

	_, err := g.Generate(context.Background(), "Graph Neural Networks")
	require.NoError(t, err)

	require.Len(t, mock.Calls, 1)
	call := mock.Calls[0]
	assert.Contains(t, call.System, "TEMPLATE BEGIN")
	assert.Contains(t, call.System, `\documentclass{article}`)
	// The template reaches the prompt already cleaned.
	assert.Contains(t, call.System, `\usepackage[numbers]{natbib}`)
	assert.Contains(t, call.User, "Graph Neural Networks")
	assert.Equal(t, float32(0.7), call.Opts.Temperature)
	assert.Equal(t, int32(8000), call.Opts.MaxTokens)
}

func TestGenerate_IncompleteDocumentFailsAndCleansUp(t *testing.T) {
	mock := &llm.MockClient{Reply: "I cannot produce LaTeX today."}
	g, store := newTestGenerator(t, mock, &stubCompiler{})

	_, err := g.Generate(context.Background(), "Topic Name")
	require.Error(t, err)

	var verr *latex.ValidationError
	assert.ErrorAs(t, err, &verr)

	// No half-written run directories remain.
	entries, readErr := os.ReadDir(store.Root())
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestGenerate_ProviderFailureCleansUp(t *testing.T) {
	mock := &llm.MockClient{Err: llm.Classify(llm.ProviderGemini, errors.New("API key not valid"))}
	g, store := newTestGenerator(t, mock, &stubCompiler{})

	_, err := g.Generate(context.Background(), "Topic Name")
	require.Error(t, err)

	entries, readErr := os.ReadDir(store.Root())
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestGenerate_CompilationFailureIsNonFatal(t *testing.T) {
	mock := &llm.MockClient{Reply: modelReply}
	g, store := newTestGenerator(t, mock, &stubCompiler{fail: true})

	res, err := g.Generate(context.Background(), "Topic Name")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tex)
	assert.Error(t, res.CompileErr)
	assert.Empty(t, res.Run.PDFPath)

	// The document artifact survives even without a PDF.
	_, err = store.FindTex(res.Run.ID)
	assert.NoError(t, err)
}

func TestGenerate_RecordsPDFOnSuccess(t *testing.T) {
	mock := &llm.MockClient{Reply: modelReply}
	g, store := newTestGenerator(t, mock, &stubCompiler{})

	res, err := g.Generate(context.Background(), "Topic Name")
	require.NoError(t, err)
	require.NoError(t, res.CompileErr)
	assert.FileExists(t, res.Run.PDFPath)

	found, err := store.FindPDF(res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Run.PDFPath, found)
}
