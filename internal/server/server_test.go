package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartika/paper-generator/internal/compiler"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/types"
)

const serverTestTemplate = `\documentclass{article}
\begin{document}
[CONTENT]
\end{document}`

const serverTestReply = `\documentclass{article}
\begin{document}
\section{Introduction}
Generated content about the topic -- extensive detail :).
\end{document}`

// noPDFCompiler stands in for the LaTeX toolchain in handler tests.
type noPDFCompiler struct{}

func (noPDFCompiler) Compile(context.Context, string, string, string) (string, string, error) {
	return "", "", &compiler.CompilationError{Message: "PDF was not generated"}
}

func newTestServer(t *testing.T, mock *llm.MockClient) *Server {
	t.Helper()
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.tex")
	require.NoError(t, os.WriteFile(templatePath, []byte(serverTestTemplate), 0644))

	s := New(Config{
		Port:         0,
		TemplatePath: templatePath,
		RunsDir:      filepath.Join(dir, "runs"),
		MaxRetries:   1,
	}, logger.New())
	s.newClient = func(context.Context, llm.Provider) (llm.Client, error) {
		return mock, nil
	}
	s.compiler = noPDFCompiler{}
	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestIndex_ServesForm(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "generate-form")
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerate_HappyPath(t *testing.T) {
	mock := &llm.MockClient{Reply: serverTestReply}
	s := newTestServer(t, mock)

	rec := postJSON(t, s.Handler(), "/generate", types.GenerateRequest{Topic: "Quantum Computing", Provider: "Gemini"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "Gemini", resp.Provider)
	assert.True(t, strings.HasSuffix(resp.TexFilename, ".tex"))

	// The artifact is downloadable.
	req := httptest.NewRequest(http.MethodGet, "/download/tex/"+resp.RunID, nil)
	dl := httptest.NewRecorder()
	s.Handler().ServeHTTP(dl, req)
	assert.Equal(t, http.StatusOK, dl.Code)
	assert.Contains(t, dl.Body.String(), `\documentclass`)
	assert.Contains(t, dl.Header().Get("Content-Disposition"), "attachment")
}

func TestGenerate_ValidationErrors(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{Reply: serverTestReply})

	rec := postJSON(t, s.Handler(), "/generate", types.GenerateRequest{Topic: "ab", Provider: "Gemini"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, s.Handler(), "/generate", types.GenerateRequest{Topic: "Valid Topic", Provider: "OpenAI"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, s.Handler(), "/generate", types.GenerateRequest{Topic: "      ", Provider: "Gemini"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_InvalidBody(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_IncompleteModelOutput(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{Reply: "sorry, no latex"})

	rec := postJSON(t, s.Handler(), "/generate", types.GenerateRequest{Topic: "Valid Topic", Provider: "Groq"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a complete LaTeX document")
}

func TestDetectRaw_HappyPath(t *testing.T) {
	mock := &llm.MockClient{Reply: "SCORE: 80; REASON: strict phrasing, repetitive patterns", Name: llm.ProviderGroq}
	s := newTestServer(t, mock)

	body := types.DetectRawRequest{LaTeX: strings.Repeat("Sample research paper text. ", 5)}
	rec := postJSON(t, s.Handler(), "/detect_raw", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 80, resp.Score)
	assert.Contains(t, resp.Reasoning, "strict phrasing")
	assert.Empty(t, resp.RunID)
}

func TestDetectRaw_TooShort(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	rec := postJSON(t, s.Handler(), "/detect_raw", types.DetectRawRequest{LaTeX: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetect_UnknownRun(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	rec := postJSON(t, s.Handler(), "/detect", types.DetectRequest{RunID: "20240101_000000_deadbeef"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetect_RunArtifact(t *testing.T) {
	mock := &llm.MockClient{Reply: serverTestReply}
	s := newTestServer(t, mock)

	rec := postJSON(t, s.Handler(), "/generate", types.GenerateRequest{Topic: "Quantum Topic", Provider: "Groq"})
	require.Equal(t, http.StatusOK, rec.Code)
	var gen types.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))

	mock.Reply = "SCORE: 75; REASON: uniform structure"
	det := postJSON(t, s.Handler(), "/detect", types.DetectRequest{RunID: gen.RunID})
	require.Equal(t, http.StatusOK, det.Code, det.Body.String())

	var resp types.DetectResponse
	require.NoError(t, json.Unmarshal(det.Body.Bytes(), &resp))
	assert.Equal(t, 75, resp.Score)
	assert.Equal(t, gen.RunID, resp.RunID)

	// The detector saw the generated document, not the raw request.
	last := mock.Calls[len(mock.Calls)-1]
	assert.Contains(t, last.User, `\documentclass`)
}

func TestDetectPDF_MissingUpload(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	req := httptest.NewRequest(http.MethodPost, "/detect_pdf", strings.NewReader(""))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadPDF_Missing(t *testing.T) {
	s := newTestServer(t, &llm.MockClient{})
	req := httptest.NewRequest(http.MethodGet, "/download/pdf/20240101_000000_deadbeef", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
