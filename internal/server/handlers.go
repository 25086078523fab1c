package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kartika/paper-generator/internal/detect"
	"github.com/kartika/paper-generator/internal/latex"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/pdftext"
	"github.com/kartika/paper-generator/internal/pipeline"
	"github.com/kartika/paper-generator/internal/types"
)

// maxUploadBytes bounds /detect_pdf uploads.
const maxUploadBytes = 20 << 20

// handleGenerate runs the full generation pipeline for a topic.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	client, err := s.newClient(r.Context(), llm.Provider(req.Provider))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, llm.UserMessage(err))
		return
	}
	defer client.Close()

	gen := pipeline.NewGenerator(client, s.compiler, s.store, s.logger, s.cfg.TemplatePath, s.cfg.MaxRetries)
	res, err := gen.Generate(r.Context(), req.Topic)
	if err != nil {
		var verr *latex.ValidationError
		if errors.As(err, &verr) {
			s.errorResponse(w, http.StatusInternalServerError, "Model output is not a complete LaTeX document.")
			return
		}
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			s.errorResponse(w, http.StatusBadGateway, llm.UserMessage(err))
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := types.GenerateResponse{
		RunID:       res.Run.ID,
		Provider:    req.Provider,
		TexFilename: filepath.Base(res.Run.TexPath),
	}
	if res.Run.PDFPath != "" {
		resp.PDFFilename = filepath.Base(res.Run.PDFPath)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleDetect scores the LaTeX artifact of a previous run.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req types.DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	texPath, err := s.store.FindTex(req.RunID)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found: "+req.RunID)
		return
	}
	data, err := os.ReadFile(texPath)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read run artifact")
		return
	}

	s.runDetection(w, r, req.RunID, string(data))
}

// handleDetectRaw scores caller-supplied LaTeX or plain text.
func (s *Server) handleDetectRaw(w http.ResponseWriter, r *http.Request) {
	var req types.DetectRawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.runDetection(w, r, "", req.LaTeX)
}

// handleDetectPDF extracts the text of an uploaded PDF and scores it.
func (s *Server) handleDetectPDF(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing PDF upload: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	text, err := pdftext.Extract(data)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.runDetection(w, r, "", text)
}

// runDetection drives the detector over text and writes the verdict,
// echoing runID when the text came from a stored run. Detection always
// goes through Groq.
func (s *Server) runDetection(w http.ResponseWriter, r *http.Request, runID, text string) {
	client, err := s.newClient(r.Context(), llm.ProviderGroq)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, llm.UserMessage(err))
		return
	}
	defer client.Close()

	d := detect.New(client, s.logger, s.cfg.MaxRetries)
	res, err := d.Detect(r.Context(), text)
	if err != nil {
		var perr *detect.ParseError
		if errors.As(err, &perr) {
			s.errorResponse(w, http.StatusBadGateway, err.Error())
			return
		}
		s.errorResponse(w, http.StatusBadGateway, llm.UserMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.DetectResponse{RunID: runID, Score: res.Score, Reasoning: res.Reasoning})
}

// handleDownloadTex serves the LaTeX artifact of a run.
func (s *Server) handleDownloadTex(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")
	texPath, err := s.store.FindTex(runID)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found: "+runID)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(texPath))
	w.Header().Set("Content-Type", "application/x-tex")
	http.ServeFile(w, r, texPath)
}

// handleDownloadPDF serves the PDF artifact of a run.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")
	pdfPath, err := s.store.FindPDF(runID)
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, "No PDF for run: "+runID)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(pdfPath))
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, pdfPath)
}
