// Package server provides the HTTP API and the form UI for paper
// generation and detection.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kartika/paper-generator/internal/compiler"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/pipeline"
	"github.com/kartika/paper-generator/internal/runs"
)

// Config holds server configuration.
type Config struct {
	Port         int
	TemplatePath string
	RunsDir      string
	MaxRetries   int
	GeminiModel  string
	GroqModel    string
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	cfg        Config
	logger     *logger.AppLogger
	store      *runs.Store
	compiler   pipeline.Compiler
	llmConfig  *llm.Config

	// newClient constructs a provider client; tests substitute fakes here.
	newClient func(ctx context.Context, provider llm.Provider) (llm.Client, error)
}

// New creates a new server instance.
func New(cfg Config, log *logger.AppLogger) *Server {
	llmConfig := &llm.Config{GeminiModel: cfg.GeminiModel, GroqModel: cfg.GroqModel}

	s := &Server{
		cfg:       cfg,
		logger:    log,
		store:     runs.NewStore(cfg.RunsDir),
		compiler:  compiler.New(log),
		llmConfig: llmConfig,
	}
	s.newClient = func(ctx context.Context, provider llm.Provider) (llm.Client, error) {
		return llm.NewClient(ctx, provider, llmConfig)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /detect", s.handleDetect)
	mux.HandleFunc("POST /detect_raw", s.handleDetectRaw)
	mux.HandleFunc("POST /detect_pdf", s.handleDetectPDF)
	mux.HandleFunc("GET /download/tex/{run_id}", s.handleDownloadTex)
	mux.HandleFunc("GET /download/pdf/{run_id}", s.handleDownloadPDF)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // generation plus compilation can run long
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the configured handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", err)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "duration", time.Since(start).String())
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
