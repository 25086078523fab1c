// Package pipeline orchestrates a generation run: template preparation,
// the provider call, output sanitization, artifact writing, and the
// best-effort PDF build.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kartika/paper-generator/internal/latex"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/prompts"
	"github.com/kartika/paper-generator/internal/runs"
)

// Compiler turns a LaTeX document into a PDF. Satisfied by
// compiler.Compiler; tests substitute fakes.
type Compiler interface {
	Compile(ctx context.Context, texPath, exportDir, workDir string) (string, string, error)
}

// Generator runs the end-to-end paper generation pipeline.
type Generator struct {
	client       llm.Client
	compiler     Compiler
	store        *runs.Store
	logger       *logger.AppLogger
	templatePath string
	maxAttempts  int
}

// NewGenerator wires a Generator from its collaborators.
func NewGenerator(client llm.Client, comp Compiler, store *runs.Store, log *logger.AppLogger, templatePath string, maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = llm.DefaultMaxAttempts
	}
	return &Generator{
		client:       client,
		compiler:     comp,
		store:        store,
		logger:       log,
		templatePath: templatePath,
		maxAttempts:  maxAttempts,
	}
}

// Result carries the artifacts of one generation run. CompileErr is set
// when the PDF build failed; the run itself still succeeded and the
// document text is usable.
type Result struct {
	Run        runs.Run
	Tex        string
	CompileErr error
}

// Generate produces a paper on the topic, writes its artifacts under a
// fresh run directory, and attempts a PDF build. Compilation failure is
// non-fatal; every earlier failure removes the partial run directory.
func (g *Generator) Generate(ctx context.Context, topic string) (Result, error) {
	id := runs.NewID()
	run, err := g.store.Create(id)
	if err != nil {
		return Result{}, err
	}
	g.logger.Info("generation started", "run_id", id, "topic", topic, "provider", g.client.Provider())

	tex, err := g.generateDocument(ctx, topic)
	if err != nil {
		g.cleanup(id)
		return Result{}, err
	}

	texPath := filepath.Join(run.Dir, "output", texFilename())
	if err := os.WriteFile(texPath, []byte(tex), 0644); err != nil {
		g.cleanup(id)
		return Result{}, fmt.Errorf("writing document: %w", err)
	}
	run.TexPath = texPath
	g.store.Set(run)

	pdfPath, _, compileErr := g.compiler.Compile(ctx, texPath, filepath.Join(run.Dir, "export"), run.Dir)
	if compileErr != nil {
		g.logger.Warn("compilation failed, returning document without PDF", "run_id", id, "error", compileErr)
	} else {
		run.PDFPath = pdfPath
		g.store.Set(run)
	}

	g.logger.Info("generation complete", "run_id", id, "pdf", run.PDFPath != "")
	return Result{Run: run, Tex: tex, CompileErr: compileErr}, nil
}

// generateDocument prepares the prompts, calls the provider, and
// sanitizes and validates the reply.
func (g *Generator) generateDocument(ctx context.Context, topic string) (string, error) {
	template, err := latex.LoadTemplate(g.templatePath)
	if err != nil {
		return "", err
	}
	cleanTemplate := latex.CleanTemplate(template)

	systemTmpl, err := prompts.Get("generation.json", "system_instruction")
	if err != nil {
		return "", err
	}
	userTmpl, err := prompts.Get("generation.json", "user_prompt")
	if err != nil {
		return "", err
	}
	system := prompts.Format(systemTmpl, map[string]string{"Template": cleanTemplate})
	user := prompts.Format(userTmpl, map[string]string{"Topic": topic})

	raw, err := llm.WithRetry(ctx, g.logger, g.maxAttempts, func(ctx context.Context) (string, error) {
		return g.client.Generate(ctx, system, user, llm.GenerationOptions())
	})
	if err != nil {
		return "", err
	}

	tex := latex.SanitizeOutput(raw)
	if err := latex.ValidateDocument(tex); err != nil {
		return "", err
	}
	return tex, nil
}

func (g *Generator) cleanup(id string) {
	if err := g.store.Cleanup(id); err != nil {
		g.logger.Warn("failed to remove partial run directory", "run_id", id, "error", err)
	}
}

func texFilename() string {
	return "research_paper_" + time.Now().Format("20060102_150405") + ".tex"
}
