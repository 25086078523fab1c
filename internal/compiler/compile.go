package compiler

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kartika/paper-generator/internal/logger"
)

// texliveImage is the container image used when no local pdflatex exists.
const texliveImage = "texlive/texlive:latest"

// Compiler builds PDFs from LaTeX documents. The backend is selected once
// per call: the local toolchain when pdflatex is on PATH, the container
// fallback otherwise. There is no retry across backends.
type Compiler struct {
	logger *logger.AppLogger
}

// New returns a Compiler that logs through the given logger.
func New(log *logger.AppLogger) *Compiler {
	return &Compiler{logger: log}
}

// LocalAvailable reports whether a local pdflatex can be located.
func LocalAvailable() bool {
	_, err := exec.LookPath("pdflatex")
	return err == nil
}

// Compile builds texPath into a PDF under exportDir and returns the PDF
// path together with the captured toolchain output. workDir is the
// directory mounted into the container on the fallback path; it must be a
// parent of both texPath and exportDir. Success is determined by the
// existence of the expected PDF on disk, not by process exit codes: the
// toolchain may exit non-zero on an intermediate pass while still emitting
// a usable artifact.
func (c *Compiler) Compile(ctx context.Context, texPath, exportDir, workDir string) (string, string, error) {
	if LocalAvailable() {
		return c.compileLocal(ctx, texPath, exportDir)
	}
	return c.compileDocker(ctx, texPath, exportDir, workDir)
}

// compileLocal drives the local pdflatex: a strict halt-on-error first
// pass, a permissive re-run when that pass fails (bibliography problems
// routinely stall the strict mode), and always a permissive second pass to
// resolve cross-references.
func (c *Compiler) compileLocal(ctx context.Context, texPath, exportDir string) (string, string, error) {
	texAbs, err := filepath.Abs(texPath)
	if err != nil {
		return "", "", &CompilationError{Message: "resolving document path", Cause: err}
	}
	exportAbs, err := filepath.Abs(exportDir)
	if err != nil {
		return "", "", &CompilationError{Message: "resolving export path", Cause: err}
	}
	if err := os.MkdirAll(exportAbs, 0755); err != nil {
		return "", "", &CompilationError{Message: "creating export directory", Cause: err}
	}

	jobname := strings.TrimSuffix(filepath.Base(texAbs), ".tex")
	strict := []string{
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory=" + exportAbs,
		"-jobname=" + jobname,
		texAbs,
	}
	permissive := []string{
		"-interaction=nonstopmode",
		"-output-directory=" + exportAbs,
		"-jobname=" + jobname,
		texAbs,
	}

	var log strings.Builder

	if err := c.runPass(ctx, &log, exportAbs, strict, false); err != nil {
		c.logger.Warn("first LaTeX pass failed, retrying without halt-on-error", "jobname", jobname, "error", err)
		_ = c.runPass(ctx, &log, exportAbs, permissive, true)
	}

	// Second pass regardless of the first pass outcome.
	_ = c.runPass(ctx, &log, exportAbs, permissive, true)

	pdfPath := filepath.Join(exportAbs, jobname+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", log.String(), &CompilationError{
			Message:   "PDF was not generated",
			LogOutput: log.String(),
		}
	}
	return pdfPath, log.String(), nil
}

// compileDocker mounts workDir read/write into a texlive container and runs
// the same two-pass build. An absent container runtime is a configuration
// error distinguishable from a compilation failure.
func (c *Compiler) compileDocker(ctx context.Context, texPath, exportDir, workDir string) (string, string, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return "", "", &RuntimeMissingError{Runtime: "docker", Cause: err}
	}

	workAbs, err := filepath.Abs(workDir)
	if err != nil {
		return "", "", &CompilationError{Message: "resolving work directory", Cause: err}
	}
	texAbs, err := filepath.Abs(texPath)
	if err != nil {
		return "", "", &CompilationError{Message: "resolving document path", Cause: err}
	}
	exportAbs, err := filepath.Abs(exportDir)
	if err != nil {
		return "", "", &CompilationError{Message: "resolving export path", Cause: err}
	}
	if err := os.MkdirAll(exportAbs, 0755); err != nil {
		return "", "", &CompilationError{Message: "creating export directory", Cause: err}
	}

	relTex, err := filepath.Rel(workAbs, texAbs)
	if err != nil {
		return "", "", &CompilationError{Message: "document path outside work directory", Cause: err}
	}
	relExport, err := filepath.Rel(workAbs, exportAbs)
	if err != nil {
		return "", "", &CompilationError{Message: "export path outside work directory", Cause: err}
	}

	jobname := strings.TrimSuffix(filepath.Base(texAbs), ".tex")
	args := []string{
		"run", "--rm",
		"-v", workAbs + ":/workdir",
		"-w", "/workdir",
		texliveImage,
		"pdflatex", "-interaction=nonstopmode", "-halt-on-error",
		"-output-directory=/workdir/" + filepath.ToSlash(relExport),
		"-jobname=" + jobname,
		"/workdir/" + filepath.ToSlash(relTex),
	}

	var log strings.Builder
	for pass := 0; pass < 2; pass++ {
		cmd := exec.CommandContext(ctx, "docker", args...)
		var out strings.Builder
		cmd.Stdout = &out
		cmd.Stderr = &out
		if err := cmd.Run(); err != nil {
			c.logger.Warn("containerized LaTeX pass exited non-zero", "pass", pass+1, "jobname", jobname, "error", err)
		}
		log.WriteString(out.String())
	}

	pdfPath := filepath.Join(exportAbs, jobname+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", log.String(), &CompilationError{
			Message:   "PDF was not generated by containerized build",
			LogOutput: log.String(),
		}
	}
	return pdfPath, log.String(), nil
}

// runPass executes one pdflatex invocation, appending its combined output
// to log. feedNewline answers any interactive prompt the permissive mode
// might still raise.
func (c *Compiler) runPass(ctx context.Context, log *strings.Builder, dir string, args []string, feedNewline bool) error {
	cmd := exec.CommandContext(ctx, "pdflatex", args...)
	cmd.Dir = dir
	if feedNewline {
		cmd.Stdin = strings.NewReader("\n")
	}
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	log.WriteString(out.String())
	return err
}
