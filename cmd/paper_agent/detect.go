package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kartika/paper-generator/internal/detect"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/pdftext"
	"github.com/kartika/paper-generator/internal/runs"
)

var (
	detectFile       string
	detectRun        string
	detectRunsDir    string
	detectMaxRetries int
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Score a document for AI-generated writing",
	Long:  `Score a LaTeX, plain text, or PDF document for the likelihood it was machine written. PDF input has its text extracted first. Detection runs through Groq and requires GROQ_API_KEY.`,
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFile, "file", "", "Path to a .tex, .txt, or .pdf document")
	detectCmd.Flags().StringVar(&detectRun, "run", "", "Run ID of a previous generation to score")
	detectCmd.Flags().StringVar(&detectRunsDir, "runs-dir", "runs", "Directory generation runs are written under")
	detectCmd.Flags().IntVar(&detectMaxRetries, "max-retries", 3, "Retry ceiling for provider calls")
	detectCmd.MarkFlagsOneRequired("file", "run")
	detectCmd.MarkFlagsMutuallyExclusive("file", "run")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	path := detectFile
	if detectRun != "" {
		found, err := runs.NewStore(detectRunsDir).FindTex(detectRun)
		if err != nil {
			return err
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	text := string(data)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = pdftext.Extract(data)
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	client, err := llm.NewClient(ctx, llm.ProviderGroq, llm.DefaultConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	log := logger.New()
	res, err := detect.New(client, log, detectMaxRetries).Detect(ctx, text)
	if err != nil {
		return fmt.Errorf("detection failed: %s", llm.UserMessage(err))
	}

	fmt.Printf("Score:  %d/100\n", res.Score)
	fmt.Printf("Reason: %s\n", res.Reasoning)
	return nil
}
