package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kartika/paper-generator/internal/compiler"
	"github.com/kartika/paper-generator/internal/config"
	"github.com/kartika/paper-generator/internal/llm"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/pipeline"
	"github.com/kartika/paper-generator/internal/runs"
	"github.com/kartika/paper-generator/internal/types"
)

var (
	generateTopic    string
	generateProvider string
	generateConfig   string
	generateTemplate string
	generateRunsDir  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a research paper on a topic",
	Long:  `Generate a complete LaTeX research paper on the given topic, write it under a run directory, and attempt a PDF build.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "Paper topic (required)")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "Gemini", "LLM provider: Gemini or Groq")
	generateCmd.Flags().StringVar(&generateConfig, "config", "", "Path to a JSON config file")
	generateCmd.Flags().StringVar(&generateTemplate, "template", "", "Path to the LaTeX paper template")
	generateCmd.Flags().StringVar(&generateRunsDir, "runs-dir", "", "Directory generation runs are written under")
	_ = generateCmd.MarkFlagRequired("topic")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	req := types.GenerateRequest{Topic: generateTopic, Provider: generateProvider}
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := resolveConfig(generateConfig, func(c *config.Config) {
		if generateTemplate != "" {
			c.Template = generateTemplate
		}
		if generateRunsDir != "" {
			c.RunsDir = generateRunsDir
		}
	})
	if err != nil {
		return err
	}

	log := logger.New()
	ctx := cmd.Context()

	client, err := llm.NewClient(ctx, llm.Provider(req.Provider), &llm.Config{
		GeminiModel: cfg.GeminiModel,
		GroqModel:   cfg.GroqModel,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	store := runs.NewStore(cfg.RunsDir)
	gen := pipeline.NewGenerator(client, compiler.New(log), store, log, cfg.Template, cfg.MaxRetries)

	res, err := gen.Generate(ctx, req.Topic)
	if err != nil {
		return fmt.Errorf("generation failed: %s", llm.UserMessage(err))
	}

	fmt.Printf("Run %s complete.\n", res.Run.ID)
	fmt.Printf("LaTeX: %s\n", res.Run.TexPath)
	if res.Run.PDFPath != "" {
		fmt.Printf("PDF:   %s\n", res.Run.PDFPath)
	} else {
		fmt.Println("PDF:   not produced (compilation failed or no toolchain)")
	}
	return nil
}
