package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kartika/paper-generator/internal/config"
	"github.com/kartika/paper-generator/internal/logger"
	"github.com/kartika/paper-generator/internal/server"
)

var (
	servePort     int
	serveConfig   string
	serveTemplate string
	serveRunsDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes paper generation, detection, and artifact download endpoints, plus a small form UI at the root path.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to a JSON config file")
	serveCmd.Flags().StringVar(&serveTemplate, "template", "", "Path to the LaTeX paper template")
	serveCmd.Flags().StringVar(&serveRunsDir, "runs-dir", "", "Directory generation runs are written under")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(serveConfig, func(c *config.Config) {
		if servePort != 0 {
			c.Port = servePort
		}
		if serveTemplate != "" {
			c.Template = serveTemplate
		}
		if serveRunsDir != "" {
			c.RunsDir = serveRunsDir
		}
	})
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:         cfg.Port,
		TemplatePath: cfg.Template,
		RunsDir:      cfg.RunsDir,
		MaxRetries:   cfg.MaxRetries,
		GeminiModel:  cfg.GeminiModel,
		GroqModel:    cfg.GroqModel,
	}, logger.New())

	return srv.Start()
}

// resolveConfig loads the optional config file, applies CLI flag overrides,
// fills defaults, and validates the result.
func resolveConfig(path string, override func(*config.Config)) (config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if override != nil {
		override(cfg)
	}
	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return merged, nil
}
