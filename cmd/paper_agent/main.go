// Package main provides the entry point for the research paper generator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paper_agent",
	Short: "Research paper generator and AI-writing detector",
	Long:  "paper_agent generates complete LaTeX research papers on a topic via LLM providers, compiles them to PDF, and scores documents for the likelihood they were machine written.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
