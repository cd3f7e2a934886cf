// AI Error Analysis - CLI Entry Point
//
// Analyzes a failed CI build log from a file or stdin and emits a
// structured JSON verdict.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "v0.1.0" // Overwritten at build time

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ai-error-analysis",
		Short: "AI-powered CI build failure analysis",
		Long: `ai-error-analysis sends a failed build's log excerpt to an AI provider
(OpenAI, Anthropic or Gemini) and extracts a structured verdict: root
cause, suggested fixes, confidence and severity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newModelsCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ai-error-analysis version %s\n", version)
		},
	}
}
