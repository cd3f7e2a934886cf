package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ai-error-analysis/internal/analyzer"
	"github.com/ai-error-analysis/internal/catalog"
	"github.com/ai-error-analysis/internal/config"
	"github.com/ai-error-analysis/internal/domain"
	"github.com/ai-error-analysis/internal/extract"
	"github.com/ai-error-analysis/internal/logger"
	"github.com/ai-error-analysis/internal/prompt"
	"github.com/ai-error-analysis/internal/provider"
	"github.com/ai-error-analysis/pkg/redact"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	providerID string
	modelID    string
	maxTokens  int
	inputPath  string
	outputPath string
	mockMode   bool
	verbose    bool
)

// inputRecord is the JSON document the CLI consumes, from --input or stdin.
type inputRecord struct {
	BuildInfo struct {
		Pipeline   string `json:"pipeline"`
		Branch     string `json:"branch"`
		Command    string `json:"command"`
		ExitStatus string `json:"exit_status"`
		Phase      string `json:"phase"`
	} `json:"build_info"`
	LogExcerpt string `json:"log_excerpt"`
}

// outputRecord is the JSON document the CLI emits. Failed analyses still
// emit a full record, with the failure described in the analysis fields.
type outputRecord struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Analysis struct {
		RootCause      string   `json:"root_cause"`
		SuggestedFixes []string `json:"suggested_fixes"`
		Confidence     int      `json:"confidence"`
		Severity       string   `json:"severity"`
	} `json:"analysis"`
	Metadata struct {
		AnalysisTime float64 `json:"analysis_time"`
		TokensUsed   int     `json:"tokens_used"`
		Timestamp    string  `json:"timestamp"`
	} `json:"metadata"`
	Error string `json:"error,omitempty"`
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a failed build log with an AI provider",
		Long: `Analyze reads a build failure document (JSON with build_info and
log_excerpt fields) from --input or stdin, sends it to the selected AI
provider, and writes a structured verdict to --output or stdout.

Examples:
  # Analyze a failure document with the default OpenAI model
  ai-error-analysis analyze --provider openai --input failure.json

  # Pipe a document through, selecting a specific model
  cat failure.json | ai-error-analysis analyze --provider anthropic --model claude-3-haiku-20240307

  # Dry run without any API calls
  ai-error-analysis analyze --provider openai --input failure.json --mock`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&providerID, "provider", "", "AI provider (openai, anthropic, gemini)")
	cmd.Flags().StringVar(&modelID, "model", "", "Model identifier (defaults to the provider's default)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", provider.DefaultMaxTokens, "Maximum output tokens")
	cmd.Flags().StringVar(&inputPath, "input", "", "Input file (defaults to stdin)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output file (defaults to stdout)")
	cmd.Flags().BoolVar(&mockMode, "mock", false, "Use a simulated provider, no API calls")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging to stderr")
	_ = cmd.MarkFlagRequired("provider")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	zlog := zap.NewNop()
	if verbose {
		var err error
		if zlog, err = logger.New(true); err != nil {
			return err
		}
		defer zlog.Sync()
	}

	in, err := readInput(inputPath)
	if err != nil {
		return err
	}

	apiKey := config.LookupCredential(providerID)
	if apiKey == "" && !mockMode {
		return fmt.Errorf("no API key found: set AI_ERROR_ANALYSIS_API_KEY or the provider variable (e.g. %s_API_KEY)", strings.ToUpper(providerID))
	}

	core, err := newCore(apiKey, zlog)
	if err != nil {
		return err
	}

	redactor := redact.New(0)
	buildCtx := domain.BuildContext{
		Pipeline:   in.BuildInfo.Pipeline,
		Branch:     in.BuildInfo.Branch,
		Command:    in.BuildInfo.Command,
		ExitStatus: in.BuildInfo.ExitStatus,
		Phase:      in.BuildInfo.Phase,
		LogExcerpt: redactor.Redact(in.LogExcerpt),
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Analyzing build failure with %s...", providerID)
	s.Start()

	result, err := core.Analyze(context.Background(), providerID, modelID, maxTokens, buildCtx)
	s.Stop()

	if err != nil {
		printError(fmt.Sprintf("Analysis failed: %v", err))
		if werr := writeErrorRecord(outputPath, providerID, modelID, err); werr != nil {
			return werr
		}
		// Returning the error exits 1 via Execute, after deferred cleanup.
		return err
	}

	printSuccess("Analysis complete")
	printSummary(result)

	return writeOutput(outputPath, toRecord(result))
}

func newCore(apiKey string, zlog *zap.Logger) (*analyzer.Orchestrator, error) {
	prompts, err := prompt.NewBuilder(prompt.DefaultLogBudget)
	if err != nil {
		return nil, err
	}

	clientConf := provider.Config{APIKey: apiKey}
	if mockMode {
		factory := func(catalog.Entry, provider.Config, *zap.Logger) (provider.Client, error) {
			return provider.NewMock(zlog), nil
		}
		return analyzer.NewWithFactory(
			catalog.New(), prompts, extract.NewExtractor(zlog),
			factory, clientConf, zlog,
		), nil
	}
	return analyzer.New(catalog.New(), prompts, extract.NewExtractor(zlog), clientConf, zlog), nil
}

func readInput(path string) (*inputRecord, error) {
	var data []byte
	var err error

	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var in inputRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse input document: %w", err)
	}
	return &in, nil
}

func writeOutput(path string, record outputRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeErrorRecord emits a full output record for a failed analysis so
// downstream consumers always get a parseable document.
func writeErrorRecord(path, providerID, modelID string, cause error) error {
	record := toRecord(analyzer.ErrorResult(providerID, modelID, cause))
	record.Error = cause.Error()
	return writeOutput(path, record)
}

func toRecord(result *domain.AnalysisResult) outputRecord {
	var record outputRecord
	record.Provider = result.Provider
	record.Model = result.Model
	record.Analysis.RootCause = result.RootCause
	record.Analysis.SuggestedFixes = result.SuggestedFixes
	record.Analysis.Confidence = result.Confidence
	record.Analysis.Severity = string(result.Severity)
	record.Metadata.AnalysisTime = result.AnalysisTime.Seconds()
	record.Metadata.TokensUsed = result.TokensUsed
	record.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return record
}

func printSummary(result *domain.AnalysisResult) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(os.Stderr)
	cyan.Fprintln(os.Stderr, "Build Failure Analysis")
	fmt.Fprintf(os.Stderr, "Provider:   %s (%s)\n", result.Provider, result.Model)
	fmt.Fprintf(os.Stderr, "Root cause: %s\n", result.RootCause)
	for i, fix := range result.SuggestedFixes {
		fmt.Fprintf(os.Stderr, "Fix %d:      %s\n", i+1, fix)
	}
	fmt.Fprintf(os.Stderr, "Confidence: %d%%\n", result.Confidence)
	fmt.Fprintf(os.Stderr, "Severity:   %s\n", severityColor(result.Severity).Sprint(result.Severity))
	fmt.Fprintln(os.Stderr)
}

func severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityHigh:
		return color.New(color.FgRed, color.Bold)
	case domain.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func printSuccess(msg string) {
	color.New(color.FgGreen).Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printError(msg string) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", msg)
}
