package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/code-critic/internal/config"
	"github.com/sevigo/code-critic/internal/core"
	"github.com/sevigo/code-critic/internal/llm"
	"github.com/sevigo/code-critic/internal/logger"
	"github.com/sevigo/code-critic/internal/review"
)

var langFlag string

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Generate a code review for a local source file",
	Long: `Generate a code review for a local source file.

The language is inferred from the file extension unless --lang is given.
With --offline the built-in heuristic analyzer is used and no model
endpoint or API key is needed.

Examples:
  critic-cli review main.py
  critic-cli review --lang c++ matrix.cc
  critic-cli review --offline script.js`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Language of the snippet (default: inferred from the file extension)")
	rootCmd.AddCommand(reviewCmd)
}

// extLanguages maps file extensions to the language tags the pipeline accepts.
var extLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".java": "java",
	".cpp":  "c++",
	".cc":   "c++",
	".cxx":  "c++",
	".hpp":  "c++",
	".c":    "c",
	".h":    "c",
	".go":   "go",
	".rs":   "rust",
	".rb":   "ruby",
	".php":  "php",
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	language := langFlag
	if language == "" {
		ext := strings.ToLower(filepath.Ext(path))
		language = extLanguages[ext]
		if language == "" {
			return fmt.Errorf("cannot infer language from %q, pass --lang\n\nSupported: %s",
				filepath.Base(path), strings.Join(review.SupportedLanguages, ", "))
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\n\nTip: set LLM_BASE_URL and LLM_API_KEY, or pass --offline", err)
	}

	log := logger.NewLogger(cfg.Logging, os.Stderr)
	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		return fmt.Errorf("failed to create prompt manager: %w", err)
	}

	var gateway review.ModelGateway
	if !cfg.OfflineMode {
		gateway = llm.NewClient(cfg, log)
	}

	// No store: CLI reviews are printed, never persisted.
	svc := review.NewService(cfg, promptMgr, gateway, nil, log)

	titleColor.Println("🔍 Code Critic")
	dimColor.Printf("   File: %s (%s)\n", path, language)
	if cfg.OfflineMode {
		dimColor.Println("   Mode: offline heuristics")
	} else {
		dimColor.Printf("   Mode: %s\n", cfg.LLMModel)
	}
	fmt.Println()

	result, err := svc.Generate(ctx, core.ReviewRequest{Code: string(code), Language: language})
	if err != nil {
		var invalid *core.InvalidInputError
		if errors.As(err, &invalid) {
			return fmt.Errorf("invalid input: %s", invalid.Message)
		}
		return fmt.Errorf("failed to generate review: %w\n\nTip: check that the model endpoint is reachable", err)
	}

	printReview(result)
	return nil
}

func printReview(r *core.StructuredReview) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	titleColor.Println(separator)
	titleColor.Println("📋 REVIEW SUMMARY")
	titleColor.Println(separator)
	fmt.Println()
	scoreColor(r.QualityScore).Printf("Quality score: %.1f / 10\n", r.QualityScore)
	fmt.Println()
	infoColor.Println(r.ReviewText)

	if len(r.PotentialBugs) > 0 {
		fmt.Println()
		errorColor.Println(thinSeparator)
		errorColor.Printf("🐛 POTENTIAL BUGS (%d)\n", len(r.PotentialBugs))
		errorColor.Println(thinSeparator)
		for _, b := range r.PotentialBugs {
			infoColor.Printf("  • %s\n", b)
		}
	}

	if len(r.Suggestions) > 0 {
		fmt.Println()
		warnColor.Println(thinSeparator)
		warnColor.Printf("💡 SUGGESTIONS (%d)\n", len(r.Suggestions))
		warnColor.Println(thinSeparator)
		for _, s := range r.Suggestions {
			infoColor.Printf("  • %s\n", s)
		}
	}

	if len(r.Strengths) > 0 {
		fmt.Println()
		successColor.Println(thinSeparator)
		successColor.Printf("✅ STRENGTHS (%d)\n", len(r.Strengths))
		successColor.Println(thinSeparator)
		for _, s := range r.Strengths {
			infoColor.Printf("  • %s\n", s)
		}
	}

	if r.Reasoning != "" {
		fmt.Println()
		dimColor.Println("Reasoning:")
		dimColor.Println(r.Reasoning)
	}
	fmt.Println()
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 8:
		return successColor
	case score >= 5:
		return warnColor
	default:
		return errorColor
	}
}
