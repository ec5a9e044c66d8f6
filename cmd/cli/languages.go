package main

import (
	"github.com/spf13/cobra"

	"github.com/sevigo/code-critic/internal/review"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the language tags the review pipeline accepts",
	Run: func(_ *cobra.Command, _ []string) {
		titleColor.Println("Supported languages:")
		for _, l := range review.SupportedLanguages {
			infoColor.Printf("  %s\n", l)
		}
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(languagesCmd)
}
