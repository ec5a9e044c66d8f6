package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var offline bool

var rootCmd = &cobra.Command{
	Use:   "critic-cli",
	Short: "critic-cli is the command-line interface for Code-Critic.",
	Long:  `A CLI for generating code reviews from local files without going through the HTTP API. Reviews produced here are not persisted.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use the offline heuristic analyzer instead of the remote model")

	if err := viper.BindPFlag("OFFLINE_MODE", rootCmd.PersistentFlags().Lookup("offline")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads ENV variables if set.
func initConfig() {
	viper.AutomaticEnv()
}
