package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the threadlens application
var rootCmd = &cobra.Command{
	Use:   "threadlens",
	Short: "Summarizes Missive conversations with tone detection and task capture",
	Long: `threadlens turns a selected Missive conversation into a structured
summary: an overall tone with a confidence score, key decision and action
item sections, and one-click task creation with assignee detection.

It can run as:
  - A backend for the conversation widget (serve)
  - A one-shot summarizer for a single conversation (summarize)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "threadlens version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSummarizeCmd())
	rootCmd.AddCommand(newBuildConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}
