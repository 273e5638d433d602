package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/threadlens/threadlens/internal/buildcfg"
)

func newBuildConfigCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build-config",
		Short: "Generate the public widget configuration file",
		Long: `Build-config writes the non-secret widget configuration to a JSON file.
API credentials are never written to the file; the widget talks to the
backend proxy instead. MISSIVE_API_TOKEN must be set so the build fails
fast when the backend would be unusable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := buildcfg.Generate(output)
			if err != nil {
				return err
			}

			fmt.Printf("wrote %s (host token: %t, completion key: %t)\n",
				output, cfg.HasAPIToken, cfg.HasOpenAIKey)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "config.json", "Path of the generated configuration file")

	return cmd
}
