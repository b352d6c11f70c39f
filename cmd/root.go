package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "driver-check",
	Short: "Daily driver licence monitoring for the operator fleet",
	Long: `driver-check ingests the licensing system's daily export, keeps dated
snapshots, diffs each day against the previous one, and reports status,
class, expiry and medical changes to the people who act on them.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
}
