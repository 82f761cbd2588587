package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "parley-cli",
	Short: "Parley CLI tool",
	Long: `Parley CLI is a command-line companion for a running parley server.

Available commands:
  history    Fetch recent message history for a room

Use "parley-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "Base URL of the parley server")
}
