package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formwork",
	Short: "Formwork is a document store for visual form designers",
	Long: `Formwork keeps form definitions (component trees laid out on a canvas) and edits
them through designer commands. Forms can be served over HTTP or MCP, inspected,
validated and converted between JSON and YAML.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "formwork.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("dir", "", "Directory holding stored forms (overrides storage.path)")
	rootCmd.PersistentFlags().String("driver", "", "Storage driver: memory, file or redis (overrides storage.driver)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
}
