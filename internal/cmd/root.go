/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "show-manager",
	Short: "Search TV shows and movies and keep a list of favorites",
	Long: `show-manager searches the OMDb (or TMDB) catalog for TV shows and movies
and bookmarks favorites into a local SQLite database.

Run without a command to open the interactive search screen. Every bookmark
change is journaled so the last session can be undone.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runSearchTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	configPath  string
	catalogName string
	logLevel    string
	metricsAddr string
)

func init() {
	// Global flags for all commands
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.show-manager/config.json)")
	rootCmd.PersistentFlags().StringVar(&catalogName, "catalog", "", "Catalog used for searches (omdb or tmdb)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
}
