// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of askdb. It implements
// subcommands for connecting to a database, running SQL or natural-language
// questions through the safety gate, managing the administrator account and
// serving the HTTP API, using the Cobra CLI framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"askdb/cli/internal/config"
	"askdb/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	outputFlag  string

	// cfg is loaded once before any subcommand runs.
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "askdb",
	Short: "Ask your database questions in plain English, safely",
	Long: `askdb turns questions into SQL, checks every statement against a safety gate
and runs it on PostgreSQL, MySQL or SQLite.

Reads are always allowed. Writes need an administrator to enable write mode,
DELETE statements become soft deletes, and DROP, TRUNCATE and ALTER are never run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			pterm.Warning.Printf("Could not read config, using defaults: %v\n", err)
		}
		cfg = loaded

		level := logging.ParseLevel(cfg.LogLevel)
		if verbose {
			level = logging.ParseLevel("debug")
		}
		format := logging.FormatText
		if cmd.Name() == "serve" && !verbose {
			format = logging.FormatJSON
		}
		logging.Setup(level, format)
		if verbose {
			pterm.EnableDebugMessages()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("askdb %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// outputFormat returns the --output flag or the configured default.
func outputFormat() string {
	if outputFlag != "" {
		return outputFlag
	}
	return cfg.Output
}
