// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"askdb/cli/internal/dsn"
	"askdb/cli/internal/logging"
)

// dbinfoCmd shows the configured connection with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show current database connection string",
	Long: `The dbinfo command displays the configured database connection string (DSN)
with user name and password masked, along with the detected database type and
the boolean dialect used for soft deletes.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		raw, source, err := resolveDSN()
		if err != nil {
			if errors.Is(err, errNoDatabase) {
				pterm.Println("⚠️  No database connection configured")
				pterm.Println("   Please run: askdb connect")
				return nil
			}
			pterm.Println("❌ Secure storage is not available on this system")
			return err
		}
		pterm.Printfln("Using DSN from %s", source)
		pterm.Println()

		dbType := dsn.DetectDBType(raw)
		body := logging.Mask(raw)
		if info, err := dsn.ParseInfo(raw); err == nil && info.Database != "" {
			body += "\n\nDatabase: " + info.Database
		}
		body += "\nType:     " + string(dbType)
		body += "\nDialect:  " + dialectFor(dbType)

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Println(body)
		pterm.Println()
		pterm.Println("To update this connection, run: askdb connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
