// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"askdb/cli/internal/keychain"
)

// logoutCmd removes every secret askdb stored in the OS keychain.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove all saved credentials",
	Long: `The logout command clears everything askdb stored in the OS keychain:

- the database connection string
- the administrator account
- the translation model API key

Write mode is never stored, so there is nothing else to reset.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearAll(); err != nil {
			return err
		}
		fmt.Println("✅ All saved credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
