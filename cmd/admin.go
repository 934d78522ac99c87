// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"askdb/cli/internal/keychain"
	"askdb/cli/internal/session"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the administrator account that can enable write mode",
}

var adminInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or replace the administrator account",
	Long: `The init command stores an administrator user name and a bcrypt hash of the
password in the OS keychain. Only an administrator can enable write mode.

Alternatively set ASKDB_ADMIN_USER and ASKDB_ADMIN_PASSWORD in the environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := promptIn()
		user, err := p.ReadLine("Admin user: ")
		if err != nil {
			return err
		}
		if user == "" {
			return errors.New("user name is required")
		}
		pass, err := p.ReadSecret("Password (min. 8 characters): ")
		if err != nil {
			return err
		}
		confirm, err := p.ReadSecret("Repeat password: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passwords do not match")
		}
		hash, err := session.HashPassword(pass)
		if err != nil {
			return err
		}

		km, err := keychain.GetManager()
		if err != nil {
			fmt.Println("❌ Secure storage is not available on this system.")
			fmt.Printf("   Set %s and %s instead.\n", session.EnvAdminUser, session.EnvAdminPassword)
			return err
		}
		if err := km.SaveAdmin(user, hash); err != nil {
			return err
		}
		fmt.Printf("✅ Administrator %q saved\n", user)
		return nil
	},
}

var adminClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		km, err := keychain.GetManager()
		if err != nil {
			return err
		}
		if err := km.ClearAdmin(); err != nil {
			return err
		}
		fmt.Println("✅ Administrator account removed")
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminInitCmd, adminClearCmd)
	rootCmd.AddCommand(adminCmd)
}
