// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"askdb/cli/internal/query"
)

var (
	queryWrite bool

	errRefused = errors.New("statement was not executed successfully")
)

// queryCmd runs one SQL statement through the safety gate.
var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a SQL statement through the safety gate",
	Long: `The query command runs one SQL statement. Reads always run. Writes require
--write, which prompts for administrator credentials; without it they are refused.
DELETE statements are converted to soft deletes and DROP, TRUNCATE and ALTER
are always refused.

Use "-" to read the statement from stdin.`,
	Example: `  askdb query "SELECT * FROM users LIMIT 10"
  askdb query --write "DELETE FROM users WHERE id = 5"
  askdb query -o csv "SELECT * FROM orders" > orders.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validFormat(outputFormat()); err != nil {
			return err
		}
		stmt := strings.Join(args, " ")
		if stmt == "-" {
			b, err := readAllStdin()
			if err != nil {
				return err
			}
			stmt = b
		}
		return runOneShot(cmd, "query", func(svc *query.Service, write bool) query.Outcome {
			return svc.Run(cmd.Context(), stmt, write)
		})
	},
}

// runOneShot opens the database, optionally authenticates for writes, runs fn
// and renders the outcome.
func runOneShot(cmd *cobra.Command, source string, fn func(svc *query.Service, write bool) query.Outcome) error {
	write := false
	if queryWrite {
		s, err := adminSession()
		if err != nil {
			return err
		}
		write = s.WritePermission()
	}

	conn, err := openConn(cmd.Context(), source)
	if err != nil {
		return err
	}
	defer conn.Close()

	out := fn(conn.service, write)
	if err := renderOutcome(os.Stdout, out, outputFormat()); err != nil {
		return err
	}
	if out.Err != nil {
		return errRefused
	}
	return nil
}

func readAllStdin() (string, error) {
	var b strings.Builder
	p := promptIn()
	for {
		line, err := p.ReadLine("")
		if err != nil {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("no statement on stdin")
	}
	return b.String(), nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().BoolVarP(&queryWrite, "write", "w", false, "Authenticate as administrator and allow writes")
	queryCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output format: table, json or csv")
}
