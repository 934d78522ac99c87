// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"askdb/cli/internal/schema"
)

var (
	tablesSample string
	sampleLimit  int
)

// tablesCmd lists tables and columns, or previews rows of one table.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables and columns of the connected database",
	Example: `  askdb tables
  askdb tables --sample users --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openConn(cmd.Context(), "tables")
		if err != nil {
			return err
		}
		defer conn.Close()

		if tablesSample != "" {
			out := conn.service.Sample(cmd.Context(), tablesSample, sampleLimit)
			if err := renderOutcome(os.Stdout, out, outputFormat()); err != nil {
				return err
			}
			if out.Err != nil {
				return errRefused
			}
			return nil
		}

		tables, err := conn.inspector.Tables(cmd.Context())
		if err != nil {
			return err
		}
		renderTables(tables)
		return nil
	},
}

func renderTables(tables []schema.Table) {
	if len(tables) == 0 {
		pterm.Info.Println("The database has no tables")
		return
	}
	data := pterm.TableData{{"Table", "Columns"}}
	for _, t := range tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name
			if c.PrimaryKey {
				cols[i] += "*"
			}
		}
		data = append(data, []string{t.Name, strings.Join(cols, ", ")})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
	pterm.Println("* primary key")
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().StringVar(&tablesSample, "sample", "", "Show the first rows of this table")
	tablesCmd.Flags().IntVar(&sampleLimit, "limit", 5, "Rows to show with --sample")
	tablesCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output format for --sample: table, json or csv")
}
