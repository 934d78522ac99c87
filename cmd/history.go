// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"askdb/cli/internal/history"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd prints the newest audit log entries.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed and refused statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := history.OpenDefault()
		if err != nil {
			return err
		}
		entries, err := log.Recent(historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			for _, e := range entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		}
		if len(entries) == 0 {
			pterm.Info.Printfln("No history yet (%s)", log.Path())
			return nil
		}
		renderHistory(entries)
		return nil
	},
}

func renderHistory(entries []history.Entry) {
	data := pterm.TableData{{"Time", "Source", "Classification", "Result", "Statement"}}
	for _, e := range entries {
		result := e.Result
		switch {
		case e.ErrorKind != "":
			result = e.ErrorKind
		case e.RowsAffected != nil:
			result += " (" + strconv.FormatInt(*e.RowsAffected, 10) + ")"
		case e.Result == "rows":
			result += " (" + strconv.Itoa(e.Rows) + ")"
		}
		stmt := e.Statement
		if stmt == "" {
			stmt = e.Input
		}
		if e.Rewritten {
			stmt = "[soft] " + stmt
		}
		data = append(data, []string{
			e.Time.Local().Format("2006-01-02 15:04:05"),
			e.Source,
			e.Classification,
			result,
			truncate(strings.Join(strings.Fields(stmt), " "), 80),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print raw JSON lines")
}
