// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	apperrors "askdb/cli/internal/errors"
	"askdb/cli/internal/query"
	"askdb/cli/internal/sqlexec"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func validFormat(f string) error {
	switch f {
	case formatTable, formatJSON, formatCSV:
		return nil
	}
	return fmt.Errorf("unknown output format %q (use table, json or csv)", f)
}

type outcomeJSON struct {
	ID             string         `json:"id"`
	Question       string         `json:"question,omitempty"`
	Statement      string         `json:"statement"`
	Classification string         `json:"classification"`
	Rewritten      bool           `json:"rewritten"`
	ErrorKind      string         `json:"error_kind,omitempty"`
	Result         sqlexec.Result `json:"result"`
}

// renderOutcome writes out in the given format. Refusals and failures are
// rendered too; the caller decides the exit status from out.Err.
func renderOutcome(w io.Writer, out query.Outcome, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomeJSON{
			ID:             out.ID,
			Question:       out.Question,
			Statement:      out.Statement,
			Classification: out.Classification.String(),
			Rewritten:      out.Rewritten,
			ErrorKind:      string(apperrors.KindOf(out.Err)),
			Result:         out.Result,
		})
	case formatCSV:
		if out.Err != nil {
			renderError(out.Err)
			return nil
		}
		return writeCSV(w, out.Result)
	default:
		renderTable(out)
		return nil
	}
}

func renderTable(out query.Outcome) {
	if out.Question != "" && out.Statement != "" {
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ SQL: ") + pterm.NewStyle(pterm.FgCyan).Sprint(out.Statement))
	}
	if out.Rewritten {
		pterm.Info.Printfln("DELETE converted to a soft delete: %s", out.Statement)
	}
	if out.Err != nil {
		renderError(out.Err)
		return
	}

	res := out.Result
	switch res.Kind {
	case sqlexec.KindRows:
		if len(res.Rows) == 0 {
			pterm.Info.Println("No rows returned")
			return
		}
		data := make(pterm.TableData, 0, len(res.Rows)+1)
		data = append(data, res.Columns)
		for _, row := range res.Rows {
			data = append(data, rowStrings(row))
		}
		_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
		pterm.Printfln("(%d %s)", len(res.Rows), plural(len(res.Rows), "row", "rows"))
	case sqlexec.KindWriteSummary:
		if res.RowsAffected == nil {
			pterm.Success.Println("Statement executed (rows affected unknown)")
			return
		}
		n := *res.RowsAffected
		pterm.Success.Printfln("Statement executed, %d %s affected", n, plural(int(n), "row", "rows"))
	}
}

func renderError(err error) {
	pterm.Error.Println(query.Message(err))
	switch apperrors.KindOf(err) {
	case apperrors.WritePermission:
		pterm.Println("   Log in as administrator and enable write mode (--write, or \\login and \\write on in the shell).")
	case apperrors.UnsafeDelete:
		pterm.Println("   Add a WHERE clause that selects the rows to deactivate.")
	case apperrors.Translation:
		pterm.Println("   Check the model settings with 'askdb connect --llm-key' or ASKDB_LLM_API_KEY.")
	}
}

func writeCSV(w io.Writer, res sqlexec.Result) error {
	cw := csv.NewWriter(w)
	switch res.Kind {
	case sqlexec.KindRows:
		if err := cw.Write(res.Columns); err != nil {
			return err
		}
		for _, row := range res.Rows {
			if err := cw.Write(rowStrings(row)); err != nil {
				return err
			}
		}
	case sqlexec.KindWriteSummary:
		affected := "unknown"
		if res.RowsAffected != nil {
			affected = strconv.FormatInt(*res.RowsAffected, 10)
		}
		if err := cw.WriteAll([][]string{{"rows_affected"}, {affected}}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rowStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = sqlexec.FormatValue(v)
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
