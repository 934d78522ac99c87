// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ResultKind tags which variant of Result is populated.
type ResultKind string

const (
	KindRows         ResultKind = "rows"
	KindWriteSummary ResultKind = "write_summary"
	KindError        ResultKind = "error"
)

// Result is the outcome of one statement: rows for reads, an affected-row
// summary for writes, or the driver's error message. Exactly one variant is set.
type Result struct {
	Kind    ResultKind
	Columns []string
	Rows    [][]any
	// RowsAffected is nil when the driver cannot report a count.
	RowsAffected *int64
	Error        string
}

// RowsResult builds a Rows variant.
func RowsResult(columns []string, rows [][]any) Result {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return Result{Kind: KindRows, Columns: columns, Rows: rows}
}

// WriteResult builds a WriteSummary variant. Pass nil for an unknown count.
func WriteResult(affected *int64) Result {
	return Result{Kind: KindWriteSummary, RowsAffected: affected}
}

// ErrorResult builds an Error variant.
func ErrorResult(msg string) Result {
	return Result{Kind: KindError, Error: msg}
}

// Affected returns a pointer to n for WriteResult.
func Affected(n int64) *int64 { return &n }

// Failed reports whether r is the Error variant.
func (r Result) Failed() bool { return r.Kind == KindError }

type rowsJSON struct {
	Kind    ResultKind `json:"kind"`
	Columns []string   `json:"columns"`
	Rows    [][]any    `json:"rows"`
}

type writeJSON struct {
	Kind         ResultKind `json:"kind"`
	RowsAffected *int64     `json:"rows_affected"`
}

type errorJSON struct {
	Kind  ResultKind `json:"kind"`
	Error string     `json:"error"`
}

// MarshalJSON emits only the fields of the populated variant and converts
// driver byte values into strings.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindRows:
		out := rowsJSON{Kind: r.Kind, Columns: r.Columns, Rows: make([][]any, len(r.Rows))}
		if out.Columns == nil {
			out.Columns = []string{}
		}
		for i, row := range r.Rows {
			out.Rows[i] = make([]any, len(row))
			for j, val := range row {
				out.Rows[i][j] = jsonValue(val)
			}
		}
		return json.Marshal(out)
	case KindWriteSummary:
		return json.Marshal(writeJSON{Kind: r.Kind, RowsAffected: r.RowsAffected})
	default:
		return json.Marshal(errorJSON{Kind: KindError, Error: r.Error})
	}
}

// jsonValue converts values the JSON encoder would otherwise base64 or reject.
func jsonValue(val any) any {
	switch v := val.(type) {
	case []byte:
		if len(v) == 16 {
			return uuid.UUID(v).String()
		}
		return fmt.Sprintf("\\x%x", v)
	case [16]byte:
		return uuid.UUID(v).String()
	default:
		return v
	}
}

// FormatValue renders a cell for text output (tables, CSV).
func FormatValue(val any) string {
	switch v := jsonValue(val).(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
