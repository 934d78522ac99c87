package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "askdb/cli/internal/errors"
	"askdb/cli/internal/query"
	"askdb/cli/internal/sqlexec"
	"askdb/cli/internal/sqlguard"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	res := sqlexec.RowsResult([]string{"id", "name"}, [][]any{{int64(1), "ada, countess"}, {int64(2), nil}})
	require.NoError(t, writeCSV(&buf, res))
	assert.Equal(t, "id,name\n1,\"ada, countess\"\n2,NULL\n", buf.String())

	buf.Reset()
	require.NoError(t, writeCSV(&buf, sqlexec.WriteResult(sqlexec.Affected(3))))
	assert.Equal(t, "rows_affected\n3\n", buf.String())

	buf.Reset()
	require.NoError(t, writeCSV(&buf, sqlexec.WriteResult(nil)))
	assert.Equal(t, "rows_affected\nunknown\n", buf.String())
}

func TestRenderOutcomeJSON(t *testing.T) {
	out := query.Outcome{
		ID:             "req-1",
		Statement:      "DELETE FROM users",
		Classification: sqlguard.WriteGatedRewritten,
		Err:            apperrors.New(apperrors.UnsafeDelete, "DELETE without a WHERE clause is not allowed"),
		Result:         sqlexec.ErrorResult("DELETE without a WHERE clause is not allowed"),
	}
	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, formatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "unsafe_delete", got["error_kind"])
	assert.Equal(t, "write_gated_rewritten", got["classification"])
	assert.Equal(t, map[string]any{"kind": "error", "error": "DELETE without a WHERE clause is not allowed"}, got["result"])
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{formatTable, formatJSON, formatCSV} {
		assert.NoError(t, validFormat(f))
	}
	assert.Error(t, validFormat("xml"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
