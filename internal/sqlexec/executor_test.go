// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdb/cli/internal/dialect"
	"askdb/cli/internal/dsn"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	ctx := context.Background()

	e, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(e.Close)

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, active INTEGER NOT NULL DEFAULT 1)`,
		`INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace'), (3, 'linus')`,
	} {
		res := e.Execute(ctx, stmt, false)
		require.False(t, res.Failed(), res.Error)
	}
	return e
}

func countUsers(t *testing.T, e *Executor) int64 {
	t.Helper()
	res := e.Execute(context.Background(), "SELECT COUNT(*) FROM users", true)
	require.Equal(t, KindRows, res.Kind, res.Error)
	return res.Rows[0][0].(int64)
}

func TestExecutor_Read(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Execute(context.Background(), "SELECT id, name FROM users ORDER BY id", true)

	require.Equal(t, KindRows, res.Kind, res.Error)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Equal(t, [][]any{
		{int64(1), "ada"},
		{int64(2), "grace"},
		{int64(3), "linus"},
	}, res.Rows)
	assert.Nil(t, res.RowsAffected)
}

func TestExecutor_ReadEmpty(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Execute(context.Background(), "SELECT id FROM users WHERE id > 100", true)

	require.Equal(t, KindRows, res.Kind)
	assert.Equal(t, []string{"id"}, res.Columns)
	assert.Empty(t, res.Rows)
}

func TestExecutor_Write(t *testing.T) {
	e := newTestExecutor(t)
	ctx := context.Background()

	res := e.Execute(ctx, "UPDATE users SET active = 0 WHERE id = 2", false)

	require.Equal(t, KindWriteSummary, res.Kind, res.Error)
	require.NotNil(t, res.RowsAffected)
	assert.Equal(t, int64(1), *res.RowsAffected)

	check := e.Execute(ctx, "SELECT active FROM users WHERE id = 2", true)
	require.Equal(t, KindRows, check.Kind)
	assert.Equal(t, int64(0), check.Rows[0][0])
}

func TestExecutor_DriverErrorBecomesResult(t *testing.T) {
	e := newTestExecutor(t)

	tests := []struct {
		name    string
		stmt    string
		read    bool
		wantMsg string
	}{
		{"unknown table on read", "SELECT * FROM orders", true, "no such table"},
		{"syntax error on write", "UPDAT users SET x = 1", false, "syntax error"},
		{"constraint violation", "INSERT INTO users (id, name) VALUES (1, 'dup')", false, "UNIQUE constraint failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute(context.Background(), tt.stmt, tt.read)
			require.Equal(t, KindError, res.Kind)
			assert.Contains(t, res.Error, tt.wantMsg)
			assert.Nil(t, res.Rows)
			assert.Nil(t, res.RowsAffected)
		})
	}
}

func TestExecutor_FailedWriteLeavesNoTrace(t *testing.T) {
	e := newTestExecutor(t)

	res := e.Execute(context.Background(), "INSERT INTO users (id, name) VALUES (10, 'new'), (1, 'dup')", false)

	require.True(t, res.Failed())
	assert.Equal(t, int64(3), countUsers(t, e))
}

func TestExecutor_CancelledContext(t *testing.T) {
	e := newTestExecutor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Execute(ctx, "SELECT * FROM users", true)

	require.True(t, res.Failed())
	assert.Contains(t, res.Error, "context canceled")
	assert.Equal(t, int64(3), countUsers(t, e))
}

func TestExecutor_Dialect(t *testing.T) {
	e := newTestExecutor(t)
	assert.Equal(t, dsn.DBTypeSQLite, e.DBType())
	assert.Equal(t, dialect.NumericBoolean, e.Dialect())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	e, err := Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, dsn.DBTypeSQLite, e.DBType())

	_, err = Open(ctx, "mongodb://localhost/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection_failed")
}
