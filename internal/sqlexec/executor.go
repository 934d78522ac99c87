// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec runs already-vetted statements against a database and turns
// every outcome, including driver failures, into a Result.
//
// Reads run on a single acquired connection. Everything else runs inside a
// transaction that is committed on success and rolled back on any failure.
// The connection is released on every exit path.
package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"askdb/cli/internal/dialect"
	"askdb/cli/internal/dsn"
)

// backend is one driver family.
type backend interface {
	query(ctx context.Context, stmt string) ([]string, [][]any, error)
	// exec returns nil affected when the driver cannot report a count.
	exec(ctx context.Context, stmt string) (*int64, error)
	ping(ctx context.Context) error
	close()
}

// Executor executes statements on a PostgreSQL pool or a database/sql handle.
type Executor struct {
	dbType  dsn.DBType
	backend backend
}

// NewPool creates an Executor from an existing pgx pool.
func NewPool(pool *pgxpool.Pool) *Executor {
	return &Executor{dbType: dsn.DBTypePostgreSQL, backend: &pgxBackend{pool: pool}}
}

// NewDB creates an Executor from a database/sql handle opened with the
// mysql or sqlite driver.
func NewDB(db *sql.DB, dbType dsn.DBType) *Executor {
	return &Executor{dbType: dbType, backend: &sqlBackend{db: db}}
}

// DBType is the connected database family.
func (e *Executor) DBType() dsn.DBType { return e.dbType }

// Dialect resolves the literal dialect of the connection.
func (e *Executor) Dialect() dialect.Dialect { return dialect.Resolve(string(e.dbType)) }

// Ping verifies the connection is usable.
func (e *Executor) Ping(ctx context.Context) error { return e.backend.ping(ctx) }

// Close releases the pool or handle.
func (e *Executor) Close() { e.backend.close() }

// Execute runs stmt. When read is true the statement is a query returning rows;
// otherwise it runs in a transaction and reports the affected-row count.
// Execute never returns a Go error: failures come back as an Error result
// carrying the driver's message.
func (e *Executor) Execute(ctx context.Context, stmt string, read bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("driver panic", "panic", r)
			res = ErrorResult(fmt.Sprintf("driver panic: %v", r))
		}
	}()

	if read {
		cols, rows, err := e.backend.query(ctx, stmt)
		if err != nil {
			slog.Debug("query failed", "error", err)
			return ErrorResult(err.Error())
		}
		slog.Debug("query succeeded", "columns", len(cols), "rows", len(rows))
		return RowsResult(cols, rows)
	}

	affected, err := e.backend.exec(ctx, stmt)
	if err != nil {
		slog.Debug("exec failed, rolled back", "error", err)
		return ErrorResult(err.Error())
	}
	if affected != nil {
		slog.Debug("exec committed", "rows_affected", *affected)
	} else {
		slog.Debug("exec committed", "rows_affected", "unknown")
	}
	return WriteResult(affected)
}
