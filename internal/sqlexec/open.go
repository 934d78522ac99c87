// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"askdb/cli/internal/dsn"
	apperrors "askdb/cli/internal/errors"
)

// PingTimeout bounds the connectivity check in Open.
const PingTimeout = 5 * time.Second

// Open resolves rawDSN, opens the matching driver and pings the database.
// Errors are of kind connection_failed.
func Open(ctx context.Context, rawDSN string) (*Executor, error) {
	dbType, driverDSN, err := dsn.DriverDSN(rawDSN)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "invalid database connection string", err)
	}

	var e *Executor
	switch dbType {
	case dsn.DBTypePostgreSQL:
		cfg, err := pgxpool.ParseConfig(driverDSN)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ConnectionFailed, "invalid PostgreSQL connection string", err)
		}
		cfg.MaxConns = 4
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ConnectionFailed, "failed to create connection pool", err)
		}
		e = NewPool(pool)
	case dsn.DBTypeMySQL, dsn.DBTypeSQLite:
		db, err := openSQL(ctx, dbType, driverDSN)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ConnectionFailed, fmt.Sprintf("failed to open %s database", dbType), err)
		}
		e = NewDB(db, dbType)
	default:
		return nil, apperrors.New(apperrors.ConnectionFailed, fmt.Sprintf("unsupported database type %q", dbType))
	}

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := e.Ping(pingCtx); err != nil {
		e.Close()
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "database is not reachable", err)
	}
	return e, nil
}

func openSQL(ctx context.Context, dbType dsn.DBType, driverDSN string) (*sql.DB, error) {
	driver := "mysql"
	if dbType == dsn.DBTypeSQLite {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, driverDSN)
	if err != nil {
		return nil, err
	}
	if dbType == dsn.DBTypeSQLite {
		// Single writer avoids SQLITE_BUSY; :memory: databases are per connection.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

// OpenSQLite opens a SQLite database at path, for tests and local files.
func OpenSQLite(ctx context.Context, path string) (*Executor, error) {
	db, err := openSQL(ctx, dsn.DBTypeSQLite, path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ConnectionFailed, "failed to open sqlite database", err)
	}
	return NewDB(db, dsn.DBTypeSQLite), nil
}
