// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sqlBackend serves MySQL and SQLite through database/sql.
type sqlBackend struct {
	db *sql.DB
}

func (b *sqlBackend) query(ctx context.Context, stmt string) ([]string, [][]any, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, err
	}

	out := [][]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range vals {
			vals[i] = textValue(v, types[i])
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return cols, out, nil
}

// textValue turns the []byte MySQL returns for character columns into a string.
// Binary column types keep their bytes.
func textValue(v any, ct *sql.ColumnType) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	name := strings.ToUpper(ct.DatabaseTypeName())
	if strings.Contains(name, "BLOB") || strings.Contains(name, "BINARY") || name == "BIT" {
		return append([]byte(nil), b...)
	}
	return string(b)
}

func (b *sqlBackend) exec(ctx context.Context, stmt string) (*int64, error) {
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // no-op after Commit

	res, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, nil
	}
	return &n, nil
}

func (b *sqlBackend) ping(ctx context.Context) error { return b.db.PingContext(ctx) }

func (b *sqlBackend) close() { b.db.Close() }
