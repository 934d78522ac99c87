// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema lists the tables and columns of the connected database. The
// listing feeds the translation prompt and the tables command; it is read
// through the same executor as user queries.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"askdb/cli/internal/dsn"
	apperrors "askdb/cli/internal/errors"
	"askdb/cli/internal/sqlexec"
)

// Runner is the slice of sqlexec.Executor the inspector needs.
type Runner interface {
	Execute(ctx context.Context, stmt string, read bool) sqlexec.Result
	DBType() dsn.DBType
}

// Column is one table column.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// Table is a table with its columns in ordinal order. Name is schema-qualified
// for PostgreSQL tables outside the public schema.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// HasColumn reports whether the table has a column named name (case-insensitive).
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// Catalog queries return rows of (table, column, type, is_primary_key).
const (
	postgresCatalog = `
		SELECT CASE WHEN c.table_schema = 'public' THEN c.table_name ELSE c.table_schema || '.' || c.table_name END,
		       c.column_name,
		       c.data_type,
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kc
		             ON tc.constraint_name = kc.constraint_name AND tc.table_schema = kc.table_schema
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND kc.table_schema = c.table_schema AND kc.table_name = c.table_name
		             AND kc.column_name = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY c.table_schema, c.table_name, c.ordinal_position`

	mysqlCatalog = `
		SELECT table_name, column_name, data_type, column_key = 'PRI'
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position`

	sqliteCatalog = `
		SELECT m.name, p.name, p.type, p.pk > 0
		FROM sqlite_master m
		JOIN pragma_table_info(m.name) p
		WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%'
		ORDER BY m.name, p.cid`
)

func catalogQuery(t dsn.DBType) (string, bool) {
	switch t {
	case dsn.DBTypePostgreSQL:
		return postgresCatalog, true
	case dsn.DBTypeMySQL:
		return mysqlCatalog, true
	case dsn.DBTypeSQLite:
		return sqliteCatalog, true
	}
	return "", false
}

// Inspector reads and caches the table listing.
type Inspector struct {
	runner Runner
	mu     sync.RWMutex
	tables []Table
	loaded bool
}

// NewInspector creates an Inspector over runner.
func NewInspector(runner Runner) *Inspector {
	return &Inspector{runner: runner}
}

// Tables returns every user table, loading the catalog on first use.
func (i *Inspector) Tables(ctx context.Context) ([]Table, error) {
	i.mu.RLock()
	if i.loaded {
		tables := i.tables
		i.mu.RUnlock()
		return tables, nil
	}
	i.mu.RUnlock()

	q, ok := catalogQuery(i.runner.DBType())
	if !ok {
		return nil, apperrors.New(apperrors.Execution, fmt.Sprintf("schema listing is not supported for %s", i.runner.DBType()))
	}
	res := i.runner.Execute(ctx, q, true)
	if res.Failed() {
		return nil, apperrors.Wrap(apperrors.Execution, "failed to read schema", fmt.Errorf("%s", res.Error))
	}

	tables := groupColumns(res.Rows)
	slog.Debug("schema loaded", "tables", len(tables))

	i.mu.Lock()
	i.tables = tables
	i.loaded = true
	i.mu.Unlock()
	return tables, nil
}

// Preview maps each table name to its column names.
func (i *Inspector) Preview(ctx context.Context) (map[string][]string, error) {
	tables, err := i.Tables(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(tables))
	for _, t := range tables {
		cols := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			cols[j] = c.Name
		}
		out[t.Name] = cols
	}
	return out, nil
}

// Table returns one table by name (case-insensitive, quotes ignored).
func (i *Inspector) Table(ctx context.Context, name string) (Table, bool, error) {
	tables, err := i.Tables(ctx)
	if err != nil {
		return Table{}, false, err
	}
	name = strings.Trim(name, "\"`[]")
	for _, t := range tables {
		if strings.EqualFold(t.Name, name) {
			return t, true, nil
		}
	}
	return Table{}, false, nil
}

// Describe renders the schema as prompt text, one table per line:
// users(id INTEGER, name TEXT).
func (i *Inspector) Describe(ctx context.Context) (string, error) {
	tables, err := i.Tables(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, t := range tables {
		b.WriteString(t.Name)
		b.WriteString("(")
		for j, c := range t.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Name)
			if c.Type != "" {
				b.WriteString(" ")
				b.WriteString(c.Type)
			}
		}
		b.WriteString(")\n")
	}
	return b.String(), nil
}

// ClearCache drops the cached listing, for use after schema changes.
func (i *Inspector) ClearCache() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tables = nil
	i.loaded = false
}

// groupColumns folds catalog rows into tables, keeping row order.
func groupColumns(rows [][]any) []Table {
	var tables []Table
	index := map[string]int{}
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		table := sqlexec.FormatValue(row[0])
		col := Column{
			Name:       sqlexec.FormatValue(row[1]),
			Type:       strings.ToUpper(sqlexec.FormatValue(row[2])),
			PrimaryKey: truthy(row[3]),
		}
		pos, ok := index[table]
		if !ok {
			pos = len(tables)
			index[table] = pos
			tables = append(tables, Table{Name: table})
		}
		tables[pos].Columns = append(tables[pos].Columns, col)
	}
	sort.SliceStable(tables, func(a, b int) bool { return tables[a].Name < tables[b].Name })
	return tables
}

// truthy reads boolean catalog columns, which arrive as bool or 0/1 depending on the driver.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int32:
		return b != 0
	case string:
		return b == "1" || strings.EqualFold(b, "true")
	}
	return false
}
