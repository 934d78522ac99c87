// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

var sqliteSuffixes = []string{".db", ".sqlite", ".sqlite3"}

// SQLiteResolver handles SQLite locations: sqlite://path, sqlite3://path,
// file: URIs, :memory: and bare paths ending in .db, .sqlite or .sqlite3.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

func isSQLite(lower string) bool {
	if strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "sqlite3://") || strings.HasPrefix(lower, "file:") {
		return true
	}
	if lower == ":memory:" {
		return true
	}
	path, _, _ := strings.Cut(lower, "?")
	for _, s := range sqliteSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// Parse extracts the database path; file: URIs are kept whole.
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a SQLite path such as sqlite://./app.db")
	}
	lower := strings.ToLower(trimmed)
	if !isSQLite(lower) {
		return nil, NewParseError(dsn, "not a SQLite location", "use sqlite://path, file:path or a path ending in .db")
	}

	path := trimmed
	for _, prefix := range []string{"sqlite://", "sqlite3://"} {
		if strings.HasPrefix(lower, prefix) {
			path = trimmed[len(prefix):]
			break
		}
	}
	if strings.TrimSpace(path) == "" || path == "file:" {
		return nil, NewParseError(dsn, "missing database path", "provide a SQLite path such as sqlite://./app.db")
	}
	return &DSNInfo{
		Type:     DBTypeSQLite,
		Database: path,
		Params:   map[string]string{},
		Original: dsn,
	}, nil
}

// Normalize returns sqlite://<path>, or the file: URI unchanged.
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	if strings.HasPrefix(strings.ToLower(info.Database), "file:") {
		return info.Database, nil
	}
	return "sqlite://" + info.Database, nil
}

// Validate checks that the DSN names a SQLite database
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}

// DriverDSN returns the path (or file: URI) accepted by modernc.org/sqlite.
func (r *SQLiteResolver) DriverDSN(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	return info.Database, nil
}
