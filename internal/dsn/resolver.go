// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"strings"
)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "mysql://"):
		return DBTypeMySQL
	case isSQLite(lower):
		return DBTypeSQLite
	}
	return DBTypeUnknown
}

// ResolverFor returns the resolver for a database type.
func ResolverFor(t DBType) (Resolver, bool) {
	switch t {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), true
	case DBTypeMySQL:
		return NewMySQLResolver(), true
	case DBTypeSQLite:
		return NewSQLiteResolver(), true
	}
	return nil, false
}

func resolverForDSN(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	r, ok := ResolverFor(DetectDBType(dsn))
	if !ok {
		return nil, NewParseError(dsn, "unknown database type", "use postgres://, mysql:// or sqlite://")
	}
	return r, nil
}

// Parse parses a DSN string and returns normalized connection string
// This is the main entry point for DSN parsing
func Parse(dsn string) (string, error) {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return "", err
	}
	info, err := r.Parse(dsn)
	if err != nil {
		return "", err
	}
	return r.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return err
	}
	return r.Validate(dsn)
}

// ParseInfo parses a DSN string and returns detailed DSN info
// Useful for inspecting connection details
func ParseInfo(dsn string) (*DSNInfo, error) {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return nil, err
	}
	return r.Parse(dsn)
}

// DriverDSN resolves a user-facing DSN into the database type and the
// connection string for its Go driver.
func DriverDSN(dsn string) (DBType, string, error) {
	r, err := resolverForDSN(dsn)
	if err != nil {
		return DBTypeUnknown, "", err
	}
	if err := r.Validate(dsn); err != nil {
		return DBTypeUnknown, "", err
	}
	info, err := r.Parse(dsn)
	if err != nil {
		return DBTypeUnknown, "", err
	}
	driverDSN, err := r.DriverDSN(info)
	if err != nil {
		return DBTypeUnknown, "", err
	}
	return info.Type, driverDSN, nil
}
