// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

// PostgreSQLResolver handles PostgreSQL DSN parsing and normalization.
// CockroachDB speaks the same wire protocol and uses the same DSN shape.
type PostgreSQLResolver struct {
	urlResolver
}

// NewPostgreSQLResolver creates a new PostgreSQL resolver
func NewPostgreSQLResolver() *PostgreSQLResolver {
	return &PostgreSQLResolver{urlResolver{
		dbType:      DBTypePostgreSQL,
		schemes:     []string{"postgresql", "postgres"},
		defaultPort: "5432",
	}}
}

// DriverDSN returns the normalized URL; pgx parses it directly.
func (r *PostgreSQLResolver) DriverDSN(info *DSNInfo) (string, error) {
	return r.Normalize(info)
}
