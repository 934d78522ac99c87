// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dialect resolves the boolean-literal family of a database connection.
// The tag is only used to spell literals in rewritten statements; it is resolved
// once per connection and never persisted.
package dialect

import "strings"

// Dialect is the boolean-literal family of a database.
type Dialect int

const (
	// NumericBoolean spells booleans as 0/1 (MySQL, SQLite and anything unknown).
	NumericBoolean Dialect = iota
	// NativeBoolean spells booleans as FALSE/TRUE (PostgreSQL and its wire-compatibles).
	NativeBoolean
)

// nativeBooleanNames are matched as case-insensitive substrings of the dialect name.
var nativeBooleanNames = []string{"postgres", "cockroach"}

// Resolve maps a declared dialect name (driver name, DSN scheme, DBType) to a Dialect.
// Missing or unknown names resolve to NumericBoolean.
func Resolve(name string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return NumericBoolean
	}
	for _, n := range nativeBooleanNames {
		if strings.Contains(lower, n) {
			return NativeBoolean
		}
	}
	return NumericBoolean
}

// FalseLiteral returns the SQL spelling of false.
func (d Dialect) FalseLiteral() string {
	if d == NativeBoolean {
		return "FALSE"
	}
	return "0"
}

// TrueLiteral returns the SQL spelling of true.
func (d Dialect) TrueLiteral() string {
	if d == NativeBoolean {
		return "TRUE"
	}
	return "1"
}

func (d Dialect) String() string {
	switch d {
	case NativeBoolean:
		return "native-boolean"
	default:
		return "numeric-boolean"
	}
}
