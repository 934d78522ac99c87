// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlguard

import (
	"fmt"
	"regexp"
	"strings"

	"askdb/cli/internal/dialect"
	apperrors "askdb/cli/internal/errors"
)

// DefaultSoftDeleteColumn is the boolean flag every governed table is expected to carry.
const DefaultSoftDeleteColumn = "active"

// SoftDeletePolicy names the boolean column a rewritten DELETE flips to false.
// Tables absent from Tables use Column (or DefaultSoftDeleteColumn when empty).
type SoftDeletePolicy struct {
	Column string            `yaml:"column" json:"column"`
	Tables map[string]string `yaml:"tables,omitempty" json:"tables,omitempty"`
}

// ColumnFor returns the soft-delete column for a table identifier as written in SQL.
// Lookups ignore quoting and case and try "schema.table" before the bare table name.
func (p SoftDeletePolicy) ColumnFor(table string) string {
	name := unquoteIdentifier(table)
	if col, ok := p.lookup(name); ok {
		return col
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		if col, ok := p.lookup(name[i+1:]); ok {
			return col
		}
	}
	if p.Column != "" {
		return p.Column
	}
	return DefaultSoftDeleteColumn
}

func (p SoftDeletePolicy) lookup(name string) (string, bool) {
	for k, v := range p.Tables {
		if strings.EqualFold(k, name) && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// identPart matches one optionally quoted identifier segment.
const identPart = `(?:"[^"]+"|` + "`[^`]+`" + `|\[[^\]]+\]|[A-Za-z_][A-Za-z0-9_$]*)`

var (
	deleteWhereRe = regexp.MustCompile(`(?is)^\s*DELETE\s+FROM\s+(` + identPart + `(?:\s*\.\s*` + identPart + `)*)\s+(WHERE\s+\S.*)$`)
	deleteBareRe  = regexp.MustCompile(`(?is)^\s*DELETE\s+FROM\s+(` + identPart + `(?:\s*\.\s*` + identPart + `)*)\s*(?:WHERE\s*)?;?\s*$`)
)

// RewriteDelete turns DELETE FROM <table> WHERE <condition> into
// UPDATE <table> SET <column> = <false> WHERE <condition>. The WHERE clause is
// passed through unmodified. A DELETE without a WHERE clause, or in any other
// shape, is rejected with an unsafe_delete error; no WHERE clause is ever guessed.
func RewriteDelete(q Query, d dialect.Dialect, policy SoftDeletePolicy) (string, error) {
	if m := deleteWhereRe.FindStringSubmatch(q.Canonical); m != nil {
		table := strings.TrimSpace(m[1])
		column := policy.ColumnFor(table)
		return fmt.Sprintf("UPDATE %s SET %s = %s %s", table, column, d.FalseLiteral(), m[2]), nil
	}
	if deleteBareRe.MatchString(q.Canonical) {
		return "", apperrors.New(apperrors.UnsafeDelete,
			"DELETE without a WHERE clause is not allowed; add a WHERE clause that targets the rows to remove")
	}
	return "", apperrors.New(apperrors.UnsafeDelete,
		"DELETE could not be converted to a soft delete; use the form DELETE FROM <table> WHERE <condition>")
}

// unquoteIdentifier strips "", `` and [] quoting from every dotted segment.
func unquoteIdentifier(ident string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 {
			switch {
			case p[0] == '"' && p[len(p)-1] == '"',
				p[0] == '`' && p[len(p)-1] == '`',
				p[0] == '[' && p[len(p)-1] == ']':
				p = p[1 : len(p)-1]
			}
		}
		parts[i] = p
	}
	return strings.Join(parts, ".")
}
