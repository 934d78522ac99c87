// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlguard

import (
	"regexp"
)

// Classification is the safety verdict for a statement.
type Classification int

const (
	Unclassified Classification = iota
	// AlwaysBlocked statements contain DROP, TRUNCATE or ALTER and never run.
	AlwaysBlocked
	// WriteGatedBlocked statements need write permission the caller does not have.
	WriteGatedBlocked
	// WriteGatedRewritten is a permitted DELETE that runs as a soft-delete UPDATE.
	WriteGatedRewritten
	// WriteGatedAllowed is a permitted UPDATE.
	WriteGatedAllowed
	// SafeRead is a single statement that starts with a read keyword and
	// carries no write keyword anywhere in its text.
	SafeRead
	// SafeWrite is any other statement run with write permission (INSERT, CREATE ...).
	SafeWrite
)

func (c Classification) String() string {
	switch c {
	case AlwaysBlocked:
		return "always_blocked"
	case WriteGatedBlocked:
		return "write_gated_blocked"
	case WriteGatedRewritten:
		return "write_gated_rewritten"
	case WriteGatedAllowed:
		return "write_gated_allowed"
	case SafeRead:
		return "safe_read"
	case SafeWrite:
		return "safe_write"
	default:
		return "unclassified"
	}
}

// Executable reports whether a statement with this classification may reach the database.
func (c Classification) Executable() bool {
	switch c {
	case WriteGatedRewritten, WriteGatedAllowed, SafeRead, SafeWrite:
		return true
	default:
		return false
	}
}

// IsRead reports whether the statement is run as a read (no transaction).
func (c Classification) IsRead() bool { return c == SafeRead }

// Keyword patterns run against the upper-cased scan form. \b keeps identifiers
// such as update_log or last_update from matching.
var (
	forbiddenRe  = regexp.MustCompile(`\b(DROP|TRUNCATE|ALTER)\b`)
	deleteRe     = regexp.MustCompile(`\bDELETE\b`)
	updateRe     = regexp.MustCompile(`\bUPDATE\b`)
	readPrefixRe = regexp.MustCompile(`^\s*(SELECT|WITH|SHOW|EXPLAIN|DESCRIBE|DESC|PRAGMA|VALUES)\b`)

	// writeRe finds mutations behind a read prefix, such as a writable CTE or
	// SELECT ... INTO. REPLACE alone is also a string function, so only
	// REPLACE INTO counts.
	writeRe = regexp.MustCompile(`\b(INSERT|UPSERT|MERGE|CREATE|GRANT|REVOKE|COPY|CALL|EXEC|EXECUTE|INTO|ATTACH|DETACH|VACUUM|REINDEX|LOCK|REPLACE\s+INTO)\b`)
	// pragmaSetRe matches SQLite PRAGMA assignments, which change settings.
	pragmaSetRe = regexp.MustCompile(`^\s*PRAGMA\b[^=]*=`)
)

// ForbiddenKeyword returns the first always-forbidden keyword in q, or "".
func ForbiddenKeyword(q Query) string {
	return forbiddenRe.FindString(q.Scan)
}

// Classify derives the verdict for q from the keywords it contains and the
// caller's write permission. A DELETE with permission classifies as
// WriteGatedRewritten; whether it can actually be rewritten is decided by
// RewriteDelete.
//
// Statements that are neither reads nor UPDATE/DELETE are write-gated too, so an
// INSERT without permission is WriteGatedBlocked. Stacked statements are never
// a SafeRead.
func Classify(q Query, write bool) Classification {
	switch {
	case forbiddenRe.MatchString(q.Scan):
		return AlwaysBlocked
	case deleteRe.MatchString(q.Scan):
		if write {
			return WriteGatedRewritten
		}
		return WriteGatedBlocked
	case updateRe.MatchString(q.Scan):
		if write {
			return WriteGatedAllowed
		}
		return WriteGatedBlocked
	case isRead(q):
		return SafeRead
	case write:
		return SafeWrite
	default:
		return WriteGatedBlocked
	}
}

func isRead(q Query) bool {
	return readPrefixRe.MatchString(q.Scan) &&
		!writeRe.MatchString(q.Scan) &&
		!pragmaSetRe.MatchString(q.Scan) &&
		!q.Stacked()
}
