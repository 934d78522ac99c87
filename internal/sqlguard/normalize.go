// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlguard is the gatekeeper between a model-generated SQL string and the
// database connection. It normalizes the raw text, classifies its intent with
// word-boundary keyword matching, and rewrites permitted hard deletes into soft
// deletes.
//
// Detection is lexical, not a parse: keywords hidden inside comments, string
// literals or split across tokens are not recognised. A literal such as
// 'DELETE' inside a SELECT is treated as a DELETE keyword.
package sqlguard

import (
	"strings"
)

const fence = "```"

// languageTags are the info strings accepted after an opening fence.
var languageTags = map[string]bool{
	"sql":        true,
	"mysql":      true,
	"postgres":   true,
	"postgresql": true,
	"psql":       true,
	"pgsql":      true,
	"plpgsql":    true,
	"sqlite":     true,
	"sqlite3":    true,
	"plsql":      true,
	"tsql":       true,
	"mssql":      true,
	"text":       true,
	"plaintext":  true,
}

// Query is an input statement together with its derived forms.
// Canonical never starts or ends with a fence marker or whitespace.
type Query struct {
	Raw       string
	Canonical string
	// Scan is the upper-cased Canonical used for keyword matching.
	Scan string
}

// NewQuery normalizes raw and derives the scan form.
func NewQuery(raw string) Query {
	canonical := Normalize(raw)
	return Query{
		Raw:       raw,
		Canonical: canonical,
		Scan:      strings.ToUpper(canonical),
	}
}

// Empty reports whether nothing is left after normalization.
func (q Query) Empty() bool { return q.Canonical == "" }

// Normalize strips markdown code fences (with an optional language tag) and
// surrounding whitespace. It is idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := stripFences(s)
		if next == s {
			return s
		}
		s = next
	}
}

// stripFences removes one layer of leading and trailing fence markers.
func stripFences(s string) string {
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		s = stripLanguageTag(s)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSuffix(s, fence)
	}
	return strings.TrimSpace(s)
}

// stripLanguageTag drops the info string following an opening fence. Any
// alphanumeric tag on its own line goes; a tag sharing the line with the
// statement goes only when it is a known language name. Statement keywords are
// never treated as a tag.
func stripLanguageTag(s string) string {
	end := 0
	for end < len(s) && isAlnum(s[end]) {
		end++
	}
	if end == 0 {
		return s
	}
	tag := strings.ToLower(s[:end])
	if statementKeywords[tag] {
		return s
	}
	rest := s[end:]
	if strings.HasPrefix(rest, "\n") || strings.HasPrefix(rest, "\r\n") {
		return rest
	}
	if !languageTags[tag] {
		return s
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && !strings.HasPrefix(rest, fence) {
		return s
	}
	return rest
}

var statementKeywords = map[string]bool{
	"select": true, "with": true, "show": true, "explain": true, "describe": true,
	"desc": true, "pragma": true, "values": true, "insert": true, "update": true,
	"delete": true, "drop": true, "truncate": true, "alter": true, "create": true,
	"replace": true, "merge": true, "grant": true, "revoke": true,
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Stacked reports whether the canonical text holds more than one statement.
// Semicolons inside quotes or comments do not count, and trailing semicolons
// are allowed. Backslash is not an escape character here; a MySQL \' ends the
// literal early, which errs toward Stacked.
func (q Query) Stacked() bool {
	s := q.Canonical
	ended := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ';':
			ended = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case strings.HasPrefix(s[i:], "--"):
			if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
				i += nl
			} else {
				i = len(s)
			}
		case strings.HasPrefix(s[i:], "/*"):
			if end := strings.Index(s[i+2:], "*/"); end >= 0 {
				i += end + 3
			} else {
				i = len(s)
			}
		default:
			if ended {
				return true
			}
			if c == '\'' || c == '"' || c == '`' {
				i = closingQuote(s, i)
			}
		}
	}
	return false
}

// closingQuote returns the index of the quote closing the one at s[open], or
// len(s) when it is unterminated. A doubled quote is an escaped quote.
func closingQuote(s string, open int) int {
	quote := s[open]
	for j := open + 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j
	}
	return len(s)
}
