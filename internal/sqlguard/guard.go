// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlguard

import (
	"fmt"

	"askdb/cli/internal/dialect"
	apperrors "askdb/cli/internal/errors"
)

// Plan is the result of running a raw statement through the gate.
type Plan struct {
	Query Query
	// Statement is what will be executed: Canonical, or the soft-delete rewrite.
	Statement      string
	Classification Classification
	Rewritten      bool
}

// Guard classifies and rewrites statements for one connection.
// It holds no per-query state and is safe for concurrent use.
type Guard struct {
	Dialect dialect.Dialect
	Policy  SoftDeletePolicy
}

// New creates a Guard for the given dialect and soft-delete policy.
func New(d dialect.Dialect, policy SoftDeletePolicy) *Guard {
	return &Guard{Dialect: d, Policy: policy}
}

// Prepare normalizes raw, classifies it under the given write permission and,
// for a permitted DELETE, rewrites it into a soft delete. The returned error is
// an *errors.E of kind blocked_statement, write_permission or unsafe_delete, or
// execution for empty and stacked input; the Plan is still populated so callers
// can report the classification.
func (g *Guard) Prepare(raw string, write bool) (Plan, error) {
	q := NewQuery(raw)
	plan := Plan{Query: q, Statement: q.Canonical}
	if q.Empty() {
		return plan, apperrors.New(apperrors.Execution, "empty statement")
	}

	plan.Classification = Classify(q, write)
	if plan.Classification == AlwaysBlocked {
		return plan, apperrors.New(apperrors.BlockedStatement,
			fmt.Sprintf("dangerous query blocked for safety (%s is never allowed): %s", ForbiddenKeyword(q), q.Canonical))
	}
	if q.Stacked() {
		return plan, apperrors.New(apperrors.Execution,
			"multiple statements are not allowed; run one statement at a time")
	}

	switch plan.Classification {
	case WriteGatedBlocked:
		return plan, apperrors.New(apperrors.WritePermission,
			"write operations are disabled; an administrator must enable write mode to run this statement")
	case WriteGatedRewritten:
		stmt, err := RewriteDelete(q, g.Dialect, g.Policy)
		if err != nil {
			return plan, err
		}
		// The rewrite is an UPDATE with permission held. Its WHERE clause already
		// passed the forbidden-keyword check above and may itself mention DELETE.
		plan.Statement = stmt
		plan.Rewritten = true
	}
	return plan, nil
}
