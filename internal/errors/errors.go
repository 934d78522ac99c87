// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. The query pipeline uses these kinds to tell a blocked
// statement apart from a missing write permission, an unsafe delete or a driver failure.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// so callers can use the standard errors.As / errors.Is helpers on the result.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// BlockedStatement indicates an always-forbidden keyword (DROP, TRUNCATE, ALTER).
	BlockedStatement Kind = "blocked_statement"
	// WritePermission indicates a write-gated statement without write permission.
	WritePermission Kind = "write_permission"
	// UnsafeDelete indicates a DELETE without a WHERE clause.
	UnsafeDelete Kind = "unsafe_delete"
	// Execution indicates a driver-level failure while running a statement.
	Execution Kind = "execution"
	// ConnectionFailed indicates the database could not be opened or pinged.
	ConnectionFailed Kind = "connection_failed"
	// NotAuthorized indicates failed administrator authentication.
	NotAuthorized Kind = "not_authorized"
	// Translation indicates the NL to SQL collaborator failed.
	Translation Kind = "translation"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error.
func (e *E) Unwrap() error { return e.Err }

// Is matches another *E with the same Kind, so sentinel-style checks work:
// errors.Is(err, errors.New(errors.UnsafeDelete, "")).
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
