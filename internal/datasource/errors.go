package datasource

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed DataSource operation. The cache layer keys
// its retry behavior off this taxonomy.
type ErrorKind string

const (
	// KindNotFound marks a legitimate absence (e.g. a product with no
	// budget yet). Never retried, never alarmed to the user.
	KindNotFound ErrorKind = "not_found"

	// KindTransient marks network-level or 5xx failures worth retrying a
	// bounded number of times.
	KindTransient ErrorKind = "transient"

	// KindFatal marks malformed responses. Surfaced immediately.
	KindFatal ErrorKind = "fatal"
)

// Error wraps a failed operation with its classification.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified datasource error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	var dsErr *Error
	if errors.As(err, &dsErr) {
		return dsErr.Kind, true
	}
	return "", false
}

// IsNotFound reports whether err is a classified absence.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransient
}

// IsFatal reports whether err must be surfaced without retry.
func IsFatal(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindFatal
}
