package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can decide whether to retry,
// reconcile, or report the problem back to the client.
type Kind int

const (
	// KindUnknown is the zero value; treated as an internal error.
	KindUnknown Kind = iota
	// KindValidation marks malformed or schema-violating input. Caller-fixable, never retried.
	KindValidation
	// KindNotFound marks an absent record, table, or object key.
	KindNotFound
	// KindConflict marks an operation that lost a race, e.g. publishing an
	// article another caller already moved.
	KindConflict
	// KindUnavailable marks a transient backing-store failure. Safe to retry
	// for single-step idempotent operations only.
	KindUnavailable
	// KindPartial marks a multi-step operation that succeeded on step N and
	// failed on step N+1, leaving the stores inconsistent. Operators should
	// reconcile; callers must not assume nothing happened.
	KindPartial
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindPartial:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// Error carries the kind plus the operation and record id that produced it.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "articles.Publish"
	ID      string // record id involved, if any
	Step    string // step reached in a multi-step operation, if any
	Message string
	Err     error // wrapped cause
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.ID != "":
		return fmt.Sprintf("%s [%s] %s: %s", e.Op, e.Kind, e.ID, msg)
	case e.Op != "":
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, msg)
	default:
		return fmt.Sprintf("[%s] %s", e.Kind, msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates a cause with a kind and message. A nil cause returns nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithOp returns a copy of the error annotated with the operation name.
func (e *Error) WithOp(op string) *Error {
	c := *e
	c.Op = op
	return &c
}

// WithID returns a copy of the error annotated with the record id.
func (e *Error) WithID(id string) *Error {
	c := *e
	c.ID = id
	return &c
}

// WithStep returns a copy of the error annotated with the step reached.
func (e *Error) WithStep(step string) *Error {
	c := *e
	c.Step = step
	return &c
}

// KindOf extracts the kind from an error chain. Unwrapped errors are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool    { return KindOf(err) == KindConflict }
func IsUnavailable(err error) bool { return KindOf(err) == KindUnavailable }
func IsPartial(err error) bool     { return KindOf(err) == KindPartial }

// HTTPStatus maps an error to the status hint the routing layer should use.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
