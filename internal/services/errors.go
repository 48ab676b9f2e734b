package services

import (
	"errors"
	"fmt"
)

// Kind classifies service failures so the HTTP layer can map them to
// status codes without string matching. Conflict and StoreFailure are safe
// to retry from scratch; the rest need changed input.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidRequest
	KindInvalidState
	KindConflict
	KindStoreFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindStoreFailure:
		return "store_failure"
	}
	return "unknown"
}

// Error carries a Kind and a human-readable reason. Any Error raised inside
// a ledger transaction aborts the whole transaction.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the operation may be retried unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == KindConflict || e.Kind == KindStoreFailure
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func InvalidRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Reason: fmt.Sprintf(format, args...)}
}

func InvalidStatef(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Reason: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps a database error that aborted a transaction.
func StoreFailure(err error) *Error {
	return &Error{Kind: KindStoreFailure, Reason: "store failure", Err: err}
}

// KindOf extracts the Kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
