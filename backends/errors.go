package backends

import (
	"errors"
	"fmt"

	"github.com/ortelius/media-provisioner/model"
)

// Error is returned by every backend client operation
type Error struct {
	Backend    model.Backend
	Op         string
	Kind       model.FailureKind
	StatusCode int
	// AccountID is set when an account was created but left half-configured
	AccountID string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Backend, e.Op, e.Kind)
	if e.AccountID != "" {
		msg += fmt.Sprintf(" (account %s)", e.AccountID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies an error returned by a client.
// Errors not produced by this package are treated as transport failures.
func KindOf(err error) model.FailureKind {
	if err == nil {
		return model.FailureNone
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return model.FailureTransport
}

// IsNotFound reports whether err is a genuine lookup miss
func IsNotFound(err error) bool {
	return KindOf(err) == model.FailureNotFound
}

// AsLookupFailure re-labels a failed listing call so callers can tell a
// broken lookup apart from an account that does not exist
func AsLookupFailure(err error) error {
	var be *Error
	if !errors.As(err, &be) {
		return &Error{Kind: model.FailureLookup, Op: "lookup", Err: err}
	}
	if be.Kind == model.FailureNotFound {
		return be
	}
	return &Error{
		Backend:    be.Backend,
		Op:         be.Op,
		Kind:       model.FailureLookup,
		StatusCode: be.StatusCode,
		Err:        be.Err,
	}
}

// StatusOf returns the HTTP status carried by a client error, or 0
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}
