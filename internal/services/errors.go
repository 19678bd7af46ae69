package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service matches exactly one of
// them with errors.Is.
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidState          = errors.New("invalid state")
	ErrInvalidOperation      = errors.New("invalid operation")
	ErrInternalInconsistency = errors.New("internal inconsistency")
	ErrValidation            = errors.New("validation error")
	ErrUnavailable           = errors.New("service unavailable")
)

var (
	ErrWrongCredentials   = newError(ErrUnauthenticated, "wrong credentials")
	ErrInvalidToken       = newError(ErrUnauthenticated, "could not validate credentials")
	ErrAccountArchived    = newError(ErrForbidden, "this account has been archived and is no longer active")
	ErrAccountPending     = newError(ErrForbidden, "your account is still waiting for an approval")
	ErrTaskAccessDenied   = newError(ErrForbidden, "you are not allowed to modify this task")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrTaskNotFound       = newError(ErrNotFound, "task not found")
	ErrEmailTaken         = newError(ErrConflict, "email already registered")
	ErrUserAlreadyActive  = newError(ErrInvalidState, "user is already active")
	ErrUserArchived       = newError(ErrInvalidState, "user is archived")
	ErrSelfArchive        = newError(ErrInvalidOperation, "you cannot archive your own account")
	ErrRoleNotFound       = newError(ErrInternalInconsistency, "role not found")
	ErrDueDateInPast      = newError(ErrValidation, "due date cannot be a past time")
	ErrStorageUnavailable = newError(ErrUnavailable, "storage is unavailable")
)

// Error is a categorized failure. Message is safe to show to clients;
// the optional cause is kept for logs only.
type Error struct {
	kind    error
	message string
	cause   error
}

func newError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Message() string {
	return e.message
}

func (e *Error) Kind() error {
	return e.kind
}

func (e *Error) Unwrap() []error {
	errs := []error{e.kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Is matches copies made by with and wrap against their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind && t.message == e.message
}

// with returns a copy of e carrying cause.
func (e *Error) with(cause error) *Error {
	return &Error{kind: e.kind, message: e.message, cause: cause}
}

func forbidden(cause error) error {
	return &Error{kind: ErrForbidden, message: cause.Error()}
}

func validationError(cause error) error {
	return &Error{kind: ErrValidation, message: cause.Error()}
}

// storageError hides storage failures behind ErrStorageUnavailable unless
// they already carry a kind.
func storageError(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return ErrStorageUnavailable.with(err)
}

// PublicMessage returns the client-safe message of err.
func PublicMessage(err error) (string, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message(), true
	}
	return "", false
}
