package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrStore                 = errors.New("store error")

	ErrMissingID               = kindError{msg: "id is required", kind: ErrInvalidInput}
	ErrMissingOwnerID          = kindError{msg: "owner id is required", kind: ErrInvalidInput}
	ErrInvalidStatusTransition = kindError{msg: "invalid status transition", kind: ErrInvalidInput}
)

// ErrAuth is the parent of every session failure.
var (
	ErrAuth               = errors.New("auth error")
	ErrMissingInput       = kindError{msg: "email and password are required", kind: ErrAuth}
	ErrInvalidCredentials = kindError{msg: "invalid credentials", kind: ErrAuth}
	ErrRegistrationFailed = kindError{msg: "registration failed", kind: ErrAuth}
	ErrNoIdentityReturned = kindError{msg: "registration returned no identity", kind: ErrAuth}
	ErrSignOutFailed      = kindError{msg: "sign out failed", kind: ErrAuth}
)

// kindError is a sentinel that also matches its parent kind with errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e kindError) Error() string { return e.msg }

func (e kindError) Is(target error) bool { return target == e.kind }

// ValidationError reports a required field that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("validation failed: %s is required", e.Field)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// StoreError wraps a failure returned by the remote data store.
type StoreError struct {
	Op    string
	Table string
	ID    string
	Err   error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s id=%s: %v", e.Op, e.Table, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }
