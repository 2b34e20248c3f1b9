package model

import (
	"errors"
	"strings"
)

// ErrorKind classifies domain errors so the transport layer can map them to
// status codes without inspecting messages.
type ErrorKind int

// Error kinds.
const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Code identifies well-known failures so
// callers can match them with errors.Is.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

// Is reports whether target is an *Error with the same non-empty Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// Well-known errors.
var (
	ErrInvalidTransfer = &Error{Kind: KindValidation, Code: "INVALID_TRANSFER", Message: "source and destination bases cannot be the same"}
	ErrInvalidStatus   = &Error{Kind: KindValidation, Code: "INVALID_STATUS", Message: "invalid status"}
	ErrTransferClosed  = &Error{Kind: KindConflict, Code: "TRANSFER_CLOSED", Message: "transfer is already completed or cancelled"}
	ErrAlreadyReturned = &Error{Kind: KindConflict, Code: "ALREADY_RETURNED", Message: "assignment has already been returned"}
	ErrBadCredentials  = &Error{Kind: KindAuthentication, Code: "BAD_CREDENTIALS", Message: "invalid credentials"}
	ErrForbidden       = &Error{Kind: KindAuthorization, Code: "FORBIDDEN", Message: "insufficient permissions"}
	ErrBaseDenied      = &Error{Kind: KindAuthorization, Code: "BASE_DENIED", Message: "access denied to this base"}
)

// Validation returns a validation error naming the offending fields.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound returns a not-found error for the named entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict returns a conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthenticated returns an authentication error.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
