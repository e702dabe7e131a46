package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a workflow failure. Handlers map kinds to status codes.
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindDuplicateAccount   Kind = "DuplicateAccount"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindNotFound           Kind = "NotFound"
	KindUpstream           Kind = "UpstreamError"
	KindRateLimited        Kind = "RateLimited"
	KindUnknown            Kind = "UnknownError"
)

// Error is the single failure type returned by every service operation.
// Message is safe to show to clients; Err carries the internal cause.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports invalid input for the given fields.
func NewValidationError(fields []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("Invalid input: [%s]. Please verify and try again", strings.Join(fields, ",")),
		Fields:  fields,
	}
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AsError converts any error into an *Error, classifying unknown causes as
// KindUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return newError(KindUnknown, "An unexpected error occurred", err)
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
