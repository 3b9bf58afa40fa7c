// Package apperr defines the typed error taxonomy shared by every domain
// service, modeled on the order domain's OrderError{Code,Message,Err} idiom.
package apperr

import "fmt"

// Code is a stable, wire-safe error classification.
type Code string

const (
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeValidation           Code = "VALIDATION"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeInsufficientRemain   Code = "INSUFFICIENT_REMAINING"
	CodeConflict             Code = "CONFLICT"
	CodeSyncBusy             Code = "SYNC_BUSY"
	CodeUpstreamUnavailable  Code = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamMalformed    Code = "UPSTREAM_MALFORMED"
	CodeInternal             Code = "INTERNAL"
)

// httpStatus mirrors the taxonomy -> HTTP status mapping from the spec's
// error table. Kept here instead of in the handler layer so every
// transport (HTTP today, asynq tomorrow) maps errors the same way.
var httpStatus = map[Code]int{
	CodeUnauthorized:        401,
	CodeForbidden:           403,
	CodeNotFound:            404,
	CodeValidation:          400,
	CodeInvalidTransition:   409,
	CodeInsufficientRemain:  409,
	CodeConflict:            409,
	CodeSyncBusy:            409,
	CodeUpstreamUnavailable: 502,
	CodeUpstreamMalformed:   502,
	CodeInternal:            500,
}

// Error is the concrete typed error every domain returns across the
// persistence/service/handler boundary.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status code this error maps to, defaulting to 500
// for codes not present in the table (defensive only; every Code above is
// present).
func (e *Error) HTTPStatus() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return 500
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Unauthorized(message string) *Error      { return New(CodeUnauthorized, message) }
func Forbidden(message string) *Error         { return New(CodeForbidden, message) }
func NotFound(message string) *Error          { return New(CodeNotFound, message) }
func Validation(message string) *Error        { return New(CodeValidation, message) }
func InvalidTransition(message string) *Error { return New(CodeInvalidTransition, message) }
func InsufficientRemaining(message string) *Error {
	return New(CodeInsufficientRemain, message)
}
func Conflict(message string) *Error           { return New(CodeConflict, message) }
func SyncBusy(message string) *Error           { return New(CodeSyncBusy, message) }
func UpstreamUnavailable(err error) *Error {
	return Wrap(CodeUpstreamUnavailable, "upstream feed unreachable", err)
}
func UpstreamMalformed(err error) *Error {
	return Wrap(CodeUpstreamMalformed, "upstream feed returned an unexpected shape", err)
}
func Internal(err error) *Error { return Wrap(CodeInternal, "internal error", err) }

// As pulls an *Error out of err by a direct type assertion, the common case
// at the handler boundary. It does not unwrap: an *Error wrapped inside
// another error is not found (use errors.As for that).
func As(err error) (*Error, bool) {
	ae, ok := err.(*Error)
	return ae, ok
}
