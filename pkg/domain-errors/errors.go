// Package domainerrors carries coded errors across the service and transport
// layers. Services return *Error values; transports translate the Code into a
// status without inspecting messages.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	CodeInvalidAddress         Code = "invalid_address"
	CodeUnauthorized           Code = "unauthorized"
	CodeAlreadySet             Code = "already_set"
	CodeStorageNotConfigured   Code = "storage_not_configured"
	CodeTooShort               Code = "name_too_short"
	CodeTooLong                Code = "name_too_long"
	CodeHexStringNotAllowed    Code = "hex_string_not_allowed"
	CodeInvalidCharacters      Code = "invalid_characters"
	CodeNameTaken              Code = "name_taken"
	CodeAddressAlreadyAssigned Code = "address_already_assigned"

	CodeUnauthenticated Code = "unauthenticated"
	CodeBadRequest      Code = "bad_request"
	CodeNotFound        Code = "not_found"
	CodeTimeout         Code = "timeout"
	CodeInternal        Code = "internal_error"
)

// Error is a coded domain error. Err holds the wrapped cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, New(code, ""))
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain, or
// CodeInternal when the chain holds none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// ToHTTPStatus maps a code to the HTTP status the transport should return.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidAddress, CodeTooShort, CodeTooLong, CodeHexStringNotAllowed,
		CodeInvalidCharacters, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadySet, CodeNameTaken, CodeAddressAlreadyAssigned:
		return http.StatusConflict
	case CodeStorageNotConfigured:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
