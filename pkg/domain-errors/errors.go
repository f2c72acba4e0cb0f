// Package domainerrors defines the typed error vocabulary shared by all
// domain services. Errors are comparable values so callers can use errors.Is
// against a freshly constructed sentinel in tests.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error for transport mapping and assertions.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeUnauthorized  Code = "unauthorized"
	CodeForbidden     Code = "forbidden"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeSerialization Code = "serialization"
	CodeInternal      Code = "internal"
)

// Error carries a code and a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New builds a domain error value.
func New(code Code, message string) error {
	return Error{Code: code, Message: message}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de Error
	return errors.As(err, &de) && de.Code == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal for unknown
// errors so transports never leak raw failures.
func CodeOf(err error) Code {
	var de Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeSerialization:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
