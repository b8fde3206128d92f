package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is the sentinel returned by stores and storage backends when a
// record or artifact does not exist. Callers translate it to a typed Error at
// the API boundary.
var ErrNotFound = errors.New("resource not found")

// Type is the coarse classification of an Error: did the caller send
// something unusable, did a domain rule reject it, or did we break.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "SERVER"
	case TypeBusiness:
		return "BUSINESS"
	case TypeValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Code identifies the failure precisely enough to pick an HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeTimeout
)

var codeNames = map[Code]string{
	CodeInternal:      "INTERNAL",
	CodeInvalidFormat: "INVALID_FORMAT",
	CodeInvalidInput:  "INVALID_INPUT",
	CodeNotFound:      "NOT_FOUND",
	CodeConflict:      "CONFLICT",
	CodeTimeout:       "TIMEOUT",
}

var codeStatus = map[Code]int{
	CodeInternal:      http.StatusInternalServerError,
	CodeInvalidFormat: http.StatusBadRequest,
	CodeInvalidInput:  http.StatusUnprocessableEntity,
	CodeNotFound:      http.StatusNotFound,
	CodeConflict:      http.StatusConflict,
	CodeTimeout:       http.StatusRequestTimeout,
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[CodeInternal]
}

// Error carries a user-facing message next to the wrapped cause, so handlers
// can answer with the message while logs keep the real error.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
}

func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	default:
		return "unspecified " + e.errType.String() + " error"
	}
}

// String renders every field, for logs only.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

// Msg is the message safe to show to a client.
func (e *Error) Msg() string {
	return e.msg
}

func (e *Error) Type() Type {
	return e.errType
}

func (e *Error) Code() Code {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if status, ok := codeStatus[e.code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer wraps an unexpected internal failure. The client only ever sees
// the generic message.
func NewServer(err error) error {
	return newError(err, "internal server error", TypeServer, CodeInternal)
}

// NewBusiness reports a domain rule rejection with the given message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput reports request data that failed validation.
func NewInvalidInput(err error) error {
	return newError(err, "validation error", TypeValidation, CodeInvalidInput)
}

// NewInvalidFormat reports a request body that could not be decoded at all.
func NewInvalidFormat() error {
	return newError(nil, "invalid request body", TypeValidation, CodeInvalidFormat)
}
