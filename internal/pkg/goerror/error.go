package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that the requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side or upstream failures.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
	// TypeRemote represents failures reported by the remote provider.
	TypeRemote
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeRemote:
		return "ERROR_TYPE_REMOTE"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier used for classifying failures and mapping them
// to HTTP status codes at the edge.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates invalid request format.
	CodeInvalidFormat
	// CodeInvalidInput indicates invalid request input.
	CodeInvalidInput
	// CodeNotFound indicates a missing resource.
	CodeNotFound
	// CodeConflict indicates a conflict (e.g., duplicate).
	CodeConflict

	// CodeLoginRequired indicates the account session is missing, invalid or
	// expired and the user must re-authenticate. Never auto-retried.
	CodeLoginRequired
	// CodeSignatureRejected indicates the remote provider refused a request
	// signature (time or secret mismatch). A retry needs a fresh time sync.
	CodeSignatureRejected
	// CodeRemoteHTTP indicates a non-2xx transport status from the provider.
	CodeRemoteHTTP
	// CodeNetworkFailure indicates the request never reached the provider.
	CodeNetworkFailure
	// CodeDataParse indicates a malformed remote payload.
	CodeDataParse
	// CodeRemoteProtocol indicates a failure body from the provider that fits
	// no more specific classification; the remote message is carried as-is.
	CodeRemoteProtocol
	// CodeRevokeUnsupported indicates the provider offers no per-device
	// revoke. Permanent capability gap; callers must not retry.
	CodeRevokeUnsupported
	// CodeMissingSecret indicates the account record lacks a required secret.
	CodeMissingSecret
	// CodeMalformedResponse indicates a remote response missing data no
	// downstream call can function without.
	CodeMalformedResponse
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeConflict:
		return "ERROR_CODE_CONFLICT"
	case CodeLoginRequired:
		return "ERROR_CODE_LOGIN_REQUIRED"
	case CodeSignatureRejected:
		return "ERROR_CODE_SIGNATURE_REJECTED"
	case CodeRemoteHTTP:
		return "ERROR_CODE_REMOTE_HTTP"
	case CodeNetworkFailure:
		return "ERROR_CODE_NETWORK_FAILURE"
	case CodeDataParse:
		return "ERROR_CODE_DATA_PARSE"
	case CodeRemoteProtocol:
		return "ERROR_CODE_REMOTE_PROTOCOL"
	case CodeRevokeUnsupported:
		return "ERROR_CODE_REVOKE_UNSUPPORTED"
	case CodeMissingSecret:
		return "ERROR_CODE_MISSING_SECRET"
	case CodeMalformedResponse:
		return "ERROR_CODE_MALFORMED_RESPONSE"
	case CodeInternal:
		return "ERROR_CODE_INTERNAL"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, and a stable error code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	return "Unknown error"
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat:
		return http.StatusBadRequest
	case CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeLoginRequired:
		return http.StatusUnauthorized
	case CodeSignatureRejected:
		return http.StatusForbidden
	case CodeRemoteHTTP, CodeDataParse, CodeRemoteProtocol, CodeMalformedResponse:
		return http.StatusBadGateway
	case CodeNetworkFailure:
		return http.StatusServiceUnavailable
	case CodeRevokeUnsupported:
		return http.StatusNotImplemented
	case CodeMissingSecret:
		return http.StatusUnprocessableEntity
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// HasCode reports whether err is a goerror Error carrying the given code.
func HasCode(err error, code Code) bool {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.code == code
}

func newError(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error with the provided error.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewRemote creates a remote-type error wrapping err with the given code.
//
// The message is surfaced to the user together with the underlying detail, so
// remote failures cross the boundary unchanged.
func NewRemote(err error, msg string, code Code) error {
	return newError(err, msg, TypeRemote, code)
}

// NewInvalidInput creates a validation error for invalid input with a message and underlying error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	custom := &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	custom.fields = make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		custom.fields[kv[i]] = kv[i+1]
	}

	return custom
}

// NewInvalidFormat creates a validation error for an invalid request body format.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}
	return newError(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}
