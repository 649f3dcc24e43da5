package querylens

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure into the closed taxonomy shared by every
// driver and generator. The kind is the only part of an error callers are
// expected to branch on; everything else is diagnostic.
type ErrorKind int

const (
	// ErrorKindConnection indicates a link could not be established or maintained.
	ErrorKindConnection ErrorKind = iota + 1
	// ErrorKindQuery indicates a statement was rejected or failed mid-execution.
	ErrorKindQuery
	// ErrorKindAuth indicates a credential or authorization failure.
	ErrorKindAuth
	// ErrorKindTimeout is reserved; the driver layer does not currently raise it.
	ErrorKindTimeout
	// ErrorKindInvalidInput indicates a malformed portable definition or an
	// unsupported-by-dialect request, caught before any network call.
	ErrorKindInvalidInput
	// ErrorKindNotFound indicates a referenced connection profile is absent.
	// It is raised by the config/calling layer, never by a driver.
	ErrorKindNotFound
)

// Sentinel values for errors.Is matching by kind.
var (
	ErrConnection   = errors.New("connection error")
	ErrQuery        = errors.New("query error")
	ErrAuth         = errors.New("authentication error")
	ErrTimeout      = errors.New("timeout")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

var kindSentinels = map[ErrorKind]error{
	ErrorKindConnection:   ErrConnection,
	ErrorKindQuery:        ErrQuery,
	ErrorKindAuth:         ErrAuth,
	ErrorKindTimeout:      ErrTimeout,
	ErrorKindInvalidInput: ErrInvalidInput,
	ErrorKindNotFound:     ErrNotFound,
}

// String returns the human-readable kind name.
func (k ErrorKind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// Error is the structured failure value carried across the package boundary.
// Code holds the dialect-specific raw code (SQLSTATE, MySQL errno, MSSQL
// number) when the underlying client exposes one, otherwise it is empty.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
	cause   error
}

// NewError builds an Error without an underlying cause.
func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NewErrorf builds an Error with a formatted message.
func NewErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError stringifies a native engine error into the nearest matching kind,
// keeping the original as the cause for errors.Is/As chains.
func WrapError(kind ErrorKind, code string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Message: err.Error(), cause: err}
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the native engine error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches the per-kind sentinel so callers can use errors.Is(err, ErrQuery).
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf extracts the kind of an error produced by this module.
// Foreign errors report ErrorKind(0).
func KindOf(err error) ErrorKind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
