package sfu

import "fmt"

// ErrorKind identifies which bucket of the request-handling error taxonomy a
// failure belongs to. The ControlPipe converts every error returned by a
// handler into one of these kinds before it ever reaches the wire.
type ErrorKind string

const (
	// ErrInvalidRequest means the request envelope itself could not be
	// dispatched: unknown method, malformed internal addressing chain.
	ErrInvalidRequest ErrorKind = "INVALID_REQUEST"

	// ErrTypeError means the request reached a handler but its data failed
	// validation (bad codec parameters, missing mandatory field, ...).
	ErrTypeError ErrorKind = "TYPE_ERROR"

	// ErrNotFound means the addressing chain named an entity id that does
	// not exist (or existed but was already closed).
	ErrNotFound ErrorKind = "NOT_FOUND"

	// ErrDuplicateID means a create request supplied an id already in use
	// within the scope that owns it.
	ErrDuplicateID ErrorKind = "DUPLICATE_ID"

	// ErrIllegalState means the entity exists but the operation is not
	// valid for its current lifecycle state (e.g. pausing or producing on a
	// closed entity).
	ErrIllegalState ErrorKind = "ILLEGAL_STATE"

	// ErrCrypto means DTLS/SRTP material was rejected.
	ErrCrypto ErrorKind = "CRYPTO_ERROR"

	// ErrUnsupported means the request was well-formed but names a codec
	// or capability combination this Router/Worker cannot satisfy.
	ErrUnsupported ErrorKind = "UNSUPPORTED"

	// ErrFatal means an invariant was violated; the dispatch loop recovers
	// the panic, logs it and answers the request with this kind. The Worker
	// is not torn down and the process keeps running.
	ErrFatal ErrorKind = "FATAL"
)

// Error is the error type every request handler in this module returns.
// The ControlPipe reads Kind and Message straight onto the wire's
// error/reason envelope fields; nothing downstream of the handler ever
// needs to inspect anything else.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewTypeError(format string, args ...any) *Error {
	return newError(ErrTypeError, format, args...)
}

func NewNotFoundError(format string, args ...any) *Error {
	return newError(ErrNotFound, format, args...)
}

func NewDuplicateIdError(format string, args ...any) *Error {
	return newError(ErrDuplicateID, format, args...)
}

func NewInvalidStateError(format string, args ...any) *Error {
	return newError(ErrIllegalState, format, args...)
}

func NewCryptoError(format string, args ...any) *Error {
	return newError(ErrCrypto, format, args...)
}

func NewInvalidRequestError(format string, args ...any) *Error {
	return newError(ErrInvalidRequest, format, args...)
}

func NewUnsupportedError(format string, args ...any) *Error {
	return newError(ErrUnsupported, format, args...)
}

// asError extracts the taxonomy kind and message from err, defaulting
// unrecognized errors to FATAL: an error type this package didn't mint
// itself means some invariant broke rather than a rejected request.
func asError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return newError(ErrFatal, "%s", err.Error())
}
