// Package errs provides the unified error type returned by all rqwire
// operations.
//
// Every failure, whether in transport, authentication, JSON encoding/decoding,
// or a statement rejected by the remote node, is wrapped into an *errs.Error
// before it reaches the caller. Callers use the Is* predicates to decide how
// to react without string-matching messages.
//
// Usage:
//
//	cur, err := conn.Execute(ctx, "INSERT INTO foo(name) VALUES (?)", "fiona")
//	if errs.IsConnection(err) {
//	    // reconnect and retry
//	}
//	if errs.IsAuth(err) {
//	    // prompt for credentials
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an rqwire error without exposing transport-level detail.
type Kind int

const (
	KindUnknown    Kind = iota
	KindConnection             // dial, TLS, handshake, or send failure; dead connection
	KindAuth                   // the node answered HTTP 401
	KindDataSer                // JSON encode/decode failure, unknown column type
	KindSQL                    // statement rejected or response shape unexpected
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindAuth:
		return "auth"
	case KindDataSer:
		return "data_ser"
	case KindSQL:
		return "sql"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all rqwire operations.
type Error struct {
	Kind    Kind
	Message string
	Cause   error // underlying error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsConnection reports whether err is a transport or handshake failure.
// Such errors are recoverable by establishing a new connection.
func IsConnection(err error) bool {
	return kindOf(err) == KindConnection
}

// IsAuth reports whether err was caused by an HTTP 401 from the node.
func IsAuth(err error) bool {
	return kindOf(err) == KindAuth
}

// IsDataSer reports whether err is a JSON serialization failure: a
// malformed request body, a malformed response body, or an unknown declared
// column type.
func IsDataSer(err error) bool {
	return kindOf(err) == KindDataSer
}

// IsSQL reports whether err is a statement-level or response-shape error
// reported by the remote node.
func IsSQL(err error) bool {
	return kindOf(err) == KindSQL
}

// kindOf extracts the Kind from any error in the chain.
func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
