// Package chunkerr provides the chained error type used across the module.
// It lets a caller walk a wrapped chain down to its original cause while
// still being able to switch on a stable Kind at any point in the chain.
package chunkerr

import (
	"strings"
	"time"
)

// Kind classifies why an operation failed. Every error the module returns
// to a caller is a *Error carrying one of these.
type Kind int

const (
	// KindNone is the zero value; used for errors wrapped without a kind
	// of their own (they inherit meaning from whatever they wrap).
	KindNone Kind = iota
	KindConfig
	KindKey
	KindAuth
	KindCorruption
	KindUnsupportedOp
	KindSeek
	KindClosed
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindKey:
		return "key"
	case KindAuth:
		return "auth"
	case KindCorruption:
		return "corruption"
	case KindUnsupportedOp:
		return "unsupported_op"
	case KindSeek:
		return "seek"
	case KindClosed:
		return "closed"
	case KindIO:
		return "io"
	default:
		return "none"
	}
}

// Error is a chainable error carrying a message, an optional Kind, an
// optional Path describing where in the stream it occurred, and an
// optional wrapped cause.
type Error struct {
	Err       error     `json:"-"`
	Kind      Kind      `json:"kind,omitempty"`
	Message   string    `json:"message,omitempty"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

func (e *Error) Error() string {
	res := ""
	var ce error = e
	cnt := 0
	for ce != nil {
		if cnt > 0 {
			res += strings.Repeat("\t", cnt)
			res += "| "
		}
		if cee, ok := ce.(*Error); ok {
			res += cee.Message
			ce = cee.Err
		} else {
			res += ce.Error()
			break
		}
		res += "\n"
		cnt++
	}
	return strings.TrimRight(res, "\n")
}

// Unwrap lets errors.Is/errors.As walk past an *Error to its cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind. This lets
// callers do errors.Is(err, &chunkerr.Error{Kind: chunkerr.KindAuth}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind != KindNone && t.Kind == e.Kind
}

// New creates a new kindless error.
func New(message string) *Error {
	return &Error{Message: message, Timestamp: time.Now()}
}

// NewKind creates a new error carrying the given kind.
func NewKind(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Timestamp: time.Now()}
}

// Wrap attaches message to err. If err is already an *Error without a
// message, the message is set in place instead of adding another link.
// Wrap returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		if e.Message == "" {
			e.Message = message
			return e
		}
	}
	return &Error{Err: err, Message: message, Timestamp: time.Now()}
}

// WrapKind wraps err inside a new *Error carrying kind and message.
// WrapKind returns nil if err is nil.
func WrapKind(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Kind: kind, Message: message, Timestamp: time.Now()}
}

// WrapWithError wraps err inside the existing error chain, anchoring the
// cause at err2 (which must be an *Error, typically a sentinel constructed
// with New/NewKind). WrapWithError returns nil if err is nil.
func WrapWithError(err error, err2 error) error {
	if err == nil {
		return nil
	}
	if e, ok := err2.(*Error); ok {
		cp := *e
		cp.Err = err
		return &cp
	}
	return &Error{Err: err, Message: err2.Error(), Timestamp: time.Now()}
}

// WrapPath attaches a Path to an error, if not already present.
// WrapPath returns nil if err is nil.
func WrapPath(err error, path string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		if e.Path == "" {
			e.Path = path
			return e
		}
	}
	return &Error{Err: err, Path: path, Timestamp: time.Now()}
}

// KindOf walks the chain looking for the first non-zero Kind, returning
// KindNone if none is found.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind != KindNone {
				return e.Kind
			}
			err = e.Err
			continue
		}
		break
	}
	return KindNone
}
