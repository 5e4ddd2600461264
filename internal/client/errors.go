package client

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the failures an invocation can report.
type ErrorKind string

const (
	// KindTransport covers connection failures, non-success statuses and
	// responses in a format other than the one requested.
	KindTransport ErrorKind = "transport"
	// KindDecode means the response payload did not match the declared shape.
	KindDecode ErrorKind = "decode"
)

// Error is implemented only by *TransportError and *DecodeError. Every
// failed invocation returns exactly one of them.
type Error interface {
	error
	Kind() ErrorKind
	sealed()
}

// TransportError wraps whatever the transport reported.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Kind() ErrorKind { return KindTransport }
func (e *TransportError) Unwrap() error   { return e.Err }
func (*TransportError) sealed()           {}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// DecodeError reports a payload that failed the declared decode.
type DecodeError struct {
	Method string
	URL    string
	// Path locates the offending element when the codec knows it.
	Path   string
	Reason string
	Body   []byte
	Err    error
}

func (e *DecodeError) Kind() ErrorKind { return KindDecode }
func (e *DecodeError) Unwrap() error   { return e.Err }
func (*DecodeError) sealed()           {}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s %s: decode response: %s", e.Method, e.URL, e.Reason)
	}
	return fmt.Sprintf("%s %s: decode response at %s: %s", e.Method, e.URL, e.Path, e.Reason)
}

// Render produces a human-readable message for any error an invocation or
// a Call can return. It never panics; nil renders as "".
func Render(err error) string {
	if err == nil {
		return ""
	}
	var cerr Error
	if !errors.As(err, &cerr) {
		return err.Error()
	}
	switch e := cerr.(type) {
	case *TransportError:
		return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
	case *DecodeError:
		msg := "decode error: " + e.Method + " " + e.URL
		if e.Path != "" {
			msg += " at " + e.Path
		}
		return msg + ": " + e.Reason
	}
	return cerr.Error()
}

// ArgumentError reports misuse of a compiled client: an argument the codec
// rejects, a missing branch, or too many or too few arguments. It is never
// the result of an invocation.
type ArgumentError struct {
	Param   string
	Message string
	Err     error
}

func (e *ArgumentError) Error() string {
	msg := "client: "
	if e.Param != "" {
		msg += e.Param + ": "
	}
	msg += e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }
