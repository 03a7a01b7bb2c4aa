// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const (
	// DefaultStatus is the HTTP status used when none is specified
	DefaultStatus = http.StatusInternalServerError

	// GeneralErrorKind is the kind assigned to values that are not errors
	GeneralErrorKind = "general-error"
)

// taxonomy of trusted application errors
const (
	ValidationKind = "ValidationError"
	NotFoundKind   = "NotFound"
	ConflictKind   = "Conflict"
)

// Error is the normalized error representation.
type Error struct {
	kind    string
	message string
	status  int
	trusted bool
	cause   *Error
	stack   string
}

// Option configures an Error during construction via New().
type Option func(*Error)

// WithStatus sets the HTTP status surfaced to the caller.
func WithStatus(status int) Option {
	return func(e *Error) { e.status = status }
}

// WithTrusted sets the trusted classification.
func WithTrusted(trusted bool) Option {
	return func(e *Error) { e.trusted = trusted }
}

// Untrusted marks the error as a signal of an unknown process state. Untrusted errors that reach the fault
// supervisor terminate the process.
func Untrusted() Option {
	return WithTrusted(false)
}

// WithCause records the underlying failure. The cause is normalized.
func WithCause(cause interface{}) Option {
	return func(e *Error) {
		if cause != nil {
			e.cause = Normalize(cause)
		}
	}
}

// New constructs an application error. Defaults : status = 500, trusted = true, no cause.
func New(kind, message string, opts ...Option) *Error {
	e := &Error{
		kind:    kind,
		message: message,
		status:  DefaultStatus,
		trusted: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validation returns a trusted error for rejected input (400)
func Validation(message string, opts ...Option) *Error {
	return New(ValidationKind, message, append([]Option{WithStatus(http.StatusBadRequest)}, opts...)...)
}

// NotFound returns a trusted error for a missing resource (404)
func NotFound(message string, opts ...Option) *Error {
	return New(NotFoundKind, message, append([]Option{WithStatus(http.StatusNotFound)}, opts...)...)
}

// Conflict returns a trusted error for a state conflict (409)
func Conflict(message string, opts ...Option) *Error {
	return New(ConflictKind, message, append([]Option{WithStatus(http.StatusConflict)}, opts...)...)
}

func (e *Error) Kind() string { return e.kind }

func (e *Error) Message() string { return e.message }

// Status is the HTTP status to respond with
func (e *Error) Status() int { return e.status }

func (e *Error) Trusted() bool { return e.trusted }

// Cause returns the underlying failure, or nil
func (e *Error) Cause() *Error { return e.cause }

// Stack returns the stack trace carried by the original value, or "" if it had none
func (e *Error) Stack() string { return e.stack }

func (e *Error) Error() string {
	if e.message == "" {
		return e.kind
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Unwrap exposes the cause to errors.Is and errors.As
func (e *Error) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// Is reports whether target is an *Error of the same kind, which lets errors.Is match on kind, e.g.,
//
//	errors.Is(err, errs.NotFound(""))
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.kind == t.kind
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler
func (e *Error) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", e.kind).
		Str("message", e.message).
		Bool("trusted", e.trusted).
		Int("status", e.status)
	if e.stack != "" {
		event.Str("stack", e.stack)
	}
	if e.cause != nil {
		event.Object("cause", e.cause)
	}
}

// withStack returns a copy of e carrying the stack. The receiver is never modified because it may be shared.
func (e *Error) withStack(stack string) *Error {
	clone := *e
	clone.stack = stack
	return &clone
}
