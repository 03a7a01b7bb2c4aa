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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	pkgerrors "github.com/pkg/errors"
)

// DefaultPolicy trusts generic errors, i.e., only errors explicitly constructed as untrusted terminate the process.
var DefaultPolicy = Policy{TrustGenericErrors: true}

// Policy controls how values that were not constructed as an *Error are classified.
type Policy struct {
	// TrustGenericErrors is the trusted classification assigned to plain errors and non-error values.
	// When false, any failure that was not explicitly constructed as a trusted *Error will terminate the process.
	TrustGenericErrors bool
}

// errors created by these packages carry no type information worth reporting as a kind
var genericErrorPackages = map[string]struct{}{
	"errors":                {},
	"fmt":                   {},
	"github.com/pkg/errors": {},
}

// renders arbitrary values for general-error messages
var renderer = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

type named interface {
	Name() string
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Normalize converts any value into an *Error using the DefaultPolicy.
func Normalize(v interface{}) *Error {
	return DefaultPolicy.Normalize(v)
}

// Normalize converts any value into an *Error. It never panics.
//
//	- *Error      : returned as is
//	- *Panic      : the panic value is normalized and the captured stack is attached
//	- error       : if it wraps an *Error, then the wrapped classification is kept, otherwise a generic error is created
//	- other value : a general-error whose message describes the value's type and content
func (p Policy) Normalize(v interface{}) (normalized *Error) {
	defer func() {
		if r := recover(); r != nil {
			normalized = &Error{
				kind:    GeneralErrorKind,
				message: fmt.Sprintf("failed to normalize a value with type - %T", v),
				status:  DefaultStatus,
				trusted: p.TrustGenericErrors,
			}
		}
	}()

	switch value := v.(type) {
	case *Error:
		if value != nil {
			return value
		}
	case *Panic:
		if value != nil {
			return p.normalizePanic(value)
		}
	case error:
		return p.normalizeError(value)
	}
	return p.normalizeValue(v)
}

func (p Policy) normalizePanic(value *Panic) *Error {
	e := p.Normalize(value.Value)
	if e.stack == "" && len(value.Stack) > 0 {
		return e.withStack(string(value.Stack))
	}
	return e
}

func (p Policy) normalizeError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return &Error{
			kind:    appErr.kind,
			message: err.Error(),
			status:  appErr.status,
			trusted: appErr.trusted,
			cause:   appErr,
			stack:   appErr.stack,
		}
	}
	return &Error{
		kind:    kindOf(err),
		message: err.Error(),
		status:  DefaultStatus,
		trusted: p.TrustGenericErrors,
		stack:   stackOf(err),
	}
}

func (p Policy) normalizeValue(v interface{}) *Error {
	return &Error{
		kind:    GeneralErrorKind,
		message: fmt.Sprintf("received a non-error value with type - %T, value - %s", v, renderer.Sprintf("%+v", v)),
		status:  DefaultStatus,
		trusted: p.TrustGenericErrors,
	}
}

// kindOf returns the error's name : Name() if the error has one, otherwise the type name of the first error in the
// chain that is not a generic wrapper.
func kindOf(err error) string {
	for err != nil {
		if n, ok := err.(named); ok {
			if name := n.Name(); name != "" {
				return name
			}
		}
		t := reflect.TypeOf(err)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if _, generic := genericErrorPackages[t.PkgPath()]; !generic && t.Name() != "" {
			return t.Name()
		}
		err = errors.Unwrap(err)
	}
	return "Error"
}

func stackOf(err error) string {
	var tracer stackTracer
	if errors.As(err, &tracer) {
		return strings.TrimPrefix(fmt.Sprintf("%+v", tracer.StackTrace()), "\n")
	}
	return ""
}
