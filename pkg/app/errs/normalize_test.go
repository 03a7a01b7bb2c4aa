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

package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/oysterpack/faultline/pkg/app/errs"
	pkgerrors "github.com/pkg/errors"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

type namedError struct{}

func (namedError) Error() string { return "named" }
func (namedError) Name() string  { return "CustomName" }

type hostileError struct{}

func (hostileError) Error() string { panic("boom") }

type order struct {
	ID    int
	Items []string
}

func TestNormalizeIsTotalAndIdempotent(t *testing.T) {
	var nilAppErr *errs.Error
	values := []interface{}{
		nil,
		42,
		"some string",
		3.14,
		true,
		order{ID: 1, Items: []string{"a"}},
		&order{ID: 2},
		map[string]int{"a": 1},
		[]int{1, 2, 3},
		make(chan int),
		errors.New("plain"),
		&ValidationError{"bad input"},
		errs.New("NotFound", "missing", errs.WithStatus(http.StatusNotFound)),
		nilAppErr,
		hostileError{},
		errs.NewPanic("boom"),
	}

	for _, v := range values {
		normalized := errs.Normalize(v)
		if normalized == nil {
			t.Errorf("Normalize(%#v) returned nil", v)
			continue
		}
		if again := errs.Normalize(normalized); again != normalized {
			t.Errorf("Normalize is not idempotent for %T", v)
		}
	}
}

func TestNormalizeAppErrorIsUnchanged(t *testing.T) {
	appErr := errs.New("Conflict", "already exists", errs.WithStatus(http.StatusConflict), errs.Untrusted())
	if errs.Normalize(appErr) != appErr {
		t.Error("an *Error must be returned as is")
	}
}

func TestNormalizeGenericError(t *testing.T) {
	// Given a generic error named ValidationError
	err := errs.Normalize(&ValidationError{"bad input"})

	// Then it is normalized using its name and message
	if err.Kind() != "ValidationError" {
		t.Errorf("kind should be the error name : %s", err.Kind())
	}
	if err.Message() != "bad input" {
		t.Errorf("message does not match : %s", err.Message())
	}
	if !err.Trusted() {
		t.Error("generic errors are trusted by the default policy")
	}
	if err.Status() != http.StatusInternalServerError {
		t.Errorf("status should be 500 : %d", err.Status())
	}
	if err.Stack() != "" {
		t.Errorf("the error carried no stack : %q", err.Stack())
	}
}

func TestNormalizeErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{errors.New("plain"), "Error"},
		{fmt.Errorf("context : %w", errors.New("plain")), "Error"},
		{fmt.Errorf("context : %w", &ValidationError{"bad"}), "ValidationError"},
		{pkgerrors.Wrap(&ValidationError{"bad"}, "context"), "ValidationError"},
		{namedError{}, "CustomName"},
	}
	for _, test := range tests {
		if kind := errs.Normalize(test.err).Kind(); kind != test.kind {
			t.Errorf("%v : kind = %s, expected %s", test.err, kind, test.kind)
		}
	}
}

func TestNormalizeNonErrorValue(t *testing.T) {
	err := errs.Normalize(42)
	if err.Kind() != errs.GeneralErrorKind {
		t.Errorf("kind should be %s : %s", errs.GeneralErrorKind, err.Kind())
	}
	if !strings.Contains(err.Message(), "42") {
		t.Errorf("message should contain the rendered value : %s", err.Message())
	}
	if !strings.Contains(err.Message(), "int") {
		t.Errorf("message should contain the value's type : %s", err.Message())
	}
	if !err.Trusted() {
		t.Error("non-error values are trusted by the default policy")
	}

	err = errs.Normalize(nil)
	if err.Kind() != errs.GeneralErrorKind || !strings.Contains(err.Message(), "<nil>") {
		t.Errorf("nil was not normalized as expected : %v", err)
	}

	err = errs.Normalize(&order{ID: 7, Items: []string{"widget"}})
	if !strings.Contains(err.Message(), "widget") || !strings.Contains(err.Message(), "*errs_test.order") {
		t.Errorf("the value should be rendered deeply : %v", err)
	}
}

func TestNormalizeWrappedAppError(t *testing.T) {
	appErr := errs.NotFound("product 1 not found")
	err := errs.Normalize(fmt.Errorf("GET /products/1 : %w", appErr))

	if err.Kind() != errs.NotFoundKind || err.Status() != http.StatusNotFound || !err.Trusted() {
		t.Errorf("the wrapped classification should be kept : %v", err)
	}
	if err.Cause() != appErr {
		t.Error("the wrapped error should be the cause")
	}
	if !strings.HasPrefix(err.Message(), "GET /products/1") {
		t.Errorf("the outer message should be kept : %s", err.Message())
	}
}

func TestNormalizeKeepsExistingStack(t *testing.T) {
	err := errs.Normalize(pkgerrors.New("with stack"))
	if err.Stack() == "" {
		t.Fatal("the stack carried by the error should be preserved")
	}
	if !strings.Contains(err.Stack(), "TestNormalizeKeepsExistingStack") {
		t.Errorf("stack does not reference the test function : %s", err.Stack())
	}
}

func TestNormalizePanic(t *testing.T) {
	var recovered *errs.Panic
	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered = errs.NewPanic(r)
			}
		}()
		panic(&ValidationError{"panicked"})
	}()

	err := errs.Normalize(recovered)
	if err.Kind() != "ValidationError" || err.Message() != "panicked" {
		t.Errorf("the panic value should be normalized : %v", err)
	}
	if !strings.Contains(err.Stack(), "TestNormalizePanic") {
		t.Errorf("the recovery stack should be attached : %s", err.Stack())
	}

	// the stack is attached to a copy, shared errors are never modified
	appErr := errs.New("Boom", "boom")
	err = errs.Normalize(&errs.Panic{Value: appErr, Stack: []byte("stack")})
	if err == appErr || appErr.Stack() != "" || err.Stack() != "stack" {
		t.Error("the shared *Error was modified")
	}
}

func TestNormalizeHostileValue(t *testing.T) {
	err := errs.Normalize(hostileError{})
	if err.Kind() != errs.GeneralErrorKind {
		t.Errorf("a panicking Error() method should yield a general-error : %v", err)
	}
}

func TestPolicyUntrustsGenericErrors(t *testing.T) {
	policy := errs.Policy{TrustGenericErrors: false}
	if policy.Normalize(errors.New("bug")).Trusted() {
		t.Error("generic errors should be untrusted")
	}
	if policy.Normalize(42).Trusted() {
		t.Error("non-error values should be untrusted")
	}
	if !policy.Normalize(errs.NotFound("missing")).Trusted() {
		t.Error("explicitly constructed errors keep their classification")
	}
}
