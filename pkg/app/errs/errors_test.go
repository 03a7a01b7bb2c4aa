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
	"testing"

	"github.com/oysterpack/faultline/pkg/app/errs"
)

func TestNew(t *testing.T) {
	// Given an application error constructed with only a kind and message
	err := errs.New("NotFound", "product not found")

	// Then the defaults are applied
	if err.Kind() != "NotFound" || err.Message() != "product not found" {
		t.Errorf("kind and message do not match : %v", err)
	}
	if err.Status() != http.StatusInternalServerError {
		t.Errorf("default status should be 500 : %d", err.Status())
	}
	if !err.Trusted() {
		t.Error("application errors are trusted by default")
	}
	if err.Cause() != nil {
		t.Errorf("there should be no cause : %v", err.Cause())
	}
	if err.Stack() != "" {
		t.Errorf("a stack must never be fabricated : %q", err.Stack())
	}
	if errors.Unwrap(err) != nil {
		t.Error("Unwrap() should return nil when there is no cause")
	}
}

func TestNewWithOptions(t *testing.T) {
	cause := errors.New("disk full")
	err := errs.New("StorageError", "failed to save", errs.WithStatus(http.StatusServiceUnavailable), errs.Untrusted(), errs.WithCause(cause))

	if err.Status() != http.StatusServiceUnavailable {
		t.Errorf("status was not applied : %d", err.Status())
	}
	if err.Trusted() {
		t.Error("error should be untrusted")
	}
	if err.Cause() == nil || err.Cause().Message() != "disk full" {
		t.Fatalf("cause was not normalized : %v", err.Cause())
	}
	if err.Cause().Kind() != "Error" {
		t.Errorf("plain errors are named Error : %s", err.Cause().Kind())
	}
	if errors.Unwrap(err) != error(err.Cause()) {
		t.Error("Unwrap() should return the cause")
	}
	if got := err.Error(); got != "StorageError: failed to save" {
		t.Errorf("unexpected Error() : %q", got)
	}
}

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		err    *errs.Error
		kind   string
		status int
	}{
		{errs.Validation("bad input"), errs.ValidationKind, http.StatusBadRequest},
		{errs.NotFound("missing"), errs.NotFoundKind, http.StatusNotFound},
		{errs.Conflict("exists"), errs.ConflictKind, http.StatusConflict},
	}
	for _, test := range tests {
		if test.err.Kind() != test.kind || test.err.Status() != test.status || !test.err.Trusted() {
			t.Errorf("unexpected classification : %v : status = %d, trusted = %v", test.err, test.err.Status(), test.err.Trusted())
		}
	}

	// options still apply on top of the taxonomy defaults
	if errs.NotFound("gone", errs.WithStatus(http.StatusGone)).Status() != http.StatusGone {
		t.Error("status option should override the taxonomy default")
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading product : %w", errs.NotFound("product 1 not found"))
	if !errors.Is(err, errs.NotFound("")) {
		t.Error("errors.Is should match on kind through wrapping")
	}
	if errors.Is(err, errs.Conflict("")) {
		t.Error("errors.Is should not match a different kind")
	}
}
