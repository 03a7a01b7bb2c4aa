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

package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/fault"
)

// HandlerFunc is an http handler that returns the request failure instead of writing the error response
type HandlerFunc func(w http.ResponseWriter, req *http.Request) error

// FaultReporter receives request failures.
// *fault.Supervisor is the production implementation.
type FaultReporter interface {
	HandleAsync(ctx context.Context, event fault.Event)
}

// API is the terminal error handler for request handlers
type API struct {
	Supervisor FaultReporter
	// Policy classifies errors that are not *errs.Error. If nil, then errs.DefaultPolicy is used.
	Policy *errs.Policy
}

// Handle adapts the handler to an http.HandlerFunc.
//
// If the handler returns an error, or panics, then the failure is normalized and reported to the supervisor as a
// request-error fault, and the response status is set to the error's status with an empty body. The supervisor decides
// whether the process terminates. The fault is reported asynchronously, because terminating the process waits for
// in-flight requests, including this one, to complete.
//
// If the handler already started the response, then the status cannot be changed : the failure is only reported.
//
// http.ErrAbortHandler panics are re-panicked in order to abort the response.
func (a *API) Handle(handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w, written := trackWrites(w)
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					err = errs.NewPanic(r)
				}
			}()
			err = handler(w, req)
		}()
		if err != nil {
			a.fail(w, req, err, *written)
		}
	}
}

func (a *API) fail(w http.ResponseWriter, req *http.Request, err error, written bool) {
	policy := errs.DefaultPolicy
	if a.Policy != nil {
		policy = *a.Policy
	}
	appErr := policy.Normalize(err)
	if a.Supervisor != nil {
		a.Supervisor.HandleAsync(req.Context(), fault.Event{Kind: fault.RequestError, Value: appErr})
	}
	if !written {
		w.WriteHeader(appErr.Status())
	}
}

// trackWrites wraps the ResponseWriter, preserving its optional interfaces, in order to know whether the response
// was started
func trackWrites(w http.ResponseWriter) (http.ResponseWriter, *bool) {
	written := new(bool)
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				*written = true
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				*written = true
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				*written = true
				return next(src)
			}
		},
	}), written
}
