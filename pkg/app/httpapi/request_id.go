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

// Package httpapi is the HTTP request boundary.
//
// Each request is served within its own request scope, which carries the request id. The request id is taken from the
// x-request-id request header, or generated, and is echoed on the response. Every record logged while serving the
// request carries the request id.
//
// Handlers return errors instead of writing error responses. API.Handle is the terminal error handler : the error is
// normalized, reported to the fault supervisor, and answered with the error's status and an empty body.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/oysterpack/faultline/pkg/app/reqctx"
	"github.com/oysterpack/faultline/pkg/app/uid"
)

// RequestIDHeader is the request correlation header
const RequestIDHeader = "x-request-id"

// RequestID opens a request scope for each request.
//
// The inbound request id is reused, if one is provided, otherwise a new one is generated. The request id is set on the
// response header before the next handler runs.
func RequestID(store *reqctx.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestID := strings.TrimSpace(req.Header.Get(RequestIDHeader))
			if requestID == "" {
				requestID = uid.NewRequestID()
			}
			w.Header().Set(RequestIDHeader, requestID)

			ctx := store.WithRequestID(req.Context(), requestID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
