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
	"bytes"
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/rs/zerolog"
)

// MAX_LOGGED_BODY_SIZE is the maximum number of request body bytes that are read for logging
const MAX_LOGGED_BODY_SIZE = 64 * 1024

// LogRequestOptions configures LogRequests
type LogRequestOptions struct {
	// Fields are the request body fields that are logged. If empty, then the whole body is logged.
	Fields []string
}

// LogRequests logs each request when it is received and when its response is finished.
//
// The request record contains the query parameters and the request body. The response record contains the response
// status code, the request duration, and the route parameters.
func LogRequests(logger *logging.Logger, opts LogRequestOptions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			line := req.Method + " " + req.URL.RequestURI()

			event := REQUEST_STARTED.Log(logger.Info().Ctx(req.Context()))
			if query := req.URL.Query(); len(query) > 0 {
				event.Interface("query", query)
			}
			logBody(event, req, opts.Fields)
			event.Msg(line)

			m := httpsnoop.CaptureMetrics(next, w, req)

			event = REQUEST_FINISHED.Log(logger.Info().Ctx(req.Context())).
				Int("statusCode", m.Code).
				Int64("durationMs", m.Duration.Milliseconds())
			if params := routeParams(req); len(params) > 0 {
				event.Interface("params", params)
			}
			event.Msg(line)
		})
	}
}

// logBody adds the request body to the record. The body is restored, so that the handler can read it.
func logBody(event *zerolog.Event, req *http.Request, fields []string) {
	if req.Body == nil || req.Body == http.NoBody {
		return
	}
	data, err := io.ReadAll(io.LimitReader(req.Body, MAX_LOGGED_BODY_SIZE))
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), req.Body), req.Body}
	if err != nil || len(data) == 0 {
		return
	}

	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		if len(fields) == 0 {
			event.Str("body", string(data))
		}
		return
	}
	if len(fields) == 0 {
		event.Interface("body", body)
		return
	}
	for _, field := range fields {
		if value, ok := body[field]; ok {
			event.Interface(field, value)
		}
	}
}

// routeParams returns the route parameters matched by the router
func routeParams(req *http.Request) map[string]string {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}
