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
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/oysterpack/faultline/pkg/app/reqctx"
	"github.com/oysterpack/faultline/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unrolled/secure"
)

const (
	HEALTH_PATH  = "/health"
	METRICS_PATH = "/metrics"
	API_PATH     = "/api/v1"
)

// secureHeaders sets the standard security response headers
var secureHeaders = secure.New(secure.Options{
	CustomFrameOptionsValue: "SAMEORIGIN",
	ContentTypeNosniff:      true,
	ReferrerPolicy:          "no-referrer",
	ContentSecurityPolicy:   "default-src 'self'; frame-ancestors 'self'; object-src 'none'",
	STSSeconds:              15552000,
	STSIncludeSubdomains:    true,
})

// Routes mounts domain routes on the API router
type Routes func(r chi.Router)

// Deps are the router dependencies
type Deps struct {
	Store  *reqctx.Store
	Logger *logging.Logger
	// Registry is optional. If set, then requests are instrumented and the metrics are exposed.
	Registry    *prometheus.Registry
	LogRequests LogRequestOptions
	// Routes are mounted under API_PATH
	Routes []Routes
}

// NewRouter creates the application's HTTP handler
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.NotFound(notFound)

	r.Use(secureHeaders.Handler)
	r.Use(RequestID(deps.Store))
	if deps.Registry != nil {
		r.Use(metrics.NewHTTPMetrics(deps.Registry).Instrument)
	}
	r.Use(LogRequests(deps.Logger, deps.LogRequests))

	r.Get(HEALTH_PATH, health)
	if deps.Registry != nil {
		r.Method(http.MethodGet, METRICS_PATH, metrics.Handler(deps.Registry, deps.Logger.Logger))
	}
	r.Route(API_PATH, func(r chi.Router) {
		for _, routes := range deps.Routes {
			routes(r)
		}
	})
	return r
}

func health(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func notFound(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found"))
}
