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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics are the request metrics collected by the HTTP boundary
type HTTPMetrics struct {
	InFlight prometheus.Gauge
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTPMetrics creates the HTTP metrics and registers them
func NewHTTPMetrics(registerer prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "faultline",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faultline",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served, partitioned by status code and method",
		}, []string{"code", "method"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "faultline",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latencies",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
	registerer.MustRegister(m.InFlight, m.Requests, m.Duration)
	return m
}

// Instrument wraps the handler with the request metrics
func (a *HTTPMetrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(a.InFlight,
		promhttp.InstrumentHandlerDuration(a.Duration,
			promhttp.InstrumentHandlerCounter(a.Requests, next),
		),
	)
}
