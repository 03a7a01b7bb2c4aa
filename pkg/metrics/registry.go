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

// Package metrics provides the prometheus registry and the HTTP instrumentation.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
)

// NewRegistry creates a new registry.
// If collectProcessMetrics = true, then the prometheus GoCollector and ProcessCollectors are registered.
func NewRegistry(collectProcessMetrics bool) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	if collectProcessMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return registry
}

// Handler exposes the registry's metrics. Errors reported by the prometheus http handler are logged and the handler
// serves whatever metrics could be gathered.
func Handler(registry *prometheus.Registry, logger zerolog.Logger) http.Handler {
	return promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			ErrorLog:      errorLog{logger},
			ErrorHandling: promhttp.ContinueOnError,
			Registry:      registry,
		},
	)
}

// errorLog implements the promhttp.Logger interface
type errorLog struct {
	logger zerolog.Logger
}

func (a errorLog) Println(v ...interface{}) {
	METRICS_HANDLER_ERR.Log(a.logger.Error()).Msg(fmt.Sprint(v...))
}

// FindMetricFamilyByName finds a MetricFamily by name.
// nil is returned if no match is found
func FindMetricFamilyByName(gatheredMetrics []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, m := range gatheredMetrics {
		if m.GetName() == name {
			return m
		}
	}
	return nil
}
