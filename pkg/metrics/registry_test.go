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

package metrics_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oysterpack/faultline/pkg/metrics"
	"github.com/rs/zerolog"
)

func TestNewRegistry(t *testing.T) {
	registry := metrics.NewRegistry(true)
	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if metrics.FindMetricFamilyByName(families, "go_goroutines") == nil {
		t.Error("go collector should be registered")
	}

	registry = metrics.NewRegistry(false)
	families, err = registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 0 {
		t.Errorf("no collectors should be registered : %v", len(families))
	}
}

func TestHandler(t *testing.T) {
	registry := metrics.NewRegistry(false)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := httpMetrics.Instrument(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	logs := new(bytes.Buffer)
	w := httptest.NewRecorder()
	metrics.Handler(registry, zerolog.New(logs)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status : %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `faultline_http_requests_total{code="418",method="get"} 3`) {
		t.Errorf("request counter was not exposed : %s", body)
	}
	if !strings.Contains(body, "faultline_http_request_duration_seconds") {
		t.Errorf("request duration was not exposed : %s", body)
	}
	if logs.Len() != 0 {
		t.Errorf("no errors should be logged : %s", logs.String())
	}
}
