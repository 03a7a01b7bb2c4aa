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

package logging_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/json-iterator/go"
	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/oysterpack/faultline/pkg/app/reqctx"
	"github.com/rs/zerolog"
)

const TEST_EVENT = logging.EventID(0xd5d0a6b0f3c3c5a1)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newTestLogger(store *reqctx.Store) (*logging.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	sink := zerolog.LevelWriterAdapter{Writer: zerolog.SyncWriter(buf)}
	return logging.New(sink, store, zerolog.DebugLevel), buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		record := map[string]interface{}{}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("invalid log record : %v : %s", err, scanner.Text())
		}
		result = append(result, record)
	}
	return result
}

func TestRecordsAreEnrichedWithRequestID(t *testing.T) {
	store := reqctx.NewStore()
	logger, buf := newTestLogger(store)

	// When a record is logged within a request scope
	ctx := store.WithRequestID(context.Background(), "req-1")
	TEST_EVENT.Log(logger.Info().Ctx(ctx)).Msg("within scope")
	// And a record is logged outside of any scope
	logger.Info().Msg("outside scope")

	logs := records(t, buf)
	if len(logs) != 2 {
		t.Fatalf("expected 2 records : %v", logs)
	}
	if logs[0][logging.REQUEST_ID] != "req-1" {
		t.Errorf("record should carry the request id : %v", logs[0])
	}
	if logs[0]["message"] != "within scope" || logs[0]["level"] != "info" || logs[0]["time"] == nil {
		t.Errorf("record is missing standard fields : %v", logs[0])
	}
	if logs[0][logging.EVENT] == nil {
		t.Errorf("record should carry the event id : %v", logs[0])
	}
	if _, ok := logs[1][logging.REQUEST_ID]; ok {
		t.Errorf("record outside of a scope should not carry a request id : %v", logs[1])
	}
}

func TestRequestIDIsResolvedAtEmissionTime(t *testing.T) {
	store := reqctx.NewStore()
	logger, buf := newTestLogger(store)

	// Given an event that is created before the request id is known
	ctx := store.Open(context.Background(), nil)
	event := logger.Info().Ctx(ctx)

	// When the request id is set before the event is emitted
	store.Set(ctx, reqctx.RequestIDKey, "late")
	event.Msg("emitted")

	// Then the record carries the request id
	if logs := records(t, buf); logs[0][logging.REQUEST_ID] != "late" {
		t.Errorf("request id should be resolved when the record is emitted : %v", logs[0])
	}
}

func TestConcurrentScopesShareOneLogger(t *testing.T) {
	store := reqctx.NewStore()
	logger, buf := newTestLogger(store)

	const requests = 20
	const linesPerRequest = 25
	var wait sync.WaitGroup
	for i := 0; i < requests; i++ {
		wait.Add(1)
		go func(i int) {
			defer wait.Done()
			requestID := fmt.Sprintf("request-%d", i)
			ctx := store.WithRequestID(context.Background(), requestID)
			for j := 0; j < linesPerRequest; j++ {
				logger.Info().Ctx(ctx).Str("owner", requestID).Int("seq", j).Msg("working")
			}
		}(i)
	}
	wait.Wait()

	logs := records(t, buf)
	if len(logs) != requests*linesPerRequest {
		t.Fatalf("expected %d records, but found %d", requests*linesPerRequest, len(logs))
	}
	lastSeq := map[string]float64{}
	for _, record := range logs {
		if record[logging.REQUEST_ID] != record["owner"] {
			t.Fatalf("record was logged with another request's id : %v", record)
		}
		// within a scope, records are emitted in call order
		owner := record["owner"].(string)
		seq := record["seq"].(float64)
		if last, ok := lastSeq[owner]; ok && seq <= last {
			t.Fatalf("records are out of order for %s : %v after %v", owner, seq, last)
		}
		lastSeq[owner] = seq
	}
}

func TestFault(t *testing.T) {
	store := reqctx.NewStore()
	logger, buf := newTestLogger(store)
	ctx := store.WithRequestID(context.Background(), "req-42")

	appErr := errs.New("StorageError", "disk full", errs.Untrusted(), errs.WithCause(errors.New("ENOSPC")))
	if err := logger.Fault(ctx, TEST_EVENT, appErr.Message(), appErr); err != nil {
		t.Fatal(err)
	}

	logs := records(t, buf)
	if len(logs) != 1 {
		t.Fatalf("expected 1 record : %v", logs)
	}
	record := logs[0]
	if record["level"] != "error" || record[logging.REQUEST_ID] != "req-42" {
		t.Errorf("unexpected record : %v", record)
	}
	errorFields, ok := record[logging.ERROR].(map[string]interface{})
	if !ok {
		t.Fatalf("record should contain the error object : %v", record)
	}
	if errorFields["kind"] != "StorageError" || errorFields["message"] != "disk full" || errorFields["trusted"] != false {
		t.Errorf("unexpected error fields : %v", errorFields)
	}
	if cause, ok := errorFields["cause"].(map[string]interface{}); !ok || cause["message"] != "ENOSPC" {
		t.Errorf("cause should be logged : %v", errorFields)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("sink unavailable") }

type panickingWriter struct{}

func (panickingWriter) Write(p []byte) (int, error) { panic("sink exploded") }

func TestFaultReportsSinkFailures(t *testing.T) {
	appErr := errs.New("Boom", "boom")

	logger := logging.New(zerolog.LevelWriterAdapter{Writer: failingWriter{}}, nil, zerolog.InfoLevel)
	if err := logger.Fault(context.Background(), TEST_EVENT, "boom", appErr); err == nil {
		t.Error("the sink's write error should be returned")
	}

	logger = logging.New(zerolog.LevelWriterAdapter{Writer: panickingWriter{}}, nil, zerolog.InfoLevel)
	if err := logger.Fault(context.Background(), TEST_EVENT, "boom", appErr); err == nil || !strings.Contains(err.Error(), "sink exploded") {
		t.Errorf("a panicking sink should be reported as an error : %v", err)
	}

	// disabled loggers write nothing and report no error
	if err := logging.Discard().Fault(context.Background(), TEST_EVENT, "boom", appErr); err != nil {
		t.Error(err)
	}
}

func TestComponentAndFields(t *testing.T) {
	logger, buf := newTestLogger(nil)
	logger.Component("shutdown").WithField(logging.INSTANCE, "abc").Info().Msg("draining")

	record := records(t, buf)[0]
	if record[logging.COMPONENT] != "shutdown" || record[logging.INSTANCE] != "abc" {
		t.Errorf("fields were not added : %v", record)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"INFO":  zerolog.InfoLevel,
		" Warn": zerolog.WarnLevel,
		"ERROR": zerolog.ErrorLevel,
	}
	for s, expected := range tests {
		level, err := logging.ParseLevel(s)
		if err != nil {
			t.Errorf("%q : %v", s, err)
		}
		if level != expected {
			t.Errorf("%q : %v != %v", s, level, expected)
		}
	}

	if _, err := logging.ParseLevel("verbose"); err != logging.ErrUnknownLogLevel {
		t.Errorf("expected ErrUnknownLogLevel : %v", err)
	}
}
