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

// Package logging provides the process-wide structured logger.
//
// Records are JSON objects written by zerolog. Each record emitted with a context (Event.Ctx) is enriched with the
// request id of the scope that the context carries. The enrichment happens when the record is emitted, which means
// a single Logger is shared by all concurrently running requests.
package logging

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger fields
const (
	EVENT      = "event"
	REQUEST_ID = "requestId"
	INSTANCE   = "instance"
	VERSION    = "version"
	COMPONENT  = "component"
	ERROR      = "error"
)

var ErrUnknownLogLevel = errors.New("Unknown log level")

// EventID identifies a log event. Event ids are stable and are used to query logs independently of the message text.
type EventID uint64

// Log adds the event id to the log event
func (a EventID) Log(event *zerolog.Event) *zerolog.Event {
	return event.Uint64(EVENT, uint64(a))
}

// ParseLevel parses the log level. Valid values are : [DEBUG,INFO,WARN,ERROR]. The match is case insensitive.
//
// errors:
//	- ErrUnknownLogLevel
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "WARN":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, ErrUnknownLogLevel
	}
}

func init() {
	// log with nanosecond precision time
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
