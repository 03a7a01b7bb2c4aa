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

package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/reqctx"
	"github.com/rs/zerolog"
)

// Logger is the process-wide logger.
//
// Log through the embedded zerolog.Logger and attach the request context to the event in order for the record to
// carry the request id :
//
//	logger.Info().Ctx(ctx).Str("id", id).Msg("product created")
type Logger struct {
	zerolog.Logger

	out zerolog.LevelWriter
}

// New creates a new Logger that writes to the specified sink. The store is used to look up the request id when
// records are emitted - it may be nil.
func New(out zerolog.LevelWriter, store *reqctx.Store, level zerolog.Level) *Logger {
	logger := zerolog.New(out).
		Level(level).
		With().Timestamp().Logger().
		Hook(RequestIDHook{store})
	return &Logger{Logger: logger, out: out}
}

// Discard returns a Logger that writes nothing
func Discard() *Logger {
	return New(zerolog.LevelWriterAdapter{Writer: io.Discard}, nil, zerolog.Disabled)
}

// WithField returns a new Logger that adds the field to every record
func (a *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Logger: a.Logger.With().Interface(key, value).Logger(),
		out:    a.out,
	}
}

// Component returns a new Logger for the named component
func (a *Logger) Component(name string) *Logger {
	return &Logger{
		Logger: a.Logger.With().Str(COMPONENT, name).Logger(),
		out:    a.out,
	}
}

// Fault logs the error at error level.
//
// Unlike the zerolog API, which reports sink failures to zerolog.ErrorHandler, the sink's write error is returned.
// A panic raised while logging is recovered and returned as an error. Fault is used on fault handling paths that must
// know whether the failure was recorded.
func (a *Logger) Fault(ctx context.Context, event EventID, msg string, err *errs.Error) (writeErr error) {
	defer func() {
		if r := recover(); r != nil {
			writeErr = fmt.Errorf("failed to log fault : %v", r)
		}
	}()

	buf := &bytes.Buffer{}
	logger := a.Logger.Output(buf)
	event.Log(logger.Error().Ctx(ctx)).Object(ERROR, err).Msg(msg)
	if buf.Len() == 0 {
		// error level is disabled
		return nil
	}
	_, writeErr = a.out.WriteLevel(zerolog.ErrorLevel, buf.Bytes())
	return
}

// RequestIDHook adds the request id to records whose event context carries a request scope.
type RequestIDHook struct {
	Store *reqctx.Store
}

// Run implements zerolog.Hook
func (a RequestIDHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if a.Store == nil {
		return
	}
	if requestID, ok := a.Store.RequestID(e.GetCtx()); ok {
		e.Str(REQUEST_ID, requestID)
	}
}
