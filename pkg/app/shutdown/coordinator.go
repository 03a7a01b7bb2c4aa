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

// Package shutdown ends the process in an orderly way : the listening endpoint is drained, resources are closed,
// and then the process exits.
package shutdown

import (
	"context"
	"io"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DEFAULT_EXIT_CODE is used for every termination, regardless of its cause
const DEFAULT_EXIT_CODE = 0

// Endpoint is the listening endpoint that is drained on shutdown, e.g., *http.Server.
//
// Shutdown must stop accepting new connections and wait for in-flight requests to complete, or until the context
// is done.
type Endpoint interface {
	Shutdown(ctx context.Context) error
}

// Coordinator runs the termination sequence. Once an Endpoint is handed to the Coordinator, only the Coordinator
// closes it.
type Coordinator struct {
	logger       zerolog.Logger
	drainTimeout time.Duration
	exitCode     int
	exit         func(code int)
	closers      []io.Closer

	once sync.Once
}

// Option is used to configure the Coordinator
type Option func(*Coordinator)

// WithDrainTimeout bounds how long the drain waits for in-flight requests. Zero, the default, waits indefinitely.
func WithDrainTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) { c.drainTimeout = timeout }
}

// WithExit replaces os.Exit
func WithExit(exit func(code int)) Option {
	return func(c *Coordinator) { c.exit = exit }
}

func WithExitCode(code int) Option {
	return func(c *Coordinator) { c.exitCode = code }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithCloser registers a resource that is closed after the endpoint is drained. Resources are closed in the order
// they were registered.
func WithCloser(closer io.Closer) Option {
	return func(c *Coordinator) {
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
}

// NewCoordinator returns a new Coordinator. By default, the drain is unbounded and the process exits via os.Exit.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:   zerolog.Nop(),
		exitCode: DEFAULT_EXIT_CODE,
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddCloser registers a resource after construction. It must be called before Terminate.
func (a *Coordinator) AddCloser(closer io.Closer) {
	WithCloser(closer)(a)
}

// Terminate drains the endpoint, closes the registered resources, and then ends the process.
//
// The sequence runs once. Errors and panics raised while draining or closing are logged and swallowed : the exit
// always happens. A nil endpoint means nothing was ever bound, and the process exits right away.
func (a *Coordinator) Terminate(endpoint Endpoint) {
	a.once.Do(func() {
		defer func() {
			a.safely("exit", func() {
				SHUTDOWN_EXITING.Log(a.logger.Info()).Int("code", a.exitCode).Msg("exiting")
			})
			a.exit(a.exitCode)
		}()

		SHUTDOWN_STARTED.Log(a.logger.Info()).Dur("drain-timeout", a.drainTimeout).Msg("shutting down")
		a.safely("drain", func() { a.drain(endpoint) })
		for _, closer := range a.closers {
			a.safely("close", func() {
				if err := closer.Close(); err != nil {
					SHUTDOWN_CLOSE_ERR.Log(a.logger.Warn()).Err(err).Msgf("failed to close %T", closer)
				}
			})
		}
	})
}

func (a *Coordinator) drain(endpoint Endpoint) {
	if isNil(endpoint) {
		return
	}

	ctx := context.Background()
	if a.drainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.drainTimeout)
		defer cancel()
	}

	if err := endpoint.Shutdown(ctx); err != nil {
		SHUTDOWN_DRAIN_ERR.Log(a.logger.Warn()).Err(err).Msg("Error during endpoint shutdown.")
		// always ensure the listener is closed
		if closer, ok := endpoint.(io.Closer); ok {
			closer.Close()
		}
		return
	}
	SHUTDOWN_DRAINED.Log(a.logger.Info()).Msg("endpoint drained")
}

// safely runs the shutdown step, recovering any panic
func (a *Coordinator) safely(step string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			func() {
				defer func() { recover() }()
				SHUTDOWN_STEP_PANICKED.Log(a.logger.Error()).Str("step", step).Interface("panic", r).Msg("shutdown step panicked")
			}()
		}
	}()
	f()
}

func isNil(endpoint Endpoint) bool {
	if endpoint == nil {
		return true
	}
	v := reflect.ValueOf(endpoint)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
