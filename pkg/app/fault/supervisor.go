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

package fault

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/json-iterator/go"
	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/oysterpack/faultline/pkg/app/shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

// Kind is the fault source
type Kind string

const (
	UncaughtException  Kind = "uncaught-exception"
	UnhandledRejection Kind = "unhandled-rejection"
	TerminateRequest   Kind = "terminate-request"
	RequestError       Kind = "request-error"
)

// LAST_RESORT_PREAMBLE prefixes what is written to the last resort writer when the fault could not be logged
const LAST_RESORT_PREAMBLE = "The error handler failed. Here are the handler failure and then the origin error that it tried to handle: "

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is a fault delivered to the Supervisor
type Event struct {
	Kind  Kind
	Value interface{}
}

// FaultLogger records faults. It returns an error if the fault could not be recorded.
type FaultLogger interface {
	Fault(ctx context.Context, event logging.EventID, msg string, err *errs.Error) error
}

// Terminator ends the process
type Terminator interface {
	Terminate(endpoint shutdown.Endpoint)
}

// Supervisor handles process level faults.
type Supervisor struct {
	logger     FaultLogger
	terminator Terminator
	policy     errs.Policy
	log        zerolog.Logger
	lastResort io.Writer

	signals    []os.Signal
	notify     func(c chan<- os.Signal, sig ...os.Signal)
	stopNotify func(c chan<- os.Signal)

	faults *prometheus.CounterVec

	mutex    sync.Mutex
	endpoint shutdown.Endpoint
	attached bool
	// faults being handled via HandleAsync
	pending int
	idle    *sync.Cond

	t tomb.Tomb
}

// Option is used to configure the Supervisor
type Option func(*Supervisor)

// WithPolicy sets the classification policy. The default is errs.DefaultPolicy.
func WithPolicy(policy errs.Policy) Option {
	return func(s *Supervisor) { s.policy = policy }
}

// WithLastResort sets where faults are written when the logger fails. The default is os.Stdout.
func WithLastResort(w io.Writer) Option {
	return func(s *Supervisor) { s.lastResort = w }
}

// WithSignals sets the signals that are mapped to termination requests. The default is SIGTERM and SIGINT.
func WithSignals(signals ...os.Signal) Option {
	return func(s *Supervisor) { s.signals = signals }
}

// WithNotify replaces signal.Notify and signal.Stop
func WithNotify(notify func(c chan<- os.Signal, sig ...os.Signal), stop func(c chan<- os.Signal)) Option {
	return func(s *Supervisor) {
		s.notify = notify
		s.stopNotify = stop
	}
}

// WithLogger sets the logger used for the supervisor's own lifecycle events
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Supervisor) { s.log = logger }
}

// WithRegisterer registers the fault counter
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(s *Supervisor) {
		if err := registerer.Register(s.faults); err != nil {
			if registered, ok := err.(prometheus.AlreadyRegisteredError); ok {
				s.faults = registered.ExistingCollector.(*prometheus.CounterVec)
			}
		}
	}
}

// NewSupervisor creates a new Supervisor. The logger and terminator are required.
func NewSupervisor(logger FaultLogger, terminator Terminator, opts ...Option) *Supervisor {
	s := &Supervisor{
		logger:     logger,
		terminator: terminator,
		policy:     errs.DefaultPolicy,
		log:        zerolog.Nop(),
		lastResort: os.Stdout,
		signals:    []os.Signal{syscall.SIGTERM, syscall.SIGINT},
		notify:     signal.Notify,
		stopNotify: signal.Stop,
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faultline",
			Name:      "faults_total",
			Help:      "Faults handled by the supervisor",
		}, []string{"kind", "trusted"}),
	}
	s.idle = sync.NewCond(&s.mutex)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach registers the endpoint that is drained on termination and subscribes to the termination signals.
// Attach is called once per process, after the endpoint starts listening.
func (a *Supervisor) Attach(endpoint shutdown.Endpoint) {
	a.mutex.Lock()
	a.endpoint = endpoint
	a.attached = true
	a.mutex.Unlock()

	sigs := make(chan os.Signal, 1)
	a.notify(sigs, a.signals...)
	a.t.Go(func() error {
		defer a.stopNotify(sigs)
		for {
			select {
			case <-a.t.Dying():
				return nil
			case sig := <-sigs:
				a.Handle(context.Background(), Event{Kind: TerminateRequest, Value: sig})
			}
		}
	})
	SUPERVISOR_ATTACHED.Log(a.log.Info()).Interface("signals", a.signals).Msg("attached")
}

// Endpoint returns the attached endpoint, or nil
func (a *Supervisor) Endpoint() shutdown.Endpoint {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.endpoint
}

// Stop unsubscribes from the termination signals and waits for pending faults to be handled.
func (a *Supervisor) Stop() {
	a.mutex.Lock()
	attached := a.attached
	a.mutex.Unlock()

	a.t.Kill(nil)
	if attached {
		a.t.Wait()
	}
	a.Wait()
	SUPERVISOR_STOPPED.Log(a.log.Info()).Msg("stopped")
}

// Go runs fn on a new goroutine. If fn panics, then an uncaught-exception fault is handled. If fn returns an error,
// then an unhandled-rejection fault is handled.
//
// The returned channel is closed after fn returns and its fault, if any, has been handled.
func (a *Supervisor) Go(ctx context.Context, fn func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer a.Recover(ctx)
		if err := fn(ctx); err != nil {
			a.Handle(ctx, Event{Kind: UnhandledRejection, Value: err})
		}
	}()
	return done
}

// Recover handles a panic as an uncaught-exception fault. It must be deferred directly :
//
//	defer supervisor.Recover(ctx)
func (a *Supervisor) Recover(ctx context.Context) {
	if r := recover(); r != nil {
		a.Handle(ctx, Event{Kind: UncaughtException, Value: errs.NewPanic(r)})
	}
}

// HandleAsync handles the fault on a new goroutine. It is used by request handlers : terminating the process drains
// in-flight requests, which must not include the request that reported the fault.
//
// HandleAsync may be called concurrently with Wait.
func (a *Supervisor) HandleAsync(ctx context.Context, event Event) {
	a.mutex.Lock()
	a.pending++
	a.mutex.Unlock()
	go func() {
		defer a.handled()
		a.Handle(ctx, event)
	}()
}

func (a *Supervisor) handled() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.pending--
	if a.pending == 0 {
		a.idle.Broadcast()
	}
}

// Wait blocks until no faults handed to HandleAsync are being handled.
// Goroutines started via Go are not waited on : use the channel returned by Go.
func (a *Supervisor) Wait() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	for a.pending > 0 {
		a.idle.Wait()
	}
}

// Handle normalizes, logs, and then decides whether the process must terminate.
//
// Handle returns normally when the fault is trusted. Termination requests and untrusted faults are handed to the
// Terminator, which does not return in production.
func (a *Supervisor) Handle(ctx context.Context, event Event) {
	if ctx == nil {
		ctx = context.Background()
	}
	err := a.normalize(event)
	a.record(ctx, event, err)
	a.faults.WithLabelValues(string(event.Kind), strconv.FormatBool(err.Trusted())).Inc()

	if event.Kind == TerminateRequest || !err.Trusted() {
		a.terminator.Terminate(a.Endpoint())
	}
}

func (a *Supervisor) normalize(event Event) *errs.Error {
	if event.Kind == TerminateRequest {
		return errs.New(
			string(TerminateRequest),
			fmt.Sprintf("App received %s event, try to gracefully close the server", signalName(event.Value)),
			errs.Untrusted(),
		)
	}
	return a.policy.Normalize(event.Value)
}

// record logs the error. If logging fails, then the failure and the raw value are written to the last resort writer.
func (a *Supervisor) record(ctx context.Context, event Event, err *errs.Error) {
	logErr := func() (logErr error) {
		defer func() {
			if r := recover(); r != nil {
				logErr = fmt.Errorf("fault logger panicked : %v", r)
			}
		}()
		msg := err.Message()
		if msg == "" {
			msg = err.Kind()
		}
		return a.logger.Fault(ctx, event.Kind.eventID(), msg, err)
	}()
	if logErr != nil {
		a.writeLastResort(logErr, event.Value)
	}
}

// writeLastResort never panics, and its own failures are ignored
func (a *Supervisor) writeLastResort(handlingErr error, value interface{}) {
	defer func() { recover() }()
	fmt.Fprintf(a.lastResort, "%s%s %s\n", LAST_RESORT_PREAMBLE, render(handlingErr), render(value))
}

// render returns the value as JSON. Values that cannot be marshalled are rendered by spew.
func render(v interface{}) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("%T", v)
		}
	}()
	if err, ok := v.(error); ok {
		v = err.Error()
	}
	if out, err := json.MarshalToString(v); err == nil {
		return out
	}
	return spew.Sprintf("%+v", v)
}

func signalName(v interface{}) string {
	switch v {
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGINT:
		return "SIGINT"
	}
	return fmt.Sprint(v)
}
