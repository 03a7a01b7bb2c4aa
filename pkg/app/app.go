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

package app

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/oysterpack/faultline/pkg/app/config"
	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/fault"
	"github.com/oysterpack/faultline/pkg/app/httpapi"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/oysterpack/faultline/pkg/app/reqctx"
	"github.com/oysterpack/faultline/pkg/app/shutdown"
	"github.com/oysterpack/faultline/pkg/app/uid"
	"github.com/oysterpack/faultline/pkg/data/keyvalue"
	"github.com/oysterpack/faultline/pkg/domain/product"
	"github.com/oysterpack/faultline/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DB_NAME is the root bucket of the application database
	DB_NAME = "faultline"

	StartupErrorKind = "StartupError"
)

type InstanceID string

// App wires the application components together
type App struct {
	cfg        *config.Config
	instanceID InstanceID
	createdOn  time.Time

	store       *reqctx.Store
	logger      *logging.Logger
	registry    *prometheus.Registry
	db          *keyvalue.Database
	coordinator *shutdown.Coordinator
	supervisor  *fault.Supervisor
	server      *http.Server

	mutex    sync.Mutex
	listener net.Listener
	started  bool
}

type options struct {
	exit       func(code int)
	listener   net.Listener
	console    io.Writer
	lastResort io.Writer
}

// Option is used to configure the App
type Option func(*options)

// WithExit replaces os.Exit
func WithExit(exit func(code int)) Option {
	return func(o *options) { o.exit = exit }
}

// WithListener sets the listener that the HTTP server serves on. By default, the server listens on the configured port.
func WithListener(listener net.Listener) Option {
	return func(o *options) { o.listener = listener }
}

// WithConsole sets the console log writer. By default, the console writes to stdout if console logging is enabled.
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithLastResort sets where faults are written when they cannot be logged. The default is stdout.
func WithLastResort(w io.Writer) Option {
	return func(o *options) { o.lastResort = w }
}

// New creates the application. The HTTP server is not started.
//
// errors:
//	- config.ConfigErrorKind
//	- StartupErrorKind
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{exit: os.Exit, lastResort: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)

	console := o.console
	if console == nil && cfg.Log.Console {
		console = os.Stdout
	}
	out, sink, err := logging.NewSink(logging.SinkConfig{Dir: cfg.Log.Dir, Console: console})
	if err != nil {
		return nil, startupError("failed to create the log sink", err)
	}

	app := &App{
		cfg:        cfg,
		instanceID: InstanceID(uid.NextUID()),
		createdOn:  time.Now(),
		store:      reqctx.NewStore(),
		registry:   metrics.NewRegistry(true),
	}
	app.logger = logging.New(out, app.store, level).
		WithField(logging.INSTANCE, app.instanceID).
		WithField(logging.VERSION, cfg.Version)

	// redirects go's std log to zerolog
	stdlog.SetFlags(0)
	stdlog.SetOutput(app.logger.Logger)

	app.db, err = openDatabase(cfg.Database.Path)
	if err != nil {
		sink.Close()
		return nil, startupError(fmt.Sprintf("failed to open the database : %s", cfg.Database.Path), err)
	}
	dbCreated, _ := app.db.Created()
	DB_OPENED.Log(app.logger.Info()).
		Str("path", cfg.Database.Path).
		Time("created", dbCreated).
		Msg("database opened")

	app.coordinator = shutdown.NewCoordinator(
		shutdown.WithDrainTimeout(cfg.Shutdown.DrainTimeout.Duration()),
		shutdown.WithExit(o.exit),
		shutdown.WithLogger(app.logger.Component("shutdown").Logger),
		shutdown.WithCloser(app.db),
		shutdown.WithCloser(sink),
	)

	policy := cfg.ErrorPolicy()
	app.supervisor = fault.NewSupervisor(app.logger, app.coordinator,
		fault.WithPolicy(policy),
		fault.WithLastResort(o.lastResort),
		fault.WithLogger(app.logger.Component("fault").Logger),
		fault.WithRegisterer(app.registry),
	)

	repo, err := product.NewRepository(app.db, app.logger)
	if err != nil {
		app.db.Close()
		sink.Close()
		return nil, err
	}
	api := &httpapi.API{Supervisor: app.supervisor, Policy: &policy}
	app.server = &http.Server{
		Handler: httpapi.NewRouter(httpapi.Deps{
			Store:    app.store,
			Logger:   app.logger,
			Registry: app.registry,
			Routes:   []httpapi.Routes{product.Routes(repo, api)},
		}),
		ErrorLog: stdlog.New(app.logger.Component("http").Logger, "", 0),
	}
	app.listener = o.listener

	APP_CREATED.Log(app.logger.Info()).
		Str("env", cfg.Environment).
		Time("createdOn", app.createdOn).
		Msg("created")
	return app, nil
}

// Start starts serving HTTP requests, and attaches the fault supervisor to the server.
// The server is served on a goroutine managed by the fault supervisor : if the server fails, then the process terminates.
//
// errors:
//	- StartupErrorKind
func (a *App) Start() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.started {
		return startupError("app is already started", nil)
	}
	if a.listener == nil {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.HTTP.Port))
		if err != nil {
			return startupError(fmt.Sprintf("failed to listen on port %d", a.cfg.HTTP.Port), err)
		}
		a.listener = listener
	}
	a.started = true

	a.supervisor.Attach(a.server)
	listener := a.listener
	a.supervisor.Go(context.Background(), func(ctx context.Context) error {
		if err := a.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errs.New("ServeError", "http server failed", errs.WithCause(err), errs.Untrusted())
		}
		return nil
	})
	APP_STARTED.Log(a.logger.Info()).Str("addr", listener.Addr().String()).Msg("started")
	return nil
}

// Addr returns the address the server is listening on, or nil if the app is not started
func (a *App) Addr() net.Addr {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

func (a *App) Logger() *logging.Logger { return a.logger }

func (a *App) InstanceID() InstanceID { return a.instanceID }

func (a *App) CreatedOn() time.Time { return a.createdOn }

func (a *App) Config() *config.Config { return a.cfg }

// Supervisor returns the fault supervisor. Faults that occur outside of request handling are reported to it.
func (a *App) Supervisor() *fault.Supervisor { return a.supervisor }

// Handler returns the HTTP handler
func (a *App) Handler() http.Handler { return a.server.Handler }

// openDatabase opens the database file if it exists, otherwise a new database is created
func openDatabase(path string) (*keyvalue.Database, error) {
	if _, err := os.Stat(path); err == nil {
		return keyvalue.OpenDatabase(path, DB_NAME)
	}
	return keyvalue.CreateDatabase(path, DB_NAME, false)
}

func startupError(message string, cause error) error {
	opts := []errs.Option{errs.Untrusted()}
	if cause != nil {
		opts = append(opts, errs.WithCause(cause))
	}
	return errs.New(StartupErrorKind, message, opts...)
}
