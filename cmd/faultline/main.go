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

// faultline serves the product catalog API.
//
//	./faultline -config-dir ./config -env production -log-level DEBUG
//
// The process runs until it receives SIGTERM or SIGINT, or until an untrusted fault occurs. In both cases in-flight
// requests are drained before the process exits.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/oysterpack/faultline/pkg/app"
	"github.com/oysterpack/faultline/pkg/app/config"
	"github.com/oysterpack/faultline/pkg/app/fault"
	"github.com/oysterpack/faultline/pkg/app/logging"
	"github.com/oysterpack/faultline/pkg/app/shutdown"
	"github.com/rs/zerolog"
)

// ENV_APP_ENV selects the environment when the -env flag is not specified
const ENV_APP_ENV = "APP_ENV"

var (
	configDir string
	env       string
	logLevel  string
)

func init() {
	flag.StringVar(&configDir, "config-dir", "config", "config file directory")
	flag.StringVar(&env, "env", "", "environment, which selects config.{env}.toml - default = $APP_ENV or "+config.DEFAULT_ENVIRONMENT)
	flag.StringVar(&logLevel, "log-level", "", "valid log levels [DEBUG,INFO,WARN,ERROR] - overrides $LOG_LEVEL")
}

func main() {
	flag.Parse()
	ctx := context.Background()

	// faults that occur before the app is created are logged to stderr, and exit the process with a non-zero code
	bootstrapLogger := logging.New(zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}), nil, zerolog.InfoLevel)
	bootstrap := fault.NewSupervisor(bootstrapLogger, shutdown.NewCoordinator(
		shutdown.WithExitCode(1),
		shutdown.WithLogger(bootstrapLogger.Logger),
	))
	defer bootstrap.Recover(ctx)

	if env == "" {
		env = os.Getenv(ENV_APP_ENV)
	}
	cfg, err := config.Load(configDir, env, lookupEnv)
	if err != nil {
		bootstrap.Handle(ctx, fault.Event{Kind: fault.UncaughtException, Value: err})
		return
	}

	application, err := app.New(cfg)
	if err != nil {
		bootstrap.Handle(ctx, fault.Event{Kind: fault.UncaughtException, Value: err})
		return
	}
	defer application.Supervisor().Recover(ctx)

	if err := application.Start(); err != nil {
		application.Supervisor().Handle(ctx, fault.Event{Kind: fault.UncaughtException, Value: err})
		return
	}

	// the process ends via the fault supervisor
	select {}
}

// lookupEnv gives the -log-level flag priority over the LOG_LEVEL environment variable
func lookupEnv(key string) (string, bool) {
	if key == config.ENV_LOG_LEVEL && logLevel != "" {
		return logLevel, true
	}
	return os.LookupEnv(key)
}
