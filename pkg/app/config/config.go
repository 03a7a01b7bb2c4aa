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

// Package config loads the application configuration.
//
// Configuration is layered, where later layers override earlier ones :
//	1. defaults
//	2. {dir}/config.shared.toml
//	3. {dir}/config.{env}.toml
//	4. environment variables
//
// Missing config files are skipped. The loaded configuration is validated. Configuration errors are untrusted, i.e.,
// the application cannot start with an invalid configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver"
	"github.com/oysterpack/faultline/pkg/app/errs"
	"github.com/oysterpack/faultline/pkg/app/logging"
)

const (
	DEFAULT_ENVIRONMENT = "development"
	DEFAULT_VERSION     = "0.0.1"
	DEFAULT_PORT        = 8080
	DEFAULT_LOG_LEVEL   = "INFO"
	DEFAULT_DB_PATH     = "faultline.db"

	SHARED_CONFIG_FILE = "config.shared.toml"

	// ConfigErrorKind is the error kind for configuration errors
	ConfigErrorKind = "ConfigError"
)

// environment variables
const (
	ENV_PORT                 = "PORT"
	ENV_LOG_LEVEL            = "LOG_LEVEL"
	ENV_LOG_DIR              = "LOG_DIR"
	ENV_LOG_CONSOLE          = "LOG_CONSOLE"
	ENV_DRAIN_TIMEOUT        = "DRAIN_TIMEOUT"
	ENV_TRUST_GENERIC_ERRORS = "TRUST_GENERIC_ERRORS"
	ENV_DB_PATH              = "DB_PATH"
	ENV_APP_VERSION          = "APP_VERSION"
)

// Config is the application configuration
type Config struct {
	Environment string         `toml:"-"`
	Version     string         `toml:"version"`
	HTTP        HTTPConfig     `toml:"http"`
	Log         LogConfig      `toml:"log"`
	Shutdown    ShutdownConfig `toml:"shutdown"`
	Errors      ErrorsConfig   `toml:"errors"`
	Database    DatabaseConfig `toml:"database"`
}

type HTTPConfig struct {
	Port int `toml:"port"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// Dir is where the log files are written. If blank, then no log files are written.
	Dir     string `toml:"dir"`
	Console bool   `toml:"console"`
}

type ShutdownConfig struct {
	// DrainTimeout is how long to wait for in-flight requests to complete on shutdown. Zero means wait indefinitely.
	DrainTimeout Duration `toml:"drain_timeout"`
}

type ErrorsConfig struct {
	// TrustGenericErrors is whether errors that do not carry a classification are trusted
	TrustGenericErrors bool `toml:"trust_generic_errors"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Duration is a time.Duration that is unmarshalled from text, e.g., "30s"
type Duration time.Duration

func (a *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*a = Duration(d)
	return nil
}

func (a Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(a).String()), nil
}

func (a Duration) Duration() time.Duration { return time.Duration(a) }

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Environment: DEFAULT_ENVIRONMENT,
		Version:     DEFAULT_VERSION,
		HTTP:        HTTPConfig{Port: DEFAULT_PORT},
		Log:         LogConfig{Level: DEFAULT_LOG_LEVEL, Console: true},
		Errors:      ErrorsConfig{TrustGenericErrors: errs.DefaultPolicy.TrustGenericErrors},
		Database:    DatabaseConfig{Path: DEFAULT_DB_PATH},
	}
}

// LookupEnv looks up an environment variable. os.LookupEnv is the production implementation.
type LookupEnv func(key string) (string, bool)

// Load loads the configuration for the specified environment.
//
// errors:
//	- ConfigErrorKind
func Load(dir, env string, lookupEnv LookupEnv) (*Config, error) {
	cfg := Default()
	if env = strings.TrimSpace(env); env != "" {
		cfg.Environment = env
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	for _, name := range []string{SHARED_CONFIG_FILE, fmt.Sprintf("config.%s.toml", cfg.Environment)} {
		if err := loadFile(filepath.Join(dir, name), cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes the file into cfg. Keys that are not present in the file keep their current value.
func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	metadata, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return configError(fmt.Sprintf("failed to parse config file : %s", path), err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return configError(fmt.Sprintf("unknown config keys in %s : %v", path, undecoded), nil)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config, lookupEnv LookupEnv) error {
	if v, ok := lookupEnv(ENV_PORT); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return configError(fmt.Sprintf("%s is not a number : %q", ENV_PORT, v), err)
		}
		cfg.HTTP.Port = port
	}
	if v, ok := lookupEnv(ENV_LOG_LEVEL); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookupEnv(ENV_LOG_DIR); ok {
		cfg.Log.Dir = v
	}
	if v, ok := lookupEnv(ENV_LOG_CONSOLE); ok {
		console, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return configError(fmt.Sprintf("%s is not a bool : %q", ENV_LOG_CONSOLE, v), err)
		}
		cfg.Log.Console = console
	}
	if v, ok := lookupEnv(ENV_DRAIN_TIMEOUT); ok {
		if err := cfg.Shutdown.DrainTimeout.UnmarshalText([]byte(v)); err != nil {
			return configError(fmt.Sprintf("%s is not a duration : %q", ENV_DRAIN_TIMEOUT, v), err)
		}
	}
	if v, ok := lookupEnv(ENV_TRUST_GENERIC_ERRORS); ok {
		trust, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return configError(fmt.Sprintf("%s is not a bool : %q", ENV_TRUST_GENERIC_ERRORS, v), err)
		}
		cfg.Errors.TrustGenericErrors = trust
	}
	if v, ok := lookupEnv(ENV_DB_PATH); ok {
		cfg.Database.Path = v
	}
	if v, ok := lookupEnv(ENV_APP_VERSION); ok {
		cfg.Version = v
	}
	return nil
}

// Validate checks the configuration
//
// errors:
//	- ConfigErrorKind
func (a *Config) Validate() error {
	if a.HTTP.Port < 0 || a.HTTP.Port > 65535 {
		return configError(fmt.Sprintf("http port is out of range : %d", a.HTTP.Port), nil)
	}
	if _, err := logging.ParseLevel(a.Log.Level); err != nil {
		return configError(fmt.Sprintf("invalid log level : %q", a.Log.Level), err)
	}
	if _, err := semver.NewVersion(a.Version); err != nil {
		return configError(fmt.Sprintf("version is not a semantic version : %q", a.Version), err)
	}
	if a.Shutdown.DrainTimeout < 0 {
		return configError(fmt.Sprintf("drain timeout must not be negative : %v", a.Shutdown.DrainTimeout.Duration()), nil)
	}
	if strings.TrimSpace(a.Database.Path) == "" {
		return configError("database path must not be blank", nil)
	}
	return nil
}

// ErrorPolicy returns the error classification policy
func (a *Config) ErrorPolicy() errs.Policy {
	return errs.Policy{TrustGenericErrors: a.Errors.TrustGenericErrors}
}

func configError(message string, cause error) error {
	opts := []errs.Option{errs.Untrusted()}
	if cause != nil {
		opts = append(opts, errs.WithCause(cause))
	}
	return errs.New(ConfigErrorKind, message, opts...)
}
