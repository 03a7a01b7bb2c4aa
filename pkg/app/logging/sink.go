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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// log files created within SinkConfig.Dir
const (
	ERROR_LOG       = "error.log"
	COMBINED_LOG    = "combined.log"
	APPLICATION_LOG = "application.log"
)

// application log rotation
const (
	ROTATE_MAX_SIZE_MB  = 20
	ROTATE_MAX_AGE_DAYS = 14
)

// SinkConfig specifies where log records are written
type SinkConfig struct {
	// Dir is the log file directory. If blank, then no log files are written.
	Dir string

	// Console receives human readable records. If nil, then console output is disabled.
	Console io.Writer

	// TimeFormat is used for console output
	TimeFormat string
}

// NewSink returns the writer that fans out to the configured outputs :
//	- {dir}/error.log       : error records and above
//	- {dir}/combined.log    : all records
//	- {dir}/application.log : all records, rotated and compressed
//	- console               : all records in human readable form
//
// The returned io.Closer closes the log files.
func NewSink(cfg SinkConfig) (zerolog.LevelWriter, io.Closer, error) {
	var writers []io.Writer
	var files closers

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory : %w", err)
		}

		errorLog, err := openLogFile(filepath.Join(cfg.Dir, ERROR_LOG))
		if err != nil {
			return nil, nil, err
		}
		files = append(files, errorLog)

		combinedLog, err := openLogFile(filepath.Join(cfg.Dir, COMBINED_LOG))
		if err != nil {
			files.Close()
			return nil, nil, err
		}
		files = append(files, combinedLog)

		applicationLog := &lumberjack.Logger{
			Filename: filepath.Join(cfg.Dir, APPLICATION_LOG),
			MaxSize:  ROTATE_MAX_SIZE_MB,
			MaxAge:   ROTATE_MAX_AGE_DAYS,
			Compress: true,
		}
		files = append(files, applicationLog)

		writers = append(writers,
			&zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: errorLog},
				Level:  zerolog.ErrorLevel,
			},
			combinedLog,
			applicationLog,
		)
	}

	if cfg.Console != nil {
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = "2006-01-02 15:04:05"
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: timeFormat})
	}

	if len(writers) == 0 {
		return zerolog.LevelWriterAdapter{Writer: io.Discard}, files, nil
	}
	return zerolog.MultiLevelWriter(writers...), files, nil
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file : %w", err)
	}
	return f, nil
}

type closers []io.Closer

func (a closers) Close() error {
	var errs []error
	for _, c := range a {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
