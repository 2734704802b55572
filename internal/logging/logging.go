// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Aurora Restore Pipeline - a durable, resumable orchestration pipeline for cross-region Aurora snapshot restore operations.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package logging provides structured logging for the restore pipeline,
// backed by zerolog.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses the log_level config key: DEBUG, INFO, WARNING, ERROR.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides structured logging. Every engine component and step
// handler takes one of these rather than reaching for a package-level
// global, so tests can inject a recording logger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair in structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// NewField creates a new field.
func NewField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// zlogger adapts zerolog.Logger to the Logger interface.
type zlogger struct {
	z zerolog.Logger
}

// NewLogger creates a new logger writing JSON lines to stdout, honoring the
// resolved log_level config key.
func NewLogger(level Level) Logger {
	zerolog.SetGlobalLevel(toZerologLevel(level))
	z := zerolog.New(os.Stdout).With().Timestamp().Logger()
	return &zlogger{z: z}
}

// NewConsoleLogger creates a human-readable logger, used by the CLI's
// interactive commands (invoke/replay) rather than the production dispatcher.
func NewConsoleLogger(verbose bool) Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	zerolog.SetGlobalLevel(toZerologLevel(level))
	z := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return &zlogger{z: z}
}

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zlogger) Debug(msg string, fields ...Field) { withFields(l.z.Debug(), fields).Msg(msg) }
func (l *zlogger) Info(msg string, fields ...Field)  { withFields(l.z.Info(), fields).Msg(msg) }
func (l *zlogger) Warn(msg string, fields ...Field)  { withFields(l.z.Warn(), fields).Msg(msg) }
func (l *zlogger) Error(msg string, fields ...Field) { withFields(l.z.Error(), fields).Msg(msg) }

// WithFields returns a new logger with additional fields bound to every
// subsequent call, mirroring zerolog's child-logger idiom.
func (l *zlogger) WithFields(fields ...Field) Logger {
	ctx := l.z.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zlogger{z: ctx.Logger()}
}

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}
