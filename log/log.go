// Copyright 2026 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small leveled logger used across clrcore. It
// mirrors the shape of the logger the teacher PE parser pulls in from its
// own log subpackage: a minimal Logger interface, a level filter that wraps
// one, and a Helper that adds printf-style convenience methods on top.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level is a logging severity.
type Level int8

// Severities, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the human-readable name of the level.
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
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every clrcore component logs through.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger writes formatted lines to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes "LEVEL msg" lines to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "%s %s\n", level, msg)
	return err
}

// filter wraps a Logger, dropping any record below its configured level.
type filter struct {
	Logger
	level Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes through the filter.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) {
		f.level = level
	}
}

// NewFilter wraps logger with the given options, by default passing
// everything through (LevelDebug).
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filter{Logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, msg string) error {
	if level < f.level {
		return nil
	}
	return f.Logger.Log(level, msg)
}

// Helper adds printf-style and leveled convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, msg string) {
	if h == nil || h.logger == nil {
		return
	}
	_ = h.logger.Log(level, msg)
}

// Debug logs at LevelDebug.
func (h *Helper) Debug(msg string) { h.log(LevelDebug, msg) }

// Debugf logs a formatted message at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Warn logs at LevelWarn.
func (h *Helper) Warn(msg string) { h.log(LevelWarn, msg) }

// Warnf logs a formatted message at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs at LevelError.
func (h *Helper) Error(msg string) { h.log(LevelError, msg) }

// Errorf logs a formatted message at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.log(LevelError, fmt.Sprintf(format, args...))
}
