// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides a key/value logger shared by all ledger components.
// It is a thin front over log/slog with level filtering and terminal-aware
// output. Packages obtain a scoped logger via WithContext.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Logger writes leveled key/value records. Keys and values alternate in ctx.
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)

	// With returns a logger with the given context attached to every record.
	With(ctx ...any) Logger
}

var (
	root  atomic.Pointer[slog.Logger]
	level = new(slog.LevelVar)
)

func init() {
	// human-readable output on a terminal, machine-readable otherwise
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	root.Store(slog.New(handler))
}

// SetLevel adjusts the global verbosity: "debug", "info", "warn" or "error".
func SetLevel(name string) error {
	switch name {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// SetHandler replaces the root handler. Used by tests and the daemon entry
// point.
func SetHandler(h slog.Handler) {
	root.Store(slog.New(h))
}

// WithContext returns a logger carrying the given key/value context.
func WithContext(ctx ...any) Logger {
	return &logger{attrs: ctx}
}

type logger struct {
	attrs []any
}

func (l *logger) out() *slog.Logger {
	return root.Load().With(l.attrs...)
}

func (l *logger) Debug(msg string, ctx ...any) { l.out().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.out().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.out().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.out().Error(msg, ctx...) }

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.attrs)+len(ctx))
	merged = append(merged, l.attrs...)
	merged = append(merged, ctx...)
	return &logger{attrs: merged}
}
