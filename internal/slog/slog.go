// Package slog brokers between log/slog and golang.org/x/exp/slog depending on the Go version.
package slog

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Init replaces the default logger with a text logger writing to w at the named level ("debug", "info", "warn" or
// "error").  An empty level means "info".
func Init(w io.Writer, level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	setDefault(newLogger(newTextHandler(w, &handlerOptions{Level: lvl})))
	return nil
}

func parseLevel(level string) (levelType, error) {
	switch strings.ToLower(level) {
	case `debug`:
		return levelDebug, nil
	case ``, `info`:
		return levelInfo, nil
	case `warn`, `warning`:
		return levelWarn, nil
	case `error`:
		return levelError, nil
	}
	return levelInfo, fmt.Errorf(`unknown log level %q`, level)
}

func Error(msg string, keyvals ...any) { Background().Error(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { Background().Warn(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { Background().Info(msg, keyvals...) }
func Debug(msg string, keyvals ...any) { Background().Debug(msg, keyvals...) }

func Background() Interface { return wrap{context.Background(), defaultLogger()} }

// From returns the logger carried by ctx, or the default logger, extended with keyvals.
func From(ctx context.Context, keyvals ...any) Interface {
	logger, ok := ctx.Value(ctxLogger{}).(Interface)
	if !ok {
		return wrap{ctx, defaultLogger().With(keyvals...)}
	}
	if len(keyvals) == 0 {
		return logger
	}
	return logger.With(keyvals...)
}

// With returns a context carrying a logger extended with keyvals.
func With(ctx context.Context, keyvals ...any) context.Context {
	if len(keyvals) == 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger{}, From(ctx, keyvals...))
}

type ctxLogger struct{}

type wrap struct {
	ctx context.Context
	log *logger
}

func (w wrap) With(keyvals ...any) Interface {
	return wrap{w.ctx, w.log.With(keyvals...)}
}

func (w wrap) Error(msg string, keyvals ...any) { w.log.Log(w.ctx, levelError, msg, keyvals...) }
func (w wrap) Warn(msg string, keyvals ...any)  { w.log.Log(w.ctx, levelWarn, msg, keyvals...) }
func (w wrap) Info(msg string, keyvals ...any)  { w.log.Log(w.ctx, levelInfo, msg, keyvals...) }
func (w wrap) Debug(msg string, keyvals ...any) { w.log.Log(w.ctx, levelDebug, msg, keyvals...) }

type Interface interface {
	With(keyvals ...any) Interface
	Error(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Debug(msg string, keyvals ...any)
}
