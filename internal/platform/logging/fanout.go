package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// FanoutHandler writes every record to each of its sinks. With file logging
// enabled the console handler and the rolling JSON file are its sinks.
type FanoutHandler struct {
	sinks []slog.Handler
}

func NewFanoutHandler(sinks ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{sinks: sinks}
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f.sinks, func(s slog.Handler) bool { return s.Enabled(ctx, level) })
}

// Handle gives each enabled sink its own clone of r, so one sink adding
// attributes cannot leak into another. A failing sink does not stop the rest.
func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler signature
	var err error
	for _, s := range f.sinks {
		if s.Enabled(ctx, r.Level) {
			err = errors.Join(err, s.Handle(ctx, r.Clone()))
		}
	}
	return err
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	return f.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (f *FanoutHandler) derive(fn func(slog.Handler) slog.Handler) *FanoutHandler {
	sinks := slices.Clone(f.sinks)
	for i, s := range sinks {
		sinks[i] = fn(s)
	}
	return &FanoutHandler{sinks: sinks}
}
