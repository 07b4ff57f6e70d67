package log

import (
	"context"
	"io"
	"log/slog"
	"math"
)

// FiniteHandler wraps an slog.Handler and replaces non-finite float64
// attribute values with their string form.
type FiniteHandler struct {
	handler slog.Handler
}

// NewFiniteHandler creates a new FiniteHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewFiniteHandler(handler slog.Handler) *FiniteHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &FiniteHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *FiniteHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it to the underlying handler.
func (h *FiniteHandler) Handle(ctx context.Context, r slog.Record) error {
	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(rewriteAttr(a))
		return true
	})

	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *FiniteHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = rewriteAttr(a)
	}
	return &FiniteHandler{handler: h.handler.WithAttrs(rewritten)}
}

// WithGroup returns a new handler with the given group name.
func (h *FiniteHandler) WithGroup(name string) slog.Handler {
	return &FiniteHandler{handler: h.handler.WithGroup(name)}
}

// rewriteAttr rewrites a single attribute, recursively handling groups.
func rewriteAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			rewritten[i] = rewriteAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	case slog.KindFloat64:
		if s, ok := nonFinite(a.Value.Float64()); ok {
			return slog.String(a.Key, s)
		}
	}
	return a
}

// nonFinite returns the display form of v if v is ±Inf or NaN.
func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "+Inf", true
	case math.IsInf(v, -1):
		return "-Inf", true
	}
	return "", false
}

// NewLogger creates a new slog.Logger writing text to w.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewFiniteHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a new slog.Logger that outputs JSON format.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewFiniteHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
