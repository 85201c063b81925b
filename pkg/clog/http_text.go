package clog

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
)

// HTTPTextHandler prints one readable line per record for local runs:
// method, path and status first, then the message and error, then every
// other attribute indented below.
type HTTPTextHandler struct {
	opts  textOptions
	attrs []slog.Attr
	mu    *sync.Mutex
	w     io.Writer
}

type textOptions struct {
	color bool
	level slog.Leveler
}

type TextHandlerOption func(*textOptions)

func WithColor(on bool) TextHandlerOption {
	return func(o *textOptions) { o.color = on }
}

func WithLevel(level slog.Level) TextHandlerOption {
	return func(o *textOptions) { o.level = level }
}

func NewHTTPTextHandler(w io.Writer, opts ...TextHandlerOption) *HTTPTextHandler {
	o := textOptions{color: true, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}
	return &HTTPTextHandler{opts: o, mu: &sync.Mutex{}, w: w}
}

func (h *HTTPTextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.opts.level.Level()
}

// WithGroup is accepted but groups are flattened; request attributes are
// all top-level.
func (h *HTTPTextHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *HTTPTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(slices.Clip(h.attrs), attrs...)
	return &nh
}

var leadingColumns = []string{"method", "path", "status"}

func (h *HTTPTextHandler) Handle(_ context.Context, record slog.Record) error {
	kv := make(map[string]slog.Value, len(h.attrs)+record.NumAttrs())
	for _, a := range h.attrs {
		kv[a.Key] = a.Value
	}
	record.Attrs(func(a slog.Attr) bool {
		kv[a.Key] = a.Value
		return true
	})

	var buf bytes.Buffer
	h.paint(&buf, nil, "%s ", record.Time.Format(time.RFC3339))
	h.paint(&buf, levelColor(record.Level), "%s ", record.Level)
	for _, key := range leadingColumns {
		if v, ok := kv[key]; ok {
			h.paint(&buf, nil, "%s ", v)
			delete(kv, key)
		}
	}
	h.paint(&buf, color.New(color.FgGreen), "%s", record.Message)
	if v, ok := kv[ErrorAttributeKey]; ok {
		delete(kv, ErrorAttributeKey)
		h.paint(&buf, color.New(color.FgRed), " %q", v.String())
	}
	buf.WriteByte('\n')
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		h.paint(&buf, nil, "    %s=%s\n", k, kv[k])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *HTTPTextHandler) paint(buf *bytes.Buffer, c *color.Color, format string, args ...any) {
	if c == nil {
		c = color.New()
	}
	if h.opts.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintf(buf, format, args...)
}

func levelColor(level slog.Level) *color.Color {
	switch {
	case level >= slog.LevelError:
		return color.New(color.FgRed)
	case level >= slog.LevelWarn:
		return color.New(color.FgYellow)
	case level >= slog.LevelInfo:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgCyan)
	}
}
