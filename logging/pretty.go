package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// PrettyHandler writes each record as an indented JSON object. Decision logs
// carry nested groups (board, snake, trace) that are hard to read on one line.
type PrettyHandler struct {
	out    io.Writer
	mu     *sync.Mutex
	opts   slog.HandlerOptions
	attrs  []scopedAttr
	groups []string
}

// scopedAttr remembers which groups were open when WithAttrs was called.
type scopedAttr struct {
	groups []string
	attr   slog.Attr
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{out: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	record := map[string]any{
		slog.TimeKey:    ts.Format(time.RFC3339Nano),
		slog.LevelKey:   r.Level.String(),
		slog.MessageKey: r.Message,
	}
	if h.opts.AddSource && r.PC != 0 {
		record[slog.SourceKey] = callerOf(r.PC)
	}

	for _, sa := range h.attrs {
		put(descend(record, sa.groups), sa.attr)
	}
	if r.NumAttrs() > 0 {
		target := descend(record, h.groups)
		r.Attrs(func(a slog.Attr) bool {
			put(target, a)
			return true
		})
	}

	buf, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		buf, _ = json.Marshal(map[string]string{
			slog.TimeKey:    ts.Format(time.RFC3339Nano),
			slog.LevelKey:   r.Level.String(),
			slog.MessageKey: r.Message,
			"marshal_error": err.Error(),
		})
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(buf)
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]scopedAttr(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, scopedAttr{groups: h.groups, attr: a})
	}
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func descend(root map[string]any, groups []string) map[string]any {
	for _, g := range groups {
		m, ok := root[g].(map[string]any)
		if !ok {
			m = map[string]any{}
			root[g] = m
		}
		root = m
	}
	return root
}

func put(dst map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	if v.Kind() == slog.KindGroup {
		inner := dst
		if a.Key != "" {
			inner = descend(dst, []string{a.Key})
		}
		for _, ga := range v.Group() {
			put(inner, ga)
		}
		return
	}
	dst[a.Key] = plain(v)
}

func plain(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		if s, ok := v.Any().(fmt.Stringer); ok {
			return s.String()
		}
		return v.Any()
	default:
		return v.String()
	}
}

func callerOf(pc uintptr) string {
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}
