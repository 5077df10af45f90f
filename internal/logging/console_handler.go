package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// consoleHandler writes one human-readable line per record:
//
//	15:04:05 INFO upload: file uploaded [cat.jpg] {req-1} file_id=abc
//
// The component, file name and correlation ID are lifted out of the
// attributes into the header; everything else follows as key=value pairs.
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []field
	groups    []string
	addSource bool
	color     bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource, color bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource, color: color}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// header holds the values promoted out of the attribute list.
type header struct {
	component     string
	fileName      string
	correlationID string
}

func (hd *header) take(f field) bool {
	var slot *string
	switch f.key {
	case FieldComponent:
		slot = &hd.component
	case FieldFileName:
		slot = &hd.fileName
	case FieldCorrelationID:
		slot = &hd.correlationID
	default:
		return false
	}
	if *slot == "" {
		*slot = plainString(f.value)
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append(make([]field, 0, len(h.attrs)+record.NumAttrs()), h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.groups, attr)
		return true
	})

	var hd header
	rest := fields[:0]
	for _, f := range fields {
		if !hd.take(f) {
			rest = append(rest, f)
		}
	}

	var buf bytes.Buffer
	buf.Grow(96 + 24*len(rest))
	h.writeHeader(&buf, record, hd)
	for _, f := range rest {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(quoteIfNeeded(plainString(redact(f.key, f.value))))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) writeHeader(buf *bytes.Buffer, record slog.Record, hd header) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	h.paint(buf, ansiDim, ts.Local().Format(time.TimeOnly))
	buf.WriteByte(' ')
	h.paint(buf, levelColor(record.Level), levelLabel(record.Level))
	buf.WriteByte(' ')

	if hd.component != "" {
		buf.WriteString(hd.component)
		buf.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(msg)

	if hd.fileName != "" {
		buf.WriteString(" [" + hd.fileName + "]")
	}
	if hd.correlationID != "" {
		h.paint(buf, ansiCyan, " {"+hd.correlationID+"}")
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			h.paint(buf, ansiDim, " ("+filepath.Base(src.File)+":"+strconv.Itoa(src.Line)+")")
		}
	}
}

func (h *consoleHandler) paint(buf *bytes.Buffer, color, s string) {
	if !h.color || color == "" {
		buf.WriteString(s)
		return
	}
	buf.WriteString(color)
	buf.WriteString(s)
	buf.WriteString(ansiReset)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, attr := range attrs {
		clone.attrs = appendField(clone.attrs, clone.groups, attr)
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	c := *h
	c.attrs = append([]field(nil), h.attrs...)
	c.groups = append([]string(nil), h.groups...)
	return &c
}

type field struct {
	key   string
	value slog.Value
}

// appendField flattens attr under groups, joining group names with ".".
func appendField(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			groups = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendField(dst, groups, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(dst, field{key: key, value: attr.Value})
}

func plainString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level < slog.LevelInfo:
		return ansiDim
	default:
		return ""
	}
}
