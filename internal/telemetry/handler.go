package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TimeLayout — формат времени в строке лога.
const TimeLayout = "2006-01-02 15:04:05,000"

// LineHandler пишет записи в формате
//
//	2026-10-17 12:00:00,000 - <name> - <LEVEL> - <message> key=value ...
//
// Одна запись — одна строка. Атрибуты идут после сообщения.
type LineHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	name  string
	level slog.Leveler

	// preformatted — атрибуты из WithAttrs, уже отформатированные.
	preformatted string
	groups       []string

	now func() time.Time
}

// NewLineHandler создаёт LineHandler для логгера с именем name.
func NewLineHandler(w io.Writer, name string, level slog.Leveler) *LineHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LineHandler{
		mu:    &sync.Mutex{},
		w:     w,
		name:  name,
		level: level,
		now:   time.Now,
	}
}

// NewBotLogger создаёт логгер бота: имя в строках — идентификатор бота.
func NewBotLogger(w io.Writer, botID string, level slog.Level) *slog.Logger {
	return slog.New(NewLineHandler(w, botID, level))
}

// Enabled сообщает, пишется ли уровень.
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle форматирует и пишет запись.
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	t := r.Time
	if t.IsZero() {
		t = h.now()
	}

	var buf bytes.Buffer
	buf.WriteString(t.Format(TimeLayout))
	buf.WriteString(" - ")
	buf.WriteString(h.name)
	buf.WriteString(" - ")
	buf.WriteString(LevelName(r.Level))
	buf.WriteString(" - ")
	buf.WriteString(flatten(r.Message))
	buf.WriteString(h.preformatted)

	prefix := groupPrefix(h.groups)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs возвращает handler с дополнительными атрибутами.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	var buf bytes.Buffer
	prefix := groupPrefix(h.groups)
	for _, a := range attrs {
		appendAttr(&buf, prefix, a)
	}

	h2 := *h
	h2.preformatted = h.preformatted + buf.String()
	return &h2
}

// WithGroup возвращает handler, добавляющий группу к ключам атрибутов.
func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

func groupPrefix(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	return strings.Join(groups, ".") + "."
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range attrs {
			appendAttr(buf, prefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')

	s := a.Value.String()
	if s == "" || strings.ContainsAny(s, " =\"\n\t") {
		s = strconv.Quote(s)
	}
	buf.WriteString(s)
}

// flatten оставляет сообщение однострочным.
func flatten(msg string) string {
	if !strings.ContainsAny(msg, "\r\n") {
		return msg
	}
	return strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(msg)
}

var _ slog.Handler = (*LineHandler)(nil)
