package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/xs/internal/ui/output"
	"go.trai.ch/xs/internal/ui/style"
)

// SourceKey names the attribute tagging records that originate in the module loader.
const SourceKey = "source"

// leadingKeys are rendered first, in this order, so a load can be followed across lines.
var leadingKeys = []string{"url", "origin", "state"}

// PrettyHandler renders records as one colored line: level icon, loader tag,
// message and key=value attributes.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a new PrettyHandler writing to the provided writer.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := levelStyle(r.Level)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, h.qualify(attr))
		return true
	})

	var tag string
	attrs = slices.DeleteFunc(attrs, func(a slog.Attr) bool {
		if a.Key != SourceKey {
			return false
		}
		tag = "[" + a.Value.String() + "]"
		return true
	})

	var sb strings.Builder
	if icon != "" {
		sb.WriteString(icon + " ")
	}
	if tag != "" {
		sb.WriteString(h.out.String(tag).Foreground(termenv.RGBColor(string(style.Slate))).String() + " ")
	}
	sb.WriteString(h.out.String(r.Message).Foreground(color).String())
	for _, a := range orderAttrs(attrs) {
		sb.WriteString(" " + formatAttr(a))
	}
	sb.WriteString("\n")

	_, err := h.out.WriteString(sb.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := slices.Clone(h.attrs)
	for _, a := range attrs {
		merged = append(merged, h.qualify(a))
	}
	return &PrettyHandler{out: h.out, level: h.level, attrs: merged, group: h.group}
}

// WithGroup returns a new Handler nesting later attributes under name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &PrettyHandler{out: h.out, level: h.level, attrs: h.attrs, group: group}
}

func (h *PrettyHandler) qualify(a slog.Attr) slog.Attr {
	if h.group == "" || a.Key == SourceKey {
		return a
	}
	return slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
}

func levelStyle(level slog.Level) (string, termenv.Color) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return style.Warning, termenv.RGBColor(string(style.Yellow))
	default:
		return "", termenv.RGBColor(string(style.Slate))
	}
}

// orderAttrs moves the leading keys to the front and keeps the rest in record order.
func orderAttrs(attrs []slog.Attr) []slog.Attr {
	rank := func(a slog.Attr) int {
		if i := slices.Index(leadingKeys, a.Key); i >= 0 {
			return i
		}
		return len(leadingKeys)
	}
	ordered := slices.Clone(attrs)
	slices.SortStableFunc(ordered, func(a, b slog.Attr) int {
		return rank(a) - rank(b)
	})
	return ordered
}

// formatAttr renders key=value, quoting values that would not read back as one token.
func formatAttr(a slog.Attr) string {
	v := a.Value.Resolve().String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	return a.Key + "=" + v
}
