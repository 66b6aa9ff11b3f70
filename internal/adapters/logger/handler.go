package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/weft/internal/ui/output"
	"go.trai.ch/weft/internal/ui/style"
)

// levelGlyphs prefix records above Info.
var levelGlyphs = map[slog.Level]struct {
	glyph string
	color lipgloss.Color
}{
	slog.LevelWarn:  {style.Warning, style.Yellow},
	slog.LevelError: {style.Cross, style.Red},
}

// PrettyHandler is a slog.Handler for terminals. Info records print the bare
// message; warnings and errors get a colored glyph. Attributes follow as
// muted key=value pairs.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	prefix string
	attrs  []string
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
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

// Handle writes one line per record; multi-line messages keep their breaks.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if g, ok := levelGlyphs[r.Level]; ok {
		b.WriteString(h.paint(g.glyph, g.color))
		b.WriteByte(' ')
		b.WriteString(h.paint(r.Message, g.color))
	} else {
		b.WriteString(r.Message)
	}

	attrs := h.attrs
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.formatAttr(a))
		return true
	})
	if len(attrs) > 0 {
		b.WriteByte(' ')
		b.WriteString(h.paint(strings.Join(attrs, " "), style.Slate))
	}

	b.WriteByte('\n')
	_, err := h.out.WriteString(b.String())
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]string, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.formatAttr(a))
	}
	return &next
}

// WithGroup returns a new Handler whose attribute keys are qualified by name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *PrettyHandler) paint(s string, c lipgloss.Color) string {
	return h.out.String(s).Foreground(termenv.RGBColor(string(c))).String()
}

func (h *PrettyHandler) formatAttr(a slog.Attr) string {
	v := a.Value.Resolve().String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	return h.prefix + a.Key + "=" + v
}
