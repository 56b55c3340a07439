package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the pretty text handler.
var (
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	msgStyle    = lipgloss.NewStyle().Bold(true)

	levelStyle = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

func styleForLevel(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return levelStyle[LevelError]
	case l >= slog.LevelWarn:
		return levelStyle[LevelWarn]
	case l >= slog.LevelInfo:
		return levelStyle[LevelInfo]
	case l >= slog.LevelDebug:
		return levelStyle[LevelDebug]
	default:
		return levelStyle[LevelTrace]
	}
}

// prettyTextHandler implements a colorized single-line text handler.
type prettyTextHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	group      string
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() && h.formatTime != nil {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(keyStyle.Render(ts))
			buf.WriteByte(' ')
		}
	}

	name := Level(r.Level).String()
	buf.WriteString(styleForLevel(r.Level).Render(fmt.Sprintf("%-5s", name)))
	buf.WriteByte(' ')

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			buf.WriteString(keyStyle.Render(src.File + ":" + strconv.Itoa(src.Line)))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(msgStyle.Render(r.Message))

	for _, a := range h.attrs {
		h.writeAttr(buf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	c := *h
	if c.group != "" {
		c.group += "."
	}

	c.group += name

	return &c
}

func (h *prettyTextHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyTextHandler) writeAttr(buf *bytes.Buffer, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			g.Key = a.Key + "." + g.Key
			h.writeAttr(buf, g)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(keyStyle.Render(a.Key + "="))

	v := a.Value

	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		buf.WriteString(numberStyle.Render(v.String()))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(trueStyle.Render("true"))
		} else {
			buf.WriteString(falseStyle.Render("false"))
		}

	default:
		buf.WriteString(stringStyle.Render(v.String()))
	}
}

// indentJSONHandler writes each record as indented JSON.
// Records are rendered by a [slog.JSONHandler] into a scratch buffer and then
// re-indented, so attribute semantics match the plain JSON format exactly.
type indentJSONHandler struct {
	opts  *slog.HandlerOptions
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
	group []string
}

func newIndentJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *indentJSONHandler {
	return &indentJSONHandler{opts: opts, mu: &sync.Mutex{}, w: w}
}

func (h *indentJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *indentJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	var scratch bytes.Buffer

	var inner slog.Handler = slog.NewJSONHandler(&scratch, h.opts)
	if len(h.attrs) > 0 {
		inner = inner.WithAttrs(h.attrs)
	}

	for _, g := range h.group {
		inner = inner.WithGroup(g)
	}

	if err := inner.Handle(ctx, r); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(scratch.Bytes()), "", "  "); err != nil {
		return err
	}

	out.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(out.Bytes())

	return err
}

func (h *indentJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &c
}

func (h *indentJSONHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.group = append(h.group[:len(h.group):len(h.group)], name)

	return &c
}
