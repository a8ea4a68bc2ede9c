package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/deja/internal/ui/output"
	"go.trai.ch/deja/internal/ui/style"
)

// consoleHandler renders slog records as single colored lines. Warnings and
// errors carry their icon, attributes append as key=value pairs, and group
// prefixes flatten to dotted keys.
type consoleHandler struct {
	out      *termenv.Output
	level    slog.Leveler
	prebuilt []string
	group    string
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	if w == nil {
		w = os.Stderr
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &consoleHandler{out: output.New(w, output.Detect), level: level}
}

// Enabled reports whether records at the given level are rendered.
func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record as one line, colored by level.
//
//nolint:gocritic // slog.Handler takes the record by value
func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	line := r.Message
	tint := style.Slate

	switch r.Level {
	case slog.LevelWarn:
		line = style.Warning + " " + line
		tint = style.Yellow
	case slog.LevelError:
		line = style.Cross + " " + line
		tint = style.Red
	}

	pairs := slices.Clone(h.prebuilt)
	r.Attrs(func(attr slog.Attr) bool {
		pairs = flattenAttr(pairs, h.group, attr)
		return true
	})
	if len(pairs) > 0 {
		line += " " + strings.Join(pairs, " ")
	}

	styled := h.out.String(line).Foreground(termenv.RGBColor(string(tint)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs preformats attrs under the group open at this point, per the
// slog contract.
func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.prebuilt = slices.Clone(h.prebuilt)
	for _, attr := range attrs {
		next.prebuilt = flattenAttr(next.prebuilt, h.group, attr)
	}
	return &next
}

// WithGroup qualifies subsequent attribute keys with name.
func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = dotted(h.group, name)
	return &next
}

// flattenAttr appends attr as "key=value", recursing into group values so
// nested groups become dotted prefixes.
func flattenAttr(pairs []string, prefix string, attr slog.Attr) []string {
	if attr.Value.Kind() == slog.KindGroup {
		inner := dotted(prefix, attr.Key)
		for _, nested := range attr.Value.Group() {
			pairs = flattenAttr(pairs, inner, nested)
		}
		return pairs
	}
	return append(pairs, dotted(prefix, attr.Key)+"="+attr.Value.String())
}

func dotted(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}
