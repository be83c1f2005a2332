package debug

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TreeWriter accumulates an indented text tree, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

// WriteTo implements io.WriterTo.
func (tw TreeWriter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, tw.w.String())
	return int64(n), err
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Property writes a "name: value" line. Values that would not read back
// unchanged are quoted.
func (tw TreeWriter) Property(depth int, name, value string) {
	tw.indent(depth)
	tw.w.WriteString(name)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeValue(value))
	tw.w.WriteByte('\n')
}

// Annotated writes a property line followed by a note in brackets.
func (tw TreeWriter) Annotated(depth int, name, value, note string) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, "%s: %s [%s]\n", name, encodeValue(value), note)
}

func encodeValue(raw string) string {
	if raw == "" || raw != strings.TrimSpace(raw) || strings.ContainsAny(raw, "\n\r\t\"") {
		return strconv.Quote(raw)
	}
	return raw
}
