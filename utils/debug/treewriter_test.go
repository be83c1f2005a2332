package debug

import (
	"bytes"
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{
			name:   "no depth",
			depth:  0,
			format: "html",
			want:   "html\n",
		},
		{
			name:   "depth 2",
			depth:  2,
			format: "<%s>",
			args:   []any{"p"},
			want:   "    <p>\n",
		},
		{
			name:   "multiple args",
			depth:  1,
			format: "%s #%s",
			args:   []any{"div", "main"},
			want:   "  div #main\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Property(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		prop  string
		value string
		want  string
	}{
		{"plain", 1, "color", "rgb(0, 0, 0)", "  color: rgb(0, 0, 0)\n"},
		{"empty value", 0, "--empty", "", "--empty: \"\"\n"},
		{"leading space", 0, "--pad", " x", "--pad: \" x\"\n"},
		{"string value", 2, "--s", `"a"`, "    --s: \"\\\"a\\\"\"\n"},
		{"newline", 0, "--n", "a\nb", "--n: \"a\\nb\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Property(tt.depth, tt.prop, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("Property() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Annotated(t *testing.T) {
	tw := NewTreeWriter()
	tw.Annotated(1, "color", "rgb(85, 26, 139)", "visited")
	if got, want := tw.String(), "  color: rgb(85, 26, 139) [visited]\n"; got != want {
		t.Errorf("Annotated() = %q, want %q", got, want)
	}
}

func TestTreeWriter_WriteTo(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "root")
	tw.Property(1, "display", "block")

	var buf bytes.Buffer
	n, err := tw.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	if int(n) != buf.Len() || buf.String() != "root\n  display: block\n" {
		t.Errorf("WriteTo() wrote %d bytes %q", n, buf.String())
	}
}
