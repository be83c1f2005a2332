package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// CSSValue is a declared value as it sits in a declaration block.
type CSSValue interface {
	// CSSText returns the value serialized as CSS.
	CSSText() string
	// HasVariableReferences reports whether var() or env() substitution must
	// happen before the value can be applied.
	HasVariableReferences() bool
}

// ValueKind tells which fields of a Value are meaningful.
type ValueKind uint8

const (
	ValueNone        ValueKind = iota
	ValueKeyword               // Keyword
	ValueNumber                // Value, Integer
	ValuePercentage            // Value
	ValueDimension             // Value, Unit
	ValueString                // Text
	ValueURL                   // Text
	ValueColor                 // Color, or Keyword "currentcolor"
	ValueFunction              // Function, Items
	ValueList                  // Items, Separator
	ValueCustomIdent           // Keyword, case preserved
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw       string               // CSS text as written, or serialized for computed values
	Kind      ValueKind            // What the value holds
	Value     float64              // Numeric value if applicable
	Unit      string               // Unit if applicable: "em", "px", "%", "deg", etc.
	Keyword   string               // Keyword if applicable: "bold", "auto", "currentcolor", etc.
	Integer   bool                 // Number was written without fraction
	Text      string               // String contents or URL
	Color     csscolorparser.Color // Parsed color
	Function  string               // Function name for transform functions and generated images
	Items     []Value              // Function arguments or list items
	Separator byte                 // List separator: ',' or ' '
}

// CSSText implements CSSValue.
func (v Value) CSSText() string {
	if v.Raw != "" {
		return v.Raw
	}
	return v.serialize()
}

// HasVariableReferences implements CSSValue. Parsed values never do.
func (v Value) HasVariableReferences() bool { return false }

// String returns the CSS text of the value.
func (v Value) String() string { return v.CSSText() }

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	switch v.Kind {
	case ValueNumber, ValuePercentage, ValueDimension:
		return true
	}
	return false
}

// IsKeyword returns true if the value is a single identifier keyword.
func (v Value) IsKeyword() bool {
	return v.Kind == ValueKeyword
}

// IsKeywordValue reports whether v is the keyword kw.
func (v Value) IsKeywordValue(kw string) bool {
	return v.Kind == ValueKeyword && v.Keyword == kw
}

// WideKeyword returns the CSS-wide keyword v holds, if any.
func (v Value) WideKeyword() (CSSWideKeyword, bool) {
	if v.Kind != ValueKeyword {
		return 0, false
	}
	return ParseCSSWideKeywordIdent(v.Keyword)
}

// Equal compares values by content, ignoring how they were written.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Unit != o.Unit || v.Keyword != o.Keyword || v.Text != o.Text ||
		v.Function != o.Function || v.Separator != o.Separator || v.Value != o.Value ||
		v.Color != o.Color || len(v.Items) != len(o.Items) {
		return false
	}
	for i := range v.Items {
		if !v.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}

func (v Value) serialize() string {
	switch v.Kind {
	case ValueKeyword, ValueCustomIdent:
		return v.Keyword
	case ValueNumber:
		return FormatNumber(v.Value)
	case ValuePercentage:
		return FormatNumber(v.Value) + "%"
	case ValueDimension:
		return FormatNumber(v.Value) + v.Unit
	case ValueString:
		return `"` + cssEscapeDoubleQuoted(v.Text) + `"`
	case ValueURL:
		return `url("` + cssEscapeDoubleQuoted(v.Text) + `")`
	case ValueColor:
		if v.Keyword != "" {
			return v.Keyword
		}
		return SerializeColor(v.Color)
	case ValueFunction:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.CSSText()
		}
		return v.Function + "(" + strings.Join(parts, ", ") + ")"
	case ValueList:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.CSSText()
		}
		if v.Separator == ',' {
			return strings.Join(parts, ", ")
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// Ident creates a keyword value.
func Ident(kw string) Value {
	return Value{Kind: ValueKeyword, Keyword: kw, Raw: kw}
}

// Number creates a plain number value.
func Number(n float64) Value {
	v := Value{Kind: ValueNumber, Value: n, Integer: n == math.Trunc(n)}
	v.Raw = v.serialize()
	return v
}

// Percentage creates a percentage value.
func Percentage(n float64) Value {
	v := Value{Kind: ValuePercentage, Value: n, Unit: "%"}
	v.Raw = v.serialize()
	return v
}

// Dimension creates a number with a unit.
func Dimension(n float64, unit string) Value {
	v := Value{Kind: ValueDimension, Value: n, Unit: unit}
	v.Raw = v.serialize()
	return v
}

// Pixels creates an absolute length value.
func Pixels(n float64) Value {
	return Dimension(n, "px")
}

// ColorValue creates a color value from parsed components.
func ColorValue(c csscolorparser.Color) Value {
	v := Value{Kind: ValueColor, Color: c}
	v.Raw = v.serialize()
	return v
}

// CurrentColor is the currentcolor keyword as a color value.
func CurrentColor() Value {
	return Value{Kind: ValueColor, Keyword: "currentcolor", Raw: "currentcolor"}
}

// StringValue creates a quoted string value.
func StringValue(s string) Value {
	v := Value{Kind: ValueString, Text: s}
	v.Raw = v.serialize()
	return v
}

// URLValue creates a url() value.
func URLValue(u string) Value {
	v := Value{Kind: ValueURL, Text: u}
	v.Raw = v.serialize()
	return v
}

// ListValue joins items with sep, which must be ',' or ' '.
func ListValue(items []Value, sep byte) Value {
	v := Value{Kind: ValueList, Items: items, Separator: sep}
	v.Raw = v.serialize()
	return v
}

// FunctionValue creates a function value with the given arguments.
func FunctionValue(name string, args []Value) Value {
	v := Value{Kind: ValueFunction, Function: name, Items: args}
	v.Raw = v.serialize()
	return v
}

// FormatNumber prints n with at most six fractional digits and no
// trailing zeros.
func FormatNumber(n float64) string {
	r := math.Round(n*1e6) / 1e6
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// SerializeColor writes c in rgb() or rgba() notation.
func SerializeColor(c csscolorparser.Color) string {
	r, g, b, _ := c.RGBA255()
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, FormatNumber(math.Round(c.A*1000)/1000))
}

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// QuoteString returns s as a double quoted CSS string.
func QuoteString(s string) string {
	return `"` + cssEscapeDoubleQuoted(s) + `"`
}
