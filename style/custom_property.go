package style

import (
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/mazznoer/csscolorparser"

	"stylecascade/css"
)

// SyntaxValue is a single computed value of a registered custom property.
// The set of implementations is closed: Length, Numeric, StyleImage, Color,
// URL, CustomIdentifier, String and Transform.
type SyntaxValue interface {
	// Serialize returns the computed value as CSS text.
	Serialize() string
	syntaxValue()
}

// Length is a computed <length> or <length-percentage>. Absolute lengths are
// in pixels, percentages are kept for layout to resolve.
type Length struct {
	Value   float64
	Percent bool
}

func (Length) syntaxValue() {}

// Serialize implements SyntaxValue.
func (l Length) Serialize() string {
	if l.Percent {
		return css.FormatNumber(l.Value) + "%"
	}
	return css.FormatNumber(l.Value) + "px"
}

// NumericUnit is the canonical unit of a Numeric value.
type NumericUnit uint8

const (
	UnitNumber NumericUnit = iota
	UnitPercentage
	UnitDegree
	UnitSecond
	UnitDPPX
)

var numericUnitSuffix = [...]string{
	UnitNumber:     "",
	UnitPercentage: "%",
	UnitDegree:     "deg",
	UnitSecond:     "s",
	UnitDPPX:       "dppx",
}

// Numeric is a computed number, integer, percentage, angle, time or
// resolution in its canonical unit.
type Numeric struct {
	Value float64
	Unit  NumericUnit
}

func (Numeric) syntaxValue() {}

// Serialize implements SyntaxValue.
func (n Numeric) Serialize() string {
	return css.FormatNumber(n.Value) + numericUnitSuffix[n.Unit]
}

// StyleImage is a computed <image>: either a resolved url or a generated
// image kept as CSS text.
type StyleImage struct {
	URL       string
	Generated string
}

func (StyleImage) syntaxValue() {}

// Serialize implements SyntaxValue.
func (i StyleImage) Serialize() string {
	if i.Generated != "" {
		return i.Generated
	}
	return css.URLValue(i.URL).CSSText()
}

// Color is a computed <color>. currentcolor stays symbolic.
type Color struct {
	Value        csscolorparser.Color
	CurrentColor bool
}

func (Color) syntaxValue() {}

// Serialize implements SyntaxValue.
func (c Color) Serialize() string {
	if c.CurrentColor {
		return "currentcolor"
	}
	return css.SerializeColor(c.Value)
}

// URL is a computed <url>, resolved against the base url of the
// declaration.
type URL string

func (URL) syntaxValue() {}

// Serialize implements SyntaxValue.
func (u URL) Serialize() string { return css.URLValue(string(u)).CSSText() }

// CustomIdentifier is a computed <custom-ident>.
type CustomIdentifier string

func (CustomIdentifier) syntaxValue() {}

// Serialize implements SyntaxValue.
func (c CustomIdentifier) Serialize() string { return string(c) }

// String is a computed <string>.
type String string

func (String) syntaxValue() {}

// Serialize implements SyntaxValue.
func (s String) Serialize() string { return css.QuoteString(string(s)) }

// Transform is a single computed transform function. Length arguments are
// in pixels, angles in degrees.
type Transform struct {
	Name string
	Args []css.Value
}

func (Transform) syntaxValue() {}

// Serialize implements SyntaxValue.
func (t Transform) Serialize() string {
	return css.FunctionValue(t.Name, t.Args).CSSText()
}

func syntaxValuesEqual(a, b SyntaxValue) bool {
	switch a := a.(type) {
	case Length:
		b, ok := b.(Length)
		return ok && a == b
	case Numeric:
		b, ok := b.(Numeric)
		return ok && a == b
	case StyleImage:
		b, ok := b.(StyleImage)
		return ok && a == b
	case Color:
		b, ok := b.(Color)
		return ok && a.CurrentColor == b.CurrentColor && a.Value == b.Value
	case URL:
		b, ok := b.(URL)
		return ok && a == b
	case CustomIdentifier:
		b, ok := b.(CustomIdentifier)
		return ok && a == b
	case String:
		b, ok := b.(String)
		return ok && a == b
	case Transform:
		b, ok := b.(Transform)
		return ok && a.Name == b.Name && slices.EqualFunc(a.Args, b.Args, css.Value.Equal)
	}
	return false
}

// ValueList is a computed list value of a registered custom property with
// a '+' or '#' multiplier, or a transform list.
type ValueList struct {
	Values    []SyntaxValue
	Separator byte // ',' or ' '
}

// Serialize returns the list as CSS text.
func (l ValueList) Serialize() string {
	parts := make([]string, len(l.Values))
	for i, v := range l.Values {
		parts[i] = v.Serialize()
	}
	if l.Separator == ',' {
		return strings.Join(parts, ", ")
	}
	return strings.Join(parts, " ")
}

// CustomPropertyKind tells which representation a CustomProperty holds.
type CustomPropertyKind uint8

const (
	KindGuaranteedInvalid CustomPropertyKind = iota
	KindVariableData
	KindValue
	KindValueList
)

// CustomProperty is the computed value of a custom property. Values are
// immutable once created and are shared between styles.
type CustomProperty struct {
	name  string
	kind  CustomPropertyKind
	data  *css.VariableData
	value SyntaxValue
	list  ValueList

	tokensOnce sync.Once
	tokens     *css.VariableData
}

// NewGuaranteedInvalidCustomProperty creates the value a custom property
// takes when it cannot be computed.
func NewGuaranteedInvalidCustomProperty(name string) *CustomProperty {
	return &CustomProperty{name: name, kind: KindGuaranteedInvalid}
}

// NewCustomPropertyWithData creates the value of an unregistered custom
// property or one registered with the universal syntax.
func NewCustomPropertyWithData(name string, data *css.VariableData) *CustomProperty {
	return &CustomProperty{name: name, kind: KindVariableData, data: data}
}

// NewCustomPropertyWithValue creates a typed value.
func NewCustomPropertyWithValue(name string, v SyntaxValue) *CustomProperty {
	return &CustomProperty{name: name, kind: KindValue, value: v}
}

// NewCustomPropertyWithValueList creates a typed list value.
func NewCustomPropertyWithValueList(name string, list ValueList) *CustomProperty {
	return &CustomProperty{name: name, kind: KindValueList, list: list}
}

// Name returns the property name.
func (p *CustomProperty) Name() string { return p.name }

// Kind returns which representation the value holds.
func (p *CustomProperty) Kind() CustomPropertyKind { return p.kind }

// IsInvalid reports whether this is the guaranteed-invalid value.
func (p *CustomProperty) IsInvalid() bool { return p.kind == KindGuaranteedInvalid }

// IsAnimatable reports whether the value is typed and can be interpolated.
func (p *CustomProperty) IsAnimatable() bool {
	return p.kind == KindValue || p.kind == KindValueList
}

// VariableData returns the raw tokens of an untyped value.
func (p *CustomProperty) VariableData() (*css.VariableData, bool) {
	return p.data, p.kind == KindVariableData
}

// Value returns the typed value.
func (p *CustomProperty) Value() (SyntaxValue, bool) {
	return p.value, p.kind == KindValue
}

// ValueList returns the typed list value.
func (p *CustomProperty) ValueList() (ValueList, bool) {
	return p.list, p.kind == KindValueList
}

// Serialize returns the computed value as CSS text. The guaranteed-invalid
// value serializes as the empty string.
func (p *CustomProperty) Serialize() string {
	switch p.kind {
	case KindVariableData:
		return p.data.Serialize()
	case KindValue:
		return p.value.Serialize()
	case KindValueList:
		return p.list.Serialize()
	}
	return ""
}

// AsVariableData returns the value as tokens for substitution into var().
// Typed values are serialized and tokenized once.
func (p *CustomProperty) AsVariableData() *css.VariableData {
	if p.kind == KindVariableData {
		return p.data
	}
	p.tokensOnce.Do(func() {
		p.tokens = css.NewVariableData(css.Tokenize(p.Serialize()), css.ParserContext{})
	})
	return p.tokens
}

// Equal compares two computed values structurally.
func (p *CustomProperty) Equal(o *CustomProperty) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil || p.name != o.name || p.kind != o.kind {
		return false
	}
	switch p.kind {
	case KindGuaranteedInvalid:
		return true
	case KindVariableData:
		return p.data.Equal(o.data)
	case KindValue:
		return syntaxValuesEqual(p.value, o.value)
	case KindValueList:
		return p.list.Separator == o.list.Separator &&
			slices.EqualFunc(p.list.Values, o.list.Values, syntaxValuesEqual)
	}
	return false
}

// canonical units of typed numeric values
func toDegrees(v float64, unit string) float64 {
	switch unit {
	case "grad":
		return v * 0.9
	case "rad":
		return v * 180 / math.Pi
	case "turn":
		return v * 360
	}
	return v
}

func toSeconds(v float64, unit string) float64 {
	if unit == "ms" {
		return v / 1000
	}
	return v
}

func toDPPX(v float64, unit string) float64 {
	switch unit {
	case "dpi":
		return v / 96
	case "dpcm":
		return v * 2.54 / 96
	}
	return v
}
