package css

import (
	"strings"
	"unicode"
)

// SyntaxType is a data type name usable in a registered property syntax.
type SyntaxType uint8

const (
	SyntaxUnknown SyntaxType = iota
	SyntaxLength
	SyntaxLengthPercentage
	SyntaxPercentage
	SyntaxInteger
	SyntaxNumber
	SyntaxAngle
	SyntaxTime
	SyntaxResolution
	SyntaxColor
	SyntaxImage
	SyntaxURL
	SyntaxCustomIdent
	SyntaxString
	SyntaxTransformFunction
	SyntaxTransformList
	SyntaxUniversal
)

var syntaxTypeNames = map[string]SyntaxType{
	"length":             SyntaxLength,
	"length-percentage":  SyntaxLengthPercentage,
	"percentage":         SyntaxPercentage,
	"integer":            SyntaxInteger,
	"number":             SyntaxNumber,
	"angle":              SyntaxAngle,
	"time":               SyntaxTime,
	"resolution":         SyntaxResolution,
	"color":              SyntaxColor,
	"image":              SyntaxImage,
	"url":                SyntaxURL,
	"custom-ident":       SyntaxCustomIdent,
	"string":             SyntaxString,
	"transform-function": SyntaxTransformFunction,
	"transform-list":     SyntaxTransformList,
}

// String returns the data type name, or "*" for the universal syntax.
func (t SyntaxType) String() string {
	if t == SyntaxUniversal {
		return "*"
	}
	for name, st := range syntaxTypeNames {
		if st == t {
			return "<" + name + ">"
		}
	}
	return "<unknown>"
}

// Multiplier says whether a component accepts one value or a list.
type Multiplier uint8

const (
	MultiplierSingle Multiplier = iota
	MultiplierSpaceList
	MultiplierCommaList
)

// SyntaxComponent is one alternative of a syntax definition. A CustomIdent
// component with a non-empty Ident matches only that identifier.
type SyntaxComponent struct {
	Type       SyntaxType
	Multiplier Multiplier
	Ident      string
}

// String returns the component as written in a syntax string.
func (c SyntaxComponent) String() string {
	s := c.Type.String()
	if c.Ident != "" {
		s = c.Ident
	}
	switch c.Multiplier {
	case MultiplierSpaceList:
		s += "+"
	case MultiplierCommaList:
		s += "#"
	}
	return s
}

// CustomPropertySyntax is a parsed registered property syntax: an ordered
// list of alternatives, or the universal syntax when empty.
type CustomPropertySyntax struct {
	Definition []SyntaxComponent
}

// UniversalSyntax accepts any token sequence.
func UniversalSyntax() *CustomPropertySyntax {
	return &CustomPropertySyntax{}
}

// IsUniversal reports whether the syntax is "*".
func (s *CustomPropertySyntax) IsUniversal() bool {
	return s == nil || len(s.Definition) == 0
}

// String returns the syntax string.
func (s *CustomPropertySyntax) String() string {
	if s.IsUniversal() {
		return "*"
	}
	parts := make([]string, len(s.Definition))
	for i, c := range s.Definition {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}

// ParseCustomPropertySyntax parses a syntax string such as
// "<length> | <percentage>#" or "auto | <integer>+".
func ParseCustomPropertySyntax(text string) (*CustomPropertySyntax, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	if text == "*" {
		return UniversalSyntax(), true
	}

	syntax := &CustomPropertySyntax{}
	for part := range strings.SplitSeq(text, "|") {
		c, ok := parseSyntaxComponent(strings.TrimSpace(part))
		if !ok {
			return nil, false
		}
		syntax.Definition = append(syntax.Definition, c)
	}
	return syntax, true
}

func parseSyntaxComponent(s string) (SyntaxComponent, bool) {
	if s == "" {
		return SyntaxComponent{}, false
	}
	var c SyntaxComponent
	switch s[len(s)-1] {
	case '+':
		c.Multiplier = MultiplierSpaceList
		s = s[:len(s)-1]
	case '#':
		c.Multiplier = MultiplierCommaList
		s = s[:len(s)-1]
	}

	if name, ok := strings.CutPrefix(s, "<"); ok {
		name, ok = strings.CutSuffix(name, ">")
		if !ok {
			return SyntaxComponent{}, false
		}
		t, known := syntaxTypeNames[name]
		if !known {
			return SyntaxComponent{}, false
		}
		// transform-list is already a list
		if t == SyntaxTransformList && c.Multiplier != MultiplierSingle {
			return SyntaxComponent{}, false
		}
		c.Type = t
		return c, true
	}

	if !isIdentText(s) {
		return SyntaxComponent{}, false
	}
	if _, wide := ParseCSSWideKeywordIdent(s); wide || strings.EqualFold(s, "default") {
		return SyntaxComponent{}, false
	}
	c.Type = SyntaxCustomIdent
	c.Ident = s
	return c, true
}

func isIdentText(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80:
		case unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// ConsumeCustomPropertyValueWithSyntax tries each alternative of syntax in
// declaration order, each from the same start position, and returns the
// first that consumes the whole range together with its type. The syntax
// must not be universal.
func ConsumeCustomPropertyValueWithSyntax(r *TokenRange, syntax *CustomPropertySyntax) (Value, SyntaxType, bool) {
	if syntax.IsUniversal() {
		panic("css: universal syntax has no typed value")
	}
	start := *r
	for _, c := range syntax.Definition {
		probe := start
		probe.ConsumeWhitespace()
		v, ok := consumeSyntaxComponent(&probe, c)
		if ok && probe.AtEnd() {
			*r = probe
			return v, c.Type, true
		}
	}
	*r = start
	return Value{}, SyntaxUnknown, false
}

func consumeSyntaxComponent(r *TokenRange, c SyntaxComponent) (Value, bool) {
	one := func(r *TokenRange) (Value, bool) { return consumeSingleSyntaxValue(r, c) }
	switch c.Multiplier {
	case MultiplierSpaceList:
		return consumeList(r, ' ', one)
	case MultiplierCommaList:
		return consumeList(r, ',', one)
	}
	return one(r)
}

func consumeSingleSyntaxValue(r *TokenRange, c SyntaxComponent) (Value, bool) {
	switch c.Type {
	case SyntaxLength:
		return ConsumeLength(r, false, false)
	case SyntaxLengthPercentage:
		return ConsumeLength(r, true, false)
	case SyntaxPercentage:
		return ConsumePercentage(r)
	case SyntaxInteger:
		return ConsumeInteger(r)
	case SyntaxNumber:
		return ConsumeNumber(r, false)
	case SyntaxAngle:
		return ConsumeAngle(r)
	case SyntaxTime:
		return ConsumeTime(r, false)
	case SyntaxResolution:
		return ConsumeResolution(r)
	case SyntaxColor:
		return ConsumeColor(r)
	case SyntaxImage:
		return ConsumeImage(r)
	case SyntaxURL:
		return ConsumeURL(r)
	case SyntaxString:
		return ConsumeString(r)
	case SyntaxTransformFunction:
		return ConsumeTransformFunction(r)
	case SyntaxTransformList:
		return ConsumeTransformList(r)
	case SyntaxCustomIdent:
		probe := *r
		v, ok := ConsumeCustomIdent(&probe)
		if !ok || (c.Ident != "" && v.Keyword != c.Ident) {
			return Value{}, false
		}
		*r = probe
		return v, true
	}
	return Value{}, false
}

// IsValidCustomPropertyValueForSyntax reports whether tokens parse as a
// value of syntax. Any token sequence is valid for the universal syntax.
func IsValidCustomPropertyValueForSyntax(syntax *CustomPropertySyntax, tokens []Token) bool {
	if syntax.IsUniversal() {
		return true
	}
	r := NewTokenRange(tokens)
	_, _, ok := ConsumeCustomPropertyValueWithSyntax(&r, syntax)
	return ok
}

// CollectParsedCustomPropertyValueDependencies returns what a value of
// syntax parsed from tokens depends on. Unparseable input has none.
func CollectParsedCustomPropertyValueDependencies(syntax *CustomPropertySyntax, tokens []Token) ComputedStyleDependencies {
	var deps ComputedStyleDependencies
	if syntax.IsUniversal() {
		return deps
	}
	r := NewTokenRange(tokens)
	v, _, ok := ConsumeCustomPropertyValueWithSyntax(&r, syntax)
	if ok {
		v.CollectComputedStyleDependencies(&deps)
	}
	return deps
}
