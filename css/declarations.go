package css

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a single property declaration of a rule or style
// attribute. Shorthands are expanded to their longhands at parse time.
type Declaration struct {
	Property  PropertyID
	Name      string // custom property name, empty for standard properties
	Value     CSSValue
	Important bool
}

// PropertyName returns the custom property name or the standard name.
func (d Declaration) PropertyName() string {
	if d.Property == PropertyCustom {
		return d.Name
	}
	return d.Property.String()
}

// String returns the declaration as CSS text.
func (d Declaration) String() string {
	s := d.PropertyName() + ": " + d.Value.CSSText()
	if d.Important {
		s += " !important"
	}
	return s
}

// ParseDeclaration parses the value of property name. A shorthand yields
// one declaration per longhand.
func ParseDeclaration(name string, tokens []Token, ctx ParserContext) ([]Declaration, error) {
	tokens, important := stripImportant(tokens)

	id, ok := LookupProperty(name)
	if !ok {
		return nil, fmt.Errorf("unknown property %q", name)
	}

	if id == PropertyCustom {
		v, ok := NewCustomPropertyValue(name, tokens, ctx)
		if !ok {
			return nil, fmt.Errorf("malformed variable reference in %q", name)
		}
		return []Declaration{{Property: PropertyCustom, Name: name, Value: v, Important: important}}, nil
	}

	tokens = TrimWhitespace(tokens)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty value for %q", name)
	}

	expand := func(value func(PropertyID) CSSValue) []Declaration {
		if !id.IsShorthand() {
			return []Declaration{{Property: id, Value: value(id), Important: important}}
		}
		decls := make([]Declaration, 0, len(id.Longhands()))
		for _, longhand := range id.Longhands() {
			decls = append(decls, Declaration{Property: longhand, Value: value(longhand), Important: important})
		}
		return decls
	}

	r := NewTokenRange(tokens)
	if kw, ok := ParseCSSWideKeyword(&r); ok {
		v := Ident(kw.String())
		return expand(func(PropertyID) CSSValue { return v }), nil
	}

	if containsReference(tokens) {
		if !ValidateVariableReferences(tokens) {
			return nil, fmt.Errorf("malformed variable reference in %q", name)
		}
		ref := NewVariableReferenceValue(NewVariableData(tokens, ctx))
		if id.IsShorthand() {
			return expand(func(PropertyID) CSSValue { return NewPendingSubstitutionValue(id, ref) }), nil
		}
		return expand(func(PropertyID) CSSValue { return ref }), nil
	}

	if id.IsShorthand() {
		values, ok := ParseShorthand(id, tokens, ctx)
		if !ok {
			return nil, fmt.Errorf("invalid value %q for %q", Serialize(tokens), name)
		}
		return expand(func(longhand PropertyID) CSSValue { return values[longhand] }), nil
	}

	v, ok := ParsePropertyValue(id, tokens, ctx)
	if !ok {
		return nil, fmt.Errorf("invalid value %q for %q", Serialize(tokens), name)
	}
	return expand(func(PropertyID) CSSValue { return v }), nil
}

// stripImportant removes a trailing !important and reports whether it was
// present.
func stripImportant(tokens []Token) ([]Token, bool) {
	trimmed := TrimWhitespace(tokens)
	n := len(trimmed)
	if n == 0 || !strings.EqualFold(trimmed[n-1].Ident(), "important") {
		return tokens, false
	}
	i := n - 2
	for i >= 0 && trimmed[i].IsWhitespace() {
		i--
	}
	if i < 0 || !trimmed[i].IsDelim('!') {
		return tokens, false
	}
	return trimmed[:i], true
}

// ParsePropertyValue parses tokens as a value of the longhand id. The whole
// input must be consumed.
func ParsePropertyValue(id PropertyID, tokens []Token, ctx ParserContext) (Value, bool) {
	if id >= NumProperties || id.IsShorthand() || id == PropertyCustom {
		return Value{}, false
	}
	r := NewTokenRange(tokens)
	r.ConsumeWhitespace()
	v, ok := parseGrammar(properties[id].grammar, &r, ctx)
	if !ok || !r.AtEnd() {
		return Value{}, false
	}
	return v, true
}

// ParseShorthand parses a one to four value box shorthand and returns the
// value of each longhand.
func ParseShorthand(id PropertyID, tokens []Token, ctx ParserContext) (map[PropertyID]Value, bool) {
	longhands := id.Longhands()
	if len(longhands) != 4 {
		return nil, false
	}
	g := properties[longhands[0]].grammar

	r := NewTokenRange(tokens)
	r.ConsumeWhitespace()
	var values []Value
	for !r.AtEnd() && len(values) < 4 {
		v, ok := parseGrammar(g, &r, ctx)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	if len(values) == 0 || !r.AtEnd() {
		return nil, false
	}

	// top, right, bottom, left
	switch len(values) {
	case 1:
		values = append(values, values[0], values[0], values[0])
	case 2:
		values = append(values, values[0], values[1])
	case 3:
		values = append(values, values[1])
	}
	result := make(map[PropertyID]Value, 4)
	for i, longhand := range longhands {
		result[longhand] = values[i]
	}
	return result, true
}

var (
	fontSizeKeywords    = []string{"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large", "larger", "smaller"}
	fontWeightKeywords  = []string{"normal", "bold", "bolder", "lighter"}
	genericFontFamilies = []string{"serif", "sans-serif", "monospace", "cursive", "fantasy", "system-ui", "-apple-system", "-webkit-body"}
)

func parseGrammar(g grammar, r *TokenRange, ctx ParserContext) (Value, bool) {
	switch g.kind {
	case grammarKeyword:
		return ConsumeIdent(r, g.keywords...)
	case grammarFontFamily:
		return consumeList(r, ',', consumeFamilyName)
	case grammarFontSize:
		if v, ok := ConsumeIdent(r, fontSizeKeywords...); ok {
			return v, true
		}
		return ConsumeLength(r, true, true)
	case grammarFontWeight:
		if v, ok := ConsumeIdent(r, fontWeightKeywords...); ok {
			return v, true
		}
		probe := *r
		v, ok := ConsumeNumber(&probe, true)
		if !ok || v.Value < 1 || v.Value > 1000 {
			return Value{}, false
		}
		*r = probe
		return v, true
	case grammarLineHeight:
		if v, ok := ConsumeIdent(r, "normal"); ok {
			return v, true
		}
		if v, ok := ConsumeNumber(r, true); ok {
			return v, true
		}
		return ConsumeLength(r, true, true)
	case grammarColor:
		return ConsumeColor(r)
	case grammarImageOrNone:
		if v, ok := ConsumeIdent(r, "none"); ok {
			return v, true
		}
		v, ok := ConsumeImage(r)
		if ok && v.Kind == ValueURL {
			v.Text = ctx.CompleteURL(v.Text)
		}
		return v, ok
	case grammarLengthOrNormal:
		if v, ok := ConsumeIdent(r, "normal"); ok {
			return v, true
		}
		return ConsumeLength(r, false, false)
	case grammarNumber:
		return ConsumeNumber(r, g.nonNegative)
	case grammarIntegerOrAuto:
		if v, ok := ConsumeIdent(r, "auto"); ok {
			return v, true
		}
		return ConsumeInteger(r)
	case grammarTransform:
		if v, ok := ConsumeIdent(r, "none"); ok {
			return v, true
		}
		return ConsumeTransformList(r)
	case grammarTimeList:
		return consumeList(r, ',', func(r *TokenRange) (Value, bool) { return ConsumeTime(r, g.nonNegative) })
	case grammarLengthPercentageOrAuto:
		if v, ok := ConsumeIdent(r, "auto"); ok {
			return v, true
		}
		return ConsumeLength(r, true, g.nonNegative)
	case grammarLengthPercentage:
		return ConsumeLength(r, true, g.nonNegative)
	}
	return Value{}, false
}

// consumeFamilyName consumes a quoted family name, a generic family, or a
// run of identifiers forming an unquoted family name.
func consumeFamilyName(r *TokenRange) (Value, bool) {
	if v, ok := ConsumeString(r); ok {
		return v, true
	}
	probe := *r
	if v, ok := ConsumeIdent(&probe, genericFontFamilies...); ok && (probe.AtEnd() || probe.Peek().Type == css.CommaToken) {
		*r = probe
		return v, true
	}
	probe = *r
	var words []string
	for probe.Peek().Type == css.IdentToken {
		t := probe.ConsumeIncludingWhitespace()
		if _, wide := ParseCSSWideKeywordIdent(t.Data); wide {
			return Value{}, false
		}
		words = append(words, t.Data)
	}
	if len(words) == 0 {
		return Value{}, false
	}
	*r = probe
	name := strings.Join(words, " ")
	return Value{Kind: ValueCustomIdent, Keyword: name, Raw: name}, true
}
