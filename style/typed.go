package style

import (
	"stylecascade/css"
)

// CustomPropertyResolution is a resolved custom property value: either a
// computed value or a CSS-wide keyword still to be applied.
type CustomPropertyResolution struct {
	Property  *CustomProperty
	Keyword   css.CSSWideKeyword
	IsKeyword bool
}

func keywordResolution(kw css.CSSWideKeyword) CustomPropertyResolution {
	return CustomPropertyResolution{Keyword: kw, IsKeyword: true}
}

// ParseTypedCustomPropertyValue parses substituted tokens as a value of a
// registered syntax and computes it against state. A CSS-wide keyword is
// returned as such.
func ParseTypedCustomPropertyValue(name string, syntax *css.CustomPropertySyntax, tokens []css.Token, state *BuilderState, ctx css.ParserContext) (CustomPropertyResolution, bool) {
	if syntax.IsUniversal() {
		return CustomPropertyResolution{Property: NewCustomPropertyWithData(name, css.NewVariableData(tokens, ctx))}, true
	}

	r := css.NewTokenRange(tokens)
	r.ConsumeWhitespace()
	if kw, ok := css.ParseCSSWideKeyword(&r); ok {
		return keywordResolution(kw), true
	}
	v, typ, ok := css.ConsumeCustomPropertyValueWithSyntax(&r, syntax)
	if !ok {
		return CustomPropertyResolution{}, false
	}
	p := computeTypedCustomProperty(name, v, typ, state, ctx)
	if p == nil {
		return CustomPropertyResolution{}, false
	}
	return CustomPropertyResolution{Property: p}, true
}

// ParseTypedCustomPropertyInitialValue parses the initial value of a
// registration. Keywords are not valid initial values and yield nil.
func ParseTypedCustomPropertyInitialValue(name string, syntax *css.CustomPropertySyntax, tokens []css.Token, state *BuilderState) *CustomProperty {
	res, ok := ParseTypedCustomPropertyValue(name, syntax, tokens, state, state.Context().ParserContext())
	if !ok || res.IsKeyword {
		return nil
	}
	return res.Property
}

func computeTypedCustomProperty(name string, v css.Value, typ css.SyntaxType, state *BuilderState, ctx css.ParserContext) *CustomProperty {
	conv := state.CSSToLengthConversionData()
	if v.Kind == css.ValueList {
		values := make([]SyntaxValue, 0, len(v.Items))
		for _, item := range v.Items {
			sv, ok := computeSyntaxValue(item, typ, conv, ctx)
			if !ok {
				return nil
			}
			values = append(values, sv)
		}
		return NewCustomPropertyWithValueList(name, ValueList{Values: values, Separator: v.Separator})
	}
	sv, ok := computeSyntaxValue(v, typ, conv, ctx)
	if !ok {
		return nil
	}
	return NewCustomPropertyWithValue(name, sv)
}

func computeSyntaxValue(v css.Value, typ css.SyntaxType, conv LengthConversion, ctx css.ParserContext) (SyntaxValue, bool) {
	switch typ {
	case css.SyntaxLength, css.SyntaxLengthPercentage:
		if v.Kind == css.ValuePercentage {
			return Length{Value: v.Value, Percent: true}, true
		}
		return Length{Value: conv.ToPixels(v.Value, v.Unit)}, true
	case css.SyntaxNumber, css.SyntaxInteger:
		return Numeric{Value: v.Value, Unit: UnitNumber}, true
	case css.SyntaxPercentage:
		return Numeric{Value: v.Value, Unit: UnitPercentage}, true
	case css.SyntaxAngle:
		return Numeric{Value: toDegrees(v.Value, v.Unit), Unit: UnitDegree}, true
	case css.SyntaxTime:
		return Numeric{Value: toSeconds(v.Value, v.Unit), Unit: UnitSecond}, true
	case css.SyntaxResolution:
		return Numeric{Value: toDPPX(v.Value, v.Unit), Unit: UnitDPPX}, true
	case css.SyntaxColor:
		if v.Keyword == "currentcolor" {
			return Color{CurrentColor: true}, true
		}
		return Color{Value: v.Color}, true
	case css.SyntaxImage:
		if v.Kind == css.ValueURL {
			return StyleImage{URL: ctx.CompleteURL(v.Text)}, true
		}
		return StyleImage{Generated: v.CSSText()}, true
	case css.SyntaxURL:
		return URL(ctx.CompleteURL(v.Text)), true
	case css.SyntaxCustomIdent:
		return CustomIdentifier(v.Keyword), true
	case css.SyntaxString:
		return String(v.Text), true
	case css.SyntaxTransformFunction, css.SyntaxTransformList:
		if v.Kind != css.ValueFunction {
			return nil, false
		}
		return Transform{Name: v.Function, Args: conv.computeItems(v.Items)}, true
	}
	return nil, false
}
