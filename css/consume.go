package css

import (
	"strings"

	"github.com/mazznoer/csscolorparser"
	"github.com/tdewolff/parse/v2/css"
)

// Consumers below take the range positioned at a value, advance it past the
// value and its trailing whitespace on success, and leave it untouched on
// failure.

func consumeNumeric(r *TokenRange, accept func(t Token, v float64, unit string) (Value, bool)) (Value, bool) {
	t := r.Peek()
	n, unit, ok := t.Numeric()
	if !ok {
		return Value{}, false
	}
	v, ok := accept(t, n, unit)
	if !ok {
		return Value{}, false
	}
	v.Raw = t.Data
	r.ConsumeIncludingWhitespace()
	return v, true
}

// ConsumeLength consumes a <length>, or a <length-percentage> when
// allowPercentage is set. Unitless zero is accepted as a length.
func ConsumeLength(r *TokenRange, allowPercentage, nonNegative bool) (Value, bool) {
	return consumeNumeric(r, func(t Token, n float64, unit string) (Value, bool) {
		if nonNegative && n < 0 {
			return Value{}, false
		}
		switch {
		case t.Type == css.NumberToken:
			if n != 0 {
				return Value{}, false
			}
			return Value{Kind: ValueDimension, Value: 0, Unit: "px"}, true
		case unit == "%":
			return Value{Kind: ValuePercentage, Value: n, Unit: "%"}, allowPercentage
		case CategoryOfUnit(unit) == UnitLength:
			return Value{Kind: ValueDimension, Value: n, Unit: unit}, true
		}
		return Value{}, false
	})
}

// ConsumePercentage consumes a <percentage>.
func ConsumePercentage(r *TokenRange) (Value, bool) {
	return consumeNumeric(r, func(t Token, n float64, _ string) (Value, bool) {
		return Value{Kind: ValuePercentage, Value: n, Unit: "%"}, t.Type == css.PercentageToken
	})
}

// ConsumeNumber consumes a <number>.
func ConsumeNumber(r *TokenRange, nonNegative bool) (Value, bool) {
	return consumeNumeric(r, func(t Token, n float64, _ string) (Value, bool) {
		if t.Type != css.NumberToken || (nonNegative && n < 0) {
			return Value{}, false
		}
		return Value{Kind: ValueNumber, Value: n, Integer: t.IsInteger()}, true
	})
}

// ConsumeInteger consumes an <integer>.
func ConsumeInteger(r *TokenRange) (Value, bool) {
	return consumeNumeric(r, func(t Token, n float64, _ string) (Value, bool) {
		return Value{Kind: ValueNumber, Value: n, Integer: true}, t.IsInteger()
	})
}

func consumeDimensionOf(r *TokenRange, category UnitCategory, nonNegative bool) (Value, bool) {
	return consumeNumeric(r, func(t Token, n float64, unit string) (Value, bool) {
		if t.Type != css.DimensionToken || CategoryOfUnit(unit) != category || (nonNegative && n < 0) {
			return Value{}, false
		}
		return Value{Kind: ValueDimension, Value: n, Unit: unit}, true
	})
}

// ConsumeAngle consumes an <angle>.
func ConsumeAngle(r *TokenRange) (Value, bool) {
	return consumeDimensionOf(r, UnitAngle, false)
}

// ConsumeTime consumes a <time>.
func ConsumeTime(r *TokenRange, nonNegative bool) (Value, bool) {
	return consumeDimensionOf(r, UnitTime, nonNegative)
}

// ConsumeResolution consumes a <resolution>.
func ConsumeResolution(r *TokenRange) (Value, bool) {
	return consumeDimensionOf(r, UnitResolution, true)
}

// ConsumeString consumes a <string>.
func ConsumeString(r *TokenRange) (Value, bool) {
	t := r.Peek()
	if t.Type != css.StringToken {
		return Value{}, false
	}
	r.ConsumeIncludingWhitespace()
	return Value{Kind: ValueString, Text: unquote(t.Data), Raw: t.Data}, true
}

// ConsumeCustomIdent consumes a <custom-ident>. CSS-wide keywords and
// "default" are reserved.
func ConsumeCustomIdent(r *TokenRange) (Value, bool) {
	t := r.Peek()
	if t.Type != css.IdentToken {
		return Value{}, false
	}
	if _, wide := ParseCSSWideKeywordIdent(t.Data); wide || strings.EqualFold(t.Data, "default") {
		return Value{}, false
	}
	r.ConsumeIncludingWhitespace()
	return Value{Kind: ValueCustomIdent, Keyword: t.Data, Raw: t.Data}, true
}

// ConsumeIdent consumes one of the listed keywords, matched case-insensitively.
func ConsumeIdent(r *TokenRange, allowed ...string) (Value, bool) {
	t := r.Peek()
	if t.Type != css.IdentToken {
		return Value{}, false
	}
	kw, ok := NormalizeValueKeyword(t.Data)
	if !ok {
		return Value{}, false
	}
	for _, a := range allowed {
		if kw == a {
			r.ConsumeIncludingWhitespace()
			return Ident(kw), true
		}
	}
	return Value{}, false
}

// ConsumeURL consumes a <url> in either url(...) or url("...") form.
func ConsumeURL(r *TokenRange) (Value, bool) {
	t := r.Peek()
	switch {
	case t.Type == css.URLToken:
		s := t.Data
		if i := strings.IndexByte(s, '('); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(s, ")")
		r.ConsumeIncludingWhitespace()
		return Value{Kind: ValueURL, Text: unquote(strings.TrimSpace(s)), Raw: t.Data}, true
	case t.FunctionName() == "url" || t.FunctionName() == "src":
		probe := *r
		block, closed := probe.ConsumeBlock()
		if !closed {
			return Value{}, false
		}
		block.ConsumeWhitespace()
		str := block.ConsumeIncludingWhitespace()
		if str.Type != css.StringToken || !block.AtEnd() {
			return Value{}, false
		}
		raw := Serialize(r.Until(probe))
		probe.ConsumeWhitespace()
		*r = probe
		return Value{Kind: ValueURL, Text: unquote(str.Data), Raw: raw}, true
	}
	return Value{}, false
}

var generatedImageFunctions = []string{
	"linear-gradient", "radial-gradient", "conic-gradient",
	"repeating-linear-gradient", "repeating-radial-gradient", "repeating-conic-gradient",
	"-webkit-linear-gradient", "-webkit-radial-gradient",
	"image-set", "-webkit-image-set", "cross-fade",
}

// ConsumeImage consumes an <image>: a url or a generated image function.
// Generated image arguments are kept as written.
func ConsumeImage(r *TokenRange) (Value, bool) {
	if v, ok := ConsumeURL(r); ok {
		return v, true
	}
	t := r.Peek()
	name := t.FunctionName()
	if name == "" {
		return Value{}, false
	}
	for _, fn := range generatedImageFunctions {
		if name != fn {
			continue
		}
		probe := *r
		block, closed := probe.ConsumeBlock()
		if !closed || block.AtEnd() {
			return Value{}, false
		}
		raw := Serialize(r.Until(probe))
		probe.ConsumeWhitespace()
		*r = probe
		return Value{Kind: ValueFunction, Function: name, Raw: raw}, true
	}
	return Value{}, false
}

var colorFunctions = []string{"rgb", "rgba", "hsl", "hsla", "hwb", "lab", "lch", "oklab", "oklch"}

// ConsumeColor consumes a <color>: a hex color, a named color, currentcolor
// or a color function.
func ConsumeColor(r *TokenRange) (Value, bool) {
	t := r.Peek()
	var text string
	probe := *r
	switch t.Type {
	case css.HashToken:
		text = t.Data
		probe.Consume()
	case css.IdentToken:
		kw := strings.ToLower(t.Data)
		if kw == "currentcolor" {
			r.ConsumeIncludingWhitespace()
			return Value{Kind: ValueColor, Keyword: kw, Raw: t.Data}, true
		}
		if _, wide := ParseCSSWideKeywordIdent(kw); wide {
			return Value{}, false
		}
		text = kw
		probe.Consume()
	case css.FunctionToken:
		name := t.FunctionName()
		found := false
		for _, fn := range colorFunctions {
			if fn == name {
				found = true
				break
			}
		}
		if !found {
			return Value{}, false
		}
		if _, closed := probe.ConsumeBlock(); !closed {
			return Value{}, false
		}
		text = Serialize(r.Until(probe))
	default:
		return Value{}, false
	}
	c, err := csscolorparser.Parse(text)
	if err != nil {
		return Value{}, false
	}
	raw := Serialize(r.Until(probe))
	probe.ConsumeWhitespace()
	*r = probe
	return Value{Kind: ValueColor, Color: c, Raw: raw}, true
}

var transformFunctions = map[string]int{
	"translate": 2, "translatex": 1, "translatey": 1, "translatez": 1, "translate3d": 3,
	"scale": 2, "scalex": 1, "scaley": 1, "scalez": 1, "scale3d": 3,
	"rotate": 1, "rotatex": 1, "rotatey": 1, "rotatez": 1, "rotate3d": 4,
	"skew": 2, "skewx": 1, "skewy": 1,
	"matrix": 6, "matrix3d": 16, "perspective": 1,
}

// ConsumeTransformFunction consumes a single <transform-function>. Each
// argument must be a number, length, percentage or angle.
func ConsumeTransformFunction(r *TokenRange) (Value, bool) {
	t := r.Peek()
	name := t.FunctionName()
	maxArgs, ok := transformFunctions[name]
	if !ok {
		return Value{}, false
	}
	probe := *r
	block, closed := probe.ConsumeBlock()
	if !closed {
		return Value{}, false
	}
	var args []Value
	block.ConsumeWhitespace()
	for !block.AtEnd() {
		arg, ok := consumeTransformArgument(&block)
		if !ok {
			return Value{}, false
		}
		args = append(args, arg)
		if block.Peek().Type == css.CommaToken {
			block.ConsumeIncludingWhitespace()
			if block.AtEnd() {
				return Value{}, false
			}
		}
	}
	exact := name == "matrix" || name == "matrix3d" || name == "rotate3d" || strings.HasSuffix(name, "3d")
	if len(args) == 0 || len(args) > maxArgs || (exact && len(args) != maxArgs) {
		return Value{}, false
	}
	raw := Serialize(r.Until(probe))
	probe.ConsumeWhitespace()
	*r = probe
	return Value{Kind: ValueFunction, Function: name, Items: args, Raw: raw}, true
}

func consumeTransformArgument(r *TokenRange) (Value, bool) {
	if v, ok := ConsumeNumber(r, false); ok {
		return v, true
	}
	if v, ok := ConsumeLength(r, true, false); ok {
		return v, true
	}
	return ConsumeAngle(r)
}

// ConsumeTransformList consumes one or more transform functions separated
// by optional whitespace.
func ConsumeTransformList(r *TokenRange) (Value, bool) {
	probe := *r
	var items []Value
	for {
		fn, ok := ConsumeTransformFunction(&probe)
		if !ok {
			break
		}
		items = append(items, fn)
	}
	if len(items) == 0 {
		return Value{}, false
	}
	raw := strings.TrimSpace(Serialize(r.Until(probe)))
	*r = probe
	return Value{Kind: ValueList, Items: items, Separator: ' ', Raw: raw}, true
}

// consumeList consumes one or more values produced by one, separated by
// commas when sep is ',' or by whitespace otherwise.
func consumeList(r *TokenRange, sep byte, one func(*TokenRange) (Value, bool)) (Value, bool) {
	probe := *r
	var items []Value
	for {
		start := probe
		v, ok := one(&probe)
		if !ok {
			return Value{}, false
		}
		items = append(items, v)
		if sep == ',' {
			if probe.Peek().Type != css.CommaToken {
				break
			}
			probe.ConsumeIncludingWhitespace()
			continue
		}
		if probe.AtEnd() || probe.Peek().Type == css.CommaToken {
			break
		}
		// space separated items need whitespace between them
		if consumed := start.Until(probe); len(consumed) == 0 || !consumed[len(consumed)-1].IsWhitespace() {
			if !probe.Peek().IsWhitespace() {
				return Value{}, false
			}
			probe.ConsumeWhitespace()
		}
	}
	*r = probe
	return ListValue(items, sep), true
}
