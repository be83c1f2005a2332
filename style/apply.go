package style

import (
	"fmt"

	"github.com/mazznoer/csscolorparser"

	"stylecascade/css"
)

type applyValueType uint8

const (
	applyValue applyValueType = iota
	applyInitial
	applyInherit
)

var blackColor = csscolorparser.Color{A: 1}

// relative to the default font size
var fontSizeKeywordScale = map[string]float64{
	"xx-small":  3.0 / 5,
	"x-small":   3.0 / 4,
	"small":     8.0 / 9,
	"medium":    1,
	"large":     6.0 / 5,
	"x-large":   3.0 / 2,
	"xx-large":  2,
	"xxx-large": 3,
}

const fontSizeRatio = 1.2

// computeInput is what computing a declared value may depend on.
type computeInput struct {
	conv             LengthConversion
	parentFontSize   float64
	parentFontWeight float64
	parentColor      css.Value
	defaultFontSize  float64
}

// computeValue turns a declared value into a computed one.
func computeValue(id css.PropertyID, v css.Value, in computeInput) css.Value {
	switch id {
	case css.PropertyFontSize:
		return css.Pixels(computeFontSize(v, in))
	case css.PropertyFontWeight:
		return css.Number(computeFontWeight(v, in.parentFontWeight))
	case css.PropertyLineHeight:
		switch v.Kind {
		case css.ValuePercentage:
			return css.Pixels(v.Value * in.conv.FontSize / 100)
		case css.ValueNumber:
			return css.Number(v.Value)
		}
	case css.PropertyColor:
		if v.Kind == css.ValueColor && v.Keyword == "currentcolor" {
			return in.parentColor
		}
	}
	return in.conv.computeLengths(v)
}

func computeFontSize(v css.Value, in computeInput) float64 {
	switch v.Kind {
	case css.ValueKeyword:
		switch v.Keyword {
		case "larger":
			return in.parentFontSize * fontSizeRatio
		case "smaller":
			return in.parentFontSize / fontSizeRatio
		}
		if scale, ok := fontSizeKeywordScale[v.Keyword]; ok {
			return in.defaultFontSize * scale
		}
	case css.ValuePercentage:
		return in.parentFontSize * v.Value / 100
	case css.ValueDimension:
		return in.conv.ToPixels(v.Value, v.Unit)
	}
	return in.parentFontSize
}

func computeFontWeight(v css.Value, parent float64) float64 {
	switch {
	case v.Kind == css.ValueNumber:
		return v.Value
	case v.IsKeywordValue("bold"):
		return 700
	case v.IsKeywordValue("bolder"):
		switch {
		case parent < 350:
			return 400
		case parent < 550:
			return 700
		case parent < 900:
			return 900
		}
		return parent
	case v.IsKeywordValue("lighter"):
		switch {
		case parent < 100:
			return parent
		case parent < 550:
			return 100
		case parent < 750:
			return 400
		}
		return 700
	}
	return 400
}

// applyValue stores the computed value of a physical longhand. This is the
// only place standard properties are written during a build.
func (b *Builder) applyValue(id css.PropertyID, value css.CSSValue, valueType applyValueType) {
	st := b.state
	if st.applyPropertyToRegularStyle() {
		st.style.SetValue(id, b.computedValue(id, value, valueType, false))
	}
	if st.applyPropertyToVisitedLinkStyle() && id.IsValidVisitedLinkProperty() {
		st.style.SetVisitedValue(id, b.computedValue(id, value, valueType, true))
	}
	if id >= css.FirstHighPriorityProperty && id <= css.LastHighPriorityProperty {
		st.fontDirty = true
	}
}

func (b *Builder) computedValue(id css.PropertyID, value css.CSSValue, valueType applyValueType, visited bool) css.Value {
	st := b.state
	switch valueType {
	case applyInitial:
		return st.context.Context.InitialStyle().values[id]
	case applyInherit:
		if visited {
			return st.parentStyle.VisitedValue(id)
		}
		return st.parentStyle.values[id]
	}
	v, ok := value.(css.Value)
	if !ok {
		panic(fmt.Sprintf("style: unresolved %T applied to %s", value, id))
	}
	return computeValue(id, v, st.computeInputFor(id, visited))
}
