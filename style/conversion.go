package style

import "stylecascade/css"

// Size is a width and height in pixels.
type Size struct {
	Width  float64
	Height float64
}

const (
	pxPerIn = 96.0
	pxPerCm = pxPerIn / 2.54
	pxPerMm = pxPerCm / 10
	pxPerQ  = pxPerMm / 4
	pxPerPt = pxPerIn / 72
	pxPerPc = pxPerPt * 12
)

// LengthConversion holds what relative length units resolve against.
type LengthConversion struct {
	FontSize       float64
	RootFontSize   float64
	LineHeight     float64
	RootLineHeight float64
	Viewport       Size
}

// ToPixels converts n in unit to pixels. Container units have no container
// to measure and resolve against the small viewport.
func (c LengthConversion) ToPixels(n float64, unit string) float64 {
	vw, vh := c.Viewport.Width/100, c.Viewport.Height/100
	switch unit {
	case "px":
		return n
	case "in":
		return n * pxPerIn
	case "cm":
		return n * pxPerCm
	case "mm":
		return n * pxPerMm
	case "q":
		return n * pxPerQ
	case "pt":
		return n * pxPerPt
	case "pc":
		return n * pxPerPc
	case "em":
		return n * c.FontSize
	case "rem":
		return n * c.RootFontSize
	case "ex", "ch":
		return n * c.FontSize / 2
	case "rex", "rch":
		return n * c.RootFontSize / 2
	case "cap":
		return n * c.FontSize * 0.7
	case "rcap":
		return n * c.RootFontSize * 0.7
	case "ic":
		return n * c.FontSize
	case "ric":
		return n * c.RootFontSize
	case "lh":
		return n * c.LineHeight
	case "rlh":
		return n * c.RootLineHeight
	case "vw", "svw", "lvw", "dvw", "vi", "cqw", "cqi":
		return n * vw
	case "vh", "svh", "lvh", "dvh", "vb", "cqh", "cqb":
		return n * vh
	case "vmin", "cqmin":
		return n * min(vw, vh)
	case "vmax", "cqmax":
		return n * max(vw, vh)
	}
	return n
}

// computeLengths returns v with every length converted to pixels. Colors
// lose their authored spelling. Other values are kept as they are.
func (c LengthConversion) computeLengths(v css.Value) css.Value {
	switch v.Kind {
	case css.ValueDimension:
		if css.CategoryOfUnit(v.Unit) == css.UnitLength && v.Unit != "px" {
			return css.Pixels(c.ToPixels(v.Value, v.Unit))
		}
		if v.Unit == "px" {
			return css.Pixels(v.Value)
		}
	case css.ValueColor:
		if v.Keyword == "" {
			return css.ColorValue(v.Color)
		}
	case css.ValueFunction:
		if len(v.Items) > 0 {
			return css.FunctionValue(v.Function, c.computeItems(v.Items))
		}
	case css.ValueList:
		return css.ListValue(c.computeItems(v.Items), v.Separator)
	}
	return v
}

func (c LengthConversion) computeItems(items []css.Value) []css.Value {
	out := make([]css.Value, len(items))
	for i, item := range items {
		out[i] = c.computeLengths(item)
	}
	return out
}
