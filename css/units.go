package css

import "slices"

// UnitCategory groups dimension units by what they measure.
type UnitCategory uint8

const (
	UnitUnknown UnitCategory = iota
	UnitLength
	UnitAngle
	UnitTime
	UnitResolution
)

var unitCategories = map[string]UnitCategory{
	"px": UnitLength, "cm": UnitLength, "mm": UnitLength, "q": UnitLength,
	"in": UnitLength, "pt": UnitLength, "pc": UnitLength,
	"em": UnitLength, "rem": UnitLength, "ex": UnitLength, "rex": UnitLength,
	"ch": UnitLength, "rch": UnitLength, "cap": UnitLength, "rcap": UnitLength,
	"ic": UnitLength, "ric": UnitLength, "lh": UnitLength, "rlh": UnitLength,
	"vw": UnitLength, "vh": UnitLength, "vmin": UnitLength, "vmax": UnitLength,
	"svw": UnitLength, "svh": UnitLength, "lvw": UnitLength, "lvh": UnitLength,
	"dvw": UnitLength, "dvh": UnitLength, "vi": UnitLength, "vb": UnitLength,
	"cqw": UnitLength, "cqh": UnitLength, "cqi": UnitLength, "cqb": UnitLength,
	"cqmin": UnitLength, "cqmax": UnitLength,

	"deg": UnitAngle, "grad": UnitAngle, "rad": UnitAngle, "turn": UnitAngle,

	"s": UnitTime, "ms": UnitTime,

	"dppx": UnitResolution, "x": UnitResolution, "dpi": UnitResolution, "dpcm": UnitResolution,
}

// CategoryOfUnit returns the category of a lower-cased unit.
func CategoryOfUnit(unit string) UnitCategory {
	return unitCategories[unit]
}

var (
	fontRelativeUnits      = []string{"em", "ex", "ch", "cap", "ic"}
	rootFontRelativeUnits  = []string{"rem", "rex", "rch", "rcap", "ric"}
	viewportRelativeUnits  = []string{"vw", "vh", "vmin", "vmax", "svw", "svh", "lvw", "lvh", "dvw", "dvh", "vi", "vb"}
	containerRelativeUnits = []string{"cqw", "cqh", "cqi", "cqb", "cqmin", "cqmax"}
)

// IsAbsoluteLengthUnit reports whether unit converts to pixels without any
// style context.
func IsAbsoluteLengthUnit(unit string) bool {
	switch unit {
	case "px", "cm", "mm", "q", "in", "pt", "pc":
		return true
	}
	return false
}

// ComputedStyleDependencies lists what a value needs from the style being
// built before it can be computed.
type ComputedStyleDependencies struct {
	Properties          []PropertyID // properties of the element itself
	RootProperties      []PropertyID // properties of the root element
	ViewportDimensions  bool
	ContainerDimensions bool
}

// IsComputationallyIndependent reports whether the value can be computed
// without any style context.
func (d ComputedStyleDependencies) IsComputationallyIndependent() bool {
	return len(d.Properties) == 0 && len(d.RootProperties) == 0 && !d.ContainerDimensions
}

func (d *ComputedStyleDependencies) addProperty(id PropertyID) {
	if !slices.Contains(d.Properties, id) {
		d.Properties = append(d.Properties, id)
	}
}

func (d *ComputedStyleDependencies) addRootProperty(id PropertyID) {
	if !slices.Contains(d.RootProperties, id) {
		d.RootProperties = append(d.RootProperties, id)
	}
}

// CollectComputedStyleDependencies adds the dependencies of v and its
// nested values to deps.
func (v Value) CollectComputedStyleDependencies(deps *ComputedStyleDependencies) {
	for _, item := range v.Items {
		item.CollectComputedStyleDependencies(deps)
	}
	if v.Kind != ValueDimension {
		return
	}
	switch {
	case slices.Contains(fontRelativeUnits, v.Unit):
		deps.addProperty(PropertyFontSize)
	case v.Unit == "lh":
		deps.addProperty(PropertyFontSize)
		deps.addProperty(PropertyLineHeight)
	case slices.Contains(rootFontRelativeUnits, v.Unit):
		deps.addRootProperty(PropertyFontSize)
	case v.Unit == "rlh":
		deps.addRootProperty(PropertyFontSize)
		deps.addRootProperty(PropertyLineHeight)
	case slices.Contains(viewportRelativeUnits, v.Unit):
		deps.ViewportDimensions = true
	case slices.Contains(containerRelativeUnits, v.Unit):
		deps.ContainerDimensions = true
	}
}
