package css

import (
	"strings"
)

// PropertyID identifies a standard property. The numeric order is the
// application order: properties other properties depend on come first.
type PropertyID uint16

const (
	PropertyInvalid PropertyID = iota
	PropertyCustom

	// writing mode and direction decide how logical properties map
	PropertyDirection
	PropertyWritingMode
	PropertyTextOrientation
	PropertyRubyPosition

	// font properties, em and ex units depend on them
	PropertyFontFamily
	PropertyFontSize
	PropertyFontStyle
	PropertyFontWeight

	// lh units depend on it, applied right after the font is updated
	PropertyLineHeight

	PropertyBackgroundColor
	PropertyBackgroundImage
	PropertyColor
	PropertyDisplay
	PropertyLetterSpacing
	PropertyListStyleImage
	PropertyOpacity
	PropertyTextAlign
	PropertyTransform
	PropertyTransitionDuration
	PropertyVisibility
	PropertyZIndex

	// properties with logical and physical variants, applied in author order
	PropertyMarginTop
	PropertyMarginRight
	PropertyMarginBottom
	PropertyMarginLeft
	PropertyMarginBlockStart
	PropertyMarginBlockEnd
	PropertyMarginInlineStart
	PropertyMarginInlineEnd
	PropertyPaddingTop
	PropertyPaddingRight
	PropertyPaddingBottom
	PropertyPaddingLeft
	PropertyPaddingBlockStart
	PropertyPaddingBlockEnd
	PropertyPaddingInlineStart
	PropertyPaddingInlineEnd
	PropertyTop
	PropertyRight
	PropertyBottom
	PropertyLeft
	PropertyInsetBlockStart
	PropertyInsetBlockEnd
	PropertyInsetInlineStart
	PropertyInsetInlineEnd
	PropertyWidth
	PropertyHeight
	PropertyInlineSize
	PropertyBlockSize

	PropertyMargin
	PropertyPadding
	PropertyInset

	NumProperties
)

const (
	FirstTopPriorityProperty  = PropertyDirection
	LastTopPriorityProperty   = PropertyRubyPosition
	FirstHighPriorityProperty = PropertyFontFamily
	LastHighPriorityProperty  = PropertyFontWeight
	FirstLowPriorityProperty  = PropertyBackgroundColor
	LastLowPriorityProperty   = PropertyZIndex
	FirstLogicalGroupProperty = PropertyMarginTop
	LastLogicalGroupProperty  = PropertyBlockSize
)

type grammarKind uint8

const (
	grammarNone grammarKind = iota
	grammarKeyword
	grammarFontFamily
	grammarFontSize
	grammarFontWeight
	grammarLineHeight
	grammarColor
	grammarImageOrNone
	grammarLengthOrNormal
	grammarNumber
	grammarIntegerOrAuto
	grammarTransform
	grammarTimeList
	grammarLengthPercentageOrAuto
	grammarLengthPercentage
)

type grammar struct {
	kind        grammarKind
	keywords    []string
	nonNegative bool
}

type propertyInfo struct {
	name      string
	inherited bool
	initial   string
	grammar   grammar
	longhands []PropertyID
	visited   bool
}

func keywords(kw ...string) grammar {
	return grammar{kind: grammarKeyword, keywords: kw}
}

var properties = [NumProperties]propertyInfo{
	PropertyInvalid: {name: ""},
	PropertyCustom:  {name: "custom", inherited: true},

	PropertyDirection:       {name: "direction", inherited: true, initial: "ltr", grammar: keywords("ltr", "rtl")},
	PropertyWritingMode:     {name: "writing-mode", inherited: true, initial: "horizontal-tb", grammar: keywords("horizontal-tb", "vertical-rl", "vertical-lr")},
	PropertyTextOrientation: {name: "text-orientation", inherited: true, initial: "mixed", grammar: keywords("mixed", "upright", "sideways")},
	PropertyRubyPosition:    {name: "ruby-position", inherited: true, initial: "over", grammar: keywords("over", "under", "inter-character", "alternate")},

	PropertyFontFamily: {name: "font-family", inherited: true, initial: "serif", grammar: grammar{kind: grammarFontFamily}},
	PropertyFontSize:   {name: "font-size", inherited: true, initial: "medium", grammar: grammar{kind: grammarFontSize, nonNegative: true}},
	PropertyFontStyle:  {name: "font-style", inherited: true, initial: "normal", grammar: keywords("normal", "italic", "oblique")},
	PropertyFontWeight: {name: "font-weight", inherited: true, initial: "normal", grammar: grammar{kind: grammarFontWeight}},
	PropertyLineHeight: {name: "line-height", inherited: true, initial: "normal", grammar: grammar{kind: grammarLineHeight, nonNegative: true}},

	PropertyBackgroundColor:    {name: "background-color", initial: "transparent", grammar: grammar{kind: grammarColor}, visited: true},
	PropertyBackgroundImage:    {name: "background-image", initial: "none", grammar: grammar{kind: grammarImageOrNone}},
	PropertyColor:              {name: "color", inherited: true, initial: "black", grammar: grammar{kind: grammarColor}, visited: true},
	PropertyDisplay:            {name: "display", initial: "inline", grammar: keywords("inline", "block", "inline-block", "flex", "inline-flex", "grid", "inline-grid", "list-item", "table", "contents", "none")},
	PropertyLetterSpacing:      {name: "letter-spacing", inherited: true, initial: "normal", grammar: grammar{kind: grammarLengthOrNormal}},
	PropertyListStyleImage:     {name: "list-style-image", inherited: true, initial: "none", grammar: grammar{kind: grammarImageOrNone}},
	PropertyOpacity:            {name: "opacity", initial: "1", grammar: grammar{kind: grammarNumber}},
	PropertyTextAlign:          {name: "text-align", inherited: true, initial: "start", grammar: keywords("start", "end", "left", "right", "center", "justify")},
	PropertyTransform:          {name: "transform", initial: "none", grammar: grammar{kind: grammarTransform}},
	PropertyTransitionDuration: {name: "transition-duration", initial: "0s", grammar: grammar{kind: grammarTimeList, nonNegative: true}},
	PropertyVisibility:         {name: "visibility", inherited: true, initial: "visible", grammar: keywords("visible", "hidden", "collapse")},
	PropertyZIndex:             {name: "z-index", initial: "auto", grammar: grammar{kind: grammarIntegerOrAuto}},

	PropertyMarginTop:         {name: "margin-top", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginRight:       {name: "margin-right", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginBottom:      {name: "margin-bottom", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginLeft:        {name: "margin-left", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginBlockStart:  {name: "margin-block-start", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginBlockEnd:    {name: "margin-block-end", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginInlineStart: {name: "margin-inline-start", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyMarginInlineEnd:   {name: "margin-inline-end", initial: "0", grammar: grammar{kind: grammarLengthPercentageOrAuto}},

	PropertyPaddingTop:         {name: "padding-top", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingRight:       {name: "padding-right", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingBottom:      {name: "padding-bottom", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingLeft:        {name: "padding-left", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingBlockStart:  {name: "padding-block-start", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingBlockEnd:    {name: "padding-block-end", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingInlineStart: {name: "padding-inline-start", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},
	PropertyPaddingInlineEnd:   {name: "padding-inline-end", initial: "0", grammar: grammar{kind: grammarLengthPercentage, nonNegative: true}},

	PropertyTop:              {name: "top", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyRight:            {name: "right", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyBottom:           {name: "bottom", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyLeft:             {name: "left", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyInsetBlockStart:  {name: "inset-block-start", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyInsetBlockEnd:    {name: "inset-block-end", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyInsetInlineStart: {name: "inset-inline-start", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},
	PropertyInsetInlineEnd:   {name: "inset-inline-end", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto}},

	PropertyWidth:      {name: "width", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto, nonNegative: true}},
	PropertyHeight:     {name: "height", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto, nonNegative: true}},
	PropertyInlineSize: {name: "inline-size", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto, nonNegative: true}},
	PropertyBlockSize:  {name: "block-size", initial: "auto", grammar: grammar{kind: grammarLengthPercentageOrAuto, nonNegative: true}},

	PropertyMargin:  {name: "margin", longhands: []PropertyID{PropertyMarginTop, PropertyMarginRight, PropertyMarginBottom, PropertyMarginLeft}},
	PropertyPadding: {name: "padding", longhands: []PropertyID{PropertyPaddingTop, PropertyPaddingRight, PropertyPaddingBottom, PropertyPaddingLeft}},
	PropertyInset:   {name: "inset", longhands: []PropertyID{PropertyTop, PropertyRight, PropertyBottom, PropertyLeft}},
}

// legacy spellings accepted in stylesheets
var propertyAliases = map[string]PropertyID{
	"-webkit-margin-start":   PropertyMarginInlineStart,
	"-webkit-margin-end":     PropertyMarginInlineEnd,
	"-webkit-padding-start":  PropertyPaddingInlineStart,
	"-webkit-padding-end":    PropertyPaddingInlineEnd,
	"-webkit-logical-width":  PropertyInlineSize,
	"-webkit-logical-height": PropertyBlockSize,
	"-webkit-transform":      PropertyTransform,
	"-webkit-writing-mode":   PropertyWritingMode,
}

var propertyByName = func() map[string]PropertyID {
	m := make(map[string]PropertyID, NumProperties+PropertyID(len(propertyAliases)))
	for id := PropertyDirection; id < NumProperties; id++ {
		m[properties[id].name] = id
	}
	for name, id := range propertyAliases {
		m[name] = id
	}
	return m
}()

// LookupProperty maps a property name to its ID. Names are matched
// case-insensitively. Custom property names yield PropertyCustom.
func LookupProperty(name string) (PropertyID, bool) {
	if IsCustomPropertyName(name) {
		return PropertyCustom, true
	}
	if name == "" || len(name) > maxPropertyNameLength {
		return PropertyInvalid, false
	}
	id, ok := propertyByName[strings.ToLower(name)]
	return id, ok
}

// String returns the property name.
func (id PropertyID) String() string {
	if id < NumProperties {
		return properties[id].name
	}
	return "invalid"
}

// IsInherited reports whether the property inherits by default. Custom
// properties inherit unless registered otherwise.
func (id PropertyID) IsInherited() bool {
	return id < NumProperties && properties[id].inherited
}

// IsShorthand reports whether the property only expands into longhands.
func (id PropertyID) IsShorthand() bool {
	return id < NumProperties && len(properties[id].longhands) > 0
}

// Longhands returns the properties a shorthand expands into.
func (id PropertyID) Longhands() []PropertyID {
	if id >= NumProperties {
		return nil
	}
	return properties[id].longhands
}

// InitialValueText returns the CSS text of the initial value.
func (id PropertyID) InitialValueText() string {
	if id >= NumProperties {
		return ""
	}
	return properties[id].initial
}

// IsValidVisitedLinkProperty reports whether the property is applied to the
// :visited style of links.
func (id PropertyID) IsValidVisitedLinkProperty() bool {
	return id < NumProperties && properties[id].visited
}

// IsInLogicalPropertyGroup reports whether the property has physical and
// logical variants sharing one computed slot.
func (id PropertyID) IsInLogicalPropertyGroup() bool {
	return id >= FirstLogicalGroupProperty && id <= LastLogicalGroupProperty
}

// logical group layout: physical sides in top, right, bottom, left order and
// logical sides in block-start, block-end, inline-start, inline-end order.
// Sizing groups use width, height and inline-size, block-size.
type logicalGroup struct {
	physical []PropertyID
	logical  []PropertyID
	sizing   bool
}

var logicalGroups = []logicalGroup{
	{
		physical: []PropertyID{PropertyMarginTop, PropertyMarginRight, PropertyMarginBottom, PropertyMarginLeft},
		logical:  []PropertyID{PropertyMarginBlockStart, PropertyMarginBlockEnd, PropertyMarginInlineStart, PropertyMarginInlineEnd},
	},
	{
		physical: []PropertyID{PropertyPaddingTop, PropertyPaddingRight, PropertyPaddingBottom, PropertyPaddingLeft},
		logical:  []PropertyID{PropertyPaddingBlockStart, PropertyPaddingBlockEnd, PropertyPaddingInlineStart, PropertyPaddingInlineEnd},
	},
	{
		physical: []PropertyID{PropertyTop, PropertyRight, PropertyBottom, PropertyLeft},
		logical:  []PropertyID{PropertyInsetBlockStart, PropertyInsetBlockEnd, PropertyInsetInlineStart, PropertyInsetInlineEnd},
	},
	{
		physical: []PropertyID{PropertyWidth, PropertyHeight},
		logical:  []PropertyID{PropertyInlineSize, PropertyBlockSize},
		sizing:   true,
	},
}

type groupSlot struct {
	group   int
	index   int
	logical bool
}

var logicalGroupSlots = func() map[PropertyID]groupSlot {
	m := make(map[PropertyID]groupSlot)
	for g, group := range logicalGroups {
		for i, id := range group.physical {
			m[id] = groupSlot{group: g, index: i}
		}
		for i, id := range group.logical {
			m[id] = groupSlot{group: g, index: i, logical: true}
		}
	}
	return m
}()

// IsDirectionAware reports whether the property is a logical one whose
// physical target depends on writing mode and direction.
func (id PropertyID) IsDirectionAware() bool {
	slot, ok := logicalGroupSlots[id]
	return ok && slot.logical
}

// ResolveDirectionAwareProperty maps a logical property to the physical
// property it sets under wm. Other properties are returned unchanged.
func ResolveDirectionAwareProperty(id PropertyID, wm WritingMode) PropertyID {
	slot, ok := logicalGroupSlots[id]
	if !ok || !slot.logical {
		return id
	}
	group := logicalGroups[slot.group]
	if group.sizing {
		// inline-size, block-size
		if (slot.index == 0) == wm.IsHorizontal() {
			return group.physical[0]
		}
		return group.physical[1]
	}
	return group.physical[wm.physicalSide(slot.index)]
}

// UnresolvePhysicalProperty maps a physical property to the logical
// property that resolves to it under wm. Other properties are returned
// unchanged.
func UnresolvePhysicalProperty(id PropertyID, wm WritingMode) PropertyID {
	slot, ok := logicalGroupSlots[id]
	if !ok || slot.logical {
		return id
	}
	for _, logical := range logicalGroups[slot.group].logical {
		if ResolveDirectionAwareProperty(logical, wm) == id {
			return logical
		}
	}
	return id
}

// LogicalPairProperty returns the other member of the logical/physical pair
// sharing a computed slot with id under wm.
func LogicalPairProperty(id PropertyID, wm WritingMode) PropertyID {
	if id.IsDirectionAware() {
		return ResolveDirectionAwareProperty(id, wm)
	}
	return UnresolvePhysicalProperty(id, wm)
}

// BlockFlow is the writing-mode block flow direction.
type BlockFlow uint8

const (
	HorizontalTB BlockFlow = iota
	VerticalRL
	VerticalLR
)

// WritingMode combines block flow and inline direction.
type WritingMode struct {
	Flow BlockFlow
	RTL  bool
}

// ParseBlockFlow maps a writing-mode keyword to a block flow.
func ParseBlockFlow(keyword string) (BlockFlow, bool) {
	switch strings.ToLower(keyword) {
	case "horizontal-tb":
		return HorizontalTB, true
	case "vertical-rl":
		return VerticalRL, true
	case "vertical-lr":
		return VerticalLR, true
	}
	return HorizontalTB, false
}

// String returns the writing-mode keyword.
func (f BlockFlow) String() string {
	switch f {
	case VerticalRL:
		return "vertical-rl"
	case VerticalLR:
		return "vertical-lr"
	default:
		return "horizontal-tb"
	}
}

// IsHorizontal reports whether lines run horizontally.
func (wm WritingMode) IsHorizontal() bool {
	return wm.Flow == HorizontalTB
}

const (
	sideTop = iota
	sideRight
	sideBottom
	sideLeft
)

// physicalSide maps block-start, block-end, inline-start, inline-end
// (indexes 0 to 3) to a physical side.
func (wm WritingMode) physicalSide(logical int) int {
	var blockStart, inlineStart int
	switch wm.Flow {
	case VerticalRL:
		blockStart = sideRight
	case VerticalLR:
		blockStart = sideLeft
	default:
		blockStart = sideTop
	}
	switch {
	case wm.IsHorizontal() && !wm.RTL:
		inlineStart = sideLeft
	case wm.IsHorizontal():
		inlineStart = sideRight
	case !wm.RTL:
		inlineStart = sideTop
	default:
		inlineStart = sideBottom
	}
	switch logical {
	case 0:
		return blockStart
	case 1:
		return (blockStart + 2) % 4
	case 2:
		return inlineStart
	default:
		return (inlineStart + 2) % 4
	}
}
