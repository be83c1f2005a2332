package style

import (
	"slices"

	"github.com/maruel/natural"

	"stylecascade/css"
)

// InsideLink tells whether an element is a link or inside one, and which
// kind.
type InsideLink uint8

const (
	NotInsideLink InsideLink = iota
	InsideUnvisitedLink
	InsideVisitedLink
)

// FontDescription is the font the style's font-relative units resolve
// against.
type FontDescription struct {
	Families []string
	Size     float64
	Style    string
	Weight   float64
}

// RenderStyle holds the computed values of one element. Standard properties
// live in a fixed array indexed by PropertyID, custom properties in two
// copy-on-write maps.
type RenderStyle struct {
	values  [css.NumProperties]css.Value
	visited [css.NumProperties]css.Value

	inheritedCustom        *CustomPropertyData
	nonInheritedCustom     *CustomPropertyData
	ownsInheritedCustom    bool
	ownsNonInheritedCustom bool

	writingMode css.WritingMode
	font        FontDescription
	insideLink  InsideLink

	hasExplicitlyInheritedProperties bool
}

// clone copies the style. Custom property maps are shared and copied on the
// next write by either side.
func (s *RenderStyle) clone() *RenderStyle {
	c := *s
	c.font.Families = slices.Clone(s.font.Families)
	if s.ownsInheritedCustom {
		s.ownsInheritedCustom = false
	}
	if s.ownsNonInheritedCustom {
		s.ownsNonInheritedCustom = false
	}
	c.ownsInheritedCustom, c.ownsNonInheritedCustom = false, false
	return &c
}

// inheritFrom copies inherited properties of parent.
func (s *RenderStyle) inheritFrom(parent *RenderStyle) {
	for id := css.FirstTopPriorityProperty; id < css.NumProperties; id++ {
		if id.IsInherited() {
			s.values[id] = parent.values[id]
			s.visited[id] = parent.visited[id]
		}
	}
	s.writingMode = parent.writingMode
	s.font = parent.font
	s.font.Families = slices.Clone(parent.font.Families)
	s.insideLink = parent.insideLink

	s.inheritedCustom = parent.inheritedCustom
	s.ownsInheritedCustom = false
	if parent.ownsInheritedCustom {
		parent.ownsInheritedCustom = false
	}
}

// Value returns the computed value of id. Logical properties read the
// physical property they map to under the style's writing mode.
func (s *RenderStyle) Value(id css.PropertyID) css.Value {
	if id.IsDirectionAware() {
		id = css.ResolveDirectionAwareProperty(id, s.writingMode)
	}
	if id >= css.NumProperties {
		return css.Value{}
	}
	return s.values[id]
}

// VisitedValue returns the value of id used when the element is a visited
// link. Properties without a separate visited value return Value.
func (s *RenderStyle) VisitedValue(id css.PropertyID) css.Value {
	if id.IsDirectionAware() {
		id = css.ResolveDirectionAwareProperty(id, s.writingMode)
	}
	if id >= css.NumProperties {
		return css.Value{}
	}
	if v := s.visited[id]; v.Kind != css.ValueNone {
		return v
	}
	return s.values[id]
}

// SetValue stores a computed value of a physical property.
func (s *RenderStyle) SetValue(id css.PropertyID, v css.Value) {
	s.values[id] = v
	switch id {
	case css.PropertyDirection:
		s.writingMode.RTL = v.IsKeywordValue("rtl")
	case css.PropertyWritingMode:
		if flow, ok := css.ParseBlockFlow(v.Keyword); ok {
			s.writingMode.Flow = flow
		}
	case css.PropertyFontSize:
		if v.Kind == css.ValueDimension {
			s.font.Size = v.Value
		}
	}
}

// SetVisitedValue stores the visited link value of a property.
func (s *RenderStyle) SetVisitedValue(id css.PropertyID, v css.Value) {
	s.visited[id] = v
}

// WritingMode returns the computed writing mode and direction.
func (s *RenderStyle) WritingMode() css.WritingMode { return s.writingMode }

// Font returns the computed font.
func (s *RenderStyle) Font() FontDescription { return s.font }

// FontSize returns the computed font size in pixels.
func (s *RenderStyle) FontSize() float64 { return s.font.Size }

// LineHeight returns the computed line height in pixels. normal resolves to
// 1.2 times the font size.
func (s *RenderStyle) LineHeight() float64 {
	v := s.values[css.PropertyLineHeight]
	switch v.Kind {
	case css.ValueDimension:
		return v.Value
	case css.ValueNumber:
		return v.Value * s.font.Size
	}
	return s.font.Size * 1.2
}

// updateFont rebuilds the font description from the font properties.
func (s *RenderStyle) updateFont() {
	var families []string
	if fam := s.values[css.PropertyFontFamily]; fam.Kind == css.ValueList {
		for _, item := range fam.Items {
			if item.Kind == css.ValueString {
				families = append(families, item.Text)
			} else {
				families = append(families, item.Keyword)
			}
		}
	}
	s.font.Families = families
	if size := s.values[css.PropertyFontSize]; size.Kind == css.ValueDimension {
		s.font.Size = size.Value
	}
	s.font.Style = s.values[css.PropertyFontStyle].Keyword
	if w := s.values[css.PropertyFontWeight]; w.Kind == css.ValueNumber {
		s.font.Weight = w.Value
	}
}

// InsideLink returns the link state of the element.
func (s *RenderStyle) InsideLink() InsideLink { return s.insideLink }

// SetInsideLink records the link state of the element. Descendants inherit
// it. Entering a visited link starts the visited values from the current
// ones, so rules for unvisited links do not leak into them.
func (s *RenderStyle) SetInsideLink(l InsideLink) {
	if l == InsideVisitedLink {
		for id := range s.visited {
			if s.visited[id].Kind == css.ValueNone && css.PropertyID(id).IsValidVisitedLinkProperty() {
				s.visited[id] = s.values[id]
			}
		}
	}
	s.insideLink = l
}

// HasExplicitlyInheritedProperties reports whether a non-inherited property
// was set to inherit.
func (s *RenderStyle) HasExplicitlyInheritedProperties() bool {
	return s.hasExplicitlyInheritedProperties
}

// CustomPropertyValue returns the computed value of a custom property, or
// nil.
func (s *RenderStyle) CustomPropertyValue(name string) *CustomProperty {
	if v := s.nonInheritedCustom.Get(name); v != nil {
		return v
	}
	return s.inheritedCustom.Get(name)
}

// SetCustomPropertyValue stores the computed value of a custom property in
// the inherited or the non-inherited map.
func (s *RenderStyle) SetCustomPropertyValue(p *CustomProperty, inherited bool) {
	if inherited {
		if existing := s.inheritedCustom.Get(p.Name()); existing != nil && existing.Equal(p) {
			return
		}
		if !s.ownsInheritedCustom {
			s.inheritedCustom = s.inheritedCustom.Derive()
			s.ownsInheritedCustom = true
		}
		s.inheritedCustom.Set(p.Name(), p)
		return
	}
	if existing := s.nonInheritedCustom.Get(p.Name()); existing != nil && existing.Equal(p) {
		return
	}
	if !s.ownsNonInheritedCustom {
		s.nonInheritedCustom = s.nonInheritedCustom.Derive()
		s.ownsNonInheritedCustom = true
	}
	s.nonInheritedCustom.Set(p.Name(), p)
}

// InheritedCustomProperties returns the map of inheriting custom
// properties. It must not be modified.
func (s *RenderStyle) InheritedCustomProperties() *CustomPropertyData { return s.inheritedCustom }

// NonInheritedCustomProperties returns the map of registered non-inheriting
// custom properties. It must not be modified.
func (s *RenderStyle) NonInheritedCustomProperties() *CustomPropertyData {
	return s.nonInheritedCustom
}

// CustomPropertyNames returns the names of all custom properties with a
// value, in natural order.
func (s *RenderStyle) CustomPropertyNames() []string {
	names := append(s.inheritedCustom.Names(), s.nonInheritedCustom.Names()...)
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		}
		return 1
	})
	return slices.Compact(names)
}
