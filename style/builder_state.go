package style

import (
	"stylecascade/css"
)

// BuilderContext describes the element a style is built for.
type BuilderContext struct {
	Context *Context
	// ParentStyle is the computed style of the parent element, nil for the
	// root.
	ParentStyle *RenderStyle
	// RootElementStyle is the computed style of the root element, nil when
	// building the root itself.
	RootElementStyle *RenderStyle
	IsRootElement    bool
	// ElementName is the lower-cased local name of the element.
	ElementName string

	PositionTryFallback     *PositionTryFallback
	IsBuildingKeyframeStyle bool
}

// BuilderState is the mutable state of one style build.
type BuilderState struct {
	context     BuilderContext
	style       *RenderStyle
	parentStyle *RenderStyle

	inProgressProperties                 [css.NumProperties]bool
	invalidAtComputedValueTimeProperties [css.NumProperties]bool

	inProgressCustomProperties map[string]struct{}
	inCycleCustomProperties    map[string]struct{}
	appliedCustomProperties    map[string]struct{}

	currentProperty *CascadeProperty
	linkMatch       LinkMatch
	fontDirty       bool
}

func newBuilderState(ctx BuilderContext, style *RenderStyle) *BuilderState {
	parent := ctx.ParentStyle
	if parent == nil {
		parent = ctx.Context.InitialStyle()
	}
	return &BuilderState{
		context:                    ctx,
		style:                      style,
		parentStyle:                parent,
		inProgressCustomProperties: make(map[string]struct{}),
		inCycleCustomProperties:    make(map[string]struct{}),
		appliedCustomProperties:    make(map[string]struct{}),
	}
}

// Style returns the style being built.
func (s *BuilderState) Style() *RenderStyle { return s.style }

// ParentStyle returns the parent style, the initial style for the root.
func (s *BuilderState) ParentStyle() *RenderStyle { return s.parentStyle }

// RootElementStyle returns the root element style, or nil.
func (s *BuilderState) RootElementStyle() *RenderStyle { return s.context.RootElementStyle }

// Context returns the shared style context.
func (s *BuilderState) Context() *Context { return s.context.Context }

// LinkMatch returns the link match slot being applied.
func (s *BuilderState) LinkMatch() LinkMatch { return s.linkMatch }

// FontDirty reports whether a font property changed since the font was last
// updated.
func (s *BuilderState) FontDirty() bool { return s.fontDirty }

// SetFontDirty forces the next UpdateFont to rebuild the font.
func (s *BuilderState) SetFontDirty() { s.fontDirty = true }

// UpdateFont rebuilds the font description if a font property changed.
func (s *BuilderState) UpdateFont() {
	if !s.fontDirty {
		return
	}
	s.style.updateFont()
	s.fontDirty = false
}

// IsCurrentPropertyInvalidAtComputedValueTime reports whether the property
// being applied failed substitution or took part in a dependency cycle.
func (s *BuilderState) IsCurrentPropertyInvalidAtComputedValueTime() bool {
	return s.currentProperty != nil && s.currentProperty.ID < css.NumProperties &&
		s.invalidAtComputedValueTimeProperties[s.currentProperty.ID]
}

func (s *BuilderState) applyPropertyToRegularStyle() bool { return s.linkMatch != MatchVisited }

func (s *BuilderState) applyPropertyToVisitedLinkStyle() bool {
	return s.linkMatch != MatchLink && s.style.InsideLink() == InsideVisitedLink
}

// CSSToLengthConversionData returns what lengths of the style resolve
// against.
func (s *BuilderState) CSSToLengthConversionData() LengthConversion {
	return s.conversionFor(css.PropertyInvalid)
}

// conversionFor returns the conversion used while applying id. Font
// relative units in font-size and line-height refer to the parent.
func (s *BuilderState) conversionFor(id css.PropertyID) LengthConversion {
	conv := LengthConversion{
		FontSize:   s.style.FontSize(),
		LineHeight: s.style.LineHeight(),
		Viewport:   s.context.Context.opts.Viewport,
	}
	switch id {
	case css.PropertyFontSize:
		conv.FontSize = s.parentStyle.FontSize()
		conv.LineHeight = s.parentStyle.LineHeight()
	case css.PropertyLineHeight:
		conv.LineHeight = s.parentStyle.LineHeight()
	}

	var root *RenderStyle
	switch {
	case s.context.IsRootElement && id == css.PropertyFontSize:
		root = s.context.Context.InitialStyle()
	case s.context.IsRootElement:
		root = s.style
	case s.context.RootElementStyle != nil:
		root = s.context.RootElementStyle
	default:
		root = s.context.Context.InitialStyle()
	}
	conv.RootFontSize = root.FontSize()
	conv.RootLineHeight = root.LineHeight()
	return conv
}

func (s *BuilderState) computeInputFor(id css.PropertyID, visited bool) computeInput {
	parentColor := s.parentStyle.values[css.PropertyColor]
	if visited {
		parentColor = s.parentStyle.VisitedValue(css.PropertyColor)
	}
	return computeInput{
		conv:             s.conversionFor(id),
		parentFontSize:   s.parentStyle.FontSize(),
		parentFontWeight: s.parentStyle.Font().Weight,
		parentColor:      parentColor,
		defaultFontSize:  s.context.Context.opts.DefaultFontSize,
	}
}

// adjustStyleForInterCharacterRuby centers inter-character ruby text and
// sets it vertically.
func (s *BuilderState) adjustStyleForInterCharacterRuby() {
	if s.context.ElementName != "rt" || !s.style.Value(css.PropertyRubyPosition).IsKeywordValue("inter-character") {
		return
	}
	s.style.SetValue(css.PropertyTextAlign, css.Ident("center"))
	if s.style.WritingMode().IsHorizontal() {
		s.style.SetValue(css.PropertyWritingMode, css.Ident("vertical-lr"))
	}
}
