package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"stylecascade/css"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	return NewContext(zaptest.NewLogger(t), Options{})
}

func matched(ctx *Context, text string) MatchedProperties {
	return MatchedProperties{
		Declarations:  ctx.ParseInlineStyle(text),
		LinkMatch:     MatchAll,
		LayerPriority: UnlayeredPriority,
	}
}

func authorMatch(ctx *Context, blocks ...string) *MatchResult {
	m := &MatchResult{}
	for _, text := range blocks {
		m.AuthorDeclarations = append(m.AuthorDeclarations, matched(ctx, text))
	}
	return m
}

func build(t *testing.T, ctx *Context, parent *RenderStyle, match *MatchResult) *Builder {
	t.Helper()
	bctx := BuilderContext{Context: ctx, ParentStyle: parent, IsRootElement: parent == nil}
	b := NewBuilder(ctx.NewStyle(parent), bctx, match, LevelAuthor, NormalProperties())
	b.ApplyAllProperties()
	return b
}

func customText(t *testing.T, s *RenderStyle, name string) string {
	t.Helper()
	p := s.CustomPropertyValue(name)
	require.NotNil(t, p, "custom property %s has no value", name)
	return p.Serialize()
}

func mustRegister(t *testing.T, ctx *Context, name, syntax string, inherits bool, initial string) {
	t.Helper()
	reg := PropertyRegistration{Name: name, Syntax: syntax, Inherits: inherits, Source: SourceConfig}
	if initial != "" {
		reg.InitialValue = css.Tokenize(initial)
	}
	require.NoError(t, ctx.RegisterProperty(reg))
}

func TestBuilder_LiteralCustomProperties(t *testing.T) {
	ctx := newTestContext(t)
	match := authorMatch(ctx, "--a: 1px; --b:  foo bar ")

	first := build(t, ctx, nil, match).Style()
	second := build(t, ctx, nil, match).Style()

	assert.Equal(t, "1px", customText(t, first, "--a"))
	assert.Equal(t, "foo bar", customText(t, first, "--b"))
	assert.True(t, first.InheritedCustomProperties().Equal(second.InheritedCustomProperties()))
}

func TestBuilder_UnregisteredCycle(t *testing.T) {
	for _, order := range []string{
		"--a: var(--b); --b: var(--a); --c: var(--a, 3px)",
		"--c: var(--a, 3px); --b: var(--a); --a: var(--b)",
	} {
		t.Run(order, func(t *testing.T) {
			ctx := newTestContext(t)
			match := authorMatch(ctx, order)
			for range 2 {
				s := build(t, ctx, nil, match).Style()
				assert.True(t, s.CustomPropertyValue("--a").IsInvalid())
				assert.True(t, s.CustomPropertyValue("--b").IsInvalid())
				assert.Equal(t, "3px", customText(t, s, "--c"))
			}
		})
	}
}

func TestBuilder_RegisteredCycle(t *testing.T) {
	for _, order := range []string{
		"--a: var(--b); --b: var(--a)",
		"--b: var(--a); --a: var(--b)",
	} {
		t.Run(order, func(t *testing.T) {
			ctx := newTestContext(t)
			mustRegister(t, ctx, "--a", "<length>", true, "1px")
			mustRegister(t, ctx, "--b", "<length>", true, "2px")
			match := authorMatch(ctx, order)
			for range 2 {
				s := build(t, ctx, nil, match).Style()
				// unset inherits, the root inherits initial values
				assert.Equal(t, "1px", customText(t, s, "--a"))
				assert.Equal(t, "2px", customText(t, s, "--b"))
			}
		})
	}
}

func TestBuilder_FallbackIsLazy(t *testing.T) {
	ctx := newTestContext(t)
	// --b is only referenced from an unused fallback, its cycle with --c
	// must not leak into --a
	s := build(t, ctx, nil, authorMatch(ctx,
		"--x: 5px; --a: var(--x, var(--b)); --b: var(--c); --c: var(--b)")).Style()

	assert.Equal(t, "5px", customText(t, s, "--a"))
	assert.True(t, s.CustomPropertyValue("--b").IsInvalid())
}

func TestBuilder_RegisteredLength(t *testing.T) {
	ctx := newTestContext(t)
	mustRegister(t, ctx, "--gap", "<length>", false, "0px")

	s := build(t, ctx, nil, authorMatch(ctx, "--gap: 4px")).Style()
	assert.Equal(t, "4px", customText(t, s, "--gap"))

	s = build(t, ctx, nil, authorMatch(ctx, "font-size: 10px; --gap: 2em")).Style()
	assert.Equal(t, "20px", customText(t, s, "--gap"))

	// does not match the syntax
	s = build(t, ctx, nil, authorMatch(ctx, "--gap: red")).Style()
	assert.Equal(t, "0px", customText(t, s, "--gap"))
}

func TestBuilder_RegisteredNonInherited(t *testing.T) {
	ctx := newTestContext(t)
	mustRegister(t, ctx, "--n", "<length>", false, "1px")
	mustRegister(t, ctx, "--i", "<length>", true, "1px")

	parent := build(t, ctx, nil, authorMatch(ctx, "--n: 5px; --i: 5px")).Style()
	child := build(t, ctx, parent, authorMatch(ctx, "color: red")).Style()

	assert.Equal(t, "1px", customText(t, child, "--n"))
	assert.Equal(t, "5px", customText(t, child, "--i"))

	child = build(t, ctx, parent, authorMatch(ctx, "--n: inherit")).Style()
	assert.Equal(t, "5px", customText(t, child, "--n"))
}

func TestBuilder_VariableInStandardProperty(t *testing.T) {
	ctx := newTestContext(t)

	s := build(t, ctx, nil, authorMatch(ctx, "--c: red; color: var(--c)")).Style()
	assert.Equal(t, "rgb(255, 0, 0)", s.Value(css.PropertyColor).CSSText())

	parent := build(t, ctx, nil, authorMatch(ctx, "color: blue")).Style()
	child := build(t, ctx, parent, authorMatch(ctx, "color: var(--missing); opacity: var(--missing)")).Style()

	assert.Equal(t, "rgb(0, 0, 255)", child.Value(css.PropertyColor).CSSText(), "inherited property falls back to inherit")
	assert.True(t, ctx.InitialStyle().Value(css.PropertyOpacity).Equal(child.Value(css.PropertyOpacity)),
		"non-inherited property falls back to initial")
}

func TestBuilder_EnvironmentVariable(t *testing.T) {
	ctx := NewContext(zaptest.NewLogger(t), Options{Environment: map[string]string{"gutter": "12px"}})

	s := build(t, ctx, nil, authorMatch(ctx, "margin-top: env(gutter); padding-top: env(safe-area-inset-top)")).Style()
	assert.Equal(t, "12px", s.Value(css.PropertyMarginTop).CSSText())
	assert.Equal(t, "0px", s.Value(css.PropertyPaddingTop).CSSText())
}

func TestBuilder_FontSizeCycle(t *testing.T) {
	ctx := newTestContext(t)
	mustRegister(t, ctx, "--x", "<length>", false, "0px")

	parent := build(t, ctx, nil, authorMatch(ctx, "font-size: 20px")).Style()
	child := build(t, ctx, parent, authorMatch(ctx, "--x: 2em; font-size: var(--x)")).Style()

	assert.InDelta(t, 20, child.FontSize(), 1e-9)
	assert.Equal(t, "0px", customText(t, child, "--x"))
}

func TestBuilder_LogicalGroupOrder(t *testing.T) {
	ctx := newTestContext(t)

	s := build(t, ctx, nil, authorMatch(ctx, "margin-inline-start: 5px; margin-left: 7px")).Style()
	assert.Equal(t, "7px", s.Value(css.PropertyMarginLeft).CSSText())

	s = build(t, ctx, nil, authorMatch(ctx, "margin-left: 7px; margin-inline-start: 5px")).Style()
	assert.Equal(t, "5px", s.Value(css.PropertyMarginLeft).CSSText())

	s = build(t, ctx, nil, authorMatch(ctx, "direction: rtl; margin-inline-start: 5px")).Style()
	assert.Equal(t, "5px", s.Value(css.PropertyMarginRight).CSSText())
}

func TestBuilder_Revert(t *testing.T) {
	ctx := newTestContext(t)
	match := authorMatch(ctx, "color: blue; display: block", "color: revert; display: revert")
	match.UserAgentDeclarations = []MatchedProperties{matched(ctx, "color: red")}

	s := build(t, ctx, nil, match).Style()
	assert.Equal(t, "rgb(255, 0, 0)", s.Value(css.PropertyColor).CSSText())
	assert.Equal(t, "inline", s.Value(css.PropertyDisplay).CSSText(), "nothing to revert to computes to unset")
}

func TestBuilder_RevertLayer(t *testing.T) {
	ctx := newTestContext(t)
	base := matched(ctx, "color: green; --v: base")
	base.LayerPriority = 0
	top := matched(ctx, "color: revert-layer; --v: revert-layer")
	top.LayerPriority = 1
	match := &MatchResult{AuthorDeclarations: []MatchedProperties{base, top}}

	s := build(t, ctx, nil, match).Style()
	assert.Equal(t, "rgb(0, 128, 0)", s.Value(css.PropertyColor).CSSText())
	assert.Equal(t, "base", customText(t, s, "--v"))
}

func TestBuilder_RevertLayerInKeyframes(t *testing.T) {
	ctx := newTestContext(t)
	base := matched(ctx, "color: green; --v: base")
	base.LayerPriority = 0
	top := matched(ctx, "color: revert-layer; --v: revert-layer")
	top.LayerPriority = 1
	match := &MatchResult{AuthorDeclarations: []MatchedProperties{base, top}}

	bctx := BuilderContext{Context: ctx, IsRootElement: true, IsBuildingKeyframeStyle: true}
	b := NewBuilder(ctx.NewStyle(nil), bctx, match, LevelAuthor, NormalProperties())
	b.ApplyAllProperties()

	// both keep what the base style had
	s := b.Style()
	assert.Equal(t, "rgb(0, 0, 0)", s.Value(css.PropertyColor).CSSText())
	assert.Nil(t, s.CustomPropertyValue("--v"))
}

func TestBuilder_RevertLayerToOtherLinkState(t *testing.T) {
	ctx := newTestContext(t)
	visited := matched(ctx, "background-color: green")
	visited.LinkMatch = MatchVisited
	visited.LayerPriority = 0
	top := matched(ctx, "background-color: revert-layer")
	top.LayerPriority = 1
	match := &MatchResult{AuthorDeclarations: []MatchedProperties{visited, top}}

	style := ctx.NewStyle(nil)
	style.SetValue(css.PropertyBackgroundColor, css.Ident("blue"))
	style.SetInsideLink(InsideVisitedLink)
	b := NewBuilder(style, BuilderContext{Context: ctx, IsRootElement: true}, match, LevelAuthor, NormalProperties())
	b.ApplyAllProperties()

	// the lower layer has no regular value, so the regular style is left
	// alone instead of being unset
	s := b.Style()
	assert.Equal(t, "blue", s.Value(css.PropertyBackgroundColor).CSSText())
	assert.Equal(t, "rgb(0, 128, 0)", s.VisitedValue(css.PropertyBackgroundColor).CSSText())
}

func TestBuilder_ImportantOrder(t *testing.T) {
	ctx := newTestContext(t)
	match := authorMatch(ctx, "color: blue !important; display: block !important")
	match.UserAgentDeclarations = []MatchedProperties{matched(ctx, "color: red !important; display: flex")}

	s := build(t, ctx, nil, match).Style()
	assert.Equal(t, "rgb(255, 0, 0)", s.Value(css.PropertyColor).CSSText())
	assert.Equal(t, "block", s.Value(css.PropertyDisplay).CSSText())
}

func TestBuilder_VisitedLink(t *testing.T) {
	ctx := newTestContext(t)
	all := matched(ctx, "color: blue; display: block")
	visited := matched(ctx, "color: red; display: flex")
	visited.LinkMatch = MatchVisited
	match := &MatchResult{AuthorDeclarations: []MatchedProperties{all, visited}}

	style := ctx.NewStyle(nil)
	style.SetInsideLink(InsideVisitedLink)
	b := NewBuilder(style, BuilderContext{Context: ctx, IsRootElement: true}, match, LevelAuthor, NormalProperties())
	b.ApplyAllProperties()

	s := b.Style()
	assert.Equal(t, "rgb(0, 0, 255)", s.Value(css.PropertyColor).CSSText())
	assert.Equal(t, "rgb(255, 0, 0)", s.VisitedValue(css.PropertyColor).CSSText())
	assert.Equal(t, "block", s.Value(css.PropertyDisplay).CSSText())
	assert.Equal(t, "block", s.VisitedValue(css.PropertyDisplay).CSSText(), "display has no visited value")
}

func TestBuilder_UnvisitedRulesStayOutOfVisitedStyle(t *testing.T) {
	ctx := newTestContext(t)
	link := matched(ctx, "color: green")
	link.LinkMatch = MatchLink
	match := &MatchResult{AuthorDeclarations: []MatchedProperties{link}}

	style := ctx.NewStyle(nil)
	style.SetInsideLink(InsideVisitedLink)
	b := NewBuilder(style, BuilderContext{Context: ctx, IsRootElement: true}, match, LevelAuthor, NormalProperties())
	b.ApplyAllProperties()

	assert.Equal(t, "rgb(0, 128, 0)", b.Style().Value(css.PropertyColor).CSSText())
	assert.Equal(t, "rgb(0, 0, 0)", b.Style().VisitedValue(css.PropertyColor).CSSText())
}

func TestBuilder_ShorthandSubstitution(t *testing.T) {
	ctx := newTestContext(t)

	s := build(t, ctx, nil, authorMatch(ctx, "--p: 1px 2px; padding: var(--p)")).Style()
	assert.Equal(t, "1px", s.Value(css.PropertyPaddingTop).CSSText())
	assert.Equal(t, "2px", s.Value(css.PropertyPaddingRight).CSSText())
	assert.Equal(t, "1px", s.Value(css.PropertyPaddingBottom).CSSText())
	assert.Equal(t, "2px", s.Value(css.PropertyPaddingLeft).CSSText())

	s = build(t, ctx, nil, authorMatch(ctx, "--p: red; padding: var(--p)")).Style()
	assert.True(t, ctx.InitialStyle().Value(css.PropertyPaddingTop).Equal(s.Value(css.PropertyPaddingTop)))
}

func TestBuilder_ExplicitlyInherited(t *testing.T) {
	ctx := newTestContext(t)

	s := build(t, ctx, nil, authorMatch(ctx, "color: inherit")).Style()
	assert.False(t, s.HasExplicitlyInheritedProperties())

	s = build(t, ctx, nil, authorMatch(ctx, "display: inherit")).Style()
	assert.True(t, s.HasExplicitlyInheritedProperties())
}

func TestBuilder_PositionTryFlip(t *testing.T) {
	ctx := newTestContext(t)
	fallback := matched(ctx, "top: 5px")
	bctx := BuilderContext{
		Context:       ctx,
		IsRootElement: true,
		PositionTryFallback: &PositionTryFallback{
			Properties: &fallback,
			Tactics:    []css.FlipTactic{css.FlipBlock},
		},
	}
	b := NewBuilder(ctx.NewStyle(nil), bctx, authorMatch(ctx, "left: 1px"), LevelAuthor, NormalProperties())
	b.ApplyAllProperties()

	s := b.Style()
	assert.Equal(t, "5px", s.Value(css.PropertyBottom).CSSText())
	assert.Equal(t, "auto", s.Value(css.PropertyTop).CSSText())
	assert.Equal(t, "1px", s.Value(css.PropertyLeft).CSSText())
}

func TestBuilder_InterCharacterRuby(t *testing.T) {
	ctx := newTestContext(t)
	bctx := BuilderContext{Context: ctx, IsRootElement: true, ElementName: "rt"}
	b := NewBuilder(ctx.NewStyle(nil), bctx, authorMatch(ctx, "ruby-position: inter-character"), LevelAuthor, NormalProperties())
	b.ApplyAllProperties()

	assert.True(t, b.Style().Value(css.PropertyTextAlign).IsKeywordValue("center"))
	assert.True(t, b.Style().Value(css.PropertyWritingMode).IsKeywordValue("vertical-lr"))
	assert.False(t, b.Style().WritingMode().IsHorizontal())
}

func TestBuilder_LowPriorityOnly(t *testing.T) {
	ctx := newTestContext(t)
	included := NormalProperties()
	included.LowPriorityOnly = true
	b := NewBuilder(ctx.NewStyle(nil), BuilderContext{Context: ctx, IsRootElement: true},
		authorMatch(ctx, "font-size: 30px; color: red"), LevelAuthor, included)
	b.ApplyAllProperties()

	assert.InDelta(t, DefaultFontSize, b.Style().FontSize(), 1e-9)
	assert.Equal(t, "rgb(255, 0, 0)", b.Style().Value(css.PropertyColor).CSSText())
}

func TestBuilder_ContainerQueryResolution(t *testing.T) {
	ctx := newTestContext(t)
	parent := build(t, ctx, nil, authorMatch(ctx, "--a: 3px")).Style()
	b := build(t, ctx, parent, authorMatch(ctx, "--a: 5px; --b: 7px"))

	decl := func(text string) *css.CustomPropertyValue {
		v, ok := css.NewCustomPropertyValue("--a", css.Tokenize(text), ctx.ParserContext())
		require.True(t, ok)
		return v
	}

	assert.Equal(t, "3px", b.ResolveCustomPropertyForContainerQueries(decl("inherit")).Serialize())
	assert.Equal(t, "7px", b.ResolveCustomPropertyForContainerQueries(decl("var(--b)")).Serialize())
	assert.True(t, b.ResolveCustomPropertyForContainerQueries(decl("initial")).IsInvalid())
	assert.Nil(t, b.ResolveCustomPropertyForContainerQueries(decl("revert")))
}

func TestComputeFontWeight(t *testing.T) {
	tests := []struct {
		value  string
		parent float64
		want   float64
	}{
		{"bold", 400, 700},
		{"normal", 700, 400},
		{"bolder", 300, 400},
		{"bolder", 400, 700},
		{"bolder", 700, 900},
		{"bolder", 900, 900},
		{"lighter", 50, 50},
		{"lighter", 400, 100},
		{"lighter", 700, 400},
		{"lighter", 900, 700},
		{"650", 400, 650},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			v, ok := css.ParsePropertyValue(css.PropertyFontWeight, css.Tokenize(tt.value), css.ParserContext{})
			require.True(t, ok)
			assert.InDelta(t, tt.want, computeFontWeight(v, tt.parent), 1e-9)
		})
	}
}
