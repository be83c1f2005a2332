package style

import (
	"fmt"

	"go.uber.org/zap"

	"stylecascade/css"
)

type rollbackKey struct {
	layerRollback bool
	level         CascadeLevel
	scope         ScopeOrdinal
	layer         LayerPriority
}

// pendingSubstitution caches the longhands a shorthand with references
// expanded to, keyed by the substituted data it was parsed from.
type pendingSubstitution struct {
	data   *css.VariableData
	values map[css.PropertyID]css.Value
}

// Builder applies the cascade of one element to its style. It is used once
// and is not safe for concurrent use.
type Builder struct {
	log     *zap.Logger
	cascade *PropertyCascade
	state   *BuilderState

	rollbackCascades map[rollbackKey]*PropertyCascade
	pending          map[*css.VariableReferenceValue]*pendingSubstitution
}

// NewBuilder prepares building style from match. style normally comes from
// Context.NewStyle.
func NewBuilder(style *RenderStyle, ctx BuilderContext, match *MatchResult, maxLevel CascadeLevel, included IncludedProperties) *Builder {
	return &Builder{
		log:              ctx.Context.builderLog,
		cascade:          NewPropertyCascade(match, maxLevel, included, ctx.PositionTryFallback),
		state:            newBuilderState(ctx, style),
		rollbackCascades: make(map[rollbackKey]*PropertyCascade),
		pending:          make(map[*css.VariableReferenceValue]*pendingSubstitution),
	}
}

// State returns the builder state.
func (b *Builder) State() *BuilderState { return b.state }

// Style returns the style being built.
func (b *Builder) Style() *RenderStyle { return b.state.style }

// Cascade returns the cascade being applied.
func (b *Builder) Cascade() *PropertyCascade { return b.cascade }

// ApplyAllProperties applies the whole cascade. Properties others depend on
// go first: writing mode and direction, then the font, then everything
// else. Custom properties are applied on demand.
func (b *Builder) ApplyAllProperties() {
	if b.cascade.IsEmpty() {
		return
	}
	b.applyTopPriorityProperties()
	b.applyHighPriorityProperties()
	b.applyNonHighPriorityProperties()
}

func (b *Builder) applyTopPriorityProperties() {
	if b.cascade.ApplyLowPriorityOnly() {
		return
	}
	b.applyProperties(css.FirstTopPriorityProperty, css.LastTopPriorityProperty)
	b.state.adjustStyleForInterCharacterRuby()
}

func (b *Builder) applyHighPriorityProperties() {
	if b.cascade.ApplyLowPriorityOnly() {
		return
	}
	b.applyProperties(css.FirstHighPriorityProperty, css.LastHighPriorityProperty)
	b.state.UpdateFont()
	// line-height needs the font
	b.applyProperties(css.PropertyLineHeight, css.PropertyLineHeight)
}

func (b *Builder) applyNonHighPriorityProperties() {
	b.applyProperties(css.FirstLowPriorityProperty, css.LastLowPriorityProperty)
	b.applyLogicalGroupProperties()
	for _, name := range b.cascade.CustomPropertyNames() {
		b.ApplyCustomProperty(name)
	}
}

func (b *Builder) applyLogicalGroupProperties() {
	for _, id := range b.cascade.LogicalGroupPropertyIDs() {
		b.applyCascadeProperty(b.cascade.LogicalGroupProperty(id))
	}
}

func (b *Builder) applyProperties(first, last css.PropertyID) {
	trackInProgress := len(b.cascade.CustomPropertyNames()) > 0
	for id := first; id <= last; id++ {
		if !b.cascade.HasNormalProperty(id) {
			continue
		}
		if trackInProgress {
			b.state.inProgressProperties[id] = true
		}
		b.applyCascadeProperty(b.cascade.NormalProperty(id))
		if trackInProgress {
			b.state.inProgressProperties[id] = false
		}
	}
}

// ApplyCustomProperty computes the custom property name unless it already
// was. It is a no-op for names without a declaration.
func (b *Builder) ApplyCustomProperty(name string) {
	if _, done := b.state.appliedCustomProperties[name]; done {
		return
	}
	p := b.cascade.CustomProperty(name)
	if p == nil {
		return
	}
	b.applyCustomPropertyImpl(name, p)
}

func (b *Builder) applyCustomPropertyImpl(name string, p *CascadeProperty) {
	value, ok := p.Values[MatchDefault].(*css.CustomPropertyValue)
	if !ok || value == nil {
		return
	}
	st := b.state

	if _, inProgress := st.inProgressCustomProperties[name]; inProgress {
		// reached name again while computing it: every property on the
		// path is in the cycle
		if _, seen := st.inCycleCustomProperties[name]; !seen {
			st.inCycleCustomProperties[name] = struct{}{}
			// walk the cycle once more so each member gets marked
			b.resolveCustomPropertyValue(value)
		}
		return
	}

	st.inProgressCustomProperties[name] = struct{}{}
	savedInCycle := st.inCycleCustomProperties
	st.inCycleCustomProperties = make(map[string]struct{})

	res, ok := b.resolveCustomPropertyValue(value)
	if _, inCycle := st.inCycleCustomProperties[name]; inCycle || !ok {
		b.log.Debug("Custom property is invalid at computed value time",
			zap.String("property", name), zap.Bool("cycle", inCycle))
		res = b.createInvalidOrUnset(name)
	}

	savedCurrent := st.currentProperty
	st.currentProperty = p
	st.linkMatch = MatchDefault
	b.applyCustomResolution(name, res)
	st.currentProperty = savedCurrent

	delete(st.inProgressCustomProperties, name)
	st.appliedCustomProperties[name] = struct{}{}
	for n := range st.inCycleCustomProperties {
		savedInCycle[n] = struct{}{}
	}
	st.inCycleCustomProperties = savedInCycle
}

// createInvalidOrUnset is what a custom property failing substitution
// computes to: the guaranteed-invalid value, or unset for a typed
// registered property.
func (b *Builder) createInvalidOrUnset(name string) CustomPropertyResolution {
	reg := b.state.context.Context.registry.Get(name)
	if reg == nil || reg.Syntax.IsUniversal() {
		return CustomPropertyResolution{Property: NewGuaranteedInvalidCustomProperty(name)}
	}
	return keywordResolution(css.KeywordUnset)
}

func (b *Builder) resolveCustomPropertyValue(value *css.CustomPropertyValue) (CustomPropertyResolution, bool) {
	if kw, ok := value.WideKeyword(); ok {
		return keywordResolution(kw), true
	}

	name := value.Name()
	reg := b.state.context.Context.registry.Get(name)
	literal, hasLiteral := value.VariableData()
	if reg == nil && hasLiteral {
		return CustomPropertyResolution{Property: NewCustomPropertyWithData(name, literal)}, true
	}

	data := literal
	if ref, ok := value.VariableReference(); ok {
		resolved, ok := ref.ResolveVariableReferences(b)
		if !ok {
			return CustomPropertyResolution{}, false
		}
		data = resolved
	}
	if data == nil {
		return CustomPropertyResolution{}, false
	}

	if reg == nil {
		r := data.TokenRange()
		r.ConsumeWhitespace()
		if kw, ok := css.ParseCSSWideKeyword(&r); ok && r.AtEnd() {
			return keywordResolution(kw), true
		}
		return CustomPropertyResolution{Property: NewCustomPropertyWithData(name, data)}, true
	}

	deps := css.CollectParsedCustomPropertyValueDependencies(reg.Syntax, data.Tokens())
	fontDependent := false
	check := func(id css.PropertyID) bool {
		if b.state.inProgressProperties[id] {
			b.state.invalidAtComputedValueTimeProperties[id] = true
			return false
		}
		if id == css.PropertyFontSize {
			fontDependent = true
		}
		return true
	}
	for _, id := range deps.Properties {
		if !check(id) {
			return CustomPropertyResolution{}, false
		}
	}
	if b.state.context.IsRootElement {
		for _, id := range deps.RootProperties {
			if !check(id) {
				return CustomPropertyResolution{}, false
			}
		}
	}
	if fontDependent {
		b.state.UpdateFont()
	}
	return ParseTypedCustomPropertyValue(name, reg.Syntax, data.Tokens(), b.state, data.Context())
}

func (b *Builder) applyCustomResolution(name string, res CustomPropertyResolution) {
	st := b.state
	ctx := st.context.Context
	reg := ctx.registry.Get(name)
	inherits := reg == nil || reg.Inherits

	if !res.IsKeyword {
		st.style.SetCustomPropertyValue(res.Property, inherits)
		return
	}

	switch res.Keyword {
	case css.KeywordInitial:
		b.applyInitialCustomProperty(name, reg)
	case css.KeywordInherit:
		b.applyInheritedCustomProperty(name, reg)
	case css.KeywordUnset:
		if inherits {
			b.applyInheritedCustomProperty(name, reg)
		} else {
			b.applyInitialCustomProperty(name, reg)
		}
	case css.KeywordRevert, css.KeywordRevertLayer:
		if res.Keyword == css.KeywordRevertLayer && b.state.context.IsBuildingKeyframeStyle {
			// keyframe styles keep the base value
			return
		}
		var rollback *PropertyCascade
		if res.Keyword == css.KeywordRevert {
			rollback = b.ensureRollbackCascadeForRevert()
		} else {
			rollback = b.ensureRollbackCascadeForRevertLayer()
		}
		if rollback != nil && b.applyRollbackCascadeCustomProperty(rollback, name) {
			return
		}
		b.log.Debug("Custom property reverted to unset", zap.String("property", name))
		b.applyCustomResolution(name, keywordResolution(css.KeywordUnset))
	}
}

func (b *Builder) applyInitialCustomProperty(name string, reg *RegisteredProperty) {
	inherits := reg == nil || reg.Inherits
	if reg != nil && reg.InitialValue != nil {
		b.state.style.SetCustomPropertyValue(reg.InitialValue, inherits)
		return
	}
	b.state.style.SetCustomPropertyValue(NewGuaranteedInvalidCustomProperty(name), inherits)
}

func (b *Builder) applyInheritedCustomProperty(name string, reg *RegisteredProperty) {
	inherits := reg == nil || reg.Inherits
	parent := b.state.parentStyle
	var v *CustomProperty
	if reg == nil || reg.Inherits {
		v = parent.InheritedCustomProperties().Get(name)
	}
	if v == nil {
		v = parent.NonInheritedCustomProperties().Get(name)
	}
	if v == nil {
		b.applyInitialCustomProperty(name, reg)
		return
	}
	b.state.style.SetCustomPropertyValue(v, inherits)
}

func (b *Builder) applyRollbackCascadeCustomProperty(rollback *PropertyCascade, name string) bool {
	p := rollback.CustomProperty(name)
	if p == nil {
		return false
	}
	value, ok := p.Values[MatchDefault].(*css.CustomPropertyValue)
	if !ok || value == nil {
		return false
	}
	res, ok := b.resolveCustomPropertyValue(value)
	if !ok {
		res = CustomPropertyResolution{Property: NewGuaranteedInvalidCustomProperty(name)}
	}
	saved := b.state.currentProperty
	b.state.currentProperty = p
	b.applyCustomResolution(name, res)
	b.state.currentProperty = saved
	return true
}

func (b *Builder) applyCascadeProperty(p *CascadeProperty) {
	st := b.state
	saved := st.currentProperty
	st.currentProperty = p

	apply := func(lm LinkMatch) {
		if p.Values[lm] == nil {
			return
		}
		st.linkMatch = lm
		b.applyProperty(p.ID, p.Values[lm], lm, p.Levels[lm])
	}
	apply(MatchDefault)
	if st.style.InsideLink() != NotInsideLink {
		apply(MatchLink)
		apply(MatchVisited)
	}

	st.linkMatch = MatchDefault
	st.currentProperty = saved
}

func (b *Builder) applyProperty(id css.PropertyID, value css.CSSValue, linkMatch LinkMatch, level CascadeLevel) {
	if id.IsShorthand() || id == css.PropertyCustom {
		panic(fmt.Sprintf("style: %s cannot be applied directly", id))
	}
	st := b.state

	value = b.resolveVariableReferences(id, value)

	wm := st.style.WritingMode()
	if id.IsDirectionAware() {
		b.applyProperty(css.ResolveDirectionAwareProperty(id, wm), value, linkMatch, level)
		return
	}
	id = st.context.PositionTryFallback.remap(id, wm)

	valueType := applyValue
	kw, isWide := css.KeywordInitial, false
	if v, ok := value.(css.Value); ok {
		kw, isWide = v.WideKeyword()
	}
	isUnset := isWide && kw == css.KeywordUnset
	isRevert := isWide && (kw == css.KeywordRevert || kw == css.KeywordRevertLayer)

	if isWide {
		if kw == css.KeywordRevertLayer && st.context.IsBuildingKeyframeStyle {
			return
		}
		if isRevert {
			var rollback *PropertyCascade
			if kw == css.KeywordRevert {
				rollback = b.ensureRollbackCascadeForRevert()
			} else {
				rollback = b.ensureRollbackCascadeForRevertLayer()
			}
			if rollback != nil && b.applyRollbackCascadeProperty(rollback, id, linkMatch) {
				return
			}
		}
		switch kw {
		case css.KeywordInitial:
			valueType = applyInitial
		case css.KeywordInherit:
			valueType = applyInherit
		default:
			// unset, or a revert with nothing to roll back to
			if id.IsInherited() {
				valueType = applyInherit
			} else {
				valueType = applyInitial
			}
		}
	}

	if !st.applyPropertyToRegularStyle() && !id.IsValidVisitedLinkProperty() {
		return
	}

	if valueType == applyInherit && !id.IsInherited() {
		st.style.hasExplicitlyInheritedProperties = true
	}

	b.applyValue(id, value, valueType)

	if !isUnset && !isRevert && st.IsCurrentPropertyInvalidAtComputedValueTime() {
		// a registered custom property this value depends on formed a cycle
		// with it
		b.log.Debug("Property is invalid at computed value time", zap.Stringer("property", id))
		b.applyProperty(id, css.Ident(css.KeywordUnset.String()), linkMatch, level)
	}
}

func (b *Builder) applyRollbackCascadeProperty(rollback *PropertyCascade, id css.PropertyID, linkMatch LinkMatch) bool {
	var p *CascadeProperty
	switch {
	case id.IsInLogicalPropertyGroup():
		p = rollback.LastPropertyResolvingLogicalPropertyPair(id, b.state.style.WritingMode())
	case rollback.HasNormalProperty(id):
		p = rollback.NormalProperty(id)
	}
	if p == nil {
		return false
	}
	if p.Values[linkMatch] == nil {
		// rolled back to a property without a value for this link state
		return true
	}

	saved := b.state.currentProperty
	b.state.currentProperty = p
	b.applyProperty(p.ID, p.Values[linkMatch], linkMatch, p.Levels[linkMatch])
	b.state.currentProperty = saved
	return true
}

func (b *Builder) ensureRollbackCascadeForRevert() *PropertyCascade {
	cur := b.state.currentProperty
	if cur == nil || cur.Level == LevelUserAgent {
		return nil
	}
	key := rollbackKey{level: cur.Level - 1}
	if c, ok := b.rollbackCascades[key]; ok {
		return c
	}
	c := NewRollbackCascade(b.cascade, key.level)
	b.rollbackCascades[key] = c
	return c
}

func (b *Builder) ensureRollbackCascadeForRevertLayer() *PropertyCascade {
	cur := b.state.currentProperty
	if cur == nil {
		return nil
	}
	if cur.LayerPriority == 0 {
		return b.ensureRollbackCascadeForRevert()
	}
	layer := cur.LayerPriority
	// the style attribute sits in the same layer as the unlayered rules it
	// rolls back to
	if !cur.FromStyleAttribute {
		layer--
	}
	key := rollbackKey{layerRollback: true, level: cur.Level, scope: cur.ScopeOrdinal, layer: layer}
	if c, ok := b.rollbackCascades[key]; ok {
		return c
	}
	c := NewLayerRollbackCascade(b.cascade, cur.Level, cur.ScopeOrdinal, layer)
	b.rollbackCascades[key] = c
	return c
}

// resolveVariableReferences substitutes var() and env() in value and
// parses the result for id. A failure computes to unset.
func (b *Builder) resolveVariableReferences(id css.PropertyID, value css.CSSValue) css.CSSValue {
	if !value.HasVariableReferences() {
		return value
	}

	var (
		resolved css.Value
		ok       bool
	)
	switch v := value.(type) {
	case *css.PendingSubstitutionValue:
		resolved, ok = b.resolvePendingSubstitution(id, v)
	case *css.VariableReferenceValue:
		resolved, ok = b.resolveReference(id, v)
	}

	if !ok || b.state.invalidAtComputedValueTimeProperties[id] {
		b.state.invalidAtComputedValueTimeProperties[id] = true
		return css.Ident(css.KeywordUnset.String())
	}
	return resolved
}

func (b *Builder) resolveReference(id css.PropertyID, ref *css.VariableReferenceValue) (css.Value, bool) {
	data, ok := ref.ResolveVariableReferences(b)
	if !ok {
		return css.Value{}, false
	}
	tokens := css.TrimWhitespace(data.Tokens())
	r := css.NewTokenRange(tokens)
	if kw, ok := css.ParseCSSWideKeyword(&r); ok && r.AtEnd() {
		return css.Ident(kw.String()), true
	}
	return css.ParsePropertyValue(id, tokens, data.Context())
}

func (b *Builder) resolvePendingSubstitution(id css.PropertyID, pending *css.PendingSubstitutionValue) (css.Value, bool) {
	ref := pending.Reference()
	data, ok := ref.ResolveVariableReferences(b)
	if !ok {
		return css.Value{}, false
	}

	cached := b.pending[ref]
	if cached == nil || cached.data != data {
		tokens := css.TrimWhitespace(data.Tokens())
		r := css.NewTokenRange(tokens)
		var values map[css.PropertyID]css.Value
		if kw, wide := css.ParseCSSWideKeyword(&r); wide && r.AtEnd() {
			longhands := pending.Shorthand().Longhands()
			values = make(map[css.PropertyID]css.Value, len(longhands))
			for _, longhand := range longhands {
				values[longhand] = css.Ident(kw.String())
			}
		} else if values, ok = css.ParseShorthand(pending.Shorthand(), tokens, data.Context()); !ok {
			values = nil
		}
		cached = &pendingSubstitution{data: data, values: values}
		b.pending[ref] = cached
	}
	v, ok := cached.values[id]
	return v, ok
}

// LookupVariable implements css.VariableResolver. The referenced custom
// property is computed first if it was not yet.
func (b *Builder) LookupVariable(name string) css.VariableLookup {
	b.ApplyCustomProperty(name)
	if _, inProgress := b.state.inProgressCustomProperties[name]; inProgress {
		return css.VariableLookup{Volatile: true}
	}
	p := b.state.style.CustomPropertyValue(name)
	if p == nil || p.IsInvalid() {
		return css.VariableLookup{Identity: p}
	}
	return css.VariableLookup{Data: p.AsVariableData(), Found: true, Identity: p}
}

// LookupEnvironment implements css.VariableResolver.
func (b *Builder) LookupEnvironment(name string) css.VariableLookup {
	data, ok := b.state.context.Context.Environment(name)
	return css.VariableLookup{Data: data, Found: ok, Identity: data}
}

// ResolveCustomPropertyForContainerQueries computes a custom property value
// named in a style() container query against the built style. It returns
// nil when the value reverts.
func (b *Builder) ResolveCustomPropertyForContainerQueries(value *css.CustomPropertyValue) *CustomProperty {
	name := value.Name()
	reg := b.state.context.Context.registry.Get(name)
	res, ok := b.resolveCustomPropertyValue(value)
	if !ok {
		return NewGuaranteedInvalidCustomProperty(name)
	}
	if !res.IsKeyword {
		return res.Property
	}

	initial := func() *CustomProperty {
		if reg != nil && reg.InitialValue != nil {
			return reg.InitialValue
		}
		return NewGuaranteedInvalidCustomProperty(name)
	}
	inherit := func() *CustomProperty {
		parent := b.state.parentStyle
		if v := parent.InheritedCustomProperties().Get(name); v != nil {
			return v
		}
		if v := parent.NonInheritedCustomProperties().Get(name); v != nil {
			return v
		}
		return initial()
	}

	switch res.Keyword {
	case css.KeywordInitial:
		return initial()
	case css.KeywordInherit:
		return inherit()
	case css.KeywordUnset:
		if reg == nil || reg.Inherits {
			return inherit()
		}
		return initial()
	}
	return nil
}
