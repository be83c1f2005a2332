package style

import (
	"math"
	"slices"

	"stylecascade/css"
)

// CascadeLevel is the origin of a declaration.
type CascadeLevel uint8

const (
	LevelUserAgent CascadeLevel = iota
	LevelUser
	LevelAuthor
)

func (l CascadeLevel) String() string {
	switch l {
	case LevelUserAgent:
		return "user-agent"
	case LevelUser:
		return "user"
	default:
		return "author"
	}
}

// LinkMatch selects which link state a matched rule applies to. A property
// of the cascade keeps one value per state in slots MatchDefault, MatchLink
// and MatchVisited.
type LinkMatch uint8

const (
	MatchDefault LinkMatch = 0
	MatchLink    LinkMatch = 1
	MatchVisited LinkMatch = 2
	MatchAll     LinkMatch = 3
)

// LayerPriority orders cascade layers, higher wins for normal declarations.
type LayerPriority uint16

// UnlayeredPriority is the priority of declarations outside any layer.
const UnlayeredPriority LayerPriority = math.MaxUint16

// ScopeOrdinal orders shadow scopes. Zero is the element's own scope.
type ScopeOrdinal int

// MatchedProperties is a declaration block matched to an element together
// with where it came from.
type MatchedProperties struct {
	Declarations       []css.Declaration
	LinkMatch          LinkMatch
	LayerPriority      LayerPriority
	ScopeOrdinal       ScopeOrdinal
	FromStyleAttribute bool
}

// MatchResult holds matched blocks per level, each in ascending precedence.
type MatchResult struct {
	UserAgentDeclarations []MatchedProperties
	UserDeclarations      []MatchedProperties
	AuthorDeclarations    []MatchedProperties
}

func (m *MatchResult) declarations(level CascadeLevel) []MatchedProperties {
	switch level {
	case LevelUserAgent:
		return m.UserAgentDeclarations
	case LevelUser:
		return m.UserDeclarations
	}
	return m.AuthorDeclarations
}

// CascadeProperty is the winning declaration of one property, per link
// match slot.
type CascadeProperty struct {
	ID                 css.PropertyID
	Name               string // custom properties only
	Level              CascadeLevel
	ScopeOrdinal       ScopeOrdinal
	LayerPriority      LayerPriority
	FromStyleAttribute bool
	Values             [3]css.CSSValue
	Levels             [3]CascadeLevel
}

// PropertyTypes selects properties by how they inherit.
type PropertyTypes uint8

const (
	IncludeInherited PropertyTypes = 1 << iota
	IncludeExplicitlyInherited
	IncludeNonInherited

	AllPropertyTypes = IncludeInherited | IncludeExplicitlyInherited | IncludeNonInherited
)

// IncludedProperties restricts what a cascade collects.
type IncludedProperties struct {
	Types PropertyTypes
	IDs   []css.PropertyID
	// LowPriorityOnly skips the top and high priority phases when applying.
	LowPriorityOnly bool
}

// NormalProperties includes everything.
func NormalProperties() IncludedProperties {
	return IncludedProperties{Types: AllPropertyTypes}
}

// PropertyCascade holds the winning declaration of every property for one
// element.
type PropertyCascade struct {
	match       *MatchResult
	maxLevel    CascadeLevel
	included    IncludedProperties
	positionTry *PositionTryFallback

	hasRollbackScope bool
	rollbackScope    ScopeOrdinal
	hasRollbackLayer bool
	maxLayer         LayerPriority

	properties [css.NumProperties]CascadeProperty
	present    [css.NumProperties]bool

	logicalGroupIndex        [css.NumProperties]uint
	lastIndexForLogicalGroup uint
	lowestLogicalGroup       css.PropertyID
	highestLogicalGroup      css.PropertyID
	logicalGroupIDs          []css.PropertyID

	custom      map[string]*CascadeProperty
	customOrder []string
}

// NewPropertyCascade collects the declarations of match up to maxLevel.
// positionTry may be nil.
func NewPropertyCascade(match *MatchResult, maxLevel CascadeLevel, included IncludedProperties, positionTry *PositionTryFallback) *PropertyCascade {
	c := &PropertyCascade{
		match:       match,
		maxLevel:    maxLevel,
		included:    included,
		positionTry: positionTry,
	}
	c.build()
	return c
}

// NewRollbackCascade builds the cascade revert rolls back to: everything up
// to and including maxLevel.
func NewRollbackCascade(parent *PropertyCascade, maxLevel CascadeLevel) *PropertyCascade {
	return NewPropertyCascade(parent.match, maxLevel, NormalProperties(), parent.positionTry)
}

// NewLayerRollbackCascade builds the cascade revert-layer rolls back to:
// lower levels, and at maxLevel only declarations from layers up to
// maxLayer or from later scopes.
func NewLayerRollbackCascade(parent *PropertyCascade, maxLevel CascadeLevel, scope ScopeOrdinal, maxLayer LayerPriority) *PropertyCascade {
	c := &PropertyCascade{
		match:            parent.match,
		maxLevel:         maxLevel,
		included:         NormalProperties(),
		positionTry:      parent.positionTry,
		hasRollbackScope: true,
		rollbackScope:    scope,
		hasRollbackLayer: true,
		maxLayer:         maxLayer,
	}
	c.build()
	return c
}

func (c *PropertyCascade) build() {
	var importantLevels [LevelAuthor + 1]bool
	for _, level := range []CascadeLevel{LevelUserAgent, LevelUser, LevelAuthor} {
		if level > c.maxLevel {
			break
		}
		importantLevels[level] = c.addNormalMatches(level)
	}

	if c.positionTry != nil && c.positionTry.Properties != nil && c.maxLevel >= LevelAuthor {
		c.addMatch(c.positionTry.Properties, LevelAuthor, false)
	}

	for _, level := range []CascadeLevel{LevelAuthor, LevelUser, LevelUserAgent} {
		if importantLevels[level] {
			c.addImportantMatches(level)
		}
	}

	c.sortLogicalGroupPropertyIDs()
}

func (c *PropertyCascade) addNormalMatches(level CascadeLevel) bool {
	hasImportant := false
	matches := c.match.declarations(level)
	for i := range matches {
		if c.addMatch(&matches[i], level, false) {
			hasImportant = true
		}
	}
	return hasImportant
}

func (c *PropertyCascade) addImportantMatches(level CascadeLevel) {
	type importantMatch struct {
		index              int
		scope              ScopeOrdinal
		layer              LayerPriority
		fromStyleAttribute bool
	}

	matches := c.match.declarations(level)
	var important []importantMatch
	otherScopesOrLayers := false
	for i, m := range matches {
		if !slices.ContainsFunc(m.Declarations, func(d css.Declaration) bool { return d.Important }) {
			continue
		}
		important = append(important, importantMatch{i, m.ScopeOrdinal, m.LayerPriority, m.FromStyleAttribute})
		if m.ScopeOrdinal != 0 || m.LayerPriority != UnlayeredPriority {
			otherScopesOrLayers = true
		}
	}
	if len(important) == 0 {
		return
	}

	if otherScopesOrLayers {
		slices.SortStableFunc(important, func(a, b importantMatch) int {
			// a later shadow tree wins for important declarations
			if a.scope != b.scope {
				if a.scope < b.scope {
					return -1
				}
				return 1
			}
			// lower layer wins, the style attribute beats layers
			if a.fromStyleAttribute != b.fromStyleAttribute {
				if !a.fromStyleAttribute {
					return -1
				}
				return 1
			}
			switch {
			case a.layer > b.layer:
				return -1
			case a.layer < b.layer:
				return 1
			}
			return 0
		})
	}

	for _, m := range important {
		c.addMatch(&matches[m.index], level, true)
	}
}

func (c *PropertyCascade) includeForRollback(m *MatchedProperties, level CascadeLevel) bool {
	if c.hasRollbackScope && m.ScopeOrdinal > c.rollbackScope {
		return true
	}
	if level < c.maxLevel {
		return true
	}
	if m.FromStyleAttribute {
		return false
	}
	return m.LayerPriority <= c.maxLayer
}

// addMatch adds the declarations of m with the given importance and reports
// whether m has important declarations.
func (c *PropertyCascade) addMatch(m *MatchedProperties, level CascadeLevel, important bool) bool {
	if c.hasRollbackLayer && !c.includeForRollback(m, level) {
		return false
	}

	hasImportant := false
	for _, d := range m.Declarations {
		if d.Important {
			hasImportant = true
		}
		if d.Important != important {
			continue
		}
		if !c.shouldIncludeProperty(d) {
			continue
		}
		c.set(d, m, level)
	}
	return hasImportant
}

func (c *PropertyCascade) shouldIncludeProperty(d css.Declaration) bool {
	inc := c.included
	if inc.Types == AllPropertyTypes {
		return true
	}
	if slices.Contains(inc.IDs, d.Property) {
		return true
	}
	if c.mayOverrideExistingProperty(d.Property, d.Name) {
		return true
	}
	inherited := d.Property.IsInherited()
	if inc.Types&IncludeInherited != 0 && inherited {
		return true
	}
	if inc.Types&IncludeExplicitlyInherited != 0 && isInheritValue(d.Value) {
		return true
	}
	return inc.Types&IncludeNonInherited != 0 && !inherited
}

func isInheritValue(v css.CSSValue) bool {
	switch v := v.(type) {
	case css.Value:
		kw, ok := v.WideKeyword()
		return ok && kw == css.KeywordInherit
	case *css.CustomPropertyValue:
		kw, ok := v.WideKeyword()
		return ok && kw == css.KeywordInherit
	}
	return false
}

func (c *PropertyCascade) mayOverrideExistingProperty(id css.PropertyID, name string) bool {
	switch {
	case id == css.PropertyCustom:
		return c.HasCustomProperty(name)
	case id < css.FirstLogicalGroupProperty:
		return c.HasNormalProperty(id)
	}
	return c.HasLogicalGroupProperty(id)
}

func (c *PropertyCascade) set(d css.Declaration, m *MatchedProperties, level CascadeLevel) {
	switch {
	case d.Property.IsShorthand():
		panic("style: shorthand " + d.Property.String() + " in cascade")
	case d.Property == css.PropertyCustom:
		p, ok := c.custom[d.Name]
		if !ok {
			if c.custom == nil {
				c.custom = make(map[string]*CascadeProperty)
			}
			p = &CascadeProperty{Name: d.Name}
			c.custom[d.Name] = p
			c.customOrder = append(c.customOrder, d.Name)
		}
		setPropertyInternal(p, d, m, level)
	case d.Property < css.FirstLogicalGroupProperty:
		p := &c.properties[d.Property]
		if !c.present[d.Property] {
			c.present[d.Property] = true
			*p = CascadeProperty{}
		}
		setPropertyInternal(p, d, m, level)
	default:
		c.setLogicalGroupProperty(d, m, level)
	}
}

func (c *PropertyCascade) setLogicalGroupProperty(d css.Declaration, m *MatchedProperties, level CascadeLevel) {
	id := d.Property
	p := &c.properties[id]
	if !c.HasLogicalGroupProperty(id) {
		*p = CascadeProperty{}
		if c.lowestLogicalGroup == css.PropertyInvalid || id < c.lowestLogicalGroup {
			c.lowestLogicalGroup = id
		}
		if id > c.highestLogicalGroup {
			c.highestLogicalGroup = id
		}
	}
	c.lastIndexForLogicalGroup++
	c.logicalGroupIndex[id] = c.lastIndexForLogicalGroup
	setPropertyInternal(p, d, m, level)
}

func setPropertyInternal(p *CascadeProperty, d css.Declaration, m *MatchedProperties, level CascadeLevel) {
	p.ID = d.Property
	p.Level = level
	p.ScopeOrdinal = m.ScopeOrdinal
	p.LayerPriority = m.LayerPriority
	p.FromStyleAttribute = m.FromStyleAttribute
	if m.LinkMatch == MatchAll {
		for i := range p.Values {
			p.Values[i] = d.Value
			p.Levels[i] = level
		}
		return
	}
	p.Values[m.LinkMatch] = d.Value
	p.Levels[m.LinkMatch] = level
}

func (c *PropertyCascade) sortLogicalGroupPropertyIDs() {
	c.logicalGroupIDs = c.logicalGroupIDs[:0]
	if c.lastIndexForLogicalGroup == 0 {
		return
	}
	for id := c.lowestLogicalGroup; id <= c.highestLogicalGroup; id++ {
		if c.logicalGroupIndex[id] != 0 {
			c.logicalGroupIDs = append(c.logicalGroupIDs, id)
		}
	}
	slices.SortFunc(c.logicalGroupIDs, func(a, b css.PropertyID) int {
		return int(c.logicalGroupIndex[a]) - int(c.logicalGroupIndex[b])
	})
}

// IsEmpty reports whether nothing was collected.
func (c *PropertyCascade) IsEmpty() bool {
	return !slices.Contains(c.present[:], true) && c.lastIndexForLogicalGroup == 0 && len(c.custom) == 0
}

// ApplyLowPriorityOnly reports whether only low priority properties are to
// be applied.
func (c *PropertyCascade) ApplyLowPriorityOnly() bool { return c.included.LowPriorityOnly }

// MaxLevel returns the highest level collected.
func (c *PropertyCascade) MaxLevel() CascadeLevel { return c.maxLevel }

// HasNormalProperty reports whether a property outside the logical groups
// was collected.
func (c *PropertyCascade) HasNormalProperty(id css.PropertyID) bool {
	return id < css.FirstLogicalGroupProperty && c.present[id]
}

// NormalProperty returns the collected property id.
func (c *PropertyCascade) NormalProperty(id css.PropertyID) *CascadeProperty {
	return &c.properties[id]
}

// HasLogicalGroupProperty reports whether a logical group property was
// collected.
func (c *PropertyCascade) HasLogicalGroupProperty(id css.PropertyID) bool {
	return id.IsInLogicalPropertyGroup() && c.logicalGroupIndex[id] != 0
}

// LogicalGroupProperty returns the collected logical group property id.
func (c *PropertyCascade) LogicalGroupProperty(id css.PropertyID) *CascadeProperty {
	return &c.properties[id]
}

// LogicalGroupPropertyIDs returns the collected logical group properties in
// the order their winning declarations appeared.
func (c *PropertyCascade) LogicalGroupPropertyIDs() []css.PropertyID {
	return c.logicalGroupIDs
}

// HasCustomProperty reports whether a custom property was collected.
func (c *PropertyCascade) HasCustomProperty(name string) bool {
	_, ok := c.custom[name]
	return ok
}

// CustomProperty returns the collected custom property name, or nil.
func (c *PropertyCascade) CustomProperty(name string) *CascadeProperty {
	return c.custom[name]
}

// CustomPropertyNames returns collected custom property names in first
// declaration order.
func (c *PropertyCascade) CustomPropertyNames() []string {
	return c.customOrder
}

// LastPropertyResolvingLogicalPropertyPair returns whichever of id and the
// property sharing its computed slot under wm was declared last, or nil
// when neither was.
func (c *PropertyCascade) LastPropertyResolvingLogicalPropertyPair(id css.PropertyID, wm css.WritingMode) *CascadeProperty {
	pair := css.LogicalPairProperty(id, wm)
	idIndex := c.logicalGroupIndex[id]
	pairIndex := c.logicalGroupIndex[pair]
	switch {
	case idIndex > pairIndex:
		return &c.properties[id]
	case idIndex < pairIndex:
		return &c.properties[pair]
	}
	return nil
}
