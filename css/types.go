package css

import (
	"fmt"
	"io"
	"strings"
)

// MediaQuery represents a single parsed @media query condition.
// Media features are recognized but never match.
type MediaQuery struct {
	Raw         string // Original media query string
	Type        string // Media type (e.g., "screen", "print")
	Negated     bool   // true if "not" modifier was used on main type
	HasFeatures bool   // query carries (feature) conditions
}

// Evaluate returns true if this media query matches the given medium.
func (mq MediaQuery) Evaluate(medium string) bool {
	var typeMatches bool
	switch t := strings.ToLower(mq.Type); t {
	case "", "all":
		typeMatches = true
	default:
		typeMatches = t == strings.ToLower(medium)
	}
	if mq.HasFeatures {
		typeMatches = false
	}
	if mq.Negated {
		typeMatches = !typeMatches
	}
	return typeMatches
}

// LinkPseudoClass is the link state a selector requires.
type LinkPseudoClass int

const (
	LinkPseudoNone    LinkPseudoClass = iota // No link pseudo-class
	LinkPseudoLink                           // :link
	LinkPseudoVisited                        // :visited
	LinkPseudoAnyLink                        // :any-link
)

// PseudoElement represents which pseudo-element a rule applies to.
type PseudoElement int

const (
	PseudoNone   PseudoElement = iota // No pseudo-element
	PseudoBefore                      // ::before
	PseudoAfter                       // ::after
)

// String returns the CSS representation of the pseudo-element.
func (p PseudoElement) String() string {
	switch p {
	case PseudoBefore:
		return "::before"
	case PseudoAfter:
		return "::after"
	default:
		return ""
	}
}

// Selector represents a parsed CSS selector with its components.
type Selector struct {
	Raw      string          // Original selector string
	Element  string          // Element name (e.g., "p", "h1"), "*" or empty
	ID       string          // ID without hash
	Classes  []string        // Class names without dot
	Root     bool            // :root
	Link     LinkPseudoClass // Link pseudo-class if present
	Pseudo   PseudoElement   // Pseudo-element if present
	Ancestor *Selector       // Ancestor selector for descendant selectors (e.g., "p code" -> Ancestor is "p")
}

// IsSimple returns true if the selector matched anything parseable.
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.ID != "" || len(s.Classes) > 0 || s.Root || s.Link != LinkPseudoNone
}

// IsDescendant returns true if this is a descendant selector.
func (s Selector) IsDescendant() bool {
	return s.Ancestor != nil
}

// Specificity returns the (ids, classes, elements) specificity packed into a
// single comparable number.
func (s Selector) Specificity() uint32 {
	var a, b, c uint32
	for sel := &s; sel != nil; sel = sel.Ancestor {
		if sel.ID != "" {
			a++
		}
		b += uint32(len(sel.Classes))
		if sel.Root {
			b++
		}
		if sel.Link != LinkPseudoNone {
			b++
		}
		if sel.Element != "" && sel.Element != "*" {
			c++
		}
		if sel.Pseudo != PseudoNone {
			c++
		}
	}
	return min(a, 0xff)<<16 | min(b, 0xff)<<8 | min(c, 0xff)
}

// Rule represents a single CSS rule (selector + declarations).
type Rule struct {
	Selector     Selector      // Parsed selector
	Declarations []Declaration // Declarations in source order
	Layer        string        // Cascade layer name, empty when unlayered
	SourceOrder  int           // Position among all rules of the stylesheet
}

// GetProperty returns the last declaration of a property, if any.
func (r Rule) GetProperty(name string) (Declaration, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].PropertyName() == name {
			return r.Declarations[i], true
		}
	}
	return Declaration{}, false
}

// PropertyRule represents an @property registration.
type PropertyRule struct {
	Name         string  // Custom property name
	Syntax       string  // Syntax string
	Inherits     bool    // inherits descriptor
	InitialValue []Token // initial-value descriptor, nil when absent
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of the fields is non-nil.
type StylesheetItem struct {
	Rule       *Rule         // A plain rule (selector + declarations)
	MediaBlock *MediaBlock   // A @media block containing nested rules
	Property   *PropertyRule // An @property registration
	Import     *string       // An @import URL
}

// MediaBlock represents a @media block with its query list and nested rules.
type MediaBlock struct {
	Queries []MediaQuery
	Rules   []Rule
}

// Matches reports whether any query of the block matches medium.
func (mb *MediaBlock) Matches(medium string) bool {
	for _, q := range mb.Queries {
		if q.Evaluate(medium) {
			return true
		}
	}
	return false
}

// Raw returns the media query list as written.
func (mb *MediaBlock) Raw() string {
	parts := make([]string, len(mb.Queries))
	for i, q := range mb.Queries {
		parts[i] = q.Raw
	}
	return strings.Join(parts, ", ")
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Layers   []string         // Cascade layer names in order of first appearance
	Warnings []string         // Warnings for unsupported or invalid input
}

func (s *Stylesheet) declareLayer(name string) {
	for _, l := range s.Layers {
		if l == name {
			return
		}
	}
	s.Layers = append(s.Layers, name)
}

// Imports returns all @import URLs from the stylesheet in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.Import != nil {
			urls = append(urls, *item.Import)
		}
	}
	return urls
}

// PropertyRules returns all @property registrations in source order.
func (s *Stylesheet) PropertyRules() []PropertyRule {
	var rules []PropertyRule
	for _, item := range s.Items {
		if item.Property != nil {
			rules = append(rules, *item.Property)
		}
	}
	return rules
}

// Rules returns the rules in effect for medium in source order, including
// those of matching @media blocks.
func (s *Stylesheet) Rules(medium string) []Rule {
	var rules []Rule
	for _, item := range s.Items {
		switch {
		case item.Rule != nil:
			rules = append(rules, *item.Rule)
		case item.MediaBlock != nil && item.MediaBlock.Matches(medium):
			rules = append(rules, item.MediaBlock.Rules...)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector.Raw == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Declarations keep their source order.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if len(s.Layers) > 0 {
		cw.printf("@layer %s;\n\n", strings.Join(s.Layers, ", "))
	}
	for i, item := range s.Items {
		switch {
		case item.Import != nil:
			cw.printf("@import url(\"%s\");\n", cssEscapeDoubleQuoted(*item.Import))
		case item.Property != nil:
			writePropertyRule(cw, item.Property)
		case item.MediaBlock != nil:
			cw.printf("@media %s {\n", item.MediaBlock.Raw())
			for j := range item.MediaBlock.Rules {
				writeRule(cw, &item.MediaBlock.Rules[j], "  ")
			}
			cw.printf("}\n")
		case item.Rule != nil:
			writeRule(cw, item.Rule, "")
		}

		// Add blank line between items (except after last)
		if i < len(s.Items)-1 {
			cw.printf("\n")
		}
	}
	return cw.n, cw.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) printf(format string, args ...any) {
	if cw.err != nil {
		return
	}
	n, err := fmt.Fprintf(cw.w, format, args...)
	cw.n += int64(n)
	cw.err = err
}

// writeRule writes a single CSS rule, wrapped in its layer if it has one.
func writeRule(cw *countingWriter, rule *Rule, indent string) {
	if rule.Layer != "" {
		cw.printf("%s@layer %s {\n", indent, rule.Layer)
		indent += "  "
	}
	cw.printf("%s%s {\n", indent, rule.Selector.Raw)
	for _, d := range rule.Declarations {
		cw.printf("%s  %s;\n", indent, d.String())
	}
	cw.printf("%s}\n", indent)
	if rule.Layer != "" {
		cw.printf("%s}\n", indent[:len(indent)-2])
	}
}

// writePropertyRule writes an @property block.
func writePropertyRule(cw *countingWriter, pr *PropertyRule) {
	cw.printf("@property %s {\n", pr.Name)
	cw.printf("  syntax: \"%s\";\n", cssEscapeDoubleQuoted(pr.Syntax))
	cw.printf("  inherits: %t;\n", pr.Inherits)
	if pr.InitialValue != nil {
		cw.printf("  initial-value: %s;\n", Serialize(pr.InitialValue))
	}
	cw.printf("}\n")
}
