package resolver

import (
	"cmp"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"stylecascade/css"
	"stylecascade/style"
)

type matchedRule struct {
	rule        *css.Rule
	sheet       int
	layer       style.LayerPriority
	specificity uint32
	linkMatch   style.LinkMatch
}

// match collects the declaration blocks that apply to el, per level in
// ascending precedence: layer, then specificity, then order of appearance.
// The style attribute comes last among author declarations.
func (r *Resolver) match(el *etree.Element, ancestors []*etree.Element, insideLink bool) *style.MatchResult {
	path := append(slices.Clip(ancestors), el)

	var matched [style.LevelAuthor + 1][]matchedRule
	for i := range r.sheets {
		entry := &r.sheets[i]
		for j := range entry.rules {
			rule := &entry.rules[j]
			if !selectorMatches(&rule.Selector, path) {
				continue
			}
			matched[entry.level] = append(matched[entry.level], matchedRule{
				rule:        rule,
				sheet:       i,
				layer:       r.layerPriority(entry.level, rule.Layer),
				specificity: rule.Selector.Specificity(),
				linkMatch:   linkMatchFor(&rule.Selector, insideLink),
			})
		}
	}

	res := &style.MatchResult{}
	for level, rules := range matched {
		slices.SortStableFunc(rules, func(a, b matchedRule) int {
			return cmp.Or(
				cmp.Compare(a.layer, b.layer),
				cmp.Compare(a.specificity, b.specificity),
				cmp.Compare(a.sheet, b.sheet),
				cmp.Compare(a.rule.SourceOrder, b.rule.SourceOrder),
			)
		})
		props := make([]style.MatchedProperties, 0, len(rules)+1)
		for _, m := range rules {
			props = append(props, style.MatchedProperties{
				Declarations:  m.rule.Declarations,
				LinkMatch:     m.linkMatch,
				LayerPriority: m.layer,
			})
		}
		switch style.CascadeLevel(level) {
		case style.LevelUserAgent:
			res.UserAgentDeclarations = props
		case style.LevelUser:
			res.UserDeclarations = props
		case style.LevelAuthor:
			if attr := el.SelectAttr("style"); attr != nil && strings.TrimSpace(attr.Value) != "" {
				props = append(props, style.MatchedProperties{
					Declarations:       r.ctx.ParseInlineStyle(attr.Value),
					LinkMatch:          style.MatchAll,
					LayerPriority:      style.UnlayeredPriority,
					FromStyleAttribute: true,
				})
			}
			res.AuthorDeclarations = props
		}
	}
	return res
}

// linkMatchFor picks the link state slot a rule fills. Outside links every
// rule applies to all states.
func linkMatchFor(sel *css.Selector, insideLink bool) style.LinkMatch {
	if !insideLink {
		return style.MatchAll
	}
	for s := sel; s != nil; s = s.Ancestor {
		switch s.Link {
		case css.LinkPseudoVisited:
			return style.MatchVisited
		case css.LinkPseudoLink:
			return style.MatchLink
		}
	}
	return style.MatchAll
}

// selectorMatches matches sel against the last element of path; earlier
// elements are its ancestors, the root first.
func selectorMatches(sel *css.Selector, path []*etree.Element) bool {
	if !sel.IsSimple() || sel.Pseudo != css.PseudoNone {
		return false
	}
	last := len(path) - 1
	if !compoundMatches(sel, path[last], last == 0) {
		return false
	}
	i := last - 1
	for anc := sel.Ancestor; anc != nil; anc = anc.Ancestor {
		for i >= 0 && !compoundMatches(anc, path[i], i == 0) {
			i--
		}
		if i < 0 {
			return false
		}
		i--
	}
	return true
}

func compoundMatches(sel *css.Selector, el *etree.Element, isRoot bool) bool {
	if sel.Element != "" && sel.Element != "*" && sel.Element != localName(el) {
		return false
	}
	if sel.ID != "" && el.SelectAttrValue("id", "") != sel.ID {
		return false
	}
	if len(sel.Classes) > 0 {
		classes := strings.Fields(el.SelectAttrValue("class", ""))
		for _, c := range sel.Classes {
			if !slices.Contains(classes, c) {
				return false
			}
		}
	}
	if sel.Root && !isRoot {
		return false
	}
	// :link and :visited both match every link, the cascade keeps their
	// values apart
	return sel.Link == css.LinkPseudoNone || isLink(el)
}

func localName(el *etree.Element) string {
	return strings.ToLower(el.Tag)
}

func isLink(el *etree.Element) bool {
	switch localName(el) {
	case "a", "area", "link":
		return el.SelectAttr("href") != nil
	}
	return false
}
