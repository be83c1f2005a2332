package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
	ctx ParserContext

	anonymousLayers int
	ruleCount       int
}

// NewParser creates a new CSS parser. Relative URLs are completed against
// the base URL of ctx.
func NewParser(log *zap.Logger, ctx ParserContext) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser"), ctx: ctx}
}

// Context returns the parser context values are parsed with.
func (p *Parser) Context() ParserContext {
	return p.ctx
}

// ruleScope is where parsed rules go: the enclosing layer and media block.
type ruleScope struct {
	layer string
	media *MediaBlock
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	// Log parsing start with source identifier if provided
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)
	p.parseRules(parser, sheet, ruleScope{}, false)
	return sheet
}

// ParseInlineStyle parses the contents of a style attribute.
func (p *Parser) ParseInlineStyle(text string) ([]Declaration, []string) {
	input := parse.NewInputString(text)
	parser := css.NewParser(input, true)

	var (
		decls    []Declaration
		warnings []string
	)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return decls, warnings
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d, err := ParseDeclaration(string(data), fromParserTokens(parser.Values()), p.ctx)
			if err != nil {
				warnings = append(warnings, err.Error())
				p.log.Debug("Skipping inline declaration", zap.Error(err))
				continue
			}
			decls = append(decls, d...)
		}
	}
}

// parseRules consumes grammar events until end of input or, when nested,
// until the end of the enclosing at-rule block.
func (p *Parser) parseRules(parser *css.Parser, sheet *Stylesheet, scope ruleScope, nested bool) {
	var pendingSelectors []string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// End of input or error
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return

		case css.EndAtRuleGrammar:
			if nested {
				return
			}

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			values := fromParserTokens(parser.Values())
			switch atRule {
			case "@media":
				if scope.media != nil {
					sheet.Warnings = append(sheet.Warnings, "unsupported nested @media")
					p.skipAtRuleBlock(parser)
					continue
				}
				mb := &MediaBlock{Queries: parseMediaQueryList(values)}
				sheet.Items = append(sheet.Items, StylesheetItem{MediaBlock: mb})
				p.parseRules(parser, sheet, ruleScope{layer: scope.layer, media: mb}, true)
				p.log.Debug("Parsed @media block", zap.String("query", mb.Raw()), zap.Int("rules", len(mb.Rules)))
			case "@layer":
				names := parseLayerNames(values)
				var name string
				switch len(names) {
				case 0:
					p.anonymousLayers++
					name = fmt.Sprintf("anonymous-%d", p.anonymousLayers)
				case 1:
					name = names[0]
				default:
					sheet.Warnings = append(sheet.Warnings, "@layer block with several names")
					p.skipAtRuleBlock(parser)
					continue
				}
				if scope.layer != "" {
					name = scope.layer + "." + name
				}
				sheet.declareLayer(name)
				p.parseRules(parser, sheet, ruleScope{layer: name, media: scope.media}, true)
			case "@property":
				pr, err := p.parsePropertyRule(parser, values)
				if err != nil {
					sheet.Warnings = append(sheet.Warnings, err.Error())
					p.log.Debug("Skipping @property", zap.Error(err))
					continue
				}
				sheet.Items = append(sheet.Items, StylesheetItem{Property: pr})
			default:
				// Skip other @-rules with blocks
				p.skipAtRuleBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g., @import)
			atRule := strings.ToLower(string(data))
			values := fromParserTokens(parser.Values())
			switch atRule {
			case "@import":
				if url := extractImportURL(values); url != "" {
					sheet.Items = append(sheet.Items, StylesheetItem{Import: &url})
					p.log.Debug("Parsed @import", zap.String("url", url))
				}
			case "@layer":
				for _, name := range parseLayerNames(values) {
					if scope.layer != "" {
						name = scope.layer + "." + name
					}
					sheet.declareLayer(name)
				}
			default:
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.QualifiedRuleGrammar:
			// a selector of a group, the ruleset follows
			pendingSelectors = append(pendingSelectors, p.parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors := append(pendingSelectors, p.parseSelectors(data, parser.Values())...)
			pendingSelectors = nil
			decls := p.parseDeclarations(parser, sheet)
			for _, selStr := range selectors {
				sel := p.parseSelector(selStr, sheet)
				if !sel.IsSimple() {
					continue
				}
				p.ruleCount++
				rule := Rule{Selector: sel, Declarations: decls, Layer: scope.layer, SourceOrder: p.ruleCount}
				if scope.media != nil {
					scope.media.Rules = append(scope.media.Rules, rule)
				} else {
					sheet.Items = append(sheet.Items, StylesheetItem{Rule: &rule})
				}
			}
		}
	}
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []Token) string {
	r := NewTokenRange(tokens)
	r.ConsumeWhitespace()
	if v, ok := ConsumeString(&r); ok {
		return v.Text
	}
	if v, ok := ConsumeURL(&r); ok {
		return v.Text
	}
	return ""
}

// parseLayerNames reads a comma separated list of dotted layer names.
func parseLayerNames(tokens []Token) []string {
	var (
		names []string
		sb    strings.Builder
	)
	flush := func() {
		if sb.Len() > 0 {
			names = append(names, sb.String())
			sb.Reset()
		}
	}
	for _, t := range tokens {
		switch {
		case t.Type == css.CommaToken:
			flush()
		case t.Type == css.IdentToken || t.IsDelim('.'):
			sb.WriteString(t.Data)
		}
	}
	flush()
	return names
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	// Build full selector string from data and values
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	// Split by comma for grouped selectors
	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet) []Declaration {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			name := string(data)
			d, err := ParseDeclaration(name, fromParserTokens(parser.Values()), p.ctx)
			if err != nil {
				sheet.Warnings = append(sheet.Warnings, err.Error())
				p.log.Debug("Skipping declaration", zap.String("property", name), zap.Error(err))
				continue
			}
			decls = append(decls, d...)
		}
	}
}

// parsePropertyRule parses the descriptors of an @property block.
func (p *Parser) parsePropertyRule(parser *css.Parser, prelude []Token) (*PropertyRule, error) {
	prelude = TrimWhitespace(prelude)
	pr := &PropertyRule{}
	if len(prelude) == 1 && IsCustomPropertyName(prelude[0].Data) {
		pr.Name = prelude[0].Data
	}

	var hasSyntax, hasInherits bool
	for {
		gt, _, data := parser.Next()
		if gt == css.ErrorGrammar || gt == css.EndAtRuleGrammar {
			break
		}
		if gt != css.DeclarationGrammar && gt != css.CustomPropertyGrammar {
			continue
		}
		value := TrimWhitespace(fromParserTokens(parser.Values()))
		switch strings.ToLower(string(data)) {
		case "syntax":
			if len(value) == 1 && value[0].Type == css.StringToken {
				pr.Syntax = unquote(value[0].Data)
				hasSyntax = true
			}
		case "inherits":
			switch {
			case len(value) == 1 && value[0].Ident() == "true":
				pr.Inherits, hasInherits = true, true
			case len(value) == 1 && value[0].Ident() == "false":
				pr.Inherits, hasInherits = false, true
			}
		case "initial-value":
			pr.InitialValue = append([]Token{}, value...)
		}
	}

	switch {
	case pr.Name == "":
		return nil, fmt.Errorf("@property without a custom property name: %q", Serialize(prelude))
	case !hasSyntax:
		return nil, fmt.Errorf("@property %s: missing or invalid syntax descriptor", pr.Name)
	case !hasInherits:
		return nil, fmt.Errorf("@property %s: missing or invalid inherits descriptor", pr.Name)
	}
	return pr, nil
}

// parseSelector parses a single selector string into a Selector.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	// Check for unsupported selector patterns first
	if strings.ContainsAny(selStr, "+~>") {
		// Sibling/child combinators
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return sel
	}
	if strings.Contains(selStr, "[") {
		// Attribute selector
		sheet.Warnings = append(sheet.Warnings, "unsupported attribute selector: "+selStr)
		p.log.Debug("Skipping attribute selector", zap.String("selector", selStr))
		return sel
	}

	// Check for descendant selector (contains whitespace)
	if strings.ContainsAny(selStr, " \t\n") {
		return p.parseDescendantSelector(selStr, sheet)
	}

	// Parse simple selector
	return p.parseSimpleSelector(selStr, sheet)
}

// parseDescendantSelector parses a descendant selector like "p code" or ".section-title h2".
func (p *Parser) parseDescendantSelector(selStr string, sheet *Stylesheet) Selector {
	sel := Selector{Raw: selStr}

	// Split by whitespace
	parts := strings.Fields(selStr)
	if len(parts) < 2 {
		return sel
	}

	// Parse the rightmost part as the main selector
	mainSel := p.parseSimpleSelector(parts[len(parts)-1], sheet)
	if !mainSel.IsSimple() {
		return sel
	}
	mainSel.Raw = selStr

	ancestorStr := strings.Join(parts[:len(parts)-1], " ")
	var ancestorSel Selector
	if len(parts) == 2 {
		ancestorSel = p.parseSimpleSelector(ancestorStr, sheet)
	} else {
		ancestorSel = p.parseDescendantSelector(ancestorStr, sheet)
	}
	if !ancestorSel.IsSimple() {
		return sel
	}
	mainSel.Ancestor = &ancestorSel
	return mainSel
}

// parseSimpleSelector parses a compound selector: element, #id, .class
// and a few pseudo-classes, with an optional pseudo-element.
func (p *Parser) parseSimpleSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)
	sel := Selector{Raw: selStr}

	remaining := selStr
	if before, pseudo, found := strings.Cut(selStr, "::"); found {
		remaining = before
		switch strings.ToLower(pseudo) {
		case "before":
			sel.Pseudo = PseudoBefore
		case "after":
			sel.Pseudo = PseudoAfter
		default:
			sheet.Warnings = append(sheet.Warnings, "unsupported pseudo-element: "+selStr)
			p.log.Debug("Skipping unsupported pseudo-element", zap.String("selector", selStr))
			return Selector{Raw: selStr}
		}
	}

	// Split the compound into its parts, each starting with ., # or :
	var (
		parts []string
		start int
	)
	for i := 1; i <= len(remaining); i++ {
		if i == len(remaining) || strings.ContainsRune(".#:", rune(remaining[i])) {
			parts = append(parts, remaining[start:i])
			start = i
		}
	}

	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, "."):
			sel.Classes = append(sel.Classes, part[1:])
		case strings.HasPrefix(part, "#"):
			sel.ID = part[1:]
		case strings.HasPrefix(part, ":"):
			switch strings.ToLower(part[1:]) {
			case "before":
				sel.Pseudo = PseudoBefore
			case "after":
				sel.Pseudo = PseudoAfter
			case "root":
				sel.Root = true
			case "link":
				sel.Link = LinkPseudoLink
			case "visited":
				sel.Link = LinkPseudoVisited
			case "any-link":
				sel.Link = LinkPseudoAnyLink
			default:
				sheet.Warnings = append(sheet.Warnings, "unsupported pseudo-class: "+selStr)
				p.log.Debug("Skipping pseudo-class selector", zap.String("selector", selStr))
				return Selector{Raw: selStr}
			}
		case part != "":
			sel.Element = strings.ToLower(part)
		}
	}
	return sel
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaQueryList parses a comma separated list of media queries.
// Handles queries like "screen", "not print", "screen and (color)".
func parseMediaQueryList(tokens []Token) []MediaQuery {
	var (
		queries []MediaQuery
		current []Token
	)
	flush := func() {
		if q, ok := parseMediaQuery(current); ok {
			queries = append(queries, q)
		}
		current = nil
	}
	depth := 0
	for _, t := range tokens {
		switch {
		case t.IsBlockStart():
			depth++
		case t.IsBlockEnd():
			depth--
		case t.Type == css.CommaToken && depth == 0:
			flush()
			continue
		}
		current = append(current, t)
	}
	flush()
	return queries
}

func parseMediaQuery(tokens []Token) (MediaQuery, bool) {
	tokens = TrimWhitespace(tokens)
	if len(tokens) == 0 {
		return MediaQuery{}, false
	}
	mq := MediaQuery{Raw: Serialize(tokens)}

	var idents []string
	for _, t := range tokens {
		switch {
		case t.Type == css.IdentToken:
			idents = append(idents, strings.ToLower(t.Data))
		case t.Type == css.LeftParenthesisToken:
			mq.HasFeatures = true
		}
	}

	i := 0
	if i < len(idents) && (idents[i] == "not" || idents[i] == "only") {
		mq.Negated = idents[i] == "not"
		i++
	}
	if i < len(idents) && idents[i] != "and" && tokens[0].Type != css.LeftParenthesisToken {
		mq.Type = idents[i]
	}
	return mq, true
}
