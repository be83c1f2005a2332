package css_test

import (
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylecascade/css"
)

// allRules collects all top-level rules from a stylesheet's Items.
// It does NOT flatten @media blocks.
func allRules(sheet *css.Stylesheet) []css.Rule {
	var rules []css.Rule
	for _, item := range sheet.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

func newParser() *css.Parser {
	return css.NewParser(zap.NewNop(), css.ParserContext{})
}

func TestParser_ElementSelector(t *testing.T) {
	sheet := newParser().Parse([]byte(`p { margin-top: 1em; }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.Selector.Element != "p" {
		t.Errorf("expected element 'p', got '%s'", rule.Selector.Element)
	}
	d, ok := rule.GetProperty("margin-top")
	if !ok {
		t.Fatal("expected margin-top declaration")
	}
	v, ok := d.Value.(css.Value)
	if !ok {
		t.Fatalf("expected parsed value, got %T", d.Value)
	}
	if v.Value != 1 || v.Unit != "em" {
		t.Errorf("expected 1em, got %v%s", v.Value, v.Unit)
	}
}

func TestParser_CompoundSelector(t *testing.T) {
	sheet := newParser().Parse([]byte(`p.note.wide#main { color: red; }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	sel := rules[0].Selector
	if sel.Element != "p" || sel.ID != "main" {
		t.Errorf("unexpected selector %+v", sel)
	}
	if len(sel.Classes) != 2 || sel.Classes[0] != "note" || sel.Classes[1] != "wide" {
		t.Errorf("expected classes [note wide], got %v", sel.Classes)
	}
	if got, want := sel.Specificity(), uint32(1<<16|2<<8|1); got != want {
		t.Errorf("specificity = %x, want %x", got, want)
	}
}

func TestParser_LinkPseudoClasses(t *testing.T) {
	sheet := newParser().Parse([]byte(`a:link { color: blue; } a:visited { color: purple; } :root { --x: 1; }`))

	rules := allRules(sheet)
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].Selector.Link != css.LinkPseudoLink {
		t.Errorf("expected :link, got %v", rules[0].Selector.Link)
	}
	if rules[1].Selector.Link != css.LinkPseudoVisited {
		t.Errorf("expected :visited, got %v", rules[1].Selector.Link)
	}
	if !rules[2].Selector.Root {
		t.Error("expected :root selector")
	}
}

func TestParser_UnsupportedPseudoClassWarns(t *testing.T) {
	sheet := newParser().Parse([]byte(`p:hover { color: red; }`))

	if len(allRules(sheet)) != 0 {
		t.Error("expected :hover rule to be dropped")
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected a warning for :hover")
	}
}

func TestParser_DescendantSelector(t *testing.T) {
	sheet := newParser().Parse([]byte(`div .note code { color: red; }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	sel := rules[0].Selector
	if sel.Element != "code" {
		t.Errorf("expected element 'code', got %q", sel.Element)
	}
	if sel.Ancestor == nil || len(sel.Ancestor.Classes) != 1 || sel.Ancestor.Classes[0] != "note" {
		t.Fatalf("expected .note ancestor, got %+v", sel.Ancestor)
	}
	if sel.Ancestor.Ancestor == nil || sel.Ancestor.Ancestor.Element != "div" {
		t.Errorf("expected div as outer ancestor, got %+v", sel.Ancestor.Ancestor)
	}
}

func TestParser_CustomProperties(t *testing.T) {
	sheet := newParser().Parse([]byte(`:root { --gap: 4px; --ref: var(--gap, 1px) 2px; --kw: inherit; }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	decls := rules[0].Declarations
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}

	gap, ok := decls[0].Value.(*css.CustomPropertyValue)
	if !ok || gap.Name() != "--gap" {
		t.Fatalf("expected --gap custom property, got %#v", decls[0].Value)
	}
	if data, ok := gap.VariableData(); !ok || data.Serialize() != "4px" {
		t.Errorf("expected literal tokens 4px, got %q", gap.CSSText())
	}

	ref := decls[1].Value.(*css.CustomPropertyValue)
	if _, ok := ref.VariableReference(); !ok {
		t.Errorf("expected --ref to need substitution")
	}

	kw := decls[2].Value.(*css.CustomPropertyValue)
	if k, ok := kw.WideKeyword(); !ok || k != css.KeywordInherit {
		t.Errorf("expected inherit keyword, got %q", kw.CSSText())
	}
}

func TestParser_ShorthandExpansion(t *testing.T) {
	sheet := newParser().Parse([]byte(`p { margin: 1px 2px; padding: var(--p); }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	want := map[string]string{
		"margin-top":    "1px",
		"margin-right":  "2px",
		"margin-bottom": "1px",
		"margin-left":   "2px",
	}
	for name, text := range want {
		d, ok := rules[0].GetProperty(name)
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if d.Value.CSSText() != text {
			t.Errorf("%s = %q, want %q", name, d.Value.CSSText(), text)
		}
	}

	for _, name := range []string{"padding-top", "padding-right", "padding-bottom", "padding-left"} {
		d, ok := rules[0].GetProperty(name)
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		pending, ok := d.Value.(*css.PendingSubstitutionValue)
		if !ok {
			t.Errorf("%s: expected pending substitution, got %T", name, d.Value)
			continue
		}
		if pending.Shorthand() != css.PropertyPadding {
			t.Errorf("%s: shorthand = %v", name, pending.Shorthand())
		}
	}
}

func TestParser_InvalidDeclarationsWarn(t *testing.T) {
	sheet := newParser().Parse([]byte(`p { width: red; colour: blue; color: green; height: var(1px); }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if len(rules[0].Declarations) != 1 || rules[0].Declarations[0].Property != css.PropertyColor {
		t.Errorf("expected only color to survive, got %v", rules[0].Declarations)
	}
	if len(sheet.Warnings) != 3 {
		t.Errorf("expected 3 warnings, got %v", sheet.Warnings)
	}
}

func TestParser_PropertyRule(t *testing.T) {
	sheet := newParser().Parse([]byte(`
@property --size {
  syntax: "<length> | auto";
  inherits: false;
  initial-value: 10px;
}
@property --broken {
  syntax: "<length>";
}
`))

	rules := sheet.PropertyRules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 @property rule, got %d", len(rules))
	}
	pr := rules[0]
	if pr.Name != "--size" || pr.Syntax != "<length> | auto" || pr.Inherits {
		t.Errorf("unexpected rule %+v", pr)
	}
	if css.Serialize(pr.InitialValue) != "10px" {
		t.Errorf("initial-value = %q", css.Serialize(pr.InitialValue))
	}
	if len(sheet.Warnings) != 1 {
		t.Errorf("expected a warning for --broken, got %v", sheet.Warnings)
	}
}

func TestParser_Layers(t *testing.T) {
	sheet := newParser().Parse([]byte(`
@layer base, theme;
@layer theme { p { color: red; } }
@layer base { p { color: blue; } }
p { color: green; }
`))

	if strings.Join(sheet.Layers, ",") != "base,theme" {
		t.Errorf("layers = %v, want [base theme]", sheet.Layers)
	}
	rules := allRules(sheet)
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].Layer != "theme" || rules[1].Layer != "base" || rules[2].Layer != "" {
		t.Errorf("unexpected layers %q %q %q", rules[0].Layer, rules[1].Layer, rules[2].Layer)
	}
	if !(rules[0].SourceOrder < rules[1].SourceOrder && rules[1].SourceOrder < rules[2].SourceOrder) {
		t.Error("expected increasing source order")
	}
}

func TestParser_MediaBlock(t *testing.T) {
	sheet := newParser().Parse([]byte(`
p { color: red; }
@media print { p { color: black; } }
@media screen, tv { p { color: blue; } }
`))

	if len(sheet.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sheet.Items))
	}
	mb := sheet.Items[2].MediaBlock
	if mb == nil || len(mb.Queries) != 2 {
		t.Fatalf("expected media block with 2 queries, got %+v", sheet.Items[2])
	}
	if got := len(sheet.Rules("screen")); got != 2 {
		t.Errorf("screen rules = %d, want 2", got)
	}
	if got := len(sheet.Rules("print")); got != 2 {
		t.Errorf("print rules = %d, want 2", got)
	}
	if got := len(sheet.Rules("speech")); got != 1 {
		t.Errorf("speech rules = %d, want 1", got)
	}
}

func TestParser_Import(t *testing.T) {
	sheet := newParser().Parse([]byte(`@import "a.css"; @import url(b.css); p { color: red; }`))

	imports := sheet.Imports()
	if len(imports) != 2 || imports[0] != "a.css" || imports[1] != "b.css" {
		t.Errorf("imports = %v", imports)
	}
}

func TestParser_URLCompletion(t *testing.T) {
	base, err := url.Parse("https://example.com/styles/main.css")
	if err != nil {
		t.Fatal(err)
	}
	p := css.NewParser(zap.NewNop(), css.ParserContext{BaseURL: base})
	sheet := p.Parse([]byte(`p { background-image: url(img/a.png); }`))

	rules := allRules(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	d, _ := rules[0].GetProperty("background-image")
	v := d.Value.(css.Value)
	if v.Text != "https://example.com/styles/img/a.png" {
		t.Errorf("completed url = %q", v.Text)
	}
}

func TestParser_InlineStyle(t *testing.T) {
	decls, warnings := newParser().ParseInlineStyle(`color: red; --x: 1px 2px; margin-left: var(--x)`)

	if len(warnings) != 0 {
		t.Errorf("unexpected warnings %v", warnings)
	}
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	if decls[1].PropertyName() != "--x" || decls[1].Value.CSSText() != "1px 2px" {
		t.Errorf("unexpected custom declaration %s", decls[1])
	}
	if !decls[2].Value.HasVariableReferences() {
		t.Error("expected margin-left to need substitution")
	}
}

func TestMediaQuery_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		query  css.MediaQuery
		medium string
		want   bool
	}{
		{"all", css.MediaQuery{Type: "all"}, "screen", true},
		{"empty type", css.MediaQuery{}, "print", true},
		{"matching type", css.MediaQuery{Type: "screen"}, "screen", true},
		{"other type", css.MediaQuery{Type: "print"}, "screen", false},
		{"negated", css.MediaQuery{Type: "print", Negated: true}, "screen", true},
		{"features never match", css.MediaQuery{Type: "screen", HasFeatures: true}, "screen", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Evaluate(tt.medium); got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.medium, got, tt.want)
			}
		})
	}
}

func TestStylesheet_String(t *testing.T) {
	sheet := newParser().Parse([]byte(`@layer base { p { margin-top: 1px; } } h1 { --a: 1; color: red !important; }`))

	got := sheet.String()
	for _, want := range []string{
		"@layer base;",
		"@layer base {\n  p {\n    margin-top: 1px;\n  }\n}",
		"h1 {\n  --a: 1;\n  color: red !important;\n}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
