package css_test

import (
	"slices"
	"strings"
	"testing"

	tcss "github.com/tdewolff/parse/v2/css"

	"stylecascade/css"
)

// mapResolver answers lookups from fixed maps and records them.
type mapResolver struct {
	vars    map[string]*css.VariableData
	env     map[string]*css.VariableData
	lookups []string
}

func newMapResolver(vars map[string]string) *mapResolver {
	m := &mapResolver{vars: make(map[string]*css.VariableData), env: make(map[string]*css.VariableData)}
	for name, text := range vars {
		m.vars[name] = css.NewVariableData(css.Tokenize(text), css.ParserContext{})
	}
	return m
}

func (m *mapResolver) LookupVariable(name string) css.VariableLookup {
	m.lookups = append(m.lookups, name)
	d, ok := m.vars[name]
	return css.VariableLookup{Data: d, Found: ok, Identity: d}
}

func (m *mapResolver) LookupEnvironment(name string) css.VariableLookup {
	m.lookups = append(m.lookups, "env:"+name)
	d, ok := m.env[name]
	return css.VariableLookup{Data: d, Found: ok, Identity: d}
}

func reference(t *testing.T, text string) *css.VariableReferenceValue {
	t.Helper()
	tokens := css.TrimWhitespace(css.Tokenize(text))
	if !css.ValidateVariableReferences(tokens) {
		t.Fatalf("malformed reference %q", text)
	}
	return css.NewVariableReferenceValue(css.NewVariableData(tokens, css.ParserContext{}))
}

func TestVariableReference_Substitution(t *testing.T) {
	res := newMapResolver(map[string]string{
		"--a": "1px",
		"--b": "2px 3px",
	})

	tests := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{"single", "var(--a)", "1px", true},
		{"spliced", "var(--a) var(--b)", "1px 2px 3px", true},
		{"nested in function", "calc(var(--a) + 1px)", "calc(1px + 1px)", true},
		{"missing with fallback", "var(--missing, 5px)", "5px", true},
		{"missing without fallback", "var(--missing)", "", false},
		{"empty fallback", "a var(--missing,)", "a ", true},
		{"fallback with reference", "var(--missing, var(--b))", "2px 3px", true},
		{"missing inside fallback", "var(--missing, var(--gone))", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok := reference(t, tt.value).ResolveVariableReferences(res)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && data.Serialize() != tt.want {
				t.Errorf("got %q, want %q", data.Serialize(), tt.want)
			}
		})
	}
}

func TestVariableReference_FallbackIsLazy(t *testing.T) {
	res := newMapResolver(map[string]string{"--a": "1px"})

	if _, ok := reference(t, "var(--a, var(--never))").ResolveVariableReferences(res); !ok {
		t.Fatal("expected resolution to succeed")
	}
	if slices.Contains(res.lookups, "--never") {
		t.Errorf("fallback was evaluated: lookups %v", res.lookups)
	}
}

func TestVariableReference_FastPathMatchesGeneralPath(t *testing.T) {
	res := newMapResolver(map[string]string{
		"--a": "1px solid red",
		"--b": "var-free",
	})
	for _, text := range []string{
		"var(--a)",
		"var( --a )",
		"var(--missing, 2px  4px)",
		"var(--missing, var(--b))",
		"var(--missing,)",
		"var(--missing)",
	} {
		ref := reference(t, text)
		if !ref.IsSimpleReference() {
			t.Fatalf("%q: expected a simple reference", text)
		}
		fast, fastOK := ref.ResolveVariableReferences(res)
		general, generalOK := ref.ResolveGeneral(res)
		if fastOK != generalOK {
			t.Fatalf("%q: fast ok %v, general ok %v", text, fastOK, generalOK)
		}
		if fastOK && !slices.Equal(fast.Tokens(), general.Tokens()) {
			t.Errorf("%q: fast %q, general %q", text, fast.Serialize(), general.Serialize())
		}
	}
}

func TestVariableReference_FastPathSharesData(t *testing.T) {
	res := newMapResolver(map[string]string{"--a": "1px"})

	data, ok := reference(t, "var(--a)").ResolveVariableReferences(res)
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if data != res.vars["--a"] {
		t.Error("expected the referenced value to be returned without copying")
	}
}

func TestVariableReference_TokenBudget(t *testing.T) {
	// 32768 identifiers, 32767 separators and a trailing comma
	tokens := make([]css.Token, 0, css.MaxSubstitutionTokens)
	for i := range 32768 {
		if i > 0 {
			tokens = append(tokens, css.Token{Type: tcss.WhitespaceToken, Data: " "})
		}
		tokens = append(tokens, css.Token{Type: tcss.IdentToken, Data: "a"})
	}
	tokens = append(tokens, css.Token{Type: tcss.CommaToken, Data: ","})
	if len(tokens) != css.MaxSubstitutionTokens {
		t.Fatalf("built %d tokens", len(tokens))
	}

	res := newMapResolver(nil)
	res.vars["--big"] = css.NewVariableData(tokens, css.ParserContext{})

	data, ok := reference(t, "var(--big)").ResolveVariableReferences(res)
	if !ok || len(data.Tokens()) != css.MaxSubstitutionTokens {
		t.Fatalf("expected exactly %d tokens to be accepted", css.MaxSubstitutionTokens)
	}
	if _, ok := reference(t, "x var(--big)").ResolveVariableReferences(res); ok {
		t.Error("expected the result over the budget to fail")
	}
	if _, ok := reference(t, "var(--big) var(--big)").ResolveGeneral(res); ok {
		t.Error("expected doubled value to fail")
	}
}

func TestVariableReference_Cache(t *testing.T) {
	res := newMapResolver(map[string]string{"--a": "1px"})
	ref := reference(t, "var(--a) 2px")

	var changes []string
	ref.OnCacheChange(func(d *css.VariableData) { changes = append(changes, d.Serialize()) })

	first, _ := ref.ResolveVariableReferences(res)
	second, _ := ref.ResolveVariableReferences(res)
	if first != second {
		t.Error("expected cached result to be reused")
	}
	if len(changes) != 0 {
		t.Errorf("unexpected change notifications %v", changes)
	}

	// same content, new identity: recomputed but not reported as changed
	res.vars["--a"] = css.NewVariableData(css.Tokenize("1px"), css.ParserContext{})
	third, _ := ref.ResolveVariableReferences(res)
	if third == second {
		t.Error("expected recomputation after dependency changed")
	}
	if len(changes) != 0 {
		t.Errorf("unexpected change notifications %v", changes)
	}

	res.vars["--a"] = css.NewVariableData(css.Tokenize("3px"), css.ParserContext{})
	fourth, _ := ref.ResolveVariableReferences(res)
	if fourth.Serialize() != "3px 2px" {
		t.Errorf("got %q", fourth.Serialize())
	}
	if len(changes) != 1 || changes[0] != "3px 2px" {
		t.Errorf("changes = %v", changes)
	}
}

func TestVariableReference_Environment(t *testing.T) {
	res := newMapResolver(nil)
	res.env["safe-area-inset-top"] = css.NewVariableData(css.Tokenize("20px"), css.ParserContext{})

	data, ok := reference(t, "env(safe-area-inset-top) env(unknown, 0px)").ResolveVariableReferences(res)
	if !ok || data.Serialize() != "20px 0px" {
		t.Errorf("got %v %q", ok, data.Serialize())
	}
}

func TestValidateVariableReferences(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"var(--a)", true},
		{"var(--a, 1px)", true},
		{"calc(var(--a) * 2)", true},
		{"var(--a, var(--b, var(--c)))", true},
		{"var(a)", false},
		{"var()", false},
		{"var(--a 1px)", false},
		{"var(--a, var(b))", false},
		{"env(safe-area-inset-left, 0)", true},
	}
	for _, tt := range tests {
		if got := css.ValidateVariableReferences(css.Tokenize(tt.text)); got != tt.want {
			t.Errorf("ValidateVariableReferences(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestReferencedVariables(t *testing.T) {
	refs := css.ReferencedVariables(css.Tokenize("var(--a, var(--b)) calc(var(--c) + 1px)"))

	var got []string
	for _, r := range refs {
		s := r.Name
		if r.InFallback {
			s += "?"
		}
		got = append(got, s)
	}
	if strings.Join(got, " ") != "--a --b? --c" {
		t.Errorf("references = %v", got)
	}
}
