package css

import (
	"sync"

	"github.com/tdewolff/parse/v2/css"
)

// MaxSubstitutionTokens caps the size of a substitution result. Values
// growing past it through nested references are invalid.
const MaxSubstitutionTokens = 65536

// VariableLookup is the answer to a single var() or env() lookup.
type VariableLookup struct {
	Data  *VariableData // value as tokens, nil when not found
	Found bool
	// Identity names the looked up value. Cached substitutions stay valid
	// while every lookup they depend on reports the same Identity. It must
	// be comparable, a pointer is typical.
	Identity any
	// Volatile marks a lookup whose answer may change before the current
	// resolution completes, such as a reference into a cycle.
	Volatile bool
}

// VariableResolver answers lookups during substitution. Style builders
// implement it to make sure a referenced custom property is computed before
// it is read.
type VariableResolver interface {
	LookupVariable(name string) VariableLookup
	LookupEnvironment(name string) VariableLookup
}

type substitutionDependency struct {
	env      bool
	name     string
	identity any
	found    bool
}

type resolutionCache struct {
	deps   []substitutionDependency
	result *VariableData
	ok     bool
}

// simpleReference is a value consisting of exactly one var() call.
type simpleReference struct {
	name                    string
	fallback                []Token
	hasFallback             bool
	fallbackNeedsResolution bool
}

// VariableReferenceValue is a declared value containing var() or env()
// that is resolved against the style being built.
type VariableReferenceValue struct {
	data   *VariableData
	simple *simpleReference

	mu       sync.Mutex
	cache    *resolutionCache
	onChange func(*VariableData)
}

// NewVariableReferenceValue wraps tokens that contain references.
func NewVariableReferenceValue(data *VariableData) *VariableReferenceValue {
	return &VariableReferenceValue{
		data:   data,
		simple: parseSimpleReference(data.Tokens()),
	}
}

// Data returns the unresolved tokens.
func (v *VariableReferenceValue) Data() *VariableData { return v.data }

// CSSText implements CSSValue.
func (v *VariableReferenceValue) CSSText() string { return v.data.Serialize() }

// HasVariableReferences implements CSSValue.
func (v *VariableReferenceValue) HasVariableReferences() bool { return true }

// IsSimpleReference reports whether the value is a lone var() call that
// resolves without token splicing.
func (v *VariableReferenceValue) IsSimpleReference() bool { return v.simple != nil }

// OnCacheChange registers fn to be called when a fresh resolution produces a
// result different from the previously cached one.
func (v *VariableReferenceValue) OnCacheChange(fn func(*VariableData)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// ResolveVariableReferences substitutes every var() and env() in the value.
// The result is cached and reused while the referenced values keep their
// identity.
func (v *VariableReferenceValue) ResolveVariableReferences(res VariableResolver) (*VariableData, bool) {
	if data, ok, hit := v.cachedResult(res); hit {
		return data, ok
	}

	s := &substitution{resolver: res}
	var (
		data *VariableData
		ok   bool
	)
	if v.simple != nil {
		data, ok = v.resolveSimple(s)
	} else {
		data, ok = v.resolveGeneral(s)
	}
	v.store(s, data, ok)
	return data, ok
}

// ResolveGeneral substitutes references token by token, never taking the
// lone var() shortcut. It bypasses the cache.
func (v *VariableReferenceValue) ResolveGeneral(res VariableResolver) (*VariableData, bool) {
	return v.resolveGeneral(&substitution{resolver: res})
}

func (v *VariableReferenceValue) resolveGeneral(s *substitution) (*VariableData, bool) {
	var out []Token
	if !s.resolveRange(v.data.TokenRange(), &out) {
		return nil, false
	}
	return newVariableDataNoCopy(out, v.data.context), true
}

func (v *VariableReferenceValue) resolveSimple(s *substitution) (*VariableData, bool) {
	sr := v.simple
	l := s.lookup(false, sr.name)
	if l.Found && l.Data != nil {
		if len(l.Data.tokens) > MaxSubstitutionTokens {
			return nil, false
		}
		if l.Data.context == v.data.context {
			return l.Data, true
		}
		return newVariableDataNoCopy(l.Data.tokens, v.data.context), true
	}
	if !sr.hasFallback {
		return nil, false
	}
	if !sr.fallbackNeedsResolution {
		if len(sr.fallback) > MaxSubstitutionTokens {
			return nil, false
		}
		return newVariableDataNoCopy(sr.fallback, v.data.context), true
	}
	var out []Token
	if !s.resolveRange(NewTokenRange(sr.fallback), &out) {
		return nil, false
	}
	return newVariableDataNoCopy(out, v.data.context), true
}

func (v *VariableReferenceValue) cachedResult(res VariableResolver) (*VariableData, bool, bool) {
	v.mu.Lock()
	c := v.cache
	v.mu.Unlock()
	if c == nil {
		return nil, false, false
	}
	for _, d := range c.deps {
		var l VariableLookup
		if d.env {
			l = res.LookupEnvironment(d.name)
		} else {
			l = res.LookupVariable(d.name)
		}
		if l.Volatile || l.Found != d.found || l.Identity != d.identity {
			return nil, false, false
		}
	}
	return c.result, c.ok, true
}

func (v *VariableReferenceValue) store(s *substitution, data *VariableData, ok bool) {
	if s.volatile {
		return
	}
	v.mu.Lock()
	prev := v.cache
	v.cache = &resolutionCache{deps: s.deps, result: data, ok: ok}
	onChange := v.onChange
	v.mu.Unlock()

	if onChange != nil && prev != nil && (prev.ok != ok || !prev.result.Equal(data)) {
		onChange(data)
	}
}

type substitution struct {
	resolver VariableResolver
	deps     []substitutionDependency
	volatile bool
}

func (s *substitution) lookup(env bool, name string) VariableLookup {
	var l VariableLookup
	if env {
		l = s.resolver.LookupEnvironment(name)
	} else {
		l = s.resolver.LookupVariable(name)
	}
	s.deps = append(s.deps, substitutionDependency{env: env, name: name, identity: l.Identity, found: l.Found})
	if l.Volatile {
		s.volatile = true
	}
	return l
}

func (s *substitution) resolveRange(r TokenRange, out *[]Token) bool {
	for !r.AtEnd() {
		t := r.Peek()
		switch {
		case isReferenceFunction(t):
			block, _ := r.ConsumeBlock()
			if !s.resolveReference(block, t.FunctionName() == "env", out) {
				return false
			}
		case t.IsBlockStart():
			block, closed := r.ConsumeBlock()
			*out = append(*out, t)
			if !s.resolveRange(block, out) {
				return false
			}
			if closed {
				*out = append(*out, t.closingToken())
			}
		default:
			*out = append(*out, r.Consume())
		}
		if len(*out) > MaxSubstitutionTokens {
			return false
		}
	}
	return true
}

func (s *substitution) resolveReference(block TokenRange, env bool, out *[]Token) bool {
	name, fallback, hasFallback, ok := splitReference(block, env)
	if !ok {
		return false
	}
	l := s.lookup(env, name)
	if l.Found && l.Data != nil {
		*out = append(*out, l.Data.tokens...)
		return len(*out) <= MaxSubstitutionTokens
	}
	if !hasFallback {
		return false
	}
	return s.resolveRange(fallback, out)
}

// splitReference splits the contents of var() or env() into the referenced
// name and the fallback with surrounding whitespace removed.
func splitReference(block TokenRange, env bool) (name string, fallback TokenRange, hasFallback, ok bool) {
	block.ConsumeWhitespace()
	t := block.ConsumeIncludingWhitespace()
	if t.Type != css.IdentToken || (!env && !IsCustomPropertyName(t.Data)) {
		return "", TokenRange{}, false, false
	}
	if block.AtEnd() {
		return t.Data, TokenRange{}, false, true
	}
	if block.Peek().Type != css.CommaToken {
		return "", TokenRange{}, false, false
	}
	block.Consume()
	return t.Data, NewTokenRange(TrimWhitespace(block.Remaining())), true, true
}

func parseSimpleReference(tokens []Token) *simpleReference {
	r := NewTokenRange(TrimWhitespace(tokens))
	if r.Peek().FunctionName() != "var" {
		return nil
	}
	block, closed := r.ConsumeBlock()
	if !closed || !r.AtEnd() {
		return nil
	}
	name, fallback, hasFallback, ok := splitReference(block, false)
	if !ok {
		return nil
	}
	sr := &simpleReference{name: name, hasFallback: hasFallback}
	if hasFallback {
		sr.fallback = fallback.Remaining()
		sr.fallbackNeedsResolution = containsReference(sr.fallback)
	}
	return sr
}

func containsReference(tokens []Token) bool {
	for _, t := range tokens {
		if isReferenceFunction(t) {
			return true
		}
	}
	return false
}

// ValidateVariableReferences checks that every var() and env() in tokens is
// well formed: a name, optionally followed by a comma and a fallback.
func ValidateVariableReferences(tokens []Token) bool {
	r := NewTokenRange(tokens)
	for !r.AtEnd() {
		t := r.Peek()
		if !t.IsBlockStart() {
			r.Consume()
			continue
		}
		block, _ := r.ConsumeBlock()
		if isReferenceFunction(t) {
			_, fallback, hasFallback, ok := splitReference(block, t.FunctionName() == "env")
			if !ok {
				return false
			}
			if hasFallback && !ValidateVariableReferences(fallback.Remaining()) {
				return false
			}
			continue
		}
		if !ValidateVariableReferences(block.Remaining()) {
			return false
		}
	}
	return true
}

// VariableReference describes one var() found by ReferencedVariables.
type VariableReference struct {
	Name       string
	InFallback bool // only reached when an enclosing reference is missing
}

// ReferencedVariables lists the custom properties tokens refer to,
// including references nested in fallbacks.
func ReferencedVariables(tokens []Token) []VariableReference {
	var refs []VariableReference
	collectReferences(NewTokenRange(tokens), false, &refs)
	return refs
}

func collectReferences(r TokenRange, inFallback bool, refs *[]VariableReference) {
	for !r.AtEnd() {
		t := r.Peek()
		if !t.IsBlockStart() {
			r.Consume()
			continue
		}
		block, _ := r.ConsumeBlock()
		if t.FunctionName() != "var" {
			collectReferences(block, inFallback, refs)
			continue
		}
		name, fallback, hasFallback, ok := splitReference(block, false)
		if !ok {
			continue
		}
		*refs = append(*refs, VariableReference{Name: name, InFallback: inFallback})
		if hasFallback {
			collectReferences(fallback, true, refs)
		}
	}
}
