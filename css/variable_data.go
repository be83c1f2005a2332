package css

import (
	"net/url"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// ParserContext carries what parsing needs beyond the tokens themselves.
type ParserContext struct {
	BaseURL *url.URL
}

// CompleteURL resolves a possibly relative URL against the base URL.
func (c ParserContext) CompleteURL(ref string) string {
	if c.BaseURL == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.BaseURL.ResolveReference(u).String()
}

// VariableData is an immutable token sequence, the unparsed form of a
// custom property value. Instances are shared freely between styles.
type VariableData struct {
	tokens          []Token
	hash            uint64
	needsResolution bool
	context         ParserContext
}

// NewVariableData copies tokens into a new immutable value.
func NewVariableData(tokens []Token, ctx ParserContext) *VariableData {
	return newVariableDataNoCopy(slices.Clone(tokens), ctx)
}

func newVariableDataNoCopy(tokens []Token, ctx ParserContext) *VariableData {
	d := &VariableData{tokens: tokens[:len(tokens):len(tokens)], context: ctx}
	h := xxhash.New()
	for _, t := range tokens {
		h.Write([]byte{byte(t.Type)})
		h.WriteString(t.Data)
		if isReferenceFunction(t) {
			d.needsResolution = true
		}
	}
	d.hash = h.Sum64()
	return d
}

// Tokens returns the token sequence. Callers must not modify it.
func (d *VariableData) Tokens() []Token { return d.tokens }

// TokenRange returns a range over the tokens.
func (d *VariableData) TokenRange() TokenRange { return NewTokenRange(d.tokens) }

// Hash returns a content hash of the tokens.
func (d *VariableData) Hash() uint64 { return d.hash }

// NeedsVariableResolution reports whether the tokens contain var() or env().
func (d *VariableData) NeedsVariableResolution() bool { return d.needsResolution }

// Context returns the parser context the tokens came from.
func (d *VariableData) Context() ParserContext { return d.context }

// Serialize returns the tokens as CSS text.
func (d *VariableData) Serialize() string { return Serialize(d.tokens) }

// Equal compares token content.
func (d *VariableData) Equal(o *VariableData) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil || d.hash != o.hash {
		return false
	}
	return slices.Equal(d.tokens, o.tokens)
}

func isReferenceFunction(t Token) bool {
	switch t.FunctionName() {
	case "var", "env":
		return true
	}
	return false
}
