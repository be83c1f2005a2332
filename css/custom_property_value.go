package css

// CustomPropertyValue is the declared value of a custom property: literal
// tokens, tokens with references, or a CSS-wide keyword.
type CustomPropertyValue struct {
	name      string
	data      *VariableData
	reference *VariableReferenceValue
	keyword   CSSWideKeyword
	isKeyword bool
}

// NewCustomPropertyWithData creates a value holding literal tokens.
func NewCustomPropertyWithData(name string, data *VariableData) *CustomPropertyValue {
	return &CustomPropertyValue{name: name, data: data}
}

// NewCustomPropertyWithReference creates a value that needs substitution.
func NewCustomPropertyWithReference(name string, ref *VariableReferenceValue) *CustomPropertyValue {
	return &CustomPropertyValue{name: name, reference: ref}
}

// NewCustomPropertyWithKeyword creates a value holding a CSS-wide keyword.
func NewCustomPropertyWithKeyword(name string, kw CSSWideKeyword) *CustomPropertyValue {
	return &CustomPropertyValue{name: name, keyword: kw, isKeyword: true}
}

// NewCustomPropertyValue classifies tokens for a custom property named
// name. Whitespace around the value is not significant.
func NewCustomPropertyValue(name string, tokens []Token, ctx ParserContext) (*CustomPropertyValue, bool) {
	tokens = TrimWhitespace(tokens)
	r := NewTokenRange(tokens)
	if kw, ok := ParseCSSWideKeyword(&r); ok {
		return NewCustomPropertyWithKeyword(name, kw), true
	}
	data := NewVariableData(tokens, ctx)
	if !data.NeedsVariableResolution() {
		return NewCustomPropertyWithData(name, data), true
	}
	if !ValidateVariableReferences(tokens) {
		return nil, false
	}
	return NewCustomPropertyWithReference(name, NewVariableReferenceValue(data)), true
}

// Name returns the custom property name including the leading dashes.
func (v *CustomPropertyValue) Name() string { return v.name }

// WideKeyword returns the CSS-wide keyword the value holds, if any.
func (v *CustomPropertyValue) WideKeyword() (CSSWideKeyword, bool) {
	return v.keyword, v.isKeyword
}

// VariableData returns the literal tokens, if the value holds them.
func (v *CustomPropertyValue) VariableData() (*VariableData, bool) {
	return v.data, v.data != nil
}

// VariableReference returns the value needing substitution, if any.
func (v *CustomPropertyValue) VariableReference() (*VariableReferenceValue, bool) {
	return v.reference, v.reference != nil
}

// CSSText implements CSSValue.
func (v *CustomPropertyValue) CSSText() string {
	switch {
	case v.isKeyword:
		return v.keyword.String()
	case v.reference != nil:
		return v.reference.CSSText()
	case v.data != nil:
		return v.data.Serialize()
	}
	return ""
}

// HasVariableReferences implements CSSValue.
func (v *CustomPropertyValue) HasVariableReferences() bool { return v.reference != nil }

// PendingSubstitutionValue stands in for a longhand set by a shorthand
// whose value contains references. The shorthand is re-parsed after
// substitution and the longhand takes its part of the result.
type PendingSubstitutionValue struct {
	shorthand PropertyID
	reference *VariableReferenceValue
}

// NewPendingSubstitutionValue creates a pending value for one longhand of
// shorthand.
func NewPendingSubstitutionValue(shorthand PropertyID, ref *VariableReferenceValue) *PendingSubstitutionValue {
	return &PendingSubstitutionValue{shorthand: shorthand, reference: ref}
}

// Shorthand returns the property the value was declared on.
func (p *PendingSubstitutionValue) Shorthand() PropertyID { return p.shorthand }

// Reference returns the shorthand's value.
func (p *PendingSubstitutionValue) Reference() *VariableReferenceValue { return p.reference }

// CSSText implements CSSValue. Pending longhands serialize as empty text.
func (p *PendingSubstitutionValue) CSSText() string { return "" }

// HasVariableReferences implements CSSValue.
func (p *PendingSubstitutionValue) HasVariableReferences() bool { return true }
