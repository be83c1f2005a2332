package css

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// TokenType is the lexer token type. Constants are shared with the
// underlying tdewolff lexer so tokens never need translating.
type TokenType = css.TokenType

// Token is a single component token with its source text. Data keeps the
// exact lexeme (function tokens include the opening parenthesis, strings
// keep their quotes) so that concatenating Data reproduces the input.
type Token struct {
	Type TokenType
	Data string
}

var eofToken = Token{Type: css.ErrorToken}

// IsWhitespace reports whether t is a whitespace token.
func (t Token) IsWhitespace() bool {
	return t.Type == css.WhitespaceToken
}

// IsEOF reports whether t is the synthetic end-of-range token.
func (t Token) IsEOF() bool {
	return t.Type == css.ErrorToken
}

// Ident returns lower-cased identifier text, or "" when t is not an ident.
func (t Token) Ident() string {
	if t.Type != css.IdentToken {
		return ""
	}
	return strings.ToLower(t.Data)
}

// FunctionName returns the lower-cased function name without the opening
// parenthesis, or "" when t is not a function token.
func (t Token) FunctionName() string {
	if t.Type != css.FunctionToken {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(t.Data, "("))
}

// IsDelim reports whether t is the delimiter c.
func (t Token) IsDelim(c byte) bool {
	return t.Type == css.DelimToken && len(t.Data) == 1 && t.Data[0] == c
}

// IsBlockStart reports whether t opens a simple block or function.
func (t Token) IsBlockStart() bool {
	switch t.Type {
	case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken, css.LeftBraceToken:
		return true
	}
	return false
}

// blockEnd returns the token type that closes a block opened by t.
func (t Token) blockEnd() TokenType {
	switch t.Type {
	case css.LeftBracketToken:
		return css.RightBracketToken
	case css.LeftBraceToken:
		return css.RightBraceToken
	default:
		return css.RightParenthesisToken
	}
}

// closingToken returns the token that closes a block opened by t.
func (t Token) closingToken() Token {
	switch t.blockEnd() {
	case css.RightBracketToken:
		return Token{Type: css.RightBracketToken, Data: "]"}
	case css.RightBraceToken:
		return Token{Type: css.RightBraceToken, Data: "}"}
	default:
		return Token{Type: css.RightParenthesisToken, Data: ")"}
	}
}

// IsBlockEnd reports whether t closes a simple block or function.
func (t Token) IsBlockEnd() bool {
	switch t.Type {
	case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
		return true
	}
	return false
}

// Numeric splits number, percentage and dimension tokens into value and
// lower-cased unit. Percentages report unit "%".
func (t Token) Numeric() (float64, string, bool) {
	switch t.Type {
	case css.NumberToken:
		v, err := strconv.ParseFloat(t.Data, 64)
		return v, "", err == nil
	case css.PercentageToken:
		v, err := strconv.ParseFloat(strings.TrimSuffix(t.Data, "%"), 64)
		return v, "%", err == nil
	case css.DimensionToken:
		v, unit := parseDimension(t.Data)
		if unit == "" {
			return 0, "", false
		}
		return v, unit, true
	}
	return 0, "", false
}

// IsInteger reports whether t is a number token written without fraction or
// exponent.
func (t Token) IsInteger() bool {
	return t.Type == css.NumberToken && !strings.ContainsAny(t.Data, ".eE")
}

// Serialize concatenates token text. Whitespace tokens are emitted as a
// single space.
func Serialize(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.IsWhitespace() {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(t.Data)
	}
	return sb.String()
}

// TrimWhitespace returns tokens without leading and trailing whitespace.
// The result shares the backing array of tokens.
func TrimWhitespace(tokens []Token) []Token {
	start, end := 0, len(tokens)
	for start < end && tokens[start].IsWhitespace() {
		start++
	}
	for end > start && tokens[end-1].IsWhitespace() {
		end--
	}
	return tokens[start:end:end]
}

// TokenRange is a read cursor over a token slice. It is a small value type:
// copying a range and assigning it back is how consumers backtrack.
type TokenRange struct {
	tokens []Token
	pos    int
}

// NewTokenRange creates a range positioned at the first token.
func NewTokenRange(tokens []Token) TokenRange {
	return TokenRange{tokens: tokens}
}

// AtEnd reports whether all tokens were consumed.
func (r TokenRange) AtEnd() bool {
	return r.pos >= len(r.tokens)
}

// Len returns the number of tokens left.
func (r TokenRange) Len() int {
	return len(r.tokens) - r.pos
}

// Peek returns the next token without consuming it.
func (r TokenRange) Peek() Token {
	if r.AtEnd() {
		return eofToken
	}
	return r.tokens[r.pos]
}

// Remaining returns the tokens not yet consumed.
func (r TokenRange) Remaining() []Token {
	if r.AtEnd() {
		return nil
	}
	return r.tokens[r.pos:len(r.tokens):len(r.tokens)]
}

// Until returns the tokens between r and a later copy of the same range.
func (r TokenRange) Until(later TokenRange) []Token {
	end := min(later.pos, len(r.tokens))
	if r.pos >= end {
		return nil
	}
	return r.tokens[r.pos:end:end]
}

// Consume returns the next token and advances past it.
func (r *TokenRange) Consume() Token {
	if r.AtEnd() {
		return eofToken
	}
	t := r.tokens[r.pos]
	r.pos++
	return t
}

// ConsumeWhitespace skips whitespace tokens.
func (r *TokenRange) ConsumeWhitespace() {
	for !r.AtEnd() && r.tokens[r.pos].IsWhitespace() {
		r.pos++
	}
}

// ConsumeIncludingWhitespace consumes the next token and any whitespace
// following it.
func (r *TokenRange) ConsumeIncludingWhitespace() Token {
	t := r.Consume()
	r.ConsumeWhitespace()
	return t
}

// ConsumeBlock consumes a function or simple block starting at the current
// position and returns its contents. closed is false when input ended
// before the matching closing token.
func (r *TokenRange) ConsumeBlock() (contents TokenRange, closed bool) {
	opener := r.Consume()
	start := r.pos
	depth := 1
	for !r.AtEnd() {
		t := r.tokens[r.pos]
		r.pos++
		switch {
		case t.IsBlockStart():
			depth++
		case t.IsBlockEnd():
			depth--
			if depth == 0 {
				return TokenRange{tokens: r.tokens[start : r.pos-1 : r.pos-1]}, t.Type == opener.blockEnd()
			}
		}
	}
	return TokenRange{tokens: r.tokens[start:r.pos:r.pos]}, false
}

// ConsumeComponentValue consumes one token, or a whole block when the next
// token opens one.
func (r *TokenRange) ConsumeComponentValue() {
	if r.Peek().IsBlockStart() {
		r.ConsumeBlock()
		return
	}
	r.Consume()
}
