package css

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Tokenize splits text into component tokens. Comments are dropped, runs of
// whitespace collapse into one whitespace token and custom property names
// are reported as plain identifiers.
func Tokenize(text string) []Token {
	lexer := css.NewLexer(parse.NewInputString(text))

	var tokens []Token
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			return tokens
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			if len(tokens) > 0 && tokens[len(tokens)-1].IsWhitespace() {
				continue
			}
			tokens = append(tokens, Token{Type: css.WhitespaceToken, Data: " "})
			continue
		case css.CustomPropertyNameToken:
			tt = css.IdentToken
		}
		tokens = append(tokens, Token{Type: tt, Data: string(data)})
	}
}

// fromParserTokens converts grammar parser values into tokens, applying the
// same normalization as Tokenize.
func fromParserTokens(values []css.Token) []Token {
	tokens := make([]Token, 0, len(values))
	for _, v := range values {
		switch v.TokenType {
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			if len(tokens) > 0 && tokens[len(tokens)-1].IsWhitespace() {
				continue
			}
			tokens = append(tokens, Token{Type: css.WhitespaceToken, Data: " "})
		case css.CustomPropertyNameToken:
			tokens = append(tokens, Token{Type: css.IdentToken, Data: string(v.Data)})
		case css.CustomPropertyValueToken:
			// raw custom property text, needs lexing on its own
			tokens = append(tokens, Tokenize(string(v.Data))...)
		default:
			tokens = append(tokens, Token{Type: v.TokenType, Data: string(v.Data)})
		}
	}
	return tokens
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	// Find where number ends
	numEnd := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c == '.':
			numEnd = i + 1
		case (c == '-' || c == '+') && i == 0:
			numEnd = i + 1
		case (c == 'e' || c == 'E') && i+1 < len(s) && isExponentStart(s[i+1:]):
			numEnd = i + 2
			i++
		default:
			i = len(s)
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, err := strconv.ParseFloat(s[:numEnd], 64)
	if err != nil {
		return 0, ""
	}
	return num, strings.ToLower(s[numEnd:])
}

func isExponentStart(s string) bool {
	if s[0] >= '0' && s[0] <= '9' {
		return true
	}
	return (s[0] == '-' || s[0] == '+') && len(s) > 1 && s[1] >= '0' && s[1] <= '9'
}

// unquote removes surrounding quotes from a string token and resolves
// simple backslash escapes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		s = s[1 : len(s)-1]
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == '\n' {
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
