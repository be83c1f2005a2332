package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// CSSWideKeyword is one of the keywords every property accepts.
type CSSWideKeyword uint8

const (
	KeywordInitial CSSWideKeyword = iota
	KeywordInherit
	KeywordUnset
	KeywordRevert
	KeywordRevertLayer
)

var wideKeywordNames = [...]string{
	KeywordInitial:     "initial",
	KeywordInherit:     "inherit",
	KeywordUnset:       "unset",
	KeywordRevert:      "revert",
	KeywordRevertLayer: "revert-layer",
}

// String returns the keyword as written in CSS.
func (k CSSWideKeyword) String() string {
	if int(k) < len(wideKeywordNames) {
		return wideKeywordNames[k]
	}
	return "unknown"
}

// ParseCSSWideKeywordIdent maps identifier text to a CSS-wide keyword.
func ParseCSSWideKeywordIdent(s string) (CSSWideKeyword, bool) {
	for k, name := range wideKeywordNames {
		if strings.EqualFold(s, name) {
			return CSSWideKeyword(k), true
		}
	}
	return 0, false
}

// ParseCSSWideKeyword succeeds when the range holds nothing but a single
// CSS-wide keyword, optionally surrounded by whitespace. The range is only
// advanced on success.
func ParseCSSWideKeyword(r *TokenRange) (CSSWideKeyword, bool) {
	probe := *r
	probe.ConsumeWhitespace()
	t := probe.ConsumeIncludingWhitespace()
	if t.Type != css.IdentToken || !probe.AtEnd() {
		return 0, false
	}
	k, ok := ParseCSSWideKeywordIdent(t.Data)
	if ok {
		*r = probe
	}
	return k, ok
}

const (
	// maxValueKeywordLength bounds identifiers considered as value keywords.
	maxValueKeywordLength = 48
	// maxPropertyNameLength bounds standard property names.
	maxPropertyNameLength = 64
)

// keepsApplePrefix lists -apple- keywords that have no -webkit- twin.
var keepsApplePrefix = []string{"system", "pay", "wireless"}

// NormalizeValueKeyword lower-cases an ASCII keyword and rewrites the legacy
// -apple- vendor prefix to -webkit-. Non-ASCII or overlong input is
// rejected.
func NormalizeValueKeyword(s string) (string, bool) {
	if s == "" || len(s) > maxValueKeywordLength {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] == 0 {
			return "", false
		}
	}
	kw := strings.ToLower(s)
	if rest, ok := strings.CutPrefix(kw, "-apple-"); ok {
		for _, p := range keepsApplePrefix {
			if strings.HasPrefix(rest, p) {
				return kw, true
			}
		}
		kw = "-webkit-" + rest
	}
	return kw, true
}

// IsCustomPropertyName reports whether name is a custom property name:
// longer than two characters and starting with "--".
func IsCustomPropertyName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "--")
}
