package resolver

import (
	"stylecascade/css"
	"stylecascade/style"
)

// blockified display values of the root element
var rootDisplay = map[string]string{
	"inline":       "block",
	"inline-block": "block",
	"contents":     "block",
	"inline-flex":  "flex",
	"inline-grid":  "grid",
}

// adjustStyle fixes up a built style for where its element sits in the
// tree.
func adjustStyle(s *style.RenderStyle, bctx style.BuilderContext) {
	if !bctx.IsRootElement {
		return
	}
	if block, ok := rootDisplay[s.Value(css.PropertyDisplay).Keyword]; ok {
		s.SetValue(css.PropertyDisplay, css.Ident(block))
	}
}
