package style

import "stylecascade/css"

// PositionTryFallback is an active position-try fallback: declarations
// added at author level and flip tactics remapping inset, margin and sizing
// properties.
type PositionTryFallback struct {
	Properties *MatchedProperties
	Tactics    []css.FlipTactic
}

// remap returns the property receiving the value of id.
func (f *PositionTryFallback) remap(id css.PropertyID, wm css.WritingMode) css.PropertyID {
	if f == nil || len(f.Tactics) == 0 {
		return id
	}
	return css.FlipProperty(id, f.Tactics, wm)
}
