package css

import "strings"

// FlipTactic is a position-try fallback transformation.
type FlipTactic uint8

const (
	FlipBlock FlipTactic = iota
	FlipInline
	FlipStart
)

// ParseFlipTactic maps a try-tactic keyword to a FlipTactic.
func ParseFlipTactic(s string) (FlipTactic, bool) {
	switch strings.ToLower(s) {
	case "flip-block":
		return FlipBlock, true
	case "flip-inline":
		return FlipInline, true
	case "flip-start":
		return FlipStart, true
	}
	return 0, false
}

// String returns the try-tactic keyword.
func (t FlipTactic) String() string {
	switch t {
	case FlipInline:
		return "flip-inline"
	case FlipStart:
		return "flip-start"
	default:
		return "flip-block"
	}
}

// FlipProperty returns the property that receives the value of id once
// tactics are applied in order. Only margin, inset and sizing properties
// are affected.
func FlipProperty(id PropertyID, tactics []FlipTactic, wm WritingMode) PropertyID {
	slot, ok := logicalGroupSlots[id]
	if !ok || len(tactics) == 0 {
		return id
	}
	group := logicalGroups[slot.group]
	if group.physical[0] == PropertyPaddingTop {
		return id
	}

	index := slot.index
	if !slot.logical {
		index = logicalGroupSlots[UnresolvePhysicalProperty(id, wm)].index
	}
	for _, t := range tactics {
		index = flipIndex(index, t, group.sizing)
	}

	flipped := group.logical[index]
	if slot.logical {
		return flipped
	}
	return ResolveDirectionAwareProperty(flipped, wm)
}

// flipIndex works on block-start, block-end, inline-start, inline-end
// indexes, or inline-size, block-size for sizing groups.
func flipIndex(index int, t FlipTactic, sizing bool) int {
	if sizing {
		if t == FlipStart {
			return 1 - index
		}
		return index
	}
	switch t {
	case FlipBlock:
		if index < 2 {
			return 1 - index
		}
	case FlipInline:
		if index >= 2 {
			return 5 - index
		}
	case FlipStart:
		return (index + 2) % 4
	}
	return index
}
