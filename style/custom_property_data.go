package style

import (
	"slices"

	"github.com/maruel/natural"
)

// maxAncestorCount bounds the parent chain of a CustomPropertyData. Deriving
// past it flattens the chain so lookups stay cheap.
const maxAncestorCount = 4

// CustomPropertyData maps custom property names to computed values. A
// derived instance holds only the names set on it and delegates the rest to
// its parent, so styles share the values they inherit without copying.
//
// An instance that has been handed to more than one style must not be
// modified; Derive a child and set values on that instead. A nil
// *CustomPropertyData is a valid empty map for reading.
type CustomPropertyData struct {
	parent        *CustomPropertyData
	own           map[string]*CustomProperty
	size          int
	ancestorCount int
}

// NewCustomPropertyData creates an empty map.
func NewCustomPropertyData() *CustomPropertyData {
	return &CustomPropertyData{own: make(map[string]*CustomProperty)}
}

// Derive returns a writable child that starts with the same contents as d.
func (d *CustomPropertyData) Derive() *CustomPropertyData {
	child := NewCustomPropertyData()
	if d == nil {
		return child
	}
	child.size = d.size
	if len(d.own) == 0 {
		// nothing of our own to keep, link past us
		child.parent = d.parent
		child.ancestorCount = d.ancestorCount
	} else {
		child.parent = d
		child.ancestorCount = d.ancestorCount + 1
	}
	if child.ancestorCount >= maxAncestorCount {
		child.flatten()
	}
	return child
}

func (d *CustomPropertyData) flatten() {
	for data := d.parent; data != nil; data = data.parent {
		for name, v := range data.own {
			if _, shadowed := d.own[name]; !shadowed {
				d.own[name] = v
			}
		}
	}
	d.parent = nil
	d.ancestorCount = 0
}

// Get returns the value of name, or nil.
func (d *CustomPropertyData) Get(name string) *CustomProperty {
	for data := d; data != nil; data = data.parent {
		if v, ok := data.own[name]; ok {
			return v
		}
	}
	return nil
}

// Set stores v under name. Setting a value equal to the current one leaves
// the map untouched.
func (d *CustomPropertyData) Set(name string, v *CustomProperty) {
	existing := d.Get(name)
	if existing != nil && existing.Equal(v) {
		return
	}
	if existing == nil {
		d.size++
	}
	d.own[name] = v
}

// Size returns the number of names with a value. A name set both here and
// in an ancestor counts once.
func (d *CustomPropertyData) Size() int {
	if d == nil {
		return 0
	}
	return d.size
}

// IsEmpty reports whether the map has no values.
func (d *CustomPropertyData) IsEmpty() bool { return d.Size() == 0 }

// Names returns all names in natural order.
func (d *CustomPropertyData) Names() []string {
	seen := make(map[string]struct{}, d.Size())
	names := make([]string, 0, d.Size())
	for data := d; data != nil; data = data.parent {
		for name := range data.own {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		}
		return 1
	})
	return names
}

// ForEach calls fn for each value in name order until fn returns false.
func (d *CustomPropertyData) ForEach(fn func(name string, v *CustomProperty) bool) {
	for _, name := range d.Names() {
		if !fn(name, d.Get(name)) {
			return
		}
	}
}

// Equal reports whether both maps hold equal values for the same names.
func (d *CustomPropertyData) Equal(o *CustomPropertyData) bool {
	if d == o {
		return true
	}
	if d.Size() != o.Size() {
		return false
	}
	equal := true
	d.ForEach(func(name string, v *CustomProperty) bool {
		equal = v.Equal(o.Get(name))
		return equal
	})
	return equal
}
