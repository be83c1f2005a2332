package resolver

import (
	"strings"

	"stylecascade/css"
	"stylecascade/style"
	"stylecascade/utils/debug"
)

// DumpOptions controls Dump and Snapshot.
type DumpOptions struct {
	// All includes values equal to the initial ones.
	All bool
}

// PropertySnapshot is one computed value. Note is "visited" for a value
// taken from the visited style and "guaranteed-invalid" for custom
// properties without a value.
type PropertySnapshot struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
	Note  string `yaml:"note,omitempty"`
}

// ElementSnapshot is a serializable copy of the computed styles of an
// element and its descendants.
type ElementSnapshot struct {
	Element    string             `yaml:"element"`
	Properties []PropertySnapshot `yaml:"properties,omitempty"`
	Children   []*ElementSnapshot `yaml:"children,omitempty"`
}

// Dump writes the computed styles of res as an indented tree, one element
// per node. Custom properties follow standard ones in natural order.
func Dump(res *Result, ctx *style.Context, opts DumpOptions) string {
	initial := ctx.InitialStyle()
	tw := debug.NewTreeWriter()
	for _, es := range res.Elements {
		tw.Line(es.Depth, "%s", describeElement(es))
		for _, p := range collectProperties(es, initial, opts) {
			if len(p.Note) > 0 {
				tw.Annotated(es.Depth+1, p.Name, p.Value, p.Note)
				continue
			}
			tw.Property(es.Depth+1, p.Name, p.Value)
		}
	}
	return tw.String()
}

// Snapshot returns the same content as Dump as a tree of values, nil when
// res is empty.
func Snapshot(res *Result, ctx *style.Context, opts DumpOptions) *ElementSnapshot {
	initial := ctx.InitialStyle()
	nodes := make(map[*ElementStyle]*ElementSnapshot, len(res.Elements))
	var root *ElementSnapshot
	for _, es := range res.Elements {
		node := &ElementSnapshot{
			Element:    describeElement(es),
			Properties: collectProperties(es, initial, opts),
		}
		nodes[es] = node
		if parent, ok := nodes[es.Parent]; ok {
			parent.Children = append(parent.Children, node)
		} else if root == nil {
			root = node
		}
	}
	return root
}

func describeElement(es *ElementStyle) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(localName(es.Element))
	if id := es.Element.SelectAttrValue("id", ""); id != "" {
		sb.WriteString(" #")
		sb.WriteString(id)
	}
	for _, c := range strings.Fields(es.Element.SelectAttrValue("class", "")) {
		sb.WriteString(" .")
		sb.WriteString(c)
	}
	sb.WriteByte('>')
	switch es.Style.InsideLink() {
	case style.InsideVisitedLink:
		sb.WriteString(" (visited link)")
	case style.InsideUnvisitedLink:
		sb.WriteString(" (link)")
	}
	return sb.String()
}

func collectProperties(es *ElementStyle, initial *style.RenderStyle, opts DumpOptions) []PropertySnapshot {
	var props []PropertySnapshot
	visited := es.Style.InsideLink() == style.InsideVisitedLink
	for id := css.FirstTopPriorityProperty; id < css.NumProperties; id++ {
		if id.IsShorthand() || id.IsDirectionAware() {
			continue
		}
		v := es.EffectiveValue(id)
		if !opts.All && v.Equal(initial.Value(id)) {
			continue
		}
		p := PropertySnapshot{Name: id.String(), Value: v.CSSText()}
		if visited && id.IsValidVisitedLinkProperty() && !v.Equal(es.Style.Value(id)) {
			p.Note = "visited"
		}
		props = append(props, p)
	}
	for _, name := range es.Style.CustomPropertyNames() {
		cp := es.Style.CustomPropertyValue(name)
		if cp == nil || (!opts.All && cp.Equal(initial.CustomPropertyValue(name))) {
			continue
		}
		if cp.IsInvalid() {
			props = append(props, PropertySnapshot{Name: name, Note: "guaranteed-invalid"})
			continue
		}
		props = append(props, PropertySnapshot{Name: name, Value: cp.Serialize()})
	}
	return props
}
