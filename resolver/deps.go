package resolver

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dominikbraun/graph"
	"github.com/maruel/natural"

	"stylecascade/css"
)

const fallbackAttribute = "fallback"

// DependencyGraph links every custom property declared in a set of
// stylesheets to the custom properties its values refer to. It ignores
// selectors, so it over-approximates what any one element sees.
type DependencyGraph struct {
	g graph.Graph[string, string]
}

// BuildDependencyGraph collects the var() references of custom property
// declarations of sheets, @media blocks included.
func BuildDependencyGraph(sheets ...*css.Stylesheet) (*DependencyGraph, error) {
	dg := &DependencyGraph{g: graph.New(graph.StringHash, graph.Directed())}
	for _, sheet := range sheets {
		for _, item := range sheet.Items {
			switch {
			case item.Rule != nil:
				if err := dg.addRule(item.Rule); err != nil {
					return nil, err
				}
			case item.MediaBlock != nil:
				for i := range item.MediaBlock.Rules {
					if err := dg.addRule(&item.MediaBlock.Rules[i]); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return dg, nil
}

func (dg *DependencyGraph) addRule(rule *css.Rule) error {
	for _, d := range rule.Declarations {
		if d.Property != css.PropertyCustom {
			continue
		}
		if err := dg.addVertex(d.Name); err != nil {
			return err
		}
		v, ok := d.Value.(*css.CustomPropertyValue)
		if !ok {
			continue
		}
		ref, ok := v.VariableReference()
		if !ok {
			continue
		}
		for _, r := range css.ReferencedVariables(ref.Data().Tokens()) {
			if err := dg.addVertex(r.Name); err != nil {
				return err
			}
			err := dg.g.AddEdge(d.Name, r.Name, graph.EdgeAttribute(fallbackAttribute, fmt.Sprint(r.InFallback)))
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return fmt.Errorf("unable to add reference %s -> %s: %w", d.Name, r.Name, err)
			}
		}
	}
	return nil
}

func (dg *DependencyGraph) addVertex(name string) error {
	if err := dg.g.AddVertex(name); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("unable to add %s: %w", name, err)
	}
	return nil
}

// Reference is an edge of the graph.
type Reference struct {
	From, To string
	// InFallback is set when To is only referenced from a fallback.
	InFallback bool
}

// Names returns every property in the graph in natural order.
func (dg *DependencyGraph) Names() []string {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sortNatural(names)
	return names
}

// References returns what name refers to, in natural order of targets.
func (dg *DependencyGraph) References(name string) []Reference {
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	refs := make([]Reference, 0, len(adj[name]))
	for target, edge := range adj[name] {
		refs = append(refs, Reference{
			From:       name,
			To:         target,
			InFallback: edge.Properties.Attributes[fallbackAttribute] == "true",
		})
	}
	slices.SortFunc(refs, func(a, b Reference) int { return compareNatural(a.To, b.To) })
	return refs
}

// Cycles returns the groups of properties referring to each other,
// directly or through others. Members of a cycle are invalid at computed
// value time wherever all of them are declared on the same element.
func (dg *DependencyGraph) Cycles() ([][]string, error) {
	components, err := graph.StronglyConnectedComponents(dg.g)
	if err != nil {
		return nil, fmt.Errorf("unable to find cycles: %w", err)
	}
	adj, err := dg.g.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("unable to find cycles: %w", err)
	}

	var cycles [][]string
	for _, c := range components {
		if len(c) == 1 {
			if _, self := adj[c[0]][c[0]]; !self {
				continue
			}
		}
		sortNatural(c)
		cycles = append(cycles, c)
	}
	slices.SortFunc(cycles, func(a, b []string) int { return compareNatural(a[0], b[0]) })
	return cycles, nil
}

// ResolutionOrder returns the properties with everything a property refers
// to before it. It fails when the graph has cycles.
func (dg *DependencyGraph) ResolutionOrder() ([]string, error) {
	order, err := graph.StableTopologicalSort(dg.g, natural.Less)
	if err != nil {
		return nil, fmt.Errorf("unable to order properties: %w", err)
	}
	slices.Reverse(order)
	return order, nil
}

func compareNatural(a, b string) int {
	switch {
	case a == b:
		return 0
	case natural.Less(a, b):
		return -1
	}
	return 1
}

func sortNatural(names []string) {
	slices.SortFunc(names, compareNatural)
}
