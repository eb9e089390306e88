package dag

import (
	"cmp"
	"slices"

	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// Requirement is a total rate of one item the graph still needs from outside.
type Requirement struct {
	Item  recipe.Item
	Rate  float64
	Nodes []NodeID // terminals requiring the item
}

// Production is one crafting step of the plan.
type Production struct {
	Node     NodeID
	Depth    int
	Recipe   *recipe.Recipe
	Item     recipe.Item
	Rate     float64
	Machine  *recipe.Machine
	Machines float64
}

// Summary is the bill of materials of a graph.
type Summary struct {
	Requirements []Requirement // by item name, then kind
	Production   []Production  // by depth, then node ID
}

// Summary totals the terminal requirements per item and lists every crafting
// step with its machine count.
func (g *Graph) Summary() Summary {
	var s Summary
	byItem := make(map[recipe.Item]int)
	for _, n := range g.Nodes() {
		switch n := n.(type) {
		case *Terminal:
			i, ok := byItem[n.Item]
			if !ok {
				i = len(s.Requirements)
				byItem[n.Item] = i
				s.Requirements = append(s.Requirements, Requirement{Item: n.Item})
			}
			s.Requirements[i].Rate += n.Rate
			s.Requirements[i].Nodes = append(s.Requirements[i].Nodes, n.ID())
		case *Intermediate:
			s.Production = append(s.Production, Production{
				Node: n.ID(), Depth: g.depth[n.ID()], Recipe: n.Recipe, Item: n.Item,
				Rate: n.Rate, Machine: n.Machine, Machines: n.Machines(),
			})
		case *Root:
			s.Production = append(s.Production, Production{
				Node: n.ID(), Recipe: n.Recipe, Item: n.Recipe.PrimaryOutput().Item,
				Rate: n.Rate, Machine: n.Machine, Machines: n.Machines(),
			})
		}
	}
	slices.SortFunc(s.Requirements, func(a, b Requirement) int {
		if c := cmp.Compare(a.Item.Name, b.Item.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.Kind, b.Item.Kind)
	})
	slices.SortStableFunc(s.Production, func(a, b Production) int {
		if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a.Node, b.Node)
	})
	return s
}
