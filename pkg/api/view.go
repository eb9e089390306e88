package api

import (
	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// NodeView is the JSON form of one graph node.
type NodeView struct {
	ID       dag.NodeID   `json:"id"`
	Kind     string       `json:"kind"`
	Item     string       `json:"item"`
	Fluid    bool         `json:"fluid,omitempty"`
	Rate     float64      `json:"rate"`
	Depth    int          `json:"depth"`
	Recipe   string       `json:"recipe,omitempty"`
	Machine  string       `json:"machine,omitempty"`
	Machines float64      `json:"machines,omitempty"`
	Recipes  []string     `json:"recipes,omitempty"`
	Parents  []dag.NodeID `json:"parents"`
	Children []dag.NodeID `json:"children"`
}

// GraphView is the JSON form of a graph.
type GraphView struct {
	Session string     `json:"session"`
	Root    dag.NodeID `json:"root"`
	Levels  []int      `json:"levels"`
	Nodes   []NodeView `json:"nodes"`
}

// NewGraphView converts g for the API. Nodes are in ID order.
func NewGraphView(session string, g *dag.Graph) GraphView {
	v := GraphView{Session: session, Root: g.RootID(), Levels: g.Levels()}
	for _, n := range g.Nodes() {
		v.Nodes = append(v.Nodes, newNodeView(g, n))
	}
	return v
}

func newNodeView(g *dag.Graph, n dag.Node) NodeView {
	item, rate := dag.Output(n)
	d, _ := g.Depth(n.ID())
	nv := NodeView{
		ID:       n.ID(),
		Kind:     n.Kind().String(),
		Item:     item.Name,
		Fluid:    item.Kind == recipe.KindFluid,
		Rate:     rate,
		Depth:    d,
		Parents:  orEmpty(g.Parents(n.ID())),
		Children: orEmpty(g.Children(n.ID())),
	}
	switch n := n.(type) {
	case *dag.Root:
		nv.Recipe, nv.Machine, nv.Machines = n.Recipe.Name, n.Machine.Name, n.Machines()
	case *dag.Intermediate:
		nv.Recipe, nv.Machine, nv.Machines = n.Recipe.Name, n.Machine.Name, n.Machines()
	case *dag.Terminal:
		for _, r := range n.Recipes {
			nv.Recipes = append(nv.Recipes, r.Name)
		}
	}
	return nv
}

func orEmpty(ids []dag.NodeID) []dag.NodeID {
	if ids == nil {
		return []dag.NodeID{}
	}
	return ids
}

// RequirementView is one line of the bill of materials.
type RequirementView struct {
	Item  string  `json:"item"`
	Fluid bool    `json:"fluid,omitempty"`
	Rate  float64 `json:"rate"`
}

// SummaryView is the JSON form of [dag.Summary].
type SummaryView struct {
	Requirements []RequirementView `json:"requirements"`
	Production   []NodeView        `json:"production"`
}

func newSummaryView(g *dag.Graph) SummaryView {
	s := g.Summary()
	v := SummaryView{Requirements: []RequirementView{}, Production: []NodeView{}}
	for _, r := range s.Requirements {
		v.Requirements = append(v.Requirements, RequirementView{Item: r.Item.Name, Fluid: r.Item.Kind == recipe.KindFluid, Rate: r.Rate})
	}
	for _, p := range s.Production {
		if n, ok := g.Node(p.Node); ok {
			v.Production = append(v.Production, newNodeView(g, n))
		}
	}
	return v
}
