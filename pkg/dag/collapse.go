package dag

import (
	"github.com/matzehuels/craftgraph/pkg/errors"
)

// Collapse replaces the intermediate id by a terminal requiring the item it
// was crafting, severing every edge below it. Children left without parents
// are deleted, cascading downward; children still consumed elsewhere are
// kept and re-leveled.
//
// Collapse fails with NODE_NOT_FOUND or UNSUPPORTED_NODE without touching the
// graph. Any failure while severing is INCONSISTENT_GRAPH: the graph may be
// partially modified and must be restored from a snapshot.
func (g *Graph) Collapse(id NodeID) error {
	n, err := g.lookup(id)
	if err != nil {
		return err
	}
	var in *Intermediate
	switch n := n.(type) {
	case *Intermediate:
		in = n
	case *Root, *Terminal:
		return errors.New(errors.ErrCodeUnsupportedNode, "node %d is %s, only intermediates can be collapsed", id, n.Kind())
	default:
		return inconsistent("unknown node variant", id)
	}

	visiting := make(map[NodeID]bool)
	for len(g.down[id]) > 0 {
		if err := g.severEdge(id, g.down[id][0], visiting); err != nil {
			return fatal(err, "collapse node %d", id)
		}
	}
	t := &Terminal{id: id, Item: in.Item, Rate: in.Rate, Recipes: g.resolver.RecipesForResult(in.Item)}
	if err := g.replaceNode(t); err != nil {
		return fatal(err, "collapse node %d", id)
	}
	return nil
}

// severEdge removes the edge from -> to. If to is left without parents it is
// deleted along with everything only it kept alive; otherwise its depth is
// recomputed from the parents it has left.
func (g *Graph) severEdge(from, to NodeID, visiting map[NodeID]bool) error {
	if err := g.unlink(from, to); err != nil {
		return err
	}
	if len(g.up[to]) > 0 {
		return g.relevel(to)
	}
	if to == g.root {
		return inconsistent("root was linked as a child", from, to)
	}
	return g.deleteNode(to, visiting)
}

// deleteNode removes an orphaned node from every index and severs its edges
// to its own children.
func (g *Graph) deleteNode(id NodeID, visiting map[NodeID]bool) error {
	if visiting[id] {
		return inconsistent("node deleted twice, graph has a cycle", id)
	}
	visiting[id] = true
	if _, ok := g.nodes[id]; !ok {
		return inconsistent("deleting a node that does not exist", id)
	}
	if len(g.up[id]) > 0 {
		return inconsistent("deleting a node that still has parents", id)
	}
	for len(g.down[id]) > 0 {
		if err := g.severEdge(id, g.down[id][0], visiting); err != nil {
			return err
		}
	}
	return g.removeNode(id)
}
