package dag

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// DefaultRate is the desired output rate, in units per second, used when
// a graph is built without one.
const DefaultRate = 2.0

// Resolver answers the recipe lookups the graph needs. [*recipe.Book]
// implements it; the graph treats both methods as pure functions.
type Resolver interface {
	// RecipesForResult returns the recipes producing item (0, 1 or many).
	RecipesForResult(item recipe.Item) []*recipe.Recipe
	// MadeIn returns the machines able to craft r; the first is the default.
	MadeIn(r *recipe.Recipe) []*recipe.Machine
}

// Edge is a directed connection from a consumer to the node supplying one of
// its ingredients.
type Edge struct {
	From NodeID // parent (consumer)
	To   NodeID // child (ingredient supplier)
}

// Graph is the production-dependency DAG of one planning session.
//
// The graph keeps five indices in lock-step: the node table, the down- and
// up-edge lists, each node's depth and the per-depth node counts. They are
// only changed through the unexported primitives in this file, so every
// exported operation leaves them consistent or reports INCONSISTENT_GRAPH.
//
// The zero value is not usable - use [New] to build a graph.
// Graph is not safe for concurrent use; callers serialize all mutations.
type Graph struct {
	resolver Resolver
	ids      *IDAllocator
	root     NodeID

	nodes  map[NodeID]Node
	down   map[NodeID][]NodeID // parent -> children, in ingredient order
	up     map[NodeID][]NodeID // child -> parents
	depth  map[NodeID]int
	levels []int // levels[d] = number of nodes at depth d
}

// Option configures graph construction.
type Option func(*Graph)

// WithAllocator makes the graph draw node IDs from a.
// Tests use it to control ID sequences; sessions use it to share one
// allocator across several graphs.
func WithAllocator(a *IDAllocator) Option {
	return func(g *Graph) { g.ids = a }
}

func newGraph(res Resolver, opts ...Option) *Graph {
	g := &Graph{
		resolver: res,
		nodes:    make(map[NodeID]Node),
		down:     make(map[NodeID][]NodeID),
		up:       make(map[NodeID][]NodeID),
		depth:    make(map[NodeID]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.ids == nil {
		g.ids = &IDAllocator{}
	}
	return g
}

// =============================================================================
// Read API
// =============================================================================

// Resolver returns the lookups the graph was built with.
func (g *Graph) Resolver() Resolver { return g.resolver }

// RootID returns the ID of the root node.
func (g *Graph) RootID() NodeID { return g.root }

// Root returns the root node.
func (g *Graph) Root() *Root {
	r, _ := g.nodes[g.root].(*Root)
	return r
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in ascending ID order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, id := range g.sortedIDs() {
		out = append(out, g.nodes[id])
	}
	return out
}

// Children returns the IDs of the nodes supplying id's ingredients.
// The returned slice must not be modified.
func (g *Graph) Children(id NodeID) []NodeID { return g.down[id] }

// Parents returns the IDs of the nodes consuming id's output.
// The returned slice must not be modified.
func (g *Graph) Parents(id NodeID) []NodeID { return g.up[id] }

// Depth returns the node's longest-path distance from the root.
func (g *Graph) Depth(id NodeID) (int, bool) {
	d, ok := g.depth[id]
	return d, ok
}

// Levels returns a copy of the per-depth node counts.
func (g *Graph) Levels() []int { return slices.Clone(g.levels) }

// MaxDepth returns the deepest occupied depth.
func (g *Graph) MaxDepth() int { return len(g.levels) - 1 }

// NodesAtDepth returns the nodes at depth d in ascending ID order.
func (g *Graph) NodesAtDepth(d int) []Node {
	var out []Node
	for _, id := range g.sortedIDs() {
		if g.depth[id] == d {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, cs := range g.down {
		n += len(cs)
	}
	return n
}

// Edges returns all edges ordered by parent ID, then child order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range slices.Sorted(maps.Keys(g.down)) {
		for _, to := range g.down[from] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

// Clone returns an independent copy of g for use as a snapshot. Node values
// are shared since they are never modified in place. The clone shares g's
// resolver and ID allocator, so IDs stay unique across a restore.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		resolver: g.resolver,
		ids:      g.ids,
		root:     g.root,
		nodes:    maps.Clone(g.nodes),
		down:     make(map[NodeID][]NodeID, len(g.down)),
		up:       make(map[NodeID][]NodeID, len(g.up)),
		depth:    maps.Clone(g.depth),
		levels:   slices.Clone(g.levels),
	}
	for id, cs := range g.down {
		c.down[id] = slices.Clone(cs)
	}
	for id, ps := range g.up {
		c.up[id] = slices.Clone(ps)
	}
	return c
}

func (g *Graph) sortedIDs() []NodeID {
	return slices.SortedFunc(maps.Keys(g.nodes), cmp.Compare[NodeID])
}

func (g *Graph) lookup(id NodeID) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %d not found", id)
	}
	return n, nil
}

// =============================================================================
// Index primitives
// =============================================================================

// addNode inserts a new node at depth d.
func (g *Graph) addNode(n Node, d int) {
	g.nodes[n.ID()] = n
	g.depth[n.ID()] = d
	g.countLevel(d, +1)
}

// replaceNode stores a new value for an existing node, keeping its edges and depth.
func (g *Graph) replaceNode(n Node) error {
	if _, ok := g.nodes[n.ID()]; !ok {
		return inconsistent("replacing a node that does not exist", n.ID())
	}
	g.nodes[n.ID()] = n
	return nil
}

// removeNode deletes a node whose edges have already been unlinked.
func (g *Graph) removeNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return inconsistent("removing a node that does not exist", id)
	}
	if len(g.down[id]) > 0 || len(g.up[id]) > 0 {
		return inconsistent("removing a node that still has edges", id)
	}
	d, ok := g.depth[id]
	if !ok {
		return inconsistent("node has no depth", id)
	}
	delete(g.nodes, id)
	delete(g.down, id)
	delete(g.up, id)
	delete(g.depth, id)
	return g.countLevelChecked(d, -1, id)
}

// link records the edge from -> to in both directions.
func (g *Graph) link(from, to NodeID) {
	g.down[from] = append(g.down[from], to)
	g.up[to] = append(g.up[to], from)
}

// unlink removes one edge from -> to from both directions.
func (g *Graph) unlink(from, to NodeID) error {
	i := slices.Index(g.down[from], to)
	j := slices.Index(g.up[to], from)
	switch {
	case i < 0 && j < 0:
		return errors.New(errors.ErrCodeNoEdge, "no edge %d -> %d", from, to)
	case i < 0 || j < 0:
		return errors.Wrap(errors.ErrCodeInconsistentGraph,
			&InconsistencyError{Reason: "edge recorded in one direction only", Nodes: []NodeID{from, to}},
			"edge %d -> %d recorded in one direction only", from, to)
	}
	g.down[from] = slices.Delete(g.down[from], i, i+1)
	g.up[to] = slices.Delete(g.up[to], j, j+1)
	if len(g.down[from]) == 0 {
		delete(g.down, from)
	}
	if len(g.up[to]) == 0 {
		delete(g.up, to)
	}
	return nil
}

// repoint moves parent's edge to old over to repl, keeping child order.
// If parent already has repl as a child, the edge to old is dropped instead.
func (g *Graph) repoint(parent, old, repl NodeID) error {
	cs := g.down[parent]
	i := slices.Index(cs, old)
	j := slices.Index(g.up[old], parent)
	if i < 0 || j < 0 {
		return inconsistent("parent and child disagree on edge", parent, old)
	}
	if slices.Contains(cs, repl) {
		g.down[parent] = slices.Delete(cs, i, i+1)
	} else {
		cs[i] = repl
		g.up[repl] = append(g.up[repl], parent)
	}
	g.up[old] = slices.Delete(g.up[old], j, j+1)
	if len(g.up[old]) == 0 {
		delete(g.up, old)
	}
	return nil
}

// setDepth moves a node to depth d, keeping level counts in step.
func (g *Graph) setDepth(id NodeID, d int) error {
	old, ok := g.depth[id]
	if !ok {
		return inconsistent("node has no depth", id)
	}
	if old == d {
		return nil
	}
	if err := g.countLevelChecked(old, -1, id); err != nil {
		return err
	}
	g.depth[id] = d
	g.countLevel(d, +1)
	return nil
}

func (g *Graph) countLevel(d, delta int) {
	for len(g.levels) <= d {
		g.levels = append(g.levels, 0)
	}
	g.levels[d] += delta
}

func (g *Graph) countLevelChecked(d, delta int, id NodeID) error {
	if d >= len(g.levels) || g.levels[d]+delta < 0 {
		return inconsistent("level count would become negative", id)
	}
	g.levels[d] += delta
	for len(g.levels) > 0 && g.levels[len(g.levels)-1] == 0 {
		g.levels = g.levels[:len(g.levels)-1]
	}
	return nil
}

// parentDepth returns the depth id must have given its current parents.
func (g *Graph) parentDepth(id NodeID) (int, error) {
	if id == g.root {
		return 0, nil
	}
	parents := g.up[id]
	if len(parents) == 0 {
		return 0, inconsistent("non-root node has no parents", id)
	}
	d := -1
	for _, p := range parents {
		pd, ok := g.depth[p]
		if !ok {
			return 0, inconsistent("parent has no depth", p, id)
		}
		d = max(d, pd)
	}
	return d + 1, nil
}

// relevel recomputes id's depth from its parents and propagates any change
// to its descendants. Reaching a node already being releveled further up
// the same path means the edges form a cycle.
func (g *Graph) relevel(id NodeID) error {
	return g.relevelPath(id, make(map[NodeID]bool))
}

func (g *Graph) relevelPath(id NodeID, path map[NodeID]bool) error {
	if path[id] {
		return inconsistent("depth change loops back, graph has a cycle", id)
	}
	d, err := g.parentDepth(id)
	if err != nil {
		return err
	}
	if d == g.depth[id] {
		return nil
	}
	if err := g.setDepth(id, d); err != nil {
		return err
	}
	path[id] = true
	defer delete(path, id)
	for _, c := range g.down[id] {
		if err := g.relevelPath(c, path); err != nil {
			return err
		}
	}
	return nil
}
