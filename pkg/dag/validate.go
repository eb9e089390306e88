package dag

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// InconsistencyError describes a violated structural invariant. It is always
// carried as the cause of an INCONSISTENT_GRAPH error.
type InconsistencyError struct {
	Reason string
	Nodes  []NodeID
}

func (e *InconsistencyError) Error() string {
	if len(e.Nodes) == 0 {
		return e.Reason
	}
	ids := make([]string, len(e.Nodes))
	for i, id := range e.Nodes {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s (nodes %s)", e.Reason, strings.Join(ids, ", "))
}

func inconsistent(reason string, ids ...NodeID) error {
	return errors.Wrap(errors.ErrCodeInconsistentGraph, &InconsistencyError{Reason: reason, Nodes: ids}, "graph is inconsistent")
}

// fatal adds context to an error raised while the graph was being mutated.
// Errors that are not already INCONSISTENT_GRAPH become so, since the graph
// may be half-modified.
func fatal(err error, format string, args ...any) error {
	if errors.IsFatal(err) {
		return errors.Context(err, format, args...)
	}
	return errors.Wrap(errors.ErrCodeInconsistentGraph, err, format, args...)
}

// Validate checks every structural invariant of the graph and returns the
// first violation found as INCONSISTENT_GRAPH, or nil.
//
// It verifies that:
//
//  1. There is exactly one root, at depth 0, without parents
//  2. Every edge is recorded in both directions and joins existing nodes
//  3. Terminals have no children; other nodes have one per ingredient
//  4. Every other node has a parent and sits one below its deepest parent
//  5. The per-depth counts match the depth map
//  6. The graph is acyclic
//
// Validate runs in O(N+E) and is meant for tests and strict-mode editing.
func (g *Graph) Validate() error {
	checks := []func() error{
		g.validateRoot,
		g.validateEdges,
		g.validateChildren,
		g.detectCycles,
		g.validateDepths,
		g.validateLevels,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateRoot() error {
	n, ok := g.nodes[g.root]
	if !ok {
		return inconsistent("root does not exist", g.root)
	}
	if _, ok := n.(*Root); !ok {
		return inconsistent("root node is not a root", g.root)
	}
	if len(g.up[g.root]) > 0 {
		return inconsistent("root has parents", g.root)
	}
	for _, id := range g.sortedIDs() {
		if _, ok := g.nodes[id].(*Root); ok && id != g.root {
			return inconsistent("second root", g.root, id)
		}
	}
	return nil
}

func (g *Graph) validateEdges() error {
	count := make(map[Edge]int)
	for from, cs := range g.down {
		for _, to := range cs {
			count[Edge{from, to}]++
		}
	}
	for to, ps := range g.up {
		for _, from := range ps {
			count[Edge{from, to}]--
		}
	}
	for _, id := range g.sortedIDs() {
		for _, c := range g.down[id] {
			if count[Edge{id, c}] != 0 {
				return inconsistent("edge recorded in one direction only", id, c)
			}
			if _, ok := g.nodes[c]; !ok {
				return inconsistent("edge points to missing node", id, c)
			}
		}
		for _, p := range g.up[id] {
			if count[Edge{p, id}] != 0 {
				return inconsistent("edge recorded in one direction only", p, id)
			}
		}
		if dup := duplicate(g.down[id]); dup != 0 {
			return inconsistent("child listed twice", id, dup)
		}
	}
	for e, n := range count {
		if n != 0 {
			return inconsistent("edge recorded in one direction only", e.From, e.To)
		}
		if _, ok := g.nodes[e.From]; !ok {
			return inconsistent("edge from missing node", e.From, e.To)
		}
	}
	return nil
}

func (g *Graph) validateChildren() error {
	for _, id := range g.sortedIDs() {
		want := 0
		switch n := g.nodes[id].(type) {
		case *Root:
			want = len(n.Recipe.Ingredients)
		case *Intermediate:
			want = len(n.Recipe.Ingredients)
		case *Terminal:
		default:
			return inconsistent("unknown node variant", id)
		}
		if got := len(g.down[id]); got != want {
			return inconsistent(fmt.Sprintf("%s has %d children, want %d", g.nodes[id].Kind(), got, want), id)
		}
		if id != g.root && len(g.up[id]) == 0 {
			return inconsistent("node has no parents", id)
		}
	}
	return nil
}

func (g *Graph) validateDepths() error {
	derived, err := g.DeriveDepths()
	if err != nil {
		return err
	}
	for _, id := range g.sortedIDs() {
		d, ok := g.depth[id]
		if !ok {
			return inconsistent("node has no depth", id)
		}
		if d != derived[id] {
			return inconsistent(fmt.Sprintf("depth is %d, want %d", d, derived[id]), id)
		}
	}
	if len(g.depth) != len(g.nodes) {
		return inconsistent("depth recorded for missing node")
	}
	return nil
}

func (g *Graph) validateLevels() error {
	var want []int
	for _, d := range g.depth {
		for len(want) <= d {
			want = append(want, 0)
		}
		want[d]++
	}
	if !slices.Equal(want, g.levels) {
		return inconsistent(fmt.Sprintf("level counts are %v, want %v", g.levels, want))
	}
	return nil
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int, len(g.nodes))
	var cycle []NodeID

	var dfs func(id NodeID) bool
	dfs = func(id NodeID) bool {
		color[id] = gray
		for _, child := range g.down[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				cycle = []NodeID{id, child}
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.sortedIDs() {
		if color[id] == white && dfs(id) {
			return inconsistent("graph contains a cycle", cycle...)
		}
	}
	return nil
}

// DeriveDepths recomputes every node's depth from the edges alone: the
// length of the longest path from the root. Nodes unreachable from the root
// are absent from the result.
func (g *Graph) DeriveDepths() (map[NodeID]int, error) {
	indeg := make(map[NodeID]int, len(g.nodes))
	for _, cs := range g.down {
		for _, c := range cs {
			indeg[c]++
		}
	}
	depth := map[NodeID]int{g.root: 0}
	queue := []NodeID{g.root}
	if indeg[g.root] > 0 {
		return nil, inconsistent("root has parents", g.root)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range g.down[id] {
			depth[c] = max(depth[c], depth[id]+1)
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	for _, id := range g.sortedIDs() {
		if indeg[id] > 0 {
			return nil, inconsistent("node is reachable only through a cycle or an orphan", id)
		}
	}
	return depth, nil
}

func duplicate(ids []NodeID) NodeID {
	for i, id := range ids {
		if slices.Contains(ids[i+1:], id) {
			return id
		}
	}
	return 0
}
