package dag

import (
	stderrors "errors"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

func TestValidate_DetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(g *Graph)
	}{
		{"one-sided edge", func(g *Graph) { g.down[3] = append(g.down[3], 4) }},
		{"wrong depth", func(g *Graph) { g.depth[4] = 1 }},
		{"stale level count", func(g *Graph) { g.levels[2]++ }},
		{"missing root", func(g *Graph) { g.root = 99 }},
		{"orphan", func(g *Graph) {
			g.nodes[50] = &Terminal{id: 50, Item: item("Z")}
			g.depth[50] = 1
			g.levels[1]++
		}},
		{"cycle", func(g *Graph) { g.link(4, 2) }},
		{"terminal with children", func(g *Graph) {
			g.nodes[2] = &Terminal{id: 2, Item: item("A")}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t, "widget", 2)
			mustEdit(t, g.Expand(2))
			mustValidate(t, g)

			tt.corrupt(g)

			err := g.Validate()
			if !errors.IsFatal(err) {
				t.Fatalf("Validate() = %v, want INCONSISTENT_GRAPH", err)
			}
			var ie *InconsistencyError
			if !stderrors.As(err, &ie) {
				t.Errorf("Validate() = %v, want InconsistencyError cause", err)
			}
		})
	}
}

func TestCollapse_CorruptedEdgeIsFatal(t *testing.T) {
	g := newTestGraph(t, "widget", 2)
	mustEdit(t, g.Expand(2))
	g.up[4] = nil

	err := g.Collapse(2)
	if !errors.IsFatal(err) {
		t.Fatalf("Collapse() = %v, want INCONSISTENT_GRAPH", err)
	}
}

func TestDeriveDepths(t *testing.T) {
	g := newTestGraph(t, "gadget", 1)
	mustEdit(t, g.Expand(3))
	mustEdit(t, g.Merge(2, 4))

	depths, err := g.DeriveDepths()
	if err != nil {
		t.Fatal(err)
	}
	want := map[NodeID]int{1: 0, 3: 1, 2: 2}
	for id, d := range want {
		if depths[id] != d {
			t.Errorf("depth[%d] = %d, want %d", id, depths[id], d)
		}
	}
}

// TestRandomEdits applies random edit sequences and checks every invariant
// after each step. Failed edits must leave the graph untouched.
func TestRandomEdits(t *testing.T) {
	roots := []string{"widget", "gadget", "contraption", "doohickey", "kit", "twin"}
	for seed := uint64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		root := roots[rng.IntN(len(roots))]
		g := newTestGraph(t, root, 1+float64(rng.IntN(5)))

		for step := 0; step < 60; step++ {
			nodes := g.Nodes()
			pick := func() NodeID { return nodes[rng.IntN(len(nodes))].ID() }
			before := g.Clone()

			var err error
			var desc string
			switch rng.IntN(4) {
			case 0, 1:
				id := pick()
				desc = "expand " + id.String()
				err = g.Expand(id)
				if errors.Is(err, errors.ErrCodeMultipleRecipes) {
					term, _ := g.Node(id)
					recipes := term.(*Terminal).Recipes
					err = g.ExpandWith(id, recipes[rng.IntN(len(recipes))].Name)
				}
			case 2:
				id := pick()
				desc = "collapse " + id.String()
				err = g.Collapse(id)
			case 3:
				a, b := pick(), pick()
				desc = "merge " + a.String() + " " + b.String()
				err = g.Merge(a, b)
			}

			if errors.IsFatal(err) {
				t.Fatalf("seed %d step %d %s (%s): %v", seed, step, desc, root, err)
			}
			if err != nil {
				assertSame(t, before, g)
			}
			if verr := g.Validate(); verr != nil {
				t.Fatalf("seed %d step %d %s (%s): Validate() = %v", seed, step, desc, root, verr)
			}
			if g.NodeCount() > 400 {
				break
			}
		}
	}
}
