package dag

import (
	"slices"
	"testing"

	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

func item(name string) recipe.Item { return recipe.Item{Name: name} }

func rec(name string, time float64, out string, outAmount float64, ins ...any) *recipe.Recipe {
	r := &recipe.Recipe{
		Name:         name,
		CraftingTime: time,
		Results:      []recipe.Product{{Item: item(out), Amount: outAmount}},
	}
	for i := 0; i+1 < len(ins); i += 2 {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Item: item(ins[i].(string)), Amount: float64(ins[i+1].(int))})
	}
	return r
}

// testBook returns a small book covering every expand outcome:
//
//	widget      <- A×2, B×1          A has one recipe, B none
//	make-a      <- C×1, D×2 (→ A×2)
//	make-d      <- C×3
//	gadget      <- A×1, X×1          X needs A again
//	contraption <- E, F, G, B        E two recipes, F no machine, G no ingredients
//	doohickey   <- P, Q              P has two recipes with different ingredients
//	kit         <- K                 K is refined from itself
//	twin        <- A, A
//	jig         <- J                 J is a by-product of split (→ H, J)
func testBook(t testing.TB) *recipe.Book {
	t.Helper()
	smelt := rec("smelt-f", 1, "F", 1, "B", 1)
	smelt.Category = "smelting"
	split := rec("split", 1, "H", 1, "C", 1)
	split.Results = append(split.Results, recipe.Product{Item: item("J"), Amount: 1})
	recipes := []*recipe.Recipe{
		rec("widget", 1, "widget", 1, "A", 2, "B", 1),
		rec("make-a", 2, "A", 2, "C", 1, "D", 2),
		rec("make-d", 1, "D", 1, "C", 3),
		rec("gadget", 1, "gadget", 1, "A", 1, "X", 1),
		rec("make-x", 1, "X", 1, "A", 1),
		rec("contraption", 1, "contraption", 1, "E", 1, "F", 1, "G", 1, "B", 1),
		rec("e-fast", 1, "E", 1, "B", 1),
		rec("e-slow", 2, "E", 1, "B", 1),
		smelt,
		rec("mine-g", 1, "G", 1),
		rec("doohickey", 1, "doohickey", 1, "P", 1, "Q", 1),
		rec("p-one", 1, "P", 1, "C", 1),
		rec("p-two", 1, "P", 1, "D", 1),
		rec("make-q", 1, "Q", 1, "P", 1),
		rec("kit", 1, "kit", 1, "K", 1),
		rec("refine-k", 1, "K", 2, "K", 1),
		rec("twin", 1, "twin", 1, "A", 1, "A", 1),
		rec("jig", 1, "jig", 1, "J", 1),
		split,
	}
	machines := []*recipe.Machine{{Name: "assembler", CraftingSpeed: 1, Categories: []string{"crafting"}}}
	b, err := recipe.NewBook(recipes, machines)
	if err != nil {
		t.Fatalf("NewBook() error = %v", err)
	}
	return b
}

func newTestGraph(t testing.TB, root string, rate float64) *Graph {
	t.Helper()
	b := testBook(t)
	r, ok := b.Recipe(root)
	if !ok {
		t.Fatalf("no recipe %q", root)
	}
	g, err := New(b, r, rate, WithAllocator(NewIDAllocator(1)))
	if err != nil {
		t.Fatalf("New(%s) error = %v", root, err)
	}
	return g
}

func mustEdit(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
}

func mustValidate(t testing.TB, g *Graph) {
	t.Helper()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func wantCode(t testing.TB, err error, code errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", code)
	}
	if !errors.Is(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
	if code != errors.ErrCodeInconsistentGraph && errors.IsFatal(err) {
		t.Fatalf("error = %v is fatal, want only %s", err, code)
	}
}

func terminalAt(t testing.TB, g *Graph, id NodeID) *Terminal {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %d missing", id)
	}
	term, ok := n.(*Terminal)
	if !ok {
		t.Fatalf("node %d is %s, want terminal", id, n.Kind())
	}
	return term
}

func intermediateAt(t testing.TB, g *Graph, id NodeID) *Intermediate {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %d missing", id)
	}
	in, ok := n.(*Intermediate)
	if !ok {
		t.Fatalf("node %d is %s, want intermediate", id, n.Kind())
	}
	return in
}

// assertSame fails unless got has exactly the nodes, edges and depths of want.
func assertSame(t testing.TB, want, got *Graph) {
	t.Helper()
	if !slices.Equal(want.Nodes(), got.Nodes()) {
		t.Errorf("Nodes() changed: %v -> %v", want.Nodes(), got.Nodes())
	}
	if !slices.Equal(want.Edges(), got.Edges()) {
		t.Errorf("Edges() changed: %v -> %v", want.Edges(), got.Edges())
	}
	if !slices.Equal(want.Levels(), got.Levels()) {
		t.Errorf("Levels() changed: %v -> %v", want.Levels(), got.Levels())
	}
	for _, n := range want.Nodes() {
		wd, _ := want.Depth(n.ID())
		gd, _ := got.Depth(n.ID())
		if wd != gd {
			t.Errorf("Depth(%d) changed: %d -> %d", n.ID(), wd, gd)
		}
		if !slices.Equal(want.Parents(n.ID()), got.Parents(n.ID())) {
			t.Errorf("Parents(%d) changed: %v -> %v", n.ID(), want.Parents(n.ID()), got.Parents(n.ID()))
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
