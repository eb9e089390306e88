package dag

import (
	"strings"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// Expand replaces the terminal id by an intermediate crafting its item with
// the only recipe that produces it, and adds one terminal child per
// ingredient of that recipe one level below. Each child requires the
// terminal's rate times the ingredient amount.
//
// Expand fails with NODE_NOT_FOUND, UNSUPPORTED_NODE (id is not a terminal),
// NO_RECIPES, MULTIPLE_RECIPES or NO_MACHINES, in which case the graph is
// unchanged. The user resolves MULTIPLE_RECIPES by choosing a recipe with
// [Graph.ExpandWith].
func (g *Graph) Expand(id NodeID) error {
	t, err := g.terminal(id)
	if err != nil {
		return err
	}
	switch len(t.Recipes) {
	case 0:
		return errors.New(errors.ErrCodeNoRecipes, "no recipe produces %s", t.Item)
	case 1:
		return g.expand(t, 0)
	default:
		names := make([]string, len(t.Recipes))
		for i, r := range t.Recipes {
			names[i] = r.Name
		}
		return errors.New(errors.ErrCodeMultipleRecipes, "%d recipes produce %s: %s", len(names), t.Item, strings.Join(names, ", "))
	}
}

// ExpandWith is Expand with an explicit choice among the terminal's recipes.
func (g *Graph) ExpandWith(id NodeID, recipeName string) error {
	t, err := g.terminal(id)
	if err != nil {
		return err
	}
	for i, r := range t.Recipes {
		if r.Name == recipeName {
			return g.expand(t, i)
		}
	}
	return errors.New(errors.ErrCodeNoRecipes, "recipe %q does not produce %s", recipeName, t.Item)
}

func (g *Graph) terminal(id NodeID) (*Terminal, error) {
	n, err := g.lookup(id)
	if err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case *Terminal:
		return n, nil
	case *Root, *Intermediate:
		return nil, errors.New(errors.ErrCodeUnsupportedNode, "node %d is %s, only terminals can be expanded", id, n.Kind())
	default:
		return nil, inconsistent("unknown node variant", id)
	}
}

func (g *Graph) expand(t *Terminal, choice int) error {
	r := t.Recipes[choice]
	if len(r.Ingredients) == 0 {
		return errors.New(errors.ErrCodeUnsupported, "recipe %q has no ingredients to expand into", r.Name)
	}
	machines := g.resolver.MadeIn(r)
	if len(machines) == 0 {
		return errors.New(errors.ErrCodeNoMachines, "no machine can craft %q (category %s)", r.Name, r.Category)
	}

	in := &Intermediate{id: t.id, Recipe: r, Item: t.Item, Rate: t.Rate, Machine: machines[0]}
	if err := g.replaceNode(in); err != nil {
		return err
	}
	d := g.depth[t.id] + 1
	for _, ing := range r.Ingredients {
		g.addTerminal(t.id, ing.Item, t.Rate*ing.Amount, d)
	}
	return nil
}
