package dag

import (
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// New builds the initial two-level graph for producing rate units/s of the
// root recipe's primary output: the root at depth 0 and one terminal per
// ingredient at depth 1. A zero rate means [DefaultRate].
//
// The root is crafted in the first machine res offers. Each ingredient's
// required rate is
//
//	machineCount × ingredientAmount / craftingTime
//
// where machineCount is [recipe.MachineCount] for rate on that machine.
func New(res Resolver, root *recipe.Recipe, rate float64, opts ...Option) (*Graph, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root recipe is required")
	}
	if rate == 0 {
		rate = DefaultRate
	}
	if err := errors.ValidateRate(rate); err != nil {
		return nil, err
	}
	if len(root.Ingredients) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root recipe %q has no ingredients", root.Name)
	}
	machines := res.MadeIn(root)
	if len(machines) == 0 {
		return nil, errors.New(errors.ErrCodeNoMachines, "no machine can craft %q (category %s)", root.Name, root.Category)
	}
	machine := machines[0]

	g := newGraph(res, opts...)
	r := &Root{id: g.ids.Next(), Recipe: root, Rate: rate, Machine: machine}
	g.root = r.id
	g.addNode(r, 0)

	count := recipe.MachineCount(root, rate, machine)
	for _, in := range root.Ingredients {
		need := count * in.Amount / root.CraftingTime
		g.addTerminal(r.id, in.Item, need, 1)
	}
	return g, nil
}

// addTerminal creates a terminal child of parent at depth d.
func (g *Graph) addTerminal(parent NodeID, item recipe.Item, rate float64, d int) *Terminal {
	t := &Terminal{
		id:      g.ids.Next(),
		Item:    item,
		Rate:    rate,
		Recipes: g.resolver.RecipesForResult(item),
	}
	g.addNode(t, d)
	g.link(parent, t.id)
	return t
}
