package recipe

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// Book is an immutable, indexed collection of recipes and machines.
// It answers the two lookups the graph core needs: which recipes produce an
// item and which machines craft a recipe. A Book is safe for concurrent reads.
type Book struct {
	recipes  map[string]*Recipe
	byResult map[Item][]*Recipe
	machines []*Machine
}

// NewBook validates recipes and machines and indexes them.
// Recipe names must be unique, crafting times and amounts positive, and every
// recipe must have at least one result. A recipe's MainProduct, if set, must
// name one of its results.
func NewBook(recipes []*Recipe, machines []*Machine) (*Book, error) {
	b := &Book{
		recipes:  make(map[string]*Recipe, len(recipes)),
		byResult: make(map[Item][]*Recipe),
	}

	for _, r := range recipes {
		if err := validateRecipe(r); err != nil {
			return nil, err
		}
		if _, dup := b.recipes[r.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate recipe %q", r.Name)
		}
		if r.Category == "" {
			r.Category = DefaultCategory
		}
		b.recipes[r.Name] = r
		seen := make(map[Item]bool, len(r.Results))
		for _, p := range r.Results {
			if seen[p.Item] {
				continue
			}
			seen[p.Item] = true
			b.byResult[p.Item] = append(b.byResult[p.Item], r)
		}
	}
	for item := range b.byResult {
		slices.SortFunc(b.byResult[item], func(x, y *Recipe) int { return cmp.Compare(x.Name, y.Name) })
	}

	names := make(map[string]bool, len(machines))
	for _, m := range machines {
		if err := errors.ValidateName("machine", m.Name); err != nil {
			return nil, err
		}
		if names[m.Name] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "duplicate machine %q", m.Name)
		}
		if m.CraftingSpeed <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "machine %q: crafting speed must be positive", m.Name)
		}
		names[m.Name] = true
		b.machines = append(b.machines, m)
	}
	// Fastest first so MadeIn's default is the best machine; ties by name.
	slices.SortStableFunc(b.machines, func(x, y *Machine) int {
		if c := cmp.Compare(y.CraftingSpeed, x.CraftingSpeed); c != 0 {
			return c
		}
		return cmp.Compare(x.Name, y.Name)
	})

	return b, nil
}

func validateRecipe(r *Recipe) error {
	if err := errors.ValidateName("recipe", r.Name); err != nil {
		return err
	}
	if r.CraftingTime <= 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "recipe %q: crafting time must be positive", r.Name)
	}
	if len(r.Results) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "recipe %q has no results", r.Name)
	}
	for _, in := range r.Ingredients {
		if err := errors.ValidateName("ingredient", in.Item.Name); err != nil {
			return errors.Context(err, "recipe %q", r.Name)
		}
		if in.Amount <= 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "recipe %q: ingredient %s amount must be positive", r.Name, in.Item)
		}
	}
	for _, p := range r.Results {
		if err := errors.ValidateName("result", p.Item.Name); err != nil {
			return errors.Context(err, "recipe %q", r.Name)
		}
		if p.Amount <= 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "recipe %q: result %s amount must be positive", r.Name, p.Item)
		}
	}
	if r.MainProduct != "" && !slices.ContainsFunc(r.Results, func(p Product) bool { return p.Item.Name == r.MainProduct }) {
		return errors.New(errors.ErrCodeInvalidFormat, "recipe %q: main product %q is not a result", r.Name, r.MainProduct)
	}
	return nil
}

// RecipesForResult returns the recipes that list item among their results,
// sorted by name. The result may be empty. The returned slice must not be modified.
func (b *Book) RecipesForResult(item Item) []*Recipe {
	return b.byResult[item]
}

// MadeIn returns the machines able to craft r, fastest first. The first
// machine is the default choice.
func (b *Book) MadeIn(r *Recipe) []*Machine {
	var out []*Machine
	for _, m := range b.machines {
		if m.Supports(r.Category) {
			out = append(out, m)
		}
	}
	return out
}

// Recipe returns the recipe with the given name.
func (b *Book) Recipe(name string) (*Recipe, bool) {
	r, ok := b.recipes[name]
	return r, ok
}

// Lookup returns the recipe with the given name or a RECIPE_NOT_FOUND error.
func (b *Book) Lookup(name string) (*Recipe, error) {
	if err := errors.ValidateName("recipe", name); err != nil {
		return nil, err
	}
	r, ok := b.recipes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeRecipeNotFound, "unknown recipe %q", name)
	}
	return r, nil
}

// Recipes returns all recipes sorted by name.
func (b *Book) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(b.recipes))
	for _, name := range slices.Sorted(maps.Keys(b.recipes)) {
		out = append(out, b.recipes[name])
	}
	return out
}

// Machines returns all machines, fastest first.
func (b *Book) Machines() []*Machine { return slices.Clone(b.machines) }

// Len returns the number of recipes in the book.
func (b *Book) Len() int { return len(b.recipes) }
