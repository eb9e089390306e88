package recipe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// DefaultCategory is assigned to recipes that do not name a crafting category.
const DefaultCategory = "crafting"

// ItemKind distinguishes solid items from fluids. Two items with the same
// name but different kinds are different items.
type ItemKind int

const (
	// KindItem is a solid item moved by belts and inserters.
	KindItem ItemKind = iota
	// KindFluid is a fluid moved through pipes.
	KindFluid
)

// String returns "item" or "fluid".
func (k ItemKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindFluid:
		return "fluid"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// ParseItemKind parses "item" or "fluid" (case-insensitive).
// An empty string parses as KindItem.
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "item":
		return KindItem, nil
	case "fluid":
		return KindFluid, nil
	default:
		return KindItem, errors.New(errors.ErrCodeInvalidInput, "unknown item kind %q (must be item or fluid)", s)
	}
}

// Item identifies an item or fluid. Item is comparable and is used as the
// merge key of graph nodes: two requirements for equal Items are the same thing.
type Item struct {
	Name string
	Kind ItemKind
}

// String returns the item name, suffixed with "(fluid)" for fluids.
func (i Item) String() string {
	if i.Kind == KindFluid {
		return i.Name + " (fluid)"
	}
	return i.Name
}

// Ingredient is an item consumed by one craft of a recipe.
type Ingredient struct {
	Item   Item
	Amount float64
}

// Product is an item produced by one craft of a recipe.
type Product struct {
	Item   Item
	Amount float64
}

// Recipe converts ingredients into results in CraftingTime seconds on a
// machine of crafting speed 1.
type Recipe struct {
	Name         string
	Category     string
	CraftingTime float64
	Ingredients  []Ingredient
	Results      []Product

	// MainProduct names the result used as the recipe's primary output.
	// When empty the first result is primary.
	MainProduct string
}

// PrimaryOutput returns the result that identifies what this recipe makes.
func (r *Recipe) PrimaryOutput() Product {
	if r.MainProduct != "" {
		for _, p := range r.Results {
			if p.Item.Name == r.MainProduct {
				return p
			}
		}
	}
	if len(r.Results) == 0 {
		return Product{}
	}
	return r.Results[0]
}

// Produces reports whether item is among the recipe's results.
func (r *Recipe) Produces(item Item) bool {
	return slices.ContainsFunc(r.Results, func(p Product) bool { return p.Item == item })
}

// String returns the recipe name.
func (r *Recipe) String() string { return r.Name }

// Machine is an assembler, furnace or plant able to craft recipes of its categories.
type Machine struct {
	Name          string
	CraftingSpeed float64
	Categories    []string
}

// Supports reports whether the machine crafts recipes of the given category.
func (m *Machine) Supports(category string) bool {
	if category == "" {
		category = DefaultCategory
	}
	return slices.Contains(m.Categories, category)
}

// String returns the machine name.
func (m *Machine) String() string { return m.Name }

// MachineCount returns how many machines are needed to craft rate units per
// second of the recipe's primary output:
//
//	craftingTime × rate / resultAmount / craftingSpeed
//
// A nil machine counts as crafting speed 1.
func MachineCount(r *Recipe, rate float64, m *Machine) float64 {
	speed := 1.0
	if m != nil && m.CraftingSpeed > 0 {
		speed = m.CraftingSpeed
	}
	amount := r.PrimaryOutput().Amount
	if amount <= 0 {
		amount = 1
	}
	return r.CraftingTime * rate / amount / speed
}
