// Package recipe models the crafting data a production plan is computed from:
// items, recipes, the machines that craft them, and the [Book] that indexes
// them.
//
// The graph core in [dag] never owns recipe data. It asks a [Book] (through
// its Resolver interface) which recipes produce an item and which machines can
// craft a recipe, and uses [MachineCount] to size production.
//
// # Loading
//
// Books are read from TOML or YAML files with [Load]. Files are checked
// against their schema with go-playground/validator before being indexed, and
// [NewBook] then enforces the semantic rules (unique names, positive amounts,
// a main product that is actually produced).
//
//	book, err := recipe.Load("factorio.toml")
//	if err != nil {
//	    return err
//	}
//	gear, _ := book.Recipe("iron-gear-wheel")
//	machines := book.MadeIn(gear) // fastest first
//
// A [Watcher] keeps the latest valid version of a book file and reloads it
// when the file changes.
//
// [dag]: github.com/matzehuels/craftgraph/pkg/dag
package recipe
