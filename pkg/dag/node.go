package dag

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// NodeID identifies a node for the lifetime of a graph session.
// IDs are never reassigned after the node is deleted.
type NodeID uint64

// String returns the decimal form of the ID.
func (id NodeID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ParseNodeID parses the decimal form produced by [NodeID.String].
func ParseNodeID(s string) (NodeID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse node id %q: %w", s, err)
	}
	return NodeID(v), nil
}

// IDAllocator issues unique, monotonically increasing node IDs starting at 1.
// The zero value is ready to use. IDAllocator is not safe for concurrent use;
// graphs and their clones share one allocator so restored snapshots never
// reuse an ID.
type IDAllocator struct {
	next NodeID
}

// NewIDAllocator returns an allocator whose first ID is start (1 if start is 0).
func NewIDAllocator(start NodeID) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() NodeID {
	if a.next == 0 {
		a.next = 1
	}
	id := a.next
	a.next++
	return id
}

// Peek returns the ID the next call to Next will return.
func (a *IDAllocator) Peek() NodeID {
	if a.next == 0 {
		return 1
	}
	return a.next
}

// NodeKind distinguishes the three node variants.
type NodeKind int

const (
	// KindRoot is the single top-level node: the chosen final product.
	KindRoot NodeKind = iota
	// KindIntermediate is a recipe crafted to satisfy a required throughput.
	KindIntermediate
	// KindTerminal is a raw item requirement not yet broken into a recipe.
	KindTerminal
)

// String returns "root", "intermediate" or "terminal".
func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindIntermediate:
		return "intermediate"
	case KindTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Node is one of [*Root], [*Intermediate] or [*Terminal]. The set is closed:
// code branching on node kind uses a type switch over exactly these three.
//
// Node values held by a graph are never modified in place. Operations that
// change a node store a new value under the same ID, which lets snapshots
// share node values.
type Node interface {
	ID() NodeID
	Kind() NodeKind
	node()
}

// Root is the user's chosen final product and desired output rate.
type Root struct {
	id      NodeID
	Recipe  *recipe.Recipe
	Rate    float64 // units/s of the recipe's primary output
	Machine *recipe.Machine
}

// Intermediate is a recipe crafted to satisfy Rate units/s of Item.
// Item is the recipe's primary output unless the node was expanded from a
// requirement for one of its by-products.
type Intermediate struct {
	id      NodeID
	Recipe  *recipe.Recipe
	Item    recipe.Item
	Rate    float64
	Machine *recipe.Machine
}

// Terminal is a requirement for Rate units/s of Item without a commitment to
// how it is produced. Recipes lists the recipes that could produce it.
type Terminal struct {
	id      NodeID
	Item    recipe.Item
	Rate    float64
	Recipes []*recipe.Recipe
}

func (n *Root) ID() NodeID         { return n.id }
func (n *Intermediate) ID() NodeID { return n.id }
func (n *Terminal) ID() NodeID     { return n.id }

func (*Root) Kind() NodeKind         { return KindRoot }
func (*Intermediate) Kind() NodeKind { return KindIntermediate }
func (*Terminal) Kind() NodeKind     { return KindTerminal }

func (*Root) node()         {}
func (*Intermediate) node() {}
func (*Terminal) node()     {}

// Machines returns the number of machines needed to sustain the root's rate.
func (n *Root) Machines() float64 { return recipe.MachineCount(n.Recipe, n.Rate, n.Machine) }

// Machines returns the number of machines needed to sustain the node's rate.
func (n *Intermediate) Machines() float64 {
	return recipe.MachineCount(n.Recipe, crafts(n.Recipe, n.Item, n.Rate)*n.Recipe.PrimaryOutput().Amount, n.Machine)
}

// Output returns the item a node supplies to its parents and its rate.
func Output(n Node) (recipe.Item, float64) {
	switch n := n.(type) {
	case *Root:
		return n.Recipe.PrimaryOutput().Item, n.Rate
	case *Intermediate:
		return n.Item, n.Rate
	case *Terminal:
		return n.Item, n.Rate
	default:
		return recipe.Item{}, 0
	}
}

// MergeKey returns the item identity under which n can be unified with
// another node. The root has no key.
func MergeKey(n Node) (recipe.Item, bool) {
	switch n := n.(type) {
	case *Intermediate:
		return n.Item, true
	case *Terminal:
		return n.Item, true
	default:
		return recipe.Item{}, false
	}
}

// Label returns a short human-readable description of n.
func Label(n Node) string {
	switch n := n.(type) {
	case *Root:
		return fmt.Sprintf("%s %.3g/s", n.Recipe.Name, n.Rate)
	case *Intermediate:
		return fmt.Sprintf("%s %.3g/s via %s", n.Item, n.Rate, n.Recipe.Name)
	case *Terminal:
		return fmt.Sprintf("%s %.3g/s", n.Item, n.Rate)
	default:
		return fmt.Sprintf("%T", n)
	}
}

// crafts returns how many crafts per second of r yield rate units/s of item.
func crafts(r *recipe.Recipe, item recipe.Item, rate float64) float64 {
	amount := 0.0
	for _, p := range r.Results {
		if p.Item == item {
			amount += p.Amount
		}
	}
	if amount <= 0 {
		amount = r.PrimaryOutput().Amount
	}
	if amount <= 0 {
		amount = 1
	}
	return rate / amount
}
