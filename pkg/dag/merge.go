package dag

import (
	"slices"

	"github.com/matzehuels/craftgraph/pkg/errors"
)

// CanMerge reports whether Merge(node, with) would succeed. It returns the
// error Merge would return and never modifies g.
func (g *Graph) CanMerge(node, with NodeID) error {
	_, err := g.planMerge(node, with)
	return err
}

// Merge unifies with into node. Both must be terminals or both intermediates
// for the same item. The required rates are added, every parent of with is
// repointed to node and with is removed.
//
// Merging intermediates also merges their children pairwise: each child of
// with is matched by item to exactly one child of node and merged into it,
// recursively. Children the two nodes already share are left alone. Any
// unmatched child or kind mismatch fails the whole merge.
//
// Every precondition is checked before the graph is touched, so all errors
// except INCONSISTENT_GRAPH leave it unchanged.
func (g *Graph) Merge(node, with NodeID) error {
	pairs, err := g.planMerge(node, with)
	if err != nil {
		return err
	}
	if err := g.absorb(node, with, pairs, make(map[NodeID]bool)); err != nil {
		return fatal(err, "merge node %d into %d", with, node)
	}
	return nil
}

// planMerge checks a merge and returns the pairing of every node to be
// absorbed with the node absorbing it.
func (g *Graph) planMerge(keep, drop NodeID) (map[NodeID]NodeID, error) {
	if keep == drop {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot merge node %d with itself", keep)
	}
	kn, err := g.lookup(keep)
	if err != nil {
		return nil, err
	}
	dn, err := g.lookup(drop)
	if err != nil {
		return nil, err
	}
	for _, n := range []Node{kn, dn} {
		if _, ok := n.(*Root); ok {
			return nil, errors.New(errors.ErrCodeIncompatibleNodeTypes, "node %d is the root and cannot be merged", n.ID())
		}
	}

	pairs := make(map[NodeID]NodeID)
	if err := g.pair(keep, drop, pairs); err != nil {
		return nil, err
	}
	for d, k := range pairs {
		if _, absorbed := pairs[k]; absorbed {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d would be merged into %d and also absorbed", d, k)
		}
	}
	if g.cyclicAfter(pairs) {
		return nil, errors.New(errors.ErrCodeMergeCycle, "merging node %d into %d would create a cycle among their ingredients", drop, keep)
	}
	return pairs, nil
}

// cyclicAfter reports whether the graph would contain a cycle once every
// node in pairs is identified with its partner.
func (g *Graph) cyclicAfter(pairs map[NodeID]NodeID) bool {
	rep := func(id NodeID) NodeID {
		if k, ok := pairs[id]; ok {
			return k
		}
		return id
	}
	out := make(map[NodeID][]NodeID, len(g.down))
	for from, cs := range g.down {
		for _, c := range cs {
			if rep(from) == rep(c) {
				return true
			}
			out[rep(from)] = append(out[rep(from)], rep(c))
		}
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[NodeID]int, len(g.nodes))
	var dfs func(id NodeID) bool
	dfs = func(id NodeID) bool {
		color[id] = gray
		for _, c := range out[id] {
			switch color[c] {
			case white:
				if dfs(c) {
					return true
				}
			case gray:
				return true
			}
		}
		color[id] = black
		return false
	}
	return dfs(g.root)
}

func (g *Graph) pair(keep, drop NodeID, pairs map[NodeID]NodeID) error {
	kn, err := g.lookup(keep)
	if err != nil {
		return inconsistent("edge points to missing node", keep)
	}
	dn, err := g.lookup(drop)
	if err != nil {
		return inconsistent("edge points to missing node", drop)
	}
	if kn.Kind() != dn.Kind() {
		return errors.New(errors.ErrCodeIncompatibleNodeTypes, "node %d is %s but node %d is %s", keep, kn.Kind(), drop, dn.Kind())
	}
	kk, _ := MergeKey(kn)
	dk, _ := MergeKey(dn)
	if kk != dk {
		return errors.New(errors.ErrCodeIncompatibleNodeItems, "node %d supplies %s but node %d supplies %s", keep, kk, drop, dk)
	}
	if prev, ok := pairs[drop]; ok {
		if prev == keep {
			return nil
		}
		return errors.New(errors.ErrCodeIncompatibleNodeItems, "node %d matches both %d and %d", drop, prev, keep)
	}
	if g.reaches(keep, drop) || g.reaches(drop, keep) {
		return errors.New(errors.ErrCodeMergeCycle, "nodes %d and %d lie on one path, merging would create a cycle", keep, drop)
	}
	for _, p := range g.up[drop] {
		if slices.Contains(g.up[keep], p) {
			return errors.New(errors.ErrCodeInvalidInput, "nodes %d and %d are both ingredients of node %d", keep, drop, p)
		}
	}
	pairs[drop] = keep

	if _, ok := dn.(*Intermediate); !ok {
		return nil
	}
	for _, ck := range g.down[keep] {
		if slices.Contains(g.down[drop], ck) {
			continue
		}
		if _, err := g.counterpart(drop, ck); err != nil {
			return errors.Context(err, "merge node %d into %d", drop, keep)
		}
	}
	for _, cd := range g.down[drop] {
		if slices.Contains(g.down[keep], cd) {
			continue
		}
		ck, err := g.counterpart(keep, cd)
		if err != nil {
			return errors.Context(err, "merge node %d into %d", drop, keep)
		}
		if err := g.pair(ck, cd, pairs); err != nil {
			return errors.Context(err, "merge child %d into %d", cd, ck)
		}
	}
	return nil
}

// counterpart returns the only child of parent with the same item as c.
func (g *Graph) counterpart(parent, c NodeID) (NodeID, error) {
	cn, ok := g.nodes[c]
	if !ok {
		return 0, inconsistent("edge points to missing node", parent, c)
	}
	key, _ := MergeKey(cn)
	var found []NodeID
	for _, id := range g.down[parent] {
		if k, ok := MergeKey(g.nodes[id]); ok && k == key {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return 0, errors.New(errors.ErrCodeIncompatibleNodeItems, "node %d has no ingredient %s to match node %d", parent, key, c)
	case 1:
		return found[0], nil
	default:
		return 0, errors.New(errors.ErrCodeIncompatibleNodeItems, "node %d has %d ingredients %s to match node %d", parent, len(found), key, c)
	}
}

// reaches reports whether to is a descendant of from.
func (g *Graph) reaches(from, to NodeID) bool {
	seen := make(map[NodeID]bool)
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.down[id] {
			if c == to {
				return true
			}
			if !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// absorb merges drop into keep following the plan in pairs.
func (g *Graph) absorb(keep, drop NodeID, pairs map[NodeID]NodeID, visiting map[NodeID]bool) error {
	if visiting[drop] {
		return inconsistent("node absorbed twice", drop)
	}
	visiting[drop] = true

	kn, ok := g.nodes[keep]
	if !ok {
		return inconsistent("merge target does not exist", keep)
	}
	dn, ok := g.nodes[drop]
	if !ok {
		return inconsistent("merged node does not exist", drop)
	}
	var merged Node
	switch k := kn.(type) {
	case *Terminal:
		d, ok := dn.(*Terminal)
		if !ok {
			return inconsistent("merge pairs nodes of different kinds", keep, drop)
		}
		t := *k
		t.Rate += d.Rate
		merged = &t
	case *Intermediate:
		d, ok := dn.(*Intermediate)
		if !ok {
			return inconsistent("merge pairs nodes of different kinds", keep, drop)
		}
		in := *k
		in.Rate += d.Rate
		merged = &in
		for _, cd := range slices.Clone(g.down[drop]) {
			if slices.Contains(g.down[keep], cd) {
				continue
			}
			ck, ok := pairs[cd]
			if !ok {
				return inconsistent("child has no merge counterpart", drop, cd)
			}
			if err := g.absorb(ck, cd, pairs, visiting); err != nil {
				return err
			}
		}
	default:
		return inconsistent("merge target is not a terminal or intermediate", keep)
	}
	if err := g.replaceNode(merged); err != nil {
		return err
	}

	for _, p := range slices.Clone(g.up[drop]) {
		if err := g.repoint(p, drop, keep); err != nil {
			return err
		}
	}
	var released []NodeID
	for len(g.down[drop]) > 0 {
		c := g.down[drop][0]
		if err := g.unlink(drop, c); err != nil {
			return err
		}
		if len(g.up[c]) == 0 {
			return inconsistent("merge left a child without parents", drop, c)
		}
		released = append(released, c)
	}
	if err := g.removeNode(drop); err != nil {
		return err
	}

	if err := g.relevel(keep); err != nil {
		return err
	}
	for _, c := range released {
		if err := g.relevel(c); err != nil {
			return err
		}
	}
	return nil
}
