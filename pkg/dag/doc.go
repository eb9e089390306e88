// Package dag implements the production-dependency graph of a crafting plan
// and the edits a player makes to it.
//
// # Overview
//
// A plan starts from one chosen recipe, the [Root], and a desired output
// rate. Every ingredient the plan still has to obtain is a [Terminal]: a
// bare requirement for some rate of an item. Expanding a terminal commits to
// the recipe producing it, turning it into an [Intermediate] whose own
// ingredients become new terminals one level further down. Collapsing does
// the reverse. Merging unifies two nodes for the same item so one production
// line feeds several consumers, which is what turns the tree into a DAG.
//
// # Basic Usage
//
// Build a graph with [New] from a [Resolver] (usually a [*recipe.Book]) and
// edit it by node ID:
//
//	g, err := dag.New(book, widget, 2)
//	if err != nil {
//	    return err
//	}
//	if err := g.Expand(2); err != nil {
//	    return err
//	}
//
// The read API ([Graph.Nodes], [Graph.Children], [Graph.Parents],
// [Graph.Depth], [Graph.Levels]) is what renderers lay the graph out from.
//
// # Depths and Levels
//
// Each node's depth is the length of the longest path from the root to it,
// so a node always sits below every consumer. [Graph.Levels] counts nodes per
// depth. Both are maintained incrementally on every edit; [Graph.Validate]
// recomputes them from the edges and reports any drift.
//
// # Errors
//
// Operations return coded errors from [github.com/matzehuels/craftgraph/pkg/errors].
// Every code except INCONSISTENT_GRAPH guarantees the graph was not modified.
// INCONSISTENT_GRAPH means an invariant broke part way through an edit: the
// caller must discard the graph and restore a snapshot taken with
// [Graph.Clone] before the edit. The cause chain carries an
// [InconsistencyError] naming the offending nodes.
//
// # Concurrency
//
// A Graph is owned by one caller. All operations run to completion
// synchronously and none lock; callers serialize edits.
package dag
