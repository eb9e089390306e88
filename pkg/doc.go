// Package pkg provides the core libraries for craftgraph production planning.
//
// # Overview
//
// craftgraph models a crafting production plan as a directed acyclic graph.
// The root is the recipe to produce. Edges point from a consumer to the steps
// feeding it, and terminal nodes are the raw requirements nobody crafts yet.
// The plan is refined by three edits: expand a requirement into its recipe,
// collapse a crafting step back into a requirement, and merge two nodes
// producing the same item into one shared step.
//
// # Architecture
//
//	Recipe book (TOML/YAML)
//	         ↓
//	    [recipe] package (items, recipes, machines, book lookup)
//	         ↓
//	    [dag] package (graph structure + expand/collapse/merge)
//	         ↓
//	    [editor] package (sessions, intents, rollback, scripts)
//	         ↓
//	    CLI tables, HTTP JSON, DOT/SVG output
//
// # Quick Start
//
//	book, _ := recipe.Load("book.toml")
//	root, _ := book.Recipe("electronic-circuit")
//	g, _ := dag.New(book, root, 5)
//
//	ed := editor.New(g)
//	_ = ed.Apply(ctx, editor.Expand(2))
//	_ = ed.Apply(ctx, editor.Merge(2, 4))
//
//	for _, req := range g.Summary().Requirements {
//	    fmt.Println(req.Item, req.Rate)
//	}
//
// # Main Packages
//
// [recipe] - Recipe books: items and fluids, recipes with ingredients and
// results, machines with crafting speeds and categories. Books load from TOML
// or YAML and can be watched for changes.
//
// [dag] - The production graph. Nodes are sealed to root, intermediate and
// terminal kinds. Every edit keeps depths, tier levels and rates consistent
// and [dag.Graph.Validate] checks the invariants explicitly.
//
// [editor] - Edit sessions over a graph. Intents are applied one at a time;
// an edit that fails after touching the graph is rolled back.
//
// [errors] - Coded errors shared by every package.
//
// [render/nodelink] - Graphviz DOT export and SVG rendering.
//
// [cache] - Render caches (memory, file, null) keyed by DOT text.
//
// [api] - HTTP server for one edit session.
//
// [observability] - Hooks for edits, book loads and HTTP requests, with a
// Prometheus implementation.
//
// [buildinfo] - Version information set at link time.
//
// [recipe]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/recipe
// [dag]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/dag
// [dag.Graph.Validate]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/dag#Graph.Validate
// [editor]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/editor
// [errors]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/errors
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/craftgraph/pkg/buildinfo
package pkg
