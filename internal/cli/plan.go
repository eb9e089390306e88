package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/craftgraph/pkg/cache"
	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
	"github.com/matzehuels/craftgraph/pkg/render/nodelink"
)

// planOptions holds flags for the plan command.
type planOptions struct {
	sessionOptions
	root     string
	script   string
	dot      string
	svg      string
	png      string
	detailed bool
	watch    bool
	noCache  bool
}

// planCommand creates the plan command for building and printing a plan.
func (c *CLI) planCommand() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan <recipe>",
		Short: "Build a production plan for a recipe",
		Long: `Build the production graph for a recipe, apply an optional edit script, and
print the graph tier by tier together with the raw items it still needs.

Edit scripts are TOML or YAML lists of expand, collapse and merge edits that
name nodes by ID:

  [[edit]]
  op = "expand"
  node = 2

With --watch the plan is rebuilt whenever the book or the script changes.`,
		Example: `  craftgraph plan electronic-circuit --book book.toml --rate 5
  craftgraph plan inserter --script edits.toml --svg inserter.svg
  craftgraph plan inserter --script edits.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.root = args[0]
			opts.sessionOptions = c.resolve(cmd, opts.sessionOptions)
			if opts.watch {
				return c.watchPlan(cmd.Context(), opts)
			}
			b, err := c.loadBook(cmd.Context(), opts.book)
			if err != nil {
				return err
			}
			return c.runPlan(cmd.Context(), b, opts)
		},
	}

	c.addSessionFlags(cmd, &opts.sessionOptions)
	cmd.Flags().StringVarP(&opts.script, "script", "s", "", "edit script to apply (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the graph as Graphviz DOT to this file")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "render the graph as SVG to this file")
	cmd.Flags().StringVar(&opts.png, "png", "", "render the graph as PNG to this file")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node IDs and depths in exported labels")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-plan when the book or script changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always re-render SVG instead of reusing cached renders")

	return cmd
}

// runPlan builds the plan, prints it and writes the requested exports.
func (c *CLI) runPlan(ctx context.Context, b *recipe.Book, opts planOptions) error {
	prog := newProgress(c.Logger)
	g, err := c.buildPlan(ctx, b, opts)
	if err != nil {
		return err
	}
	prog.done("Planned "+opts.root, "nodes", g.NodeCount())

	printPlan(os.Stdout, g)
	return c.export(ctx, g, opts)
}

// buildPlan builds the initial graph and applies the script, if any.
func (c *CLI) buildPlan(ctx context.Context, b *recipe.Book, opts planOptions) (*dag.Graph, error) {
	ed, err := c.newSession(b, opts.root, opts.sessionOptions)
	if err != nil {
		return nil, err
	}
	if opts.script == "" {
		return ed.Graph(), nil
	}
	intents, err := editor.LoadScript(opts.script)
	if err != nil {
		return nil, err
	}
	n, err := ed.ApplyAll(ctx, intents)
	if err != nil {
		return nil, errors.Context(err, "script %s", opts.script)
	}
	c.Logger.Debug("applied script", "path", opts.script, "edits", n)
	return ed.Graph(), nil
}

// printPlan writes the tier listing and requirement table.
func printPlan(w io.Writer, g *dag.Graph) {
	fmt.Fprint(w, renderTiers(g))
	fmt.Fprintln(w, graphStats(g))
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Raw requirements"))
	fmt.Fprintln(w, renderRequirements(g.Summary()))
}

func (c *CLI) export(ctx context.Context, g *dag.Graph, opts planOptions) error {
	if opts.dot == "" && opts.svg == "" && opts.png == "" {
		return nil
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed})
	if opts.dot != "" {
		if err := writeFile(opts.dot, []byte(dot)); err != nil {
			return err
		}
		printFile(opts.dot)
	}
	if opts.svg != "" {
		spin := newSpinner(ctx, "Rendering SVG...")
		spin.Start()
		svg, err := nodelink.RenderSVGCached(ctx, c.renderCache(opts.noCache), dot)
		spin.Stop()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		if err := writeFile(opts.svg, svg); err != nil {
			return err
		}
		printFile(opts.svg)
	}
	if opts.png != "" {
		spin := newSpinner(ctx, "Rendering PNG...")
		spin.Start()
		png, err := nodelink.RenderPNG(dot)
		spin.Stop()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "render png")
		}
		if err := writeFile(opts.png, png); err != nil {
			return err
		}
		printFile(opts.png)
	}
	return nil
}

// renderCache returns the on-disk render cache, or a null cache when caching
// is disabled or the cache directory is unusable.
func (c *CLI) renderCache(disabled bool) cache.Cache {
	if disabled {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err == nil {
		var fc *cache.FileCache
		if fc, err = cache.NewFileCache(dir); err == nil {
			return fc
		}
	}
	c.Logger.Debug("render cache disabled", "err", err)
	return cache.NewNullCache()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// =============================================================================
// Watch Mode
// =============================================================================

// watchPlan plans once and then again after every change to the book or
// script until ctx is done. Failed re-plans are reported and the previous
// output stays on screen.
func (c *CLI) watchPlan(ctx context.Context, opts planOptions) error {
	logger := loggerFromContext(ctx)
	if opts.book == "" {
		return errors.New(errors.ErrCodeInvalidInput, "no recipe book: pass --book or set book in %s", configHint())
	}

	w, err := recipe.NewWatcher(opts.book)
	if err != nil {
		return err
	}
	replan := make(chan struct{}, 1)
	trigger := func() {
		select {
		case replan <- struct{}{}:
		default:
		}
	}
	w.OnChange(func(b *recipe.Book) {
		reportBookLoad(ctx, w.Path(), b, nil)
		trigger()
	})
	w.OnError(func(err error) {
		reportBookLoad(ctx, w.Path(), nil, err)
		logger.Warn("book reload failed, keeping previous book", "path", w.Path(), "err", errors.UserMessage(err))
	})
	reportBookLoad(ctx, w.Path(), w.Book(), nil)

	if err := w.Watch(ctx); err != nil {
		return err
	}
	if opts.script != "" {
		onError := func(err error) {
			logger.Warn("script watcher", "path", opts.script, "err", err)
		}
		if err := recipe.WatchFile(ctx, opts.script, trigger, onError); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "watch script")
		}
	}

	plan := func() {
		if err := c.runPlan(ctx, w.Book(), opts); err != nil {
			printError("%s", errors.UserMessage(err))
			logger.Debug("plan failed", "chain", errors.Chain(err))
		}
		printInfo("watching %s for changes (ctrl+c to stop)", watchTargets(opts))
	}
	plan()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-replan:
			logger.Info("change detected, re-planning")
			plan()
		}
	}
}

func watchTargets(opts planOptions) string {
	if opts.script == "" {
		return filepath.Base(opts.book)
	}
	return filepath.Base(opts.book) + " and " + filepath.Base(opts.script)
}
