// Package cli implements the craftgraph command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/craftgraph/pkg/buildinfo"
	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/observability"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "craftgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and built-in config.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level)}
	c.Config.setDefaults()
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the config file and applies its log level.
// A missing file is not an error.
func (c *CLI) LoadConfig() error {
	path, err := configPath()
	if err != nil {
		return nil
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s: log_level", path)
		}
		c.SetLogLevel(level)
	}
	c.Logger.Debug("loaded config", "path", path, "book", cfg.Book, "rate", cfg.Rate)
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          appName,
		Short:        "Craftgraph plans crafting production chains",
		Long:         `Craftgraph builds the production-dependency graph of a crafting recipe and lets you expand, collapse and merge its steps until the plan only needs raw resources.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(); err != nil {
				return err
			}
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.planCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.recipesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session Helpers
// =============================================================================

// sessionOptions are the flags shared by every command that builds a graph.
type sessionOptions struct {
	book   string
	rate   float64
	strict bool
}

func (c *CLI) addSessionFlags(cmd *cobra.Command, opts *sessionOptions) {
	cmd.Flags().StringVarP(&opts.book, "book", "b", "", "recipe book file (.toml, .yaml)")
	cmd.Flags().Float64VarP(&opts.rate, "rate", "r", 0, "desired output of the root recipe in units/s")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "validate graph invariants after every edit")
}

// resolve fills unset flags from the config file.
func (c *CLI) resolve(cmd *cobra.Command, opts sessionOptions) sessionOptions {
	if opts.book == "" {
		opts.book = c.Config.Book
	}
	if !cmd.Flags().Changed("rate") {
		opts.rate = c.Config.Rate
	}
	if !cmd.Flags().Changed("strict") {
		opts.strict = c.Config.Strict
	}
	return opts
}

// loadBook loads the recipe book and reports the load to the book hooks.
func (c *CLI) loadBook(ctx context.Context, path string) (*recipe.Book, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no recipe book: pass --book or set book in %s", configHint())
	}
	b, err := recipe.Load(path)
	reportBookLoad(ctx, path, b, err)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded recipe book", "path", path, "book", b.String())
	return b, nil
}

func reportBookLoad(ctx context.Context, path string, b *recipe.Book, err error) {
	n := 0
	if b != nil {
		n = b.Len()
	}
	observability.Book().OnBookLoad(ctx, path, n, err)
}

// newSession builds the initial graph for the named root recipe and wraps it
// in an editor.
func (c *CLI) newSession(b *recipe.Book, root string, opts sessionOptions, edOpts ...editor.Option) (*editor.Editor, error) {
	r, err := b.Lookup(root)
	if err != nil {
		return nil, err
	}
	g, err := dag.New(b, r, opts.rate)
	if err != nil {
		return nil, errors.Context(err, "plan %s", root)
	}
	edOpts = append([]editor.Option{editor.WithLogger(c.Logger), editor.WithStrict(opts.strict)}, edOpts...)
	return editor.New(g, edOpts...), nil
}
