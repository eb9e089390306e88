package cli

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/errors"
)

// editCommand creates the edit command that opens the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var opts sessionOptions

	cmd := &cobra.Command{
		Use:   "edit <recipe>",
		Short: "Edit a production plan interactively",
		Long: `Open an interactive editor on the production graph of a recipe.

Keys:
  ↑/↓ or k/j   move between nodes
  e            expand the selected terminal into its recipe
  c            collapse the selected crafting step back into a requirement
  m            mark a node, then m on another node merges it into the mark
  v            check the graph's consistency
  q            quit and print the final plan`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts = c.resolve(cmd, opts)
			b, err := c.loadBook(cmd.Context(), opts.book)
			if err != nil {
				return err
			}
			// The alternate screen owns the terminal while the editor runs.
			quiet := newLogger(io.Discard, LogInfo)
			ed, err := c.newSession(b, args[0], opts, editor.WithLogger(quiet))
			if err != nil {
				return err
			}

			model := NewEditModel(cmd.Context(), ed)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "run editor")
			}

			printPlan(os.Stdout, ed.Graph())
			return nil
		},
	}

	c.addSessionFlags(cmd, &opts)

	return cmd
}
