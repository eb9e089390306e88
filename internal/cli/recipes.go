package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// recipesCommand creates the recipes command for browsing a recipe book.
func (c *CLI) recipesCommand() *cobra.Command {
	var (
		book  string
		fluid bool
	)

	cmd := &cobra.Command{
		Use:   "recipes [item]",
		Short: "List the recipes of a recipe book",
		Long: `List the recipes of a recipe book with their ingredients, results and the
machines able to craft them. With an item argument only the recipes producing
that item are shown.`,
		Example: `  craftgraph recipes --book book.toml
  craftgraph recipes petroleum-gas --fluid`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if book == "" {
				book = c.Config.Book
			}
			b, err := c.loadBook(cmd.Context(), book)
			if err != nil {
				return err
			}

			recipes := b.Recipes()
			title := fmt.Sprintf("%d recipes", len(recipes))
			if len(args) == 1 {
				item, err := parseItem(args[0], fluid)
				if err != nil {
					return err
				}
				recipes = b.RecipesForResult(item)
				if len(recipes) == 0 {
					return errors.New(errors.ErrCodeNoRecipes, "no recipe produces %s", item)
				}
				title = fmt.Sprintf("%d recipes producing %s", len(recipes), item)
			}

			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render(title))
			fmt.Fprintln(cmd.OutOrStdout(), renderRecipes(b, recipes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&book, "book", "b", "", "recipe book file (.toml, .yaml)")
	cmd.Flags().BoolVar(&fluid, "fluid", false, "treat the item argument as a fluid")

	return cmd
}

func parseItem(name string, fluid bool) (recipe.Item, error) {
	if err := errors.ValidateName("item", name); err != nil {
		return recipe.Item{}, err
	}
	kind := recipe.KindItem
	if fluid {
		kind = recipe.KindFluid
	}
	return recipe.Item{Name: name, Kind: kind}, nil
}

// recipeRows returns one table row per recipe:
// name, category, time, ingredients, results, machines.
func recipeRows(b *recipe.Book, recipes []*recipe.Recipe) [][]string {
	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		ins := make([]string, len(r.Ingredients))
		for i, in := range r.Ingredients {
			ins[i] = fmtAmount(in.Amount, in.Item)
		}
		outs := make([]string, len(r.Results))
		for i, p := range r.Results {
			outs[i] = fmtAmount(p.Amount, p.Item)
		}
		var machines []string
		for _, m := range b.MadeIn(r) {
			machines = append(machines, m.Name)
		}
		if len(machines) == 0 {
			machines = []string{"none"}
		}
		rows = append(rows, []string{
			r.Name,
			r.Category,
			strconv.FormatFloat(r.CraftingTime, 'g', -1, 64) + "s",
			strings.Join(ins, ", "),
			strings.Join(outs, ", "),
			strings.Join(machines, ", "),
		})
	}
	return rows
}

func renderRecipes(b *recipe.Book, recipes []*recipe.Recipe) string {
	rows := recipeRows(b, recipes)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Recipe", "Category", "Time", "Ingredients", "Results", "Machines").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 5 && rows[row][5] == "none":
				return StyleWarning
			case col == 1 || col == 2:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func fmtAmount(amount float64, item recipe.Item) string {
	return strconv.FormatFloat(amount, 'g', -1, 64) + " " + item.String()
}
