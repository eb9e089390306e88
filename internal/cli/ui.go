package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, terminals
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleError for error messages.
	StyleError = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleRoot     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleCrafted  = lipgloss.NewStyle().Foreground(colorWhite)
	styleTerminal = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconTerminal = "○"
	iconCrafted  = "●"
	iconRoot     = "◆"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Graph Display
// =============================================================================

// graphStats formats node, edge and tier counts on a single dim line.
func graphStats(g *dag.Graph) string {
	parts := []string{
		fmt.Sprintf("%d nodes", g.NodeCount()),
		fmt.Sprintf("%d edges", g.EdgeCount()),
		fmt.Sprintf("%d tiers", g.MaxDepth()+1),
	}
	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line
}

// nodeLine renders one node for tier listings: icon, ID, item, rate and
// the machines needed for crafted nodes.
func nodeLine(n dag.Node) string {
	id := StyleDim.Render(fmt.Sprintf("#%-3d", n.ID()))
	switch n := n.(type) {
	case *dag.Root:
		return fmt.Sprintf("%s %s %s %s %s", styleRoot.Render(iconRoot), id,
			styleRoot.Render(n.Recipe.PrimaryOutput().Item.String()), StyleNumber.Render(fmtRate(n.Rate)),
			StyleDim.Render(fmtMachines(n.Machines(), n.Machine)))
	case *dag.Intermediate:
		return fmt.Sprintf("%s %s %s %s %s", styleCrafted.Render(iconCrafted), id,
			styleCrafted.Render(n.Item.String()), StyleNumber.Render(fmtRate(n.Rate)),
			StyleDim.Render(n.Recipe.Name+", "+fmtMachines(n.Machines(), n.Machine)))
	case *dag.Terminal:
		return fmt.Sprintf("%s %s %s %s", styleTerminal.Render(iconTerminal), id,
			styleTerminal.Render(n.Item.String()), StyleNumber.Render(fmtRate(n.Rate)))
	default:
		return id
	}
}

// renderTiers lists the graph's nodes grouped by depth.
func renderTiers(g *dag.Graph) string {
	var b strings.Builder
	for d := 0; d <= g.MaxDepth(); d++ {
		b.WriteString(StyleTitle.Render(fmt.Sprintf("Tier %d", d)))
		b.WriteString("\n")
		for _, n := range g.NodesAtDepth(d) {
			b.WriteString("  " + nodeLine(n) + "\n")
		}
	}
	return b.String()
}

// renderRequirements tables the raw items the plan still needs.
func renderRequirements(s dag.Summary) string {
	rows := make([][]string, 0, len(s.Requirements))
	for _, r := range s.Requirements {
		rows = append(rows, []string{r.Item.String(), fmtRate(r.Rate), fmtIDs(r.Nodes)})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Item", "Rate", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 1 {
				return StyleNumber
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func fmtRate(r float64) string {
	return strconv.FormatFloat(r, 'g', 4, 64) + "/s"
}

func fmtMachines(count float64, m *recipe.Machine) string {
	if m == nil {
		return "no machine"
	}
	return fmt.Sprintf("%s × %s", strconv.FormatFloat(count, 'g', 3, 64), m.Name)
}

func fmtIDs(ids []dag.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + id.String()
	}
	return strings.Join(parts, " ")
}
