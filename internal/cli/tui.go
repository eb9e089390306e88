package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/craftgraph/pkg/dag"
	"github.com/matzehuels/craftgraph/pkg/editor"
	"github.com/matzehuels/craftgraph/pkg/errors"
	"github.com/matzehuels/craftgraph/pkg/recipe"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// =============================================================================
// EditModel - Interactive graph editing
// =============================================================================

// EditModel is the bubbletea model of the interactive editor. It lists the
// graph's nodes tier by tier and turns key presses into edit intents.
type EditModel struct {
	ctx    context.Context
	ed     *editor.Editor
	rows   []dag.NodeID // nodes in display order: by depth, then ID
	Cursor int
	Offset int
	Height int

	// Mark is the node picked with "m" as the survivor of the next merge.
	Mark dag.NodeID

	// Choices lists the recipes offered after an expand hit MULTIPLE_RECIPES.
	Choices []*recipe.Recipe
	choose  dag.NodeID

	Status string
	Failed bool
}

// NewEditModel creates an editor model over ed's graph.
func NewEditModel(ctx context.Context, ed *editor.Editor) EditModel {
	m := EditModel{ctx: ctx, ed: ed, Height: 20}
	m.refresh()
	return m
}

// Selected returns the node under the cursor.
func (m EditModel) Selected() dag.NodeID {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return 0
	}
	return m.rows[m.Cursor]
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if len(m.Choices) > 0 {
			return m.updateChoice(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "e":
			m = m.apply(editor.Expand(m.Selected()))
		case "c":
			m = m.apply(editor.Collapse(m.Selected()))
		case "m":
			m = m.markOrMerge()
		case "v":
			if err := m.ed.Graph().Validate(); err != nil {
				m.Status, m.Failed = errors.UserMessage(err), true
			} else {
				m.Status, m.Failed = "graph is consistent", false
			}
		case "esc":
			m.Mark, m.Status, m.Failed = 0, "", false
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	m.scroll()
	return m, nil
}

func (m EditModel) updateChoice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		m.Choices, m.choose = nil, 0
		m.Status, m.Failed = "expand cancelled", false
		return m, nil
	}
	i, err := strconv.Atoi(key)
	if err != nil || i < 1 || i > len(m.Choices) {
		return m, nil
	}
	in := editor.Intent{Op: editor.OpExpand, Node: m.choose, Recipe: m.Choices[i-1].Name}
	m.Choices, m.choose = nil, 0
	return m.apply(in), nil
}

func (m EditModel) markOrMerge() EditModel {
	sel := m.Selected()
	switch {
	case m.Mark == 0:
		m.Mark = sel
		m.Status, m.Failed = fmt.Sprintf("marked #%d, press m on another node to merge it in", sel), false
	case m.Mark == sel:
		m.Mark = 0
		m.Status, m.Failed = "mark cleared", false
	default:
		if err := m.ed.CanMerge(m.Mark, sel); err != nil {
			m.Status, m.Failed = errors.UserMessage(err), true
			return m
		}
		keep := m.Mark
		m.Mark = 0
		m = m.apply(editor.Merge(keep, sel))
	}
	return m
}

// apply runs one intent and refreshes the view. An expand that needs a
// recipe choice opens the chooser instead of failing.
func (m EditModel) apply(in editor.Intent) EditModel {
	err := m.ed.Apply(m.ctx, in)
	switch {
	case err == nil:
		m.Status, m.Failed = in.String(), false
	case errors.Is(err, errors.ErrCodeMultipleRecipes):
		if n, ok := m.ed.Graph().Node(in.Node); ok {
			if t, ok := n.(*dag.Terminal); ok {
				m.Choices, m.choose = t.Recipes, t.ID()
			}
		}
		m.Status, m.Failed = "choose a recipe", false
	case errors.IsFatal(err):
		m.Status, m.Failed = "edit undone: "+errors.UserMessage(err), true
	default:
		m.Status, m.Failed = errors.UserMessage(err), true
	}
	m.refresh()
	return m
}

// refresh rebuilds the row order, keeping the cursor on the same node when
// it still exists.
func (m *EditModel) refresh() {
	sel := m.Selected()
	g := m.ed.Graph()
	m.rows = nil
	for d := 0; d <= g.MaxDepth(); d++ {
		for _, n := range g.NodesAtDepth(d) {
			m.rows = append(m.rows, n.ID())
		}
	}
	if i := slices.Index(m.rows, sel); i >= 0 {
		m.Cursor = i
	}
	m.Cursor = min(max(m.Cursor, 0), len(m.rows)-1)
	if _, ok := g.Node(m.Mark); !ok {
		m.Mark = 0
	}
}

func (m *EditModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m EditModel) View() string {
	var b strings.Builder
	g := m.ed.Graph()

	b.WriteString(StyleTitle.Render("craftgraph " + g.Root().Recipe.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  e expand  c collapse  m mark/merge  v validate  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	lastDepth := -1
	for i := m.Offset; i < end; i++ {
		id := m.rows[i]
		n, _ := g.Node(id)
		d, _ := g.Depth(id)
		if d != lastDepth {
			b.WriteString(listDimStyle.Render(fmt.Sprintf("tier %d", d)))
			b.WriteString("\n")
			lastDepth = d
		}
		cursor := "  "
		if i == m.Cursor {
			cursor = listSelectedStyle.Render("▸ ")
		}
		mark := " "
		if id == m.Mark {
			mark = listMarkStyle.Render("*")
		}
		b.WriteString(cursor + mark + strings.Repeat("  ", d) + nodeLine(n) + "\n")
	}

	if len(m.Choices) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleTitle.Render("Recipes"))
		b.WriteString("\n")
		for i, r := range m.Choices {
			fmt.Fprintf(&b, "  %s %s\n", StyleNumber.Render(strconv.Itoa(i+1)), r.Name)
		}
		b.WriteString(listDimStyle.Render("  1-9 choose  esc cancel"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(graphStats(g))
	b.WriteString("\n")
	if m.Status != "" {
		if m.Failed {
			b.WriteString(styleIconError.Render(iconError) + " " + StyleError.Render(m.Status))
		} else {
			b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.Status)
		}
		b.WriteString("\n")
	}
	return b.String()
}
