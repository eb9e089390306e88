package cli

import (
	"context"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/craftgraph/pkg/dag"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press feeds keys to m in order and returns the resulting model.
func press(t *testing.T, m EditModel, keys ...string) EditModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(EditModel)
	}
	return m
}

func newTestModel(t *testing.T, root string) EditModel {
	t.Helper()
	c := newTestCLI(t)
	ed, err := c.newSession(loadTestBook(t), root, sessionOptions{rate: 2, strict: true})
	if err != nil {
		t.Fatalf("newSession(%s) error: %v", root, err)
	}
	return NewEditModel(context.Background(), ed)
}

func TestEditModelNavigation(t *testing.T) {
	m := newTestModel(t, "transport-belt")
	if m.Selected() != 1 {
		t.Fatalf("Selected() = %d, want root 1", m.Selected())
	}

	m = press(t, m, "down", "j")
	if m.Selected() != 3 {
		t.Errorf("Selected() = %d, want 3", m.Selected())
	}
	m = press(t, m, "down")
	if m.Selected() != 3 {
		t.Errorf("cursor should stop at the last row, got %d", m.Selected())
	}
	m = press(t, m, "k", "up", "up")
	if m.Selected() != 1 {
		t.Errorf("cursor should stop at the first row, got %d", m.Selected())
	}
}

func TestEditModelExpandAndMerge(t *testing.T) {
	m := newTestModel(t, "transport-belt")

	m = press(t, m, "down", "down", "e")
	if m.Failed {
		t.Fatalf("expand failed: %s", m.Status)
	}
	if m.Selected() != 3 {
		t.Errorf("cursor should stay on the expanded node, got %d", m.Selected())
	}
	g := m.ed.Graph()
	if g.NodeCount() != 4 {
		t.Fatalf("NodeCount() = %d, want 4", g.NodeCount())
	}

	// mark iron-plate 2, then merge iron-plate 4 into it
	m = press(t, m, "up", "m")
	if m.Mark != 2 {
		t.Fatalf("Mark = %d, want 2", m.Mark)
	}
	m = press(t, m, "down", "down", "m")
	if m.Failed {
		t.Fatalf("merge failed: %s", m.Status)
	}
	if m.Mark != 0 {
		t.Errorf("Mark = %d, want cleared", m.Mark)
	}

	g = m.ed.Graph()
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
	if n, _ := g.Node(2); math.Abs(n.(*dag.Terminal).Rate-4) > 1e-9 {
		t.Errorf("merged rate = %v, want 4", n.(*dag.Terminal).Rate)
	}
	if m.Selected() != 2 {
		t.Errorf("cursor should fall back to the last row (node 2), got %d", m.Selected())
	}

	m = press(t, m, "v")
	if m.Failed || m.Status != "graph is consistent" {
		t.Errorf("validate status = %q (failed %v)", m.Status, m.Failed)
	}
}

func TestEditModelRejectedEdits(t *testing.T) {
	m := newTestModel(t, "transport-belt")

	m = press(t, m, "e")
	if !m.Failed || !strings.Contains(m.Status, "only terminals can be expanded") {
		t.Errorf("expanding the root: status = %q, failed = %v", m.Status, m.Failed)
	}

	m = press(t, m, "down", "c")
	if !m.Failed {
		t.Error("collapsing a terminal should fail")
	}

	m = press(t, m, "esc")
	if m.Status != "" || m.Failed {
		t.Errorf("esc should clear the status, got %q", m.Status)
	}

	// merging the root is refused before any edit is attempted
	m = press(t, m, "m", "up", "m")
	if !m.Failed {
		t.Error("merging with the root should fail")
	}
	if m.ed.Graph().NodeCount() != 3 {
		t.Errorf("rejected edits changed the graph: %d nodes", m.ed.Graph().NodeCount())
	}
}

func TestEditModelMarkToggle(t *testing.T) {
	m := newTestModel(t, "transport-belt")

	m = press(t, m, "down", "m")
	if m.Mark != 2 {
		t.Fatalf("Mark = %d, want 2", m.Mark)
	}
	m = press(t, m, "m")
	if m.Mark != 0 {
		t.Errorf("pressing m on the marked node should clear the mark, got %d", m.Mark)
	}
}

func TestEditModelRecipeChoice(t *testing.T) {
	m := newTestModel(t, "plastic-bar")

	m = press(t, m, "down", "e")
	if len(m.Choices) != 2 {
		t.Fatalf("got %d recipe choices, want 2 (status %q)", len(m.Choices), m.Status)
	}
	if !strings.Contains(m.View(), "basic-oil-processing") {
		t.Error("view should list the recipe choices")
	}

	// keys other than a valid choice are ignored while choosing
	m = press(t, m, "9", "x")
	if len(m.Choices) != 2 {
		t.Fatal("invalid keys should keep the chooser open")
	}

	m = press(t, m, "2")
	if m.Failed {
		t.Fatalf("expand with choice failed: %s", m.Status)
	}
	n, _ := m.ed.Graph().Node(2)
	in, ok := n.(*dag.Intermediate)
	if !ok {
		t.Fatalf("node 2 = %T, want *dag.Intermediate", n)
	}
	if in.Recipe.Name != "basic-oil-processing" {
		t.Errorf("recipe = %s, want basic-oil-processing", in.Recipe.Name)
	}
	if !strings.Contains(m.Status, "using basic-oil-processing") {
		t.Errorf("status = %q", m.Status)
	}
}

func TestEditModelRecipeChoiceCancel(t *testing.T) {
	m := newTestModel(t, "plastic-bar")

	m = press(t, m, "down", "e", "esc")
	if len(m.Choices) != 0 {
		t.Error("esc should close the chooser")
	}
	if n, _ := m.ed.Graph().Node(2); n.Kind() != dag.KindTerminal {
		t.Error("cancelled expand changed the graph")
	}
}

func TestEditModelQuit(t *testing.T) {
	m := newTestModel(t, "transport-belt")
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestEditModelView(t *testing.T) {
	m := newTestModel(t, "transport-belt")
	m = press(t, m, "down", "m")

	view := m.View()
	for _, want := range []string{"craftgraph transport-belt", "tier 0", "tier 1", "iron-plate", "*", "marked #2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}
}

func TestEditModelWindowSize(t *testing.T) {
	m := newTestModel(t, "transport-belt")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(EditModel).Height; got != 5 {
		t.Errorf("Height = %d, want 5", got)
	}
}
