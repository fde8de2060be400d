package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/benchdef/pkg/framework"
)

func testCatalog(t *testing.T) *framework.Catalog {
	t.Helper()
	doc, err := framework.ParseDocument([]byte(testDefs))
	if err != nil {
		t.Fatalf("ParseDocument() error: %v", err)
	}
	catalog, err := framework.Resolve(doc, framework.Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return catalog
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestCatalogModelNavigation(t *testing.T) {
	m := NewCatalogModel(testCatalog(t))
	if len(m.Definitions) != 2 {
		t.Fatalf("model holds %d definitions, want 2", len(m.Definitions))
	}

	// Down moves the cursor, but never past the end.
	next, _ := m.Update(keyMsg("down"))
	m = next.(CatalogModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after down, want 1", m.Cursor)
	}
	next, _ = m.Update(keyMsg("j"))
	m = next.(CatalogModel)
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, should stop at the last row", m.Cursor)
	}

	// Up moves back, but never before the start.
	next, _ = m.Update(keyMsg("k"))
	m = next.(CatalogModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after k, want 0", m.Cursor)
	}
	next, _ = m.Update(keyMsg("up"))
	m = next.(CatalogModel)
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, should stop at the first row", m.Cursor)
	}
}

func TestCatalogModelSelect(t *testing.T) {
	m := NewCatalogModel(testCatalog(t))

	next, _ := m.Update(keyMsg("down"))
	m = next.(CatalogModel)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(CatalogModel)

	if m.Selected == nil {
		t.Fatal("enter should select the definition under the cursor")
	}
	if m.Selected.Name != "constantpredictor" {
		t.Errorf("Selected.Name = %q, want constantpredictor", m.Selected.Name)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestCatalogModelQuit(t *testing.T) {
	m := NewCatalogModel(testCatalog(t))

	next, cmd := m.Update(keyMsg("q"))
	m = next.(CatalogModel)
	if m.Selected != nil {
		t.Error("q should quit without selecting")
	}
	if cmd == nil {
		t.Error("q should return the quit command")
	}
}

func TestCatalogModelView(t *testing.T) {
	m := NewCatalogModel(testCatalog(t))
	view := m.View()

	for _, want := range []string{"Framework Catalog", "RandomForest", "constantpredictor", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if !strings.Contains(view, "automlbenchmark/randomforest:1.4") {
		t.Error("View() should include the docker image ref")
	}
}

func TestCatalogModelWindowResize(t *testing.T) {
	m := NewCatalogModel(testCatalog(t))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	m = next.(CatalogModel)
	if m.Height != 5 {
		t.Errorf("Height = %d, small windows should clamp to 5", m.Height)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = next.(CatalogModel)
	if m.Height != 34 {
		t.Errorf("Height = %d, want 34", m.Height)
	}
}
