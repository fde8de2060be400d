package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/benchdef/pkg/framework"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: an interactive catalog viewer.
func (c *CLI) browseCommand() *cobra.Command {
	flags := &resolveFlags{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the resolved catalog interactively",
		Long: `Browse opens the resolved catalog in an interactive table. Selecting a
framework prints its full definition on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			result, err := c.runPipeline(ctx, flags)
			if err != nil {
				return err
			}
			if result.Catalog.Len() == 0 {
				printInfo("Catalog is empty")
				return nil
			}

			model := NewCatalogModel(result.Catalog)
			prog := tea.NewProgram(model, tea.WithContext(ctx))
			final, err := prog.Run()
			if err != nil {
				return err
			}

			if m, ok := final.(CatalogModel); ok && m.Selected != nil {
				printNewline()
				printDefinition(*m.Selected)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// CatalogModel - Interactive catalog browsing
// =============================================================================

// CatalogModel is the bubbletea model for interactive catalog browsing.
type CatalogModel struct {
	Definitions []framework.Definition
	Cursor      int
	Selected    *framework.Definition
	Height      int
	Offset      int
}

// NewCatalogModel creates a catalog browser over the resolved definitions.
func NewCatalogModel(c *framework.Catalog) CatalogModel {
	return CatalogModel{
		Definitions: c.Definitions(),
		Cursor:      0,
		Height:      15,
		Offset:      0,
	}
}

func (m CatalogModel) Init() tea.Cmd {
	return nil
}

func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Definitions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			def := m.Definitions[m.Cursor]
			m.Selected = &def
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CatalogModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Framework Catalog"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Definitions) {
		end = len(m.Definitions)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		def := m.Definitions[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		params := "—"
		if n := len(def.Params); n > 0 {
			params = fmt.Sprintf("%d", n)
		}

		rows = append(rows, []string{cursor, def.Name, def.Version, def.Module, def.DockerImage.Ref(), params})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Framework", "Version", "Module", "Image", "Params").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Definitions) {
				return lipgloss.NewStyle()
			}

			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorDim)
			}
			if actualIdx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Definitions))))

	return b.String()
}
