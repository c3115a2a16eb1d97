package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/conceptmap/conceptmerge/pkg/graph"
	"github.com/conceptmap/conceptmerge/pkg/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive module explorer.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <graph.json>",
		Short: "Explore a combined graph module by module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadFile(args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewModuleListModel(g), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// ModuleListModel - Interactive module browser
// =============================================================================

// ModuleListModel is the bubbletea model for browsing modules. Enter opens
// the concepts of the selected module; esc returns to the list.
type ModuleListModel struct {
	Modules []layout.Module
	Cursor  int
	Height  int
	Offset  int

	// Open is the module whose concepts are shown, nil in list view.
	Open *layout.Module

	neighbors map[string][]string
}

// NewModuleListModel creates a module list over g.
func NewModuleListModel(g *graph.Combined) ModuleListModel {
	neighbors := make(map[string][]string)
	for _, e := range g.Links {
		neighbors[e.Source] = append(neighbors[e.Source], e.Target)
		neighbors[e.Target] = append(neighbors[e.Target], e.Source)
	}
	return ModuleListModel{
		Modules:   layout.GroupByModule(g.Nodes),
		Height:    15,
		neighbors: neighbors,
	}
}

func (m ModuleListModel) Init() tea.Cmd {
	return nil
}

func (m ModuleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Open == nil {
				return m, tea.Quit
			}
			m.Open = nil
		case "up", "k":
			if m.Open == nil && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Open == nil && m.Cursor < len(m.Modules)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if m.Open == nil && len(m.Modules) > 0 {
				mod := m.Modules[m.Cursor]
				m.Open = &mod
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ModuleListModel) View() string {
	if m.Open != nil {
		return m.moduleView(*m.Open)
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Modules"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	if len(m.Modules) == 0 {
		b.WriteString(listDimStyle.Render("  (empty graph)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Modules))
	for i := m.Offset; i < end; i++ {
		mod := m.Modules[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%3d  %-40s %s", cursor, mod.Num, moduleTitle(mod),
			listDimStyle.Render(fmt.Sprintf("%d concepts", len(mod.Nodes))))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Modules))))
	return b.String()
}

// moduleView renders the concepts of one module with their links.
func (m ModuleListModel) moduleView(mod layout.Module) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(moduleTitle(mod)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(mod.Nodes))
	for _, n := range mod.Nodes {
		var same, cross []string
		for _, id := range m.neighbors[n.ID] {
			if strings.HasPrefix(id, n.Course+graph.IDSeparator) {
				same = append(same, id)
			} else {
				cross = append(cross, id)
			}
		}
		slices.Sort(same)
		slices.Sort(cross)
		rows = append(rows, []string{n.ID, strings.Join(same, ", "), strings.Join(cross, ", ")})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Concept", "Links", "Cross-course").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

func moduleTitle(mod layout.Module) string {
	if len(mod.Nodes) == 0 || mod.Nodes[0].ModuleTitle == "" {
		return fmt.Sprintf("Module %d", mod.Num)
	}
	return mod.Nodes[0].ModuleTitle
}
