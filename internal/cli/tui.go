package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	rlio "github.com/matzehuels/randlist/pkg/io"
	"github.com/matzehuels/randlist/pkg/list"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// maxCell bounds payload cells in tables.
const maxCell = 40

// =============================================================================
// Node table
// =============================================================================

// renderTable renders rows as a bordered table with the payload of every
// cross-reference target next to its position.
func renderTable(rows []rlio.Row) string {
	return nodeTable(rows, 0, len(rows), list.None).Render()
}

func nodeTable(rows []rlio.Row, from, to, cursor int) *table.Table {
	cells := make([][]string, 0, to-from)
	for i := from; i < to; i++ {
		r := rows[i]
		mark := "  "
		if i == cursor {
			mark = "▸ "
		}
		ref, target := "—", ""
		if r.CrossRef != list.None {
			ref = strconv.Itoa(r.CrossRef)
			target = truncateCell(rows[r.CrossRef].Data)
		}
		cells = append(cells, []string{mark + strconv.Itoa(r.Position), truncateCell(r.Data), ref, target})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Data", "Rand", "Rand data").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			base := lipgloss.NewStyle()
			if from+row == cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			switch col {
			case 2:
				return base.Foreground(colorBlue)
			case 3:
				return base.Foreground(colorDim)
			}
			return base
		})
}

func truncateCell(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-1]) + "…"
}

// =============================================================================
// InspectModel - Interactive list browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a list. Besides moving
// along the list it can follow a node's cross-reference and step back along
// the followed trail.
type InspectModel struct {
	Rows   []rlio.Row
	Cursor int
	Height int
	Offset int

	trail []int
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(rows []rlio.Row) InspectModel {
	return InspectModel{
		Rows:   rows,
		Height: 15,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "home", "g":
			m.moveTo(0)
		case "end", "G":
			m.moveTo(len(m.Rows) - 1)
		case "enter", "right", "l":
			if len(m.Rows) == 0 {
				break
			}
			if ref := m.Rows[m.Cursor].CrossRef; ref != list.None {
				m.trail = append(m.trail, m.Cursor)
				m.moveTo(ref)
			}
		case "backspace", "left", "h":
			if n := len(m.trail); n > 0 {
				prev := m.trail[n-1]
				m.trail = m.trail[:n-1]
				m.moveTo(prev)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo places the cursor on pos, clamped to the list, and scrolls it into
// view.
func (m *InspectModel) moveTo(pos int) {
	pos = min(pos, len(m.Rows)-1)
	pos = max(pos, 0)
	m.Cursor = pos
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Trail returns the positions the cursor followed cross-references from,
// oldest first.
func (m InspectModel) Trail() []int { return m.trail }

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect List"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ follow rand  ⌫ back  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(StyleDim.Render("  (empty list)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	b.WriteString(nodeTable(m.Rows, m.Offset, end, m.Cursor).Render())
	b.WriteString("\n\n")

	cur := m.Rows[m.Cursor]
	b.WriteString("  " + StyleNumber.Render(strconv.Itoa(cur.Position)) + " " + StyleValue.Render(truncateCell(cur.Data)))
	if cur.CrossRef != list.None {
		b.WriteString(" " + StyleDim.Render(iconArrow) + " " + StyleLink.Render(strconv.Itoa(cur.CrossRef)))
	}
	b.WriteString("\n")

	if len(m.trail) > 0 {
		steps := make([]string, 0, len(m.trail)+1)
		for _, p := range m.trail {
			steps = append(steps, strconv.Itoa(p))
		}
		steps = append(steps, strconv.Itoa(m.Cursor))
		b.WriteString(listDimStyle.Render("  trail: " + strings.Join(steps, " → ")))
		b.WriteString("\n")
	}

	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	return b.String()
}
