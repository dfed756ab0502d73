package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/taskboard/internal/workspace"
	"github.com/mesh-intelligence/taskboard/pkg/types"
)

const columnWidth = 28

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(columnWidth)
	headerStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	dueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// renderBoard lays out the collections of a board side by side. Board and
// collection colors tint the title and the column borders.
func renderBoard(view workspace.BoardView) string {
	title := titleStyle
	if view.Color != "" {
		title = title.Foreground(lipgloss.Color(view.Color))
	}
	header := title.Render(fmt.Sprintf("%s (#%d)", view.Name, view.ID))
	if len(view.Collections) == 0 {
		return header + "\n(no collections)"
	}

	columns := make([]string, 0, len(view.Collections))
	for _, c := range view.Collections {
		style := columnStyle
		if c.Color != "" {
			style = style.BorderForeground(lipgloss.Color(c.Color))
		}
		columns = append(columns, style.Render(renderCollection(c)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}

func renderCollection(c workspace.CollectionView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (#%d)", c.Name, c.ID)))
	if len(c.Tasks) == 0 {
		b.WriteString("\n-")
		return b.String()
	}
	for _, t := range c.Tasks {
		b.WriteString("\n")
		b.WriteString(renderTask(t))
	}
	return b.String()
}

func renderTask(t types.Task) string {
	box := "[ ]"
	name := t.Name
	if t.Done() {
		box = "[x]"
		name = doneStyle.Render(name)
	}
	line := fmt.Sprintf("%s %s #%d", box, name, t.ID)
	if t.DueDate != nil {
		line += "\n    " + dueStyle.Render("due "+formatDue(t.DueDate))
	}
	return line
}
