package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const columnPadding = 2

// NewStyledTable creates a themed table model. An unfocused table renders
// without a selected row.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row, focused bool) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(focused),
		// header line plus its border
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	s.Cell = s.Cell.
		Foreground(theme.Text)
	if focused {
		s.Selected = s.Selected.
			Foreground(theme.Text).
			Background(theme.SurfaceVariant).
			Bold(true)
	} else {
		s.Selected = lipgloss.NewStyle()
	}

	t.SetStyles(s)
	return t
}

// FitColumns sizes one column per header to the widest cell.
func FitColumns(headers []string, rows []table.Row) []table.Column {
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		width := lipgloss.Width(h)
		for _, row := range rows {
			if i < len(row) {
				width = max(width, lipgloss.Width(row[i]))
			}
		}
		columns[i] = table.Column{Title: h, Width: width + columnPadding}
	}
	return columns
}

// RenderTable renders a static table for command output.
func RenderTable(theme *Theme, headers []string, rows []table.Row) string {
	return NewStyledTable(theme, FitColumns(headers, rows), rows, false).View()
}
