package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows of aligned columns under a styled header line.
// Cells may carry their own styling; widths are measured with ANSI
// sequences stripped so styled cells align with plain ones.
type Table struct {
	Columns []string
	Rows    [][]string
	Width   int
}

// NewTable creates a table with the given column headers
func NewTable(columns ...string) *Table {
	return &Table{
		Columns: columns,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (t *Table) SetWidth(width int) *Table {
	t.Width = width
	return t
}

// AddRow appends a row of cells, one per column
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// columnWidths returns the display width of each column
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	return widths
}

// Render returns the aligned, styled table as a string
func (t *Table) Render() string {
	widths := t.columnWidths()

	var b strings.Builder

	headerCells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headerCells[i] = padCell(TableHeaderStyle.Render(col), widths[i])
	}
	b.WriteString("  " + strings.Join(headerCells, "  "))
	b.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * (len(widths) - 1)
	divider := lipgloss.NewStyle().Foreground(MutedColor).Render(strings.Repeat("─", total))
	b.WriteString("  " + divider)
	b.WriteString("\n")

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padCell(cell, widths[i])
		}
		b.WriteString("  " + strings.Join(cells, "  "))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}

// padCell pads a possibly styled cell to the column width
func padCell(cell string, width int) string {
	gap := width - lipgloss.Width(cell)
	if gap <= 0 {
		return cell
	}
	return cell + strings.Repeat(" ", gap)
}

// Truncate shortens s to at most max runes, marking the cut with an
// ellipsis. Used to keep wide cells like paper-size lists in bounds.
func Truncate(s string, max int) string {
	if max <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
