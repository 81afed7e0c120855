package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header represents a command header with title, command, and parameters.
// Used at the start of long-running commands to provide context.
type Header struct {
	Title   string   // e.g., "SERVICE DISCOVERY"
	Command string   // e.g., "printbridge discover"
	Params  []Detail // e.g., {"Service type", "_printbridge._tcp"}
	Width   int      // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title, command string) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// AddParam appends a parameter line; parameters render in insertion order
func (h *Header) AddParam(key, value string) *Header {
	h.Params = append(h.Params, Detail{Key: key, Value: value})
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))
	commandLine := HeaderCommandStyle.Render(h.Command)
	topSection := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	var content string
	if len(h.Params) > 0 {
		dividerWidth := width - 6 // Account for border and padding
		if dividerWidth < 10 {
			dividerWidth = 10
		}
		divider := lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Render(strings.Repeat("─", dividerWidth))

		var paramLines []string
		for _, param := range h.Params {
			keyStyled := HeaderParamKeyStyle.Render(param.Key + ":")
			valueStyled := HeaderParamValueStyle.Render(param.Value)
			paramLines = append(paramLines, keyStyled+" "+valueStyled)
		}
		paramsSection := strings.Join(paramLines, "\n")

		content = lipgloss.JoinVertical(lipgloss.Left, topSection, divider, paramsSection)
	} else {
		content = topSection
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2). // Account for border characters
		Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
