package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key-value line inside a result box. Details render in
// the order they were added.
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType // Success, failure, or warning
	Title           string     // e.g., "Print job submitted"
	Details         []Detail   // Key-value details to display
	Error           error      // Error (for failure results)
	Troubleshooting []string   // Troubleshooting tips (for failure results)
	Width           int        // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string) *Result {
	return &Result{
		Type:  ResultSuccess,
		Title: title,
		Width: GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string) *Result {
	return &Result{
		Type:  ResultWarning,
		Title: title,
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	switch r.Type {
	case ResultFailure:
		return r.renderFailure()
	case ResultWarning:
		return r.renderBox("⚠  WARNING", WarningColor)
	default:
		return r.renderBox(SuccessMarker+"  SUCCESS", SuccessColor)
	}
}

// renderBox renders a success or warning box
func (r *Result) renderBox(badge string, color lipgloss.Color) string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, titleStyle.Render(fmt.Sprintf("   %s  ─  %s", badge, r.Title)))
	lines = append(lines, "")

	for _, detail := range r.Details {
		keyStyled := ResultKeyStyle.Render(fmt.Sprintf("   %s:", detail.Key))
		valueStyled := ResultValueStyle.Render(detail.Value)
		lines = append(lines, keyStyled+" "+valueStyled)
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(width - 2).
		Padding(0, 2).
		Render(content)
}

// renderFailure renders a failure result box
func (r *Result) renderFailure() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	titleLine := ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title))
	lines = append(lines, "")
	lines = append(lines, titleLine)
	lines = append(lines, "")

	if r.Error != nil {
		errorLine := ErrorMessageStyle.Render("   Error: " + r.Error.Error())
		lines = append(lines, errorLine)
		lines = append(lines, "")
	}

	for _, detail := range r.Details {
		keyStyled := ResultKeyStyle.Render(fmt.Sprintf("   %s:", detail.Key))
		valueStyled := ResultValueStyle.Render(detail.Value)
		lines = append(lines, keyStyled+" "+valueStyled)
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width))
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(0, 2).
		Render(content)
}

// renderTroubleshootingBox renders the inner troubleshooting box
func (r *Result) renderTroubleshootingBox(width int) string {
	var lines []string

	lines = append(lines, TroubleshootingTitleStyle.Render("Troubleshooting:"))
	lines = append(lines, "")

	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	content := strings.Join(lines, "\n")

	innerWidth := width - 12 // Indent within outer box
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(content)
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// --- Convenience functions for quick rendering ---

// RenderSuccess renders a success box with the given title and ordered details
func RenderSuccess(title string, details []Detail) string {
	result := NewSuccessResult(title)
	result.Details = details
	return result.Render()
}

// RenderFailure renders a failure box with the given title, error, and troubleshooting tips
func RenderFailure(title string, err error, troubleshooting []string) string {
	return NewFailureResult(title, err, troubleshooting).Render()
}

// RenderWarning renders a warning box with the given title and ordered details
func RenderWarning(title string, details []Detail) string {
	result := NewWarningResult(title)
	result.Details = details
	return result.Render()
}
