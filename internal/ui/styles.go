package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the printbridge CLI
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, X marks
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
	DefaultPadding   = 2   // Default padding inside boxes
)

// Shared styles for the printbridge CLI
var (
	// HeaderTitleStyle is for the main command title (e.g., "SERVICE DISCOVERY")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command path (e.g., "printbridge discover")
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Service:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamValueStyle is for parameter values (e.g., "http://127.0.0.1:54213")
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// SpinnerStyle is for the startup spinner glyph
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// SpinnerLabelStyle is for "Starting print service..."
	SpinnerLabelStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				PaddingLeft(1)

	// SuccessTitleStyle is for the success result title
	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// ErrorTitleStyle is for the error result title
	ErrorTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// ErrorMessageStyle is for error message text
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// ResultKeyStyle is for result detail keys
	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	// ResultValueStyle is for result detail values
	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// TroubleshootingTitleStyle is for "Troubleshooting:" headers
	TroubleshootingTitleStyle = lipgloss.NewStyle().
					Foreground(MutedColor).
					Bold(true)

	// TroubleshootingItemStyle is for troubleshooting bullet points
	TroubleshootingItemStyle = lipgloss.NewStyle().
					Foreground(MutedColor)

	// TableHeaderStyle is for printer table column headers
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// TableCellStyle is for printer table cells
	TableCellStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// TableMutedCellStyle is for secondary table cells
	TableMutedCellStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	// TableDefaultMarkStyle is for the default-printer marker
	TableDefaultMarkStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// EventStageStyles color the job stages on the watch stream
	EventStageStyles = map[string]lipgloss.Style{
		"submitted": lipgloss.NewStyle().Foreground(WarningColor),
		"completed": lipgloss.NewStyle().Foreground(SuccessColor),
		"failed":    lipgloss.NewStyle().Foreground(ErrorColor),
	}

	// EventTimestampStyle is for event times on the watch stream
	EventTimestampStyle = lipgloss.NewStyle().
				Foreground(MutedColor)
)

// Status markers
const (
	SuccessMarker  = "✓"
	FailureMarker  = "✗"
	DefaultMarker  = "★"
	EnabledMarker  = "●"
	DisabledMarker = "○"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, 24 // Default fallback
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width, height
}

// IsInteractive reports whether stdout is a terminal. Spinners and
// live rendering are skipped when it is not.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// HeaderBorderStyle returns the border style for command headers
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2) // Account for border characters
}

// SuccessBoxStyle returns the border style for success result boxes
func SuccessBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SuccessColor).
		Width(width - 2).
		Padding(0, 2)
}

// ErrorBoxStyle returns the border style for error result boxes
func ErrorBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(0, 2)
}

// WarningBoxStyle returns the border style for warning result boxes
func WarningBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width - 2).
		Padding(0, 2)
}

// TroubleshootingBoxStyle returns the border style for troubleshooting sections
func TroubleshootingBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width - 8). // Indented within error box
		Padding(0, 1)
}

// RenderHorizontalDivider creates a horizontal line of the specified width
func RenderHorizontalDivider(width int, char string) string {
	result := ""
	for i := 0; i < width; i++ {
		result += char
	}
	return lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(result)
}
