package ui

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// RunOnceModel is a Bubble Tea model that renders once and exits.
// This is used for "run once and exit" output patterns rather than
// interactive TUIs.
type RunOnceModel struct {
	content string
	width   int
	height  int
}

// NewRunOnceModel creates a model that will render the given content and exit
func NewRunOnceModel(content string) RunOnceModel {
	width, height := GetTerminalSize()
	return RunOnceModel{
		content: content,
		width:   width,
		height:  height,
	}
}

// Init implements tea.Model
func (m RunOnceModel) Init() tea.Cmd {
	// Immediately signal we're done after first render
	return tea.Quit
}

// Update implements tea.Model
func (m RunOnceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = GetTerminalSize()
	}
	return m, nil
}

// View implements tea.Model
func (m RunOnceModel) View() string {
	return m.content
}

// RenderOnce renders content using Bubble Tea's rendering engine and
// immediately exits. This provides consistent terminal rendering
// without requiring user interaction.
func RenderOnce(content string) error {
	p := tea.NewProgram(NewRunOnceModel(content), tea.WithOutput(os.Stdout))
	_, err := p.Run()
	return err
}

// Printer provides methods for printing UI components to a writer.
// This is the primary way CLI commands should output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(header *Header) {
	p.Println(header.SetWidth(p.width).Render())
	p.Newline()
}

// PrintTable prints an aligned table
func (p *Printer) PrintTable(table *Table) {
	p.Println(table.SetWidth(p.width).Render())
}

// PrintResult prints a result box
func (p *Printer) PrintResult(result *Result) {
	p.Newline()
	p.Println(result.SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details []Detail) {
	result := NewSuccessResult(title)
	result.Details = details
	p.PrintResult(result)
}

// PrintFailure prints a failure result box with troubleshooting tips
func (p *Printer) PrintFailure(title string, err error, troubleshooting []string) {
	p.PrintResult(NewFailureResult(title, err, troubleshooting))
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details []Detail) {
	result := NewWarningResult(title)
	result.Details = details
	p.PrintResult(result)
}
