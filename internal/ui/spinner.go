package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrAborted is returned when the user interrupts a spinner wait.
var ErrAborted = errors.New("aborted by user")

// waitDoneMsg carries the wrapped operation's outcome into the model
type waitDoneMsg struct {
	err error
}

// waitModel animates a spinner until the wrapped operation finishes.
type waitModel struct {
	spinner spinner.Model
	message string
	run     func() error

	err      error
	aborted  bool
	quitting bool
}

func newWaitModel(message string, run func() error) waitModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(SpinnerStyle),
	)
	return waitModel{spinner: sp, message: message, run: run}
}

// Init implements tea.Model
func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

// start runs the wrapped operation in the program's command goroutine
func (m waitModel) start() tea.Msg {
	return waitDoneMsg{err: m.run()}
}

// Update implements tea.Model
func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case waitDoneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.aborted = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m waitModel) View() string {
	if m.quitting {
		return ""
	}
	return "\n  " + m.spinner.View() + SpinnerLabelStyle.Render(m.message) + "\n"
}

// RunWithSpinner runs fn while animating a spinner next to message.
// When stdout is not a terminal the spinner is skipped and fn runs
// inline. Ctrl-C abandons the wait with ErrAborted; the operation's
// own error is returned otherwise.
func RunWithSpinner(message string, fn func() error) error {
	if !IsInteractive() {
		return fn()
	}

	final, err := tea.NewProgram(newWaitModel(message, fn)).Run()
	if err != nil {
		return err
	}

	model, ok := final.(waitModel)
	if !ok {
		return nil
	}
	if model.aborted {
		return ErrAborted
	}
	return model.err
}
