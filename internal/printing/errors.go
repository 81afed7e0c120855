package printing

import (
	"fmt"
	"runtime"

	"github.com/muurk/printbridge/internal/urls"
)

// NotFoundError reports a lookup for a printer name the platform
// does not know about.
type NotFoundError struct {
	// Printer is the queue name that was requested
	Printer string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("printer not found: %s", e.Printer)
}

// CommandError represents a failure running a platform print command.
// This occurs when the command exits non-zero or cannot be started.
type CommandError struct {
	// Command is the command line that failed
	Command string
	// ExitCode is the process exit code (-1 when it never started)
	ExitCode int
	// Stderr is the captured stderr output
	Stderr string
	// Stdout is the captured stdout output (for context)
	Stdout string
	// Underlying error if any
	Err error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("print command %q failed (exit code %d): %v\nstderr: %s",
			e.Command, e.ExitCode, e.Err, e.Stderr)
	}
	return fmt.Sprintf("print command %q failed (exit code %d)\nstderr: %s",
		e.Command, e.ExitCode, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a platform command exceeding its time budget.
type TimeoutError struct {
	// Command is the command that timed out
	Command string
	// Timeout is the duration that was exceeded
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("print command %q timed out after %s\n"+
		"Hint: Check that the print spooler is responsive", e.Command, e.Timeout)
}

// UnsupportedTypeError reports a document whose extension no backend
// knows how to print.
type UnsupportedTypeError struct {
	// Path is the rejected document path
	Path string
	// Ext is the lowercased extension, empty when the path has none
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported document type (no extension): %s", e.Path)
	}
	return fmt.Sprintf("unsupported document type %q: %s", e.Ext, e.Path)
}

// ToolMissingError represents a missing platform print tool (lp, lpstat, etc.).
type ToolMissingError struct {
	// Tool is the name of the missing binary
	Tool string
	// Underlying error
	Err error
}

func (e *ToolMissingError) Error() string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("required print tool not found: %s\n"+
			"Hint: Check the PowerShell installation. Setup guide: %s", e.Tool, urls.WindowsPrinting)
	}
	return fmt.Sprintf("required print tool not found: %s\n"+
		"Hint: Install CUPS client tools. Setup guide: %s", e.Tool, urls.CUPSSetup)
}

func (e *ToolMissingError) Unwrap() error {
	return e.Err
}
