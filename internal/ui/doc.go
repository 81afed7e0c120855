// Package ui provides terminal UI components for the printbridge CLI.
//
// This package uses Bubble Tea and Lipgloss to render polished terminal
// output for print commands. The components follow a "run once and exit"
// pattern - they render output compellingly but don't require user
// interaction, except for the spinner which animates while a call is in
// flight.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - Table: aligned columns for printer and discovery listings
//   - Result: success/failure boxes with details and troubleshooting
//   - RunWithSpinner: animated wait for service startup and slow calls
//   - Printer: writer-bound facade the commands print through
//
// Example:
//
//	printer := ui.NewPrinter(cmd.OutOrStdout())
//
//	err := ui.RunWithSpinner("Starting print service...", func() error {
//	    _, err := cli.Start(ctx)
//	    return err
//	})
//	if err != nil {
//	    printer.PrintFailure("Service startup", err, hints)
//	    return err
//	}
//
//	printer.PrintSuccess("Print job submitted", []ui.Detail{
//	    {Key: "Printer", Value: "Office_Laser"},
//	    {Key: "Duration", Value: "182ms"},
//	})
//
// # Logging Integration
//
// This package expects logging to be controlled via the
// PRINTBRIDGE_LOG_LEVEL environment variable. When unset or empty, zap
// logging is silent, allowing the curated UI output to be displayed
// cleanly. Set PRINTBRIDGE_LOG_LEVEL to "debug", "info", "warn", or
// "error" to enable logging output.
//
// # Non-interactive Output
//
// Width adapts to the terminal and is capped for readability. When
// stdout is not a terminal the spinner is skipped entirely; boxes and
// tables still render, with colors stripped by the terminal profile
// detection in Lipgloss.
package ui
