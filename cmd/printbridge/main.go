// Printbridge is the command-line client for the PrintBridge service.
//
// It spawns the printbridge-server binary on demand, discovers the bound
// port from the PORT:<port> handshake on stdout, and talks to the JSON API
// from there. With --url it attaches to an already-running instance
// instead of spawning one.
//
// Usage:
//
//	printbridge [command] [flags]
//
// See 'printbridge --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/printbridge/internal/urls"
	"github.com/muurk/printbridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "printbridge",
	Short: "PrintBridge Command-Line Client",
	Long: `A command-line client for the PrintBridge print service.

Lists printers, submits print jobs, and inspects the service. Unless --url
is given, each command spawns the printbridge-server binary, reads the
PORT:<port> handshake from its stdout, and stops it again afterwards.

Note: To run the service itself, use the separate 'printbridge-server'
binary.

Documentation: ` + urls.GettingStarted,
	Version: version.Version,
	Example: `  # List installed printers
  printbridge printers

  # Print a document on the default printer
  printbridge print invoice.pdf

  # Print on a specific printer and paper size
  printbridge print invoice.pdf --printer Office_Laser --paper-size A4

  # Talk to an already-running service instead of spawning one
  printbridge --url http://127.0.0.1:6789 printers`,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("printbridge %s\n", version.Full())
	},
}
