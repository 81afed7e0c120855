// Printbridge-server is a loopback HTTP service exposing the host's printers.
//
// It wraps the platform print system (CUPS on macOS/Linux, PowerShell on
// Windows) behind a small JSON API so desktop applications can enumerate
// printers and submit documents without shelling out themselves. A parent
// process spawns it with --output-port and reads the PORT:<port> line from
// stdout to learn the bound address.
//
// Usage:
//
//	printbridge-server [flags]
//
// See 'printbridge-server --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/printbridge/internal/server"
	"github.com/muurk/printbridge/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Service flags
var (
	host       string
	port       int
	outputPort bool
	debug      bool
	logLevel   string
	mdns       bool
)

var rootCmd = &cobra.Command{
	Use:   "printbridge-server",
	Short: "PrintBridge print service",
	Long: `A loopback HTTP service exposing the host's printers as a JSON API.

The service wraps the platform print system and serves printer enumeration,
print submission, and job events to local clients. When started with
--output-port it binds an ephemeral port and announces it on stdout as a
single PORT:<port> line; all diagnostics go to stderr so the handshake
stays unambiguous.

Note: For the command-line client, use the separate 'printbridge' utility.`,
	Example: `  # Run on the fixed default port
  printbridge-server

  # Run on an ephemeral port and announce it (how launchers start it)
  printbridge-server --output-port

  # Fixed custom port with mDNS announcement and debug logging
  printbridge-server --port 9100 --mdns --debug`,
	Version: version.Version,
	RunE:    runServer,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().StringVar(&host, "host", server.DefaultHost, "Bind address")
	rootCmd.Flags().IntVar(&port, "port", server.DefaultPort, "Listen port (ignored with --output-port)")
	rootCmd.Flags().BoolVar(&outputPort, "output-port", false, "Bind an ephemeral port and print PORT:<port> on stdout")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; empty = quiet)")
	rootCmd.Flags().BoolVar(&mdns, "mdns", false, "Advertise the service over mDNS")
}

func runServer(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Host:       host,
		Port:       port,
		OutputPort: outputPort,
		Debug:      debug,
		LogLevel:   logLevel,
		MDNS:       mdns,
	}

	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("printbridge-server %s\n", version.Full())
	},
}
