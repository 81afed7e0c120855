package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/printbridge/internal/client"
	"github.com/muurk/printbridge/internal/config"
	"github.com/muurk/printbridge/internal/discovery"
	"github.com/muurk/printbridge/internal/logging"
	"github.com/muurk/printbridge/internal/printing"
	"github.com/muurk/printbridge/internal/ui"
)

// Command flags
var (
	servicePath    string // Service binary to spawn
	serviceURL     string // Attach to a running service instead of spawning
	requestTimeout string // Per-request timeout override
	jsonOutput     bool
	verbose        bool

	printPrinter   string
	printPaperSize string

	dataFile      string
	dataType      string
	dataPrinter   string
	dataPaperSize string

	discoverTimeout int
)

func init() {
	// Common flags for service commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&servicePath, "binary", "", "Service binary to spawn (default: configured binary_path)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "url", "", "Attach to a running service at this URL instead of spawning")
	rootCmd.PersistentFlags().StringVar(&requestTimeout, "timeout", "", "Per-request timeout, e.g. 5s or 1m (default: configured)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on stderr")

	// Add subcommands directly to root
	rootCmd.AddCommand(printersCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(printDataCmd)
	rootCmd.AddCommand(defaultCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(serverStatusCmd)
	rootCmd.AddCommand(shutdownCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// initCommandLogging turns on debug logs for --verbose and defers to
// PRINTBRIDGE_LOG_LEVEL otherwise, staying silent when neither is set.
func initCommandLogging() {
	if verbose {
		// Ignore error, GetLogger will create a fallback logger
		_ = logging.Initialize("debug")
		return
	}
	_ = logging.InitializeFromEnv()
}

// loadRegistryOrDefaults returns the user configuration, falling back to
// defaults when the file cannot be read. Commands that only consume
// settings should still work with a broken file; 'config set' fails
// loudly instead so it cannot silently replace one.
func loadRegistryOrDefaults() *config.Registry {
	reg, err := config.LoadRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default configuration: %v\n", err)
		return config.NewRegistry()
	}
	return reg
}

// newServiceClient creates a service client from the flags and the user
// configuration.
func newServiceClient() (*client.Client, error) {
	initCommandLogging()

	reg := loadRegistryOrDefaults()

	var c *client.Client
	if serviceURL != "" {
		c = client.NewClientWithURL(serviceURL)
	} else {
		binary := servicePath
		if binary == "" {
			binary = reg.ServiceBinary()
		}
		c = client.NewClient(binary)
		c.SetStartupTimeout(reg.StartupTimeout())
	}

	c.SetRequestTimeout(reg.RequestTimeout())
	if requestTimeout != "" {
		timeout, err := time.ParseDuration(requestTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value: %w", err)
		}
		c.SetRequestTimeout(timeout)
	}
	return c, nil
}

// attachedClient builds a client for an already-running instance, never
// spawning one: --url when given, the configured fixed address otherwise.
func attachedClient() (*client.Client, string, error) {
	initCommandLogging()

	reg := loadRegistryOrDefaults()

	target := serviceURL
	if target == "" {
		host := "127.0.0.1"
		port := 6789
		if reg.Service != nil {
			if reg.Service.Host != "" {
				host = reg.Service.Host
			}
			if reg.Service.Port != 0 {
				port = reg.Service.Port
			}
		}
		target = fmt.Sprintf("http://%s:%d", host, port)
	}

	c := client.NewClientWithURL(target)
	c.SetRequestTimeout(reg.RequestTimeout())
	if requestTimeout != "" {
		timeout, err := time.ParseDuration(requestTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("invalid timeout value: %w", err)
		}
		c.SetRequestTimeout(timeout)
	}
	return c, target, nil
}

// withService starts the service (or verifies the attached instance),
// runs fn, and stops any spawned subprocess afterwards.
func withService(fn func(ctx context.Context, c *client.Client) error) error {
	c, err := newServiceClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	message := "Starting print service..."
	if serviceURL != "" {
		message = "Connecting to print service..."
	}
	start := func() error {
		_, err := c.Start(ctx)
		return err
	}

	if jsonOutput {
		err = start()
	} else {
		err = ui.RunWithSpinner(message, start)
	}
	if err != nil {
		if errors.Is(err, ui.ErrAborted) {
			return err
		}
		reportFailure("Service unavailable", err, nil)
		return err
	}
	defer c.Stop()

	return fn(ctx, c)
}

// reportFailure renders a failure box, or a JSON error object with --json.
func reportFailure(title string, err error, extraTips []string) {
	if jsonOutput {
		_ = outputJSON(map[string]any{
			"success": false,
			"error":   client.GetShortErrorMessage(err),
		})
		return
	}

	tips := append(client.GetTroubleshootingTips(err), extraTips...)
	ui.NewPrinter(os.Stdout).PrintFailure(title, err, tips)
}

// outputJSON writes v as indented JSON on stdout.
func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printerDetails builds the detail rows shown for one printer.
func printerDetails(printer *printing.Printer) []ui.Detail {
	details := []ui.Detail{
		{Key: "Name", Value: printer.Name},
		{Key: "Status", Value: printer.Status},
	}
	if printer.Driver != "" {
		details = append(details, ui.Detail{Key: "Driver", Value: printer.Driver})
	}
	if len(printer.PaperSizes) > 0 {
		details = append(details, ui.Detail{Key: "Paper sizes", Value: ui.Truncate(strings.Join(printer.PaperSizes, ", "), 60)})
	}
	return details
}

// printersCmd lists the installed print queues
var printersCmd = &cobra.Command{
	Use:   "printers",
	Short: "List installed printers",
	Long: `List the print queues installed on this machine.

The service enumerates queues through the platform print system: lpstat
on macOS and Linux, PowerShell on Windows. The system default printer is
marked with ` + ui.DefaultMarker + `.`,
	Example: `  # Human-readable table
  printbridge printers

  # Raw JSON for scripting
  printbridge printers --json`,
	RunE: runPrinters,
}

func runPrinters(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		printers, res := c.ListPrinters(ctx)
		if !res.Success {
			reportFailure("Listing printers failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			return outputJSON(printers)
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		if len(printers) == 0 {
			p.PrintWarning("No printers installed", []ui.Detail{
				{Key: "Hint", Value: "Add a printer in the system settings and retry"},
			})
			return nil
		}

		defaultName := ""
		if def, defRes := c.DefaultPrinter(ctx); defRes.Success && def != nil {
			defaultName = def.Name
		}

		table := ui.NewTable(" ", "NAME", "STATUS", "PAPER SIZES")
		for _, printer := range printers {
			mark := " "
			if printer.Name == defaultName {
				mark = ui.DefaultMarker
			}
			table.AddRow(mark, printer.Name, printer.Status, ui.Truncate(strings.Join(printer.PaperSizes, ", "), 48))
		}

		p.Newline()
		p.PrintTable(table)
		p.Newline()
		p.Println(fmt.Sprintf("  %d printer(s), %s marks the system default", len(printers), ui.DefaultMarker))
		return nil
	})
}

// printCmd submits an on-disk document
var printCmd = &cobra.Command{
	Use:   "print <file>",
	Short: "Print a document",
	Long: `Submit an on-disk document to a printer.

Supported types: pdf, jpg, jpeg, png, bmp, gif, tiff, txt. Without
--printer the configured default printer is used, then the system
default. Paper size falls back the same way.`,
	Example: `  # Print on the default printer
  printbridge print invoice.pdf

  # Pick a printer and paper size
  printbridge print invoice.pdf --printer Office_Laser --paper-size A4`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

func init() {
	printCmd.Flags().StringVar(&printPrinter, "printer", "", "Printer queue name (default: configured, then system default)")
	printCmd.Flags().StringVar(&printPaperSize, "paper-size", "", "Paper size name, e.g. A4 or Letter")
}

func runPrint(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	filePath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("cannot resolve path %q: %w", args[0], err)
	}

	// Reject missing or unsupported documents before spawning the service
	if err := printing.ValidateDocument(filePath); err != nil {
		reportFailure("Print failed", err, []string{
			"Check the file path",
			"Supported types: pdf, jpg, png, bmp, gif, tiff, txt",
		})
		return err
	}

	reg := loadRegistryOrDefaults()
	req := printing.PrintFileRequest{
		FilePath:    filePath,
		PrinterName: printPrinter,
		PaperSize:   printPaperSize,
	}
	if req.PrinterName == "" && reg.Defaults != nil {
		req.PrinterName = reg.Defaults.Printer
	}
	if req.PaperSize == "" && reg.Defaults != nil {
		req.PaperSize = reg.Defaults.PaperSize
	}

	return withService(func(ctx context.Context, c *client.Client) error {
		res := c.PrintFile(ctx, req)
		if !res.Success {
			reportFailure("Print failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			return outputJSON(map[string]any{"success": true, "message": res.Message})
		}

		printerLabel := req.PrinterName
		if printerLabel == "" {
			printerLabel = "system default"
		}
		details := []ui.Detail{
			{Key: "Document", Value: filepath.Base(filePath)},
			{Key: "Printer", Value: printerLabel},
		}
		if req.PaperSize != "" {
			details = append(details, ui.Detail{Key: "Paper", Value: req.PaperSize})
		}
		details = append(details, ui.Detail{Key: "Elapsed", Value: res.Elapsed.Round(time.Millisecond).String()})

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Print job submitted", details)
		return nil
	})
}

// printDataCmd submits inline document data
var printDataCmd = &cobra.Command{
	Use:   "print-data",
	Short: "Print document data from a file or stdin",
	Long: `Submit raw document data for printing.

The data is read from --file or from stdin, base64-encoded, and sent to
the service, which spools it through a temporary file. --type names the
document type so the platform knows how to render it.`,
	Example: `  # Print a PDF arriving on stdin
  generate-report | printbridge print-data --type pdf

  # Print a text ticket from a file on the receipt printer
  printbridge print-data --file ticket.txt --type txt --printer Receipt`,
	RunE: runPrintData,
}

func init() {
	printDataCmd.Flags().StringVar(&dataFile, "file", "", "Read document data from this file instead of stdin")
	printDataCmd.Flags().StringVar(&dataType, "type", "pdf", "Document type: pdf, jpg, png, bmp, gif, tiff or txt")
	printDataCmd.Flags().StringVar(&dataPrinter, "printer", "", "Printer queue name (default: configured, then system default)")
	printDataCmd.Flags().StringVar(&dataPaperSize, "paper-size", "", "Paper size name, e.g. A4 or Letter")
}

func runPrintData(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	var raw []byte
	var err error
	if dataFile != "" {
		raw, err = os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("cannot read data file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("cannot read stdin: %w", err)
		}
	}
	if len(raw) == 0 {
		return fmt.Errorf("no document data: provide --file or pipe data on stdin")
	}

	reg := loadRegistryOrDefaults()
	req := printing.PrintDataRequest{
		Data:        base64.StdEncoding.EncodeToString(raw),
		ContentType: dataType,
		PrinterName: dataPrinter,
		PaperSize:   dataPaperSize,
	}
	if req.PrinterName == "" && reg.Defaults != nil {
		req.PrinterName = reg.Defaults.Printer
	}
	if req.PaperSize == "" && reg.Defaults != nil {
		req.PaperSize = reg.Defaults.PaperSize
	}

	return withService(func(ctx context.Context, c *client.Client) error {
		res := c.PrintData(ctx, req)
		if !res.Success {
			reportFailure("Print failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			return outputJSON(map[string]any{"success": true, "message": res.Message})
		}

		printerLabel := req.PrinterName
		if printerLabel == "" {
			printerLabel = "system default"
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Print job submitted", []ui.Detail{
			{Key: "Size", Value: fmt.Sprintf("%d bytes", len(raw))},
			{Key: "Type", Value: dataType},
			{Key: "Printer", Value: printerLabel},
			{Key: "Elapsed", Value: res.Elapsed.Round(time.Millisecond).String()},
		})
		return nil
	})
}

// defaultCmd shows the system default printer
var defaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Show the system default printer",
	RunE:  runDefault,
}

func runDefault(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		printer, res := c.DefaultPrinter(ctx)
		if !res.Success {
			reportFailure("Querying default printer failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			// null when no default is configured
			return outputJSON(printer)
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		if printer == nil {
			message := res.Message
			if message == "" {
				message = "no default printer configured"
			}
			p.PrintWarning("No default printer", []ui.Detail{
				{Key: "Service", Value: message},
				{Key: "Hint", Value: "Set one in the system settings or pass --printer when printing"},
			})
			return nil
		}

		p.PrintSuccess("Default printer", printerDetails(printer))
		return nil
	})
}

// statusCmd shows one printer by queue name
var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show the status of one printer",
	Example: `  # Queue names with spaces need quoting
  printbridge status "HP LaserJet Pro"`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	name := args[0]
	return withService(func(ctx context.Context, c *client.Client) error {
		printer, res := c.PrinterStatus(ctx, name)
		if !res.Success {
			reportFailure("Printer lookup failed", res.Err, []string{
				"Run 'printbridge printers' to see the installed queues",
			})
			return res.Err
		}

		if jsonOutput {
			return outputJSON(printer)
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Printer found", printerDetails(printer))
		return nil
	})
}

// testCmd checks print system connectivity
var testCmd = &cobra.Command{
	Use:   "test [name]",
	Short: "Test printer connectivity",
	Long: `Check that the platform print system responds and, with a name,
that the named printer is installed and reachable.`,
	Example: `  # Test the print system
  printbridge test

  # Test one printer
  printbridge test Office_Laser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		if len(args) == 1 {
			printer, res := c.TestPrinter(ctx, args[0])
			if !res.Success {
				reportFailure("Printer test failed", res.Err, []string{
					"Run 'printbridge printers' to see the installed queues",
				})
				return res.Err
			}
			if jsonOutput {
				return outputJSON(printer)
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Printer reachable", printerDetails(printer))
			return nil
		}

		printers, res := c.TestPrinters(ctx)
		if !res.Success {
			reportFailure("Printer test failed", res.Err, nil)
			return res.Err
		}
		if jsonOutput {
			return outputJSON(printers)
		}

		details := []ui.Detail{
			{Key: "Printers", Value: fmt.Sprintf("%d detected", len(printers))},
		}
		if res.Message != "" {
			details = append(details, ui.Detail{Key: "Service", Value: res.Message})
		}
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Print system reachable", details)
		return nil
	})
}

// healthCmd probes service liveness
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the service responds",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		health, res := c.Health(ctx)
		if !res.Success {
			reportFailure("Health check failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			return outputJSON(health)
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Service healthy", []ui.Detail{
			{Key: "Status", Value: health.Status},
			{Key: "Checked", Value: time.Unix(health.Timestamp, 0).Format(time.RFC3339)},
			{Key: "Latency", Value: res.Elapsed.Round(time.Millisecond).String()},
		})
		return nil
	})
}

// infoCmd shows service identity and bind address
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show service identity and address",
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		info, res := c.Info(ctx)
		if !res.Success {
			reportFailure("Info query failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			return outputJSON(info)
		}

		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Service info", []ui.Detail{
			{Key: "Name", Value: info.Name},
			{Key: "Version", Value: info.Version},
			{Key: "Status", Value: info.Status},
			{Key: "Address", Value: fmt.Sprintf("%s:%d", info.Host, info.Port)},
			{Key: "Debug", Value: fmt.Sprintf("%t", info.Debug)},
		})
		return nil
	})
}

// serverStatusCmd shows service runtime statistics
var serverStatusCmd = &cobra.Command{
	Use:   "server-status",
	Short: "Show service runtime statistics",
	RunE:  runServerStatus,
}

func runServerStatus(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		status, res := c.Status(ctx)
		if !res.Success {
			reportFailure("Status query failed", res.Err, nil)
			return res.Err
		}

		if jsonOutput {
			return outputJSON(status)
		}

		uptime := (time.Duration(status.Process.UptimeSeconds) * time.Second).String()
		ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Service status", []ui.Detail{
			{Key: "Host", Value: fmt.Sprintf("%s (%s/%s)", status.System.Hostname, status.System.OS, status.System.Arch)},
			{Key: "Runtime", Value: fmt.Sprintf("%s, %d CPUs", status.System.GoVersion, status.System.NumCPU)},
			{Key: "PID", Value: fmt.Sprintf("%d", status.Process.PID)},
			{Key: "Goroutines", Value: fmt.Sprintf("%d", status.Process.Goroutines)},
			{Key: "Uptime", Value: uptime},
			{Key: "Memory", Value: fmt.Sprintf("%.1f MB", status.Process.MemoryMB)},
			{Key: "CPU", Value: fmt.Sprintf("%.1f%%", status.Process.CPUPercent)},
		})
		return nil
	})
}

// shutdownCmd stops a running service instance
var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Stop a running service instance",
	Long: `Ask a running service instance to shut down gracefully.

This never spawns a service. Without --url it targets the fixed address
from the configuration (default http://127.0.0.1:6789).`,
	Example: `  # Stop the instance on the configured fixed port
  printbridge shutdown

  # Stop a specific instance
  printbridge shutdown --url http://127.0.0.1:54213`,
	RunE: runShutdown,
}

func runShutdown(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	c, target, err := attachedClient()
	if err != nil {
		return err
	}

	res := c.Shutdown(context.Background())
	if !res.Success {
		reportFailure("Shutdown failed", res.Err, []string{
			"Check that a service instance is running at " + target,
		})
		return res.Err
	}

	if jsonOutput {
		return outputJSON(map[string]any{"success": true, "message": res.Message})
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Service stopping", []ui.Detail{
		{Key: "Target", Value: target},
		{Key: "Service", Value: res.Message},
	})
	return nil
}

// discoverCmd scans the local network for announced instances
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover print services on the network",
	Long: `Discover PrintBridge services via mDNS/DNS-SD.

Instances started with --mdns announce themselves as ` + discovery.ServiceType + `
on the local network. Spawned instances are loopback-only and never
announced.`,
	Example: `  # Scan with the default 5 second timeout
  printbridge discover

  # Longer scan for sleepy networks
  printbridge discover --timeout 15`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 5, "Scan timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	initCommandLogging()

	p := ui.NewPrinter(cmd.OutOrStdout())
	if !jsonOutput {
		header := ui.NewHeader("Service Discovery", "printbridge discover")
		header.AddParam("Service type", discovery.ServiceType)
		header.AddParam("Scan window", fmt.Sprintf("%ds", discoverTimeout))
		p.PrintHeader(header)
	}

	var services []*discovery.Service
	scan := func() error {
		var err error
		services, err = discovery.Scan(time.Duration(discoverTimeout) * time.Second)
		return err
	}

	var err error
	if jsonOutput {
		err = scan()
	} else {
		err = ui.RunWithSpinner(fmt.Sprintf("Scanning for print services (%ds)...", discoverTimeout), scan)
	}
	if err != nil {
		if errors.Is(err, ui.ErrAborted) {
			return err
		}
		reportFailure("Discovery failed", err, []string{
			"mDNS may be blocked on this network",
			"Attach directly with --url http://<host>:<port>",
		})
		return err
	}

	if jsonOutput {
		out := make([]map[string]any, 0, len(services))
		for _, svc := range services {
			out = append(out, map[string]any{
				"instance": svc.Instance,
				"hostname": svc.Hostname,
				"ip":       svc.IP,
				"port":     svc.Port,
				"url":      svc.BaseURL(),
				"version":  svc.Version(),
			})
		}
		return outputJSON(out)
	}

	if len(services) == 0 {
		p.PrintWarning("No print services found", []ui.Detail{
			{Key: "Hint", Value: "Only instances started with --mdns announce themselves"},
			{Key: "Direct", Value: "Attach with --url http://<host>:<port> instead"},
		})
		return nil
	}

	table := ui.NewTable("INSTANCE", "ADDRESS", "VERSION", "URL")
	for _, svc := range services {
		version := svc.Version()
		if version == "" {
			version = "-"
		}
		table.AddRow(svc.Instance, fmt.Sprintf("%s:%d", svc.IP, svc.Port), version, svc.BaseURL())
	}

	p.Newline()
	p.PrintTable(table)
	p.Newline()
	p.Println(fmt.Sprintf("  %d service(s). Try 'printbridge --url <url> printers'.", len(services)))
	return nil
}

// watchCmd streams job events
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream print job events",
	Long: `Subscribe to the service event stream and print each event.

Job events arrive as documents move through submitted, completed, or
failed; the service also sends periodic heartbeats. With --json each
event is printed as one JSON line. Stop with ctrl+c.`,
	Example: `  # Watch an already-running instance
  printbridge --url http://127.0.0.1:6789 watch

  # Machine-readable stream
  printbridge --url http://127.0.0.1:6789 watch --json`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	return withService(func(ctx context.Context, c *client.Client) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := ui.NewPrinter(cmd.OutOrStdout())
		if !jsonOutput {
			p.Println("Watching print events, ctrl+c to stop")
			p.Newline()
		}

		err := c.WatchEvents(ctx, func(event client.Event) {
			if jsonOutput {
				line, err := json.Marshal(event)
				if err != nil {
					return
				}
				fmt.Println(string(line))
				return
			}
			p.Println(formatEvent(event))
		})
		if err != nil && ctx.Err() == nil {
			reportFailure("Event stream failed", err, nil)
			return err
		}
		return nil
	})
}

// configCmd manages the persistent client configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
	Long: `Show and edit the persistent client configuration.

Settings live in a YAML file in the platform config directory and cover
how the service is located and launched plus print defaults applied when
a request leaves them blank.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Example: `  # Use a specific service build
  printbridge config set service.binary_path /opt/printbridge/printbridge-server

  # Always print on the receipt printer unless told otherwise
  printbridge config set defaults.printer Receipt_Printer`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if jsonOutput {
		out := make(map[string]string, len(config.SettableKeys))
		for _, key := range config.SettableKeys {
			value, err := reg.Get(key)
			if err != nil {
				return err
			}
			out[key] = value
		}
		return outputJSON(out)
	}

	table := ui.NewTable("KEY", "VALUE")
	for _, key := range config.SettableKeys {
		value, err := reg.Get(key)
		if err != nil {
			return err
		}
		if value == "" {
			value = "-"
		}
		table.AddRow(key, value)
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.Newline()
	p.PrintTable(table)
	p.Newline()
	if path, err := config.GetConfigPath(); err == nil {
		p.Println("  File: " + path)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// A broken file must fail here rather than be replaced by defaults
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	key, value := args[0], args[1]
	if err := reg.Set(key, value); err != nil {
		if !jsonOutput {
			ui.NewPrinter(cmd.OutOrStdout()).PrintFailure("Configuration not changed", err, []string{
				"Valid keys: " + strings.Join(config.SettableKeys, ", "),
			})
		}
		return err
	}

	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if jsonOutput {
		return outputJSON(map[string]string{key: value})
	}

	details := []ui.Detail{
		{Key: "Key", Value: key},
		{Key: "Value", Value: value},
	}
	if path, err := config.GetConfigPath(); err == nil {
		details = append(details, ui.Detail{Key: "File", Value: path})
	}
	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Configuration updated", details)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(map[string]string{"path": path})
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatEvent renders one event as a single line for the watch stream.
func formatEvent(event client.Event) string {
	stamp := ui.EventTimestampStyle.Render(time.Unix(event.Timestamp, 0).Format("15:04:05"))

	if event.Type == "heartbeat" {
		return stamp + "  heartbeat"
	}

	// Pad before styling; ANSI escapes confuse width-based padding
	stage := fmt.Sprintf("%-9s", event.Stage)
	if style, ok := ui.EventStageStyles[event.Stage]; ok {
		stage = style.Render(stage)
	}

	line := fmt.Sprintf("%s  %s  job %s", stamp, stage, shortJobID(event.JobID))
	if event.Printer != "" {
		line += "  on " + event.Printer
	}
	if event.Detail != "" {
		line += "  (" + event.Detail + ")"
	}
	return line
}

// shortJobID trims a UUID to its first block for display.
func shortJobID(jobID string) string {
	if len(jobID) > 8 {
		return jobID[:8]
	}
	return jobID
}
