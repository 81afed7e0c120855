// Package printing provides platform printer access for the PrintBridge service.
//
// This package defines the Backend capability the HTTP service is built on
// and selects one implementation per platform at build time: CUPS command
// line tools (lpstat, lpoptions, lp) on Linux and macOS, the spooler via
// PowerShell CIM queries on Windows.
//
// # Backend Capability
//
//	backend := printing.NewBackend(logger)
//	printers, err := backend.ListPrinters(ctx)
//	err = backend.PrintFile(ctx, printing.PrintFileRequest{
//	    FilePath:    "/tmp/report.pdf",
//	    PrinterName: "Office_Laser",
//	    PaperSize:   "A4",
//	})
//
// Zero installed printers is an empty list, not an error. Unknown queue
// names surface as NotFoundError so callers can distinguish them from
// platform failures.
//
// # Command Execution
//
// All platform tools run through Runner, which bounds each invocation
// with a timeout, captures stdout/stderr, and translates failures into
// typed errors (CommandError, TimeoutError, ToolMissingError). The
// service serializes backend calls; the runner itself makes no
// concurrency assumptions.
//
// # Documents
//
// PrintFile accepts PDF, common image formats, and plain text; anything
// else is rejected with UnsupportedTypeError before the spooler sees it.
// PrintData materializes inline payloads first: an existing file path is
// printed directly, anything else is base64-decoded (raw text when
// decoding fails) into a temp file suffixed by its content type.
//
// # Paper Sizes
//
// The package carries a catalog of standard media dimensions in
// millimeters (ISO/US sheet sizes, receipt rolls, label stock) keyed by
// normalized name. Platforms report media names; the catalog answers
// dimension lookups for hosts that need physical sizes.
package printing
