// Package client embeds the print service in a host application: it
// spawns the service binary, discovers the listening port from the
// startup handshake, and wraps every HTTP route in a typed call.
//
// # Spawn Mode
//
// NewClient takes the path to the service binary. Start launches it
// with --output-port and watches stdout for the handshake line:
//
//	cli := client.NewClient("/usr/local/bin/printbridge-server")
//	handle, err := cli.Start(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Stop()
//
//	printers, res := cli.ListPrinters(ctx)
//
// Startup resolves on the first of three outcomes: the marker line
// appears (the port is adopted), the child exits (StartupError with the
// exit code and stderr tail), or the timeout fires (StartupTimeoutError,
// the child is killed). Start on a live subprocess fails fast with
// AlreadyRunningError; Stop is always safe to repeat.
//
// # Attach Mode
//
// NewClientWithURL points the client at a service something else
// started. Start degrades to a health probe and Stop to a no-op.
//
// # Handshake Line
//
// The service prints "PORT:<port>" on stdout once its listener is
// bound. The marker may be preceded by other output and followed by
// more; only the first valid port counts. ParsePort implements the
// exact match rule.
//
// # Call Results
//
// Every call returns its payload plus a CallResult holding the success
// flag, the envelope message, the typed error, and the elapsed time.
// Failures are never panics: transport problems classify into
// TransportError subtypes, service-side failures decode into
// ServiceError, and GetTroubleshootingHint turns any of them into
// advice fit for an end user.
package client
