// Package urls holds the documentation links surfaced in errors, hints,
// and help text.
//
// Every link lives here so a documentation reshuffle is a one-file change.
// The constants cover setup guides per print backend, the service startup
// handshake, troubleshooting, and the HTTP API reference.
//
// Usage:
//
//	import "github.com/muurk/printbridge/internal/urls"
//
//	fmt.Printf("Setup guide: %s\n", urls.CUPSSetup)
package urls
