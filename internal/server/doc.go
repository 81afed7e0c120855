// Package server implements the PrintBridge HTTP service.
//
// The service exposes the host's printers over a JSON API on a loopback
// port. A desktop application spawns it as a subprocess, reads the bound
// port from stdout, and drives the API through the client package.
//
// # Port Handshake
//
// With OutputPort set, the server binds port 0 (kernel-assigned) and writes
// a single marker line to stdout before serving:
//
//	PORT:<decimal>
//
// Stdout carries nothing else; log output goes to stderr. Without
// OutputPort the server binds the configured host and port (default
// 127.0.0.1:6789) and prints no marker.
//
// # Routes
//
// Two route groups plus an index and an event stream:
//
//	GET  /                        service index
//	GET  /printer/list            installed printers
//	GET  /printer/default         default printer, null when none
//	GET  /printer/status/{name}   one printer, 404 when unknown
//	POST /printer/test            connectivity check, named or all
//	POST /printer/print/file      submit a file path for printing
//	POST /printer/print/data      submit inline document data
//	GET  /app/health              liveness probe
//	GET  /app/info                service identity and bind address
//	GET  /app/status              system and process statistics
//	POST /app/shutdown            graceful stop
//	GET  /events                  WebSocket event stream
//
// Every response uses the envelope {"result": ..., "success": true} on
// success and {"error": ..., "success": false} on failure. Malformed or
// incomplete bodies are 400, unknown named resources are 404, backend
// failures are 500 with the cause in a "message" field. A handler failure
// never terminates the process.
//
// # Backend Serialization
//
// Platform printing tools are not safe to invoke concurrently, so every
// backend call is serialized behind a mutex. HTTP requests still run
// concurrently up to that point.
//
// # Event Stream
//
// /events upgrades to a WebSocket. The hub broadcasts job lifecycle events
// (submitted, completed, failed, keyed by a uuid jobId) and a heartbeat
// every 30 seconds. Subscribers that stop reading are dropped rather than
// blocking the hub.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{
//	    OutputPort: true,
//	    LogLevel:   "info",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until a shutdown signal, /app/shutdown, or an error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// SIGINT, SIGTERM, and POST /app/shutdown all take the same path: the mDNS
// registration is withdrawn, event subscribers are disconnected, and
// in-flight requests get ten seconds to finish before the process exits
// with code 0.
package server
