package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/muurk/printbridge/internal/urls"
)

// StartupError reports a service subprocess that exited before announcing
// its port.
type StartupError struct {
	// Path is the service binary that was spawned
	Path string
	// ExitCode is the child's exit code (-1 when it never started)
	ExitCode int
	// Stderr is the tail of the child's stderr output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *StartupError) Error() string {
	msg := fmt.Sprintf("service %q exited with code %d before announcing a port", e.Path, e.ExitCode)
	if e.Stderr != "" {
		msg += "\nstderr: " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// StartupTimeoutError reports a service subprocess that never announced a
// port within the startup window. The child has been terminated.
type StartupTimeoutError struct {
	// Path is the service binary that was spawned
	Path string
	// Elapsed is how long the launcher waited
	Elapsed time.Duration
}

func (e *StartupTimeoutError) Error() string {
	return fmt.Sprintf("service %q did not announce a port within %s", e.Path, e.Elapsed.Round(time.Millisecond))
}

// AlreadyRunningError reports a Start call while a service subprocess is
// still alive.
type AlreadyRunningError struct {
	// PID is the live subprocess
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("service already running (pid %d)", e.PID)
}

// TransportSubtype classifies transport failures for hints and retry
// decisions.
type TransportSubtype int

const (
	TransportGeneral TransportSubtype = iota
	TransportTimeout
	TransportConnectionRefused
	TransportConnectionReset
	TransportDNS
)

// String returns a human-readable name for the subtype
func (s TransportSubtype) String() string {
	switch s {
	case TransportTimeout:
		return "timeout"
	case TransportConnectionRefused:
		return "connection refused"
	case TransportConnectionReset:
		return "connection reset"
	case TransportDNS:
		return "dns failure"
	default:
		return "network error"
	}
}

// TransportError represents a failure reaching the service at all: the
// request never produced an HTTP response.
type TransportError struct {
	// Op is the logical operation, e.g. "GET /printer/list"
	Op string
	// URL is the request target
	URL string
	// Subtype is the transport failure classification
	Subtype TransportSubtype
	// Retryable is whether retrying the call can plausibly succeed
	Retryable bool
	// Underlying error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s (%v)", e.Op, e.Subtype, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError represents a decoded error envelope: the service answered,
// and the answer is a failure.
type ServiceError struct {
	// StatusCode is the HTTP status
	StatusCode int
	// Message is the error field of the envelope
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service returned %d: %s", e.StatusCode, e.Message)
}

// ParseError represents a response body that did not decode.
type ParseError struct {
	// URL is the request target
	URL string
	// Underlying error
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// classifyTransport maps a request error onto a TransportError with the
// right subtype. url.Error wrappers are unwrapped before classification.
func classifyTransport(op, target string, err error) *TransportError {
	te := &TransportError{Op: op, URL: target, Err: err, Subtype: TransportGeneral, Retryable: true}

	cause := err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		cause = urlErr.Err
	}

	switch {
	case os.IsTimeout(err) || errors.Is(cause, context.DeadlineExceeded):
		te.Subtype = TransportTimeout
		te.Retryable = true
	case errors.Is(cause, syscall.ECONNREFUSED):
		te.Subtype = TransportConnectionRefused
		te.Retryable = true
	case errors.Is(cause, syscall.ECONNRESET):
		te.Subtype = TransportConnectionReset
		te.Retryable = true
	default:
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			te.Subtype = TransportDNS
			te.Retryable = false
		}
	}
	return te
}

// IsStartupTimeout reports whether err is a startup-timeout failure.
func IsStartupTimeout(err error) bool {
	var timeoutErr *StartupTimeoutError
	return errors.As(err, &timeoutErr)
}

// IsTransient reports whether retrying the failed call can plausibly
// succeed: retryable transport failures and 5xx service errors.
func IsTransient(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.StatusCode >= 500
	}
	return false
}

// GetTroubleshootingTips returns actionable advice for an error, one item
// per tip. Empty when the message itself is all the guidance there is.
func GetTroubleshootingTips(err error) []string {
	var startupErr *StartupError
	if errors.As(err, &startupErr) {
		return []string{
			"Run the service binary directly to see its output",
			"Check that the binary path is correct",
			"Startup guide: " + urls.ServiceStartup,
		}
	}

	var timeoutErr *StartupTimeoutError
	if errors.As(err, &timeoutErr) {
		return []string{
			"Check that the binary supports the --output-port flag",
			"Increase the startup timeout for slow machines",
			"Startup guide: " + urls.ServiceStartup,
		}
	}

	var runningErr *AlreadyRunningError
	if errors.As(err, &runningErr) {
		return []string{
			fmt.Sprintf("Stop the running instance (pid %d) first", runningErr.PID),
			"Or attach to it with --url instead of spawning",
		}
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		switch transportErr.Subtype {
		case TransportConnectionRefused:
			return []string{
				"The service may have stopped; start it again",
				"Verify the port in the URL matches the announced port",
			}
		case TransportTimeout:
			return []string{
				"The platform print spooler may be hanging",
				"Try increasing the request timeout",
				"Guide: " + urls.TroubleshootingGuide,
			}
		case TransportDNS:
			return []string{
				"Use an IP address instead of a hostname",
				"Check the service URL for typos",
			}
		default:
			return []string{"Guide: " + urls.TroubleshootingGuide}
		}
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		if serviceErr.StatusCode >= 500 {
			return []string{
				"Check that the printer is connected and enabled",
				"Inspect the service log output on stderr",
				"Guide: " + urls.TroubleshootingGuide,
			}
		}
		return nil
	}

	return []string{"Guide: " + urls.TroubleshootingGuide}
}

// GetTroubleshootingHint returns the diagnosis and tips as a single
// plain-text block for unstyled output.
func GetTroubleshootingHint(err error) string {
	summary := hintSummary(err)
	tips := GetTroubleshootingTips(err)
	if len(tips) == 0 {
		return summary
	}

	lines := []string{summary, "Troubleshooting:"}
	for _, tip := range tips {
		lines = append(lines, "  • "+tip)
	}
	return strings.Join(lines, "\n")
}

// hintSummary is the one-sentence diagnosis for an error class.
func hintSummary(err error) string {
	var startupErr *StartupError
	if errors.As(err, &startupErr) {
		return "The print service exited during startup."
	}

	var timeoutErr *StartupTimeoutError
	if errors.As(err, &timeoutErr) {
		return "The print service started but never announced its port."
	}

	var runningErr *AlreadyRunningError
	if errors.As(err, &runningErr) {
		return fmt.Sprintf("A service instance is already running (pid %d).", runningErr.PID)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		switch transportErr.Subtype {
		case TransportConnectionRefused:
			return "Nothing is listening at " + transportErr.URL + "."
		case TransportTimeout:
			return "The service did not respond in time."
		case TransportDNS:
			return "Could not resolve the service host."
		default:
			return "Network communication with the service failed."
		}
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		if serviceErr.StatusCode >= 500 {
			return "The service hit a platform printing failure."
		}
		return "The service rejected the request: " + serviceErr.Message
	}

	return "An unexpected error occurred."
}

// GetShortErrorMessage returns a one-line description for compact output.
func GetShortErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var startupErr *StartupError
	if errors.As(err, &startupErr) {
		return fmt.Sprintf("service exited during startup (code %d)", startupErr.ExitCode)
	}
	var timeoutErr *StartupTimeoutError
	if errors.As(err, &timeoutErr) {
		return "service startup timed out"
	}
	var runningErr *AlreadyRunningError
	if errors.As(err, &runningErr) {
		return fmt.Sprintf("service already running (pid %d)", runningErr.PID)
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return fmt.Sprintf("cannot reach service: %s", transportErr.Subtype)
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	return err.Error()
}
