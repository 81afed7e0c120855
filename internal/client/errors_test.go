package client

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		subtype   TransportSubtype
		retryable bool
	}{
		{
			name:      "deadline exceeded",
			err:       &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: context.DeadlineExceeded},
			subtype:   TransportTimeout,
			retryable: true,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{
				Op:  "dial",
				Err: os.NewSyscallError("connect", syscall.ECONNREFUSED),
			}},
			subtype:   TransportConnectionRefused,
			retryable: true,
		},
		{
			name: "connection reset",
			err: &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: &net.OpError{
				Op:  "read",
				Err: os.NewSyscallError("read", syscall.ECONNRESET),
			}},
			subtype:   TransportConnectionReset,
			retryable: true,
		},
		{
			name: "dns failure",
			err: &url.Error{Op: "Get", URL: "http://bogus.invalid", Err: &net.OpError{
				Op:  "dial",
				Err: &net.DNSError{Err: "no such host", Name: "bogus.invalid", IsNotFound: true},
			}},
			subtype:   TransportDNS,
			retryable: false,
		},
		{
			name:      "anything else",
			err:       errors.New("wire gremlins"),
			subtype:   TransportGeneral,
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := classifyTransport("GET /printer/list", "http://127.0.0.1:1/printer/list", tt.err)
			if te.Subtype != tt.subtype {
				t.Errorf("expected subtype %v, got %v", tt.subtype, te.Subtype)
			}
			if te.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, te.Retryable)
			}
			if !errors.Is(te, tt.err) {
				t.Error("classified error should wrap the cause")
			}
		})
	}
}

func TestStartupErrorMessage(t *testing.T) {
	err := &StartupError{
		Path:     "/opt/printbridge-server",
		ExitCode: 3,
		Stderr:   "cannot bind: address already in use\n",
	}

	msg := err.Error()
	if !strings.Contains(msg, "/opt/printbridge-server") {
		t.Errorf("message should name the binary: %q", msg)
	}
	if !strings.Contains(msg, "code 3") {
		t.Errorf("message should carry the exit code: %q", msg)
	}
	if !strings.Contains(msg, "address already in use") {
		t.Errorf("message should carry the stderr tail: %q", msg)
	}
}

func TestStartupErrorUnwrap(t *testing.T) {
	cause := errors.New("fork/exec: no such file")
	err := &StartupError{Path: "/missing", ExitCode: -1, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("StartupError should unwrap to its cause")
	}
}

func TestIsStartupTimeout(t *testing.T) {
	timeoutErr := &StartupTimeoutError{Path: "/opt/printbridge-server", Elapsed: 10 * time.Second}
	if !IsStartupTimeout(timeoutErr) {
		t.Error("expected match for StartupTimeoutError")
	}
	if IsStartupTimeout(&StartupError{}) {
		t.Error("StartupError must not match")
	}
	if IsStartupTimeout(nil) {
		t.Error("nil must not match")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable transport", &TransportError{Subtype: TransportTimeout, Retryable: true}, true},
		{"non-retryable transport", &TransportError{Subtype: TransportDNS, Retryable: false}, false},
		{"service 500", &ServiceError{StatusCode: 500, Message: "boom"}, true},
		{"service 404", &ServiceError{StatusCode: 404, Message: "unknown"}, false},
		{"service 400", &ServiceError{StatusCode: 400, Message: "bad"}, false},
		{"startup failure", &StartupError{ExitCode: 1}, false},
		{"plain error", errors.New("nope"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"startup error", &StartupError{Path: "/x", ExitCode: 1}, "exited during startup"},
		{"startup timeout", &StartupTimeoutError{Path: "/x", Elapsed: time.Second}, "--output-port"},
		{"already running", &AlreadyRunningError{PID: 99}, "pid 99"},
		{"refused", &TransportError{Subtype: TransportConnectionRefused, URL: "http://127.0.0.1:1"}, "Nothing is listening"},
		{"timeout", &TransportError{Subtype: TransportTimeout}, "did not respond"},
		{"dns", &TransportError{Subtype: TransportDNS}, "resolve"},
		{"service 500", &ServiceError{StatusCode: 500, Message: "spooler"}, "platform printing failure"},
		{"service 400", &ServiceError{StatusCode: 400, Message: "filePath is required"}, "filePath is required"},
		{"unknown", errors.New("mystery"), "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := GetTroubleshootingHint(tt.err)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("hint %q does not mention %q", hint, tt.contains)
			}
		})
	}
}

func TestGetTroubleshootingTips(t *testing.T) {
	tips := GetTroubleshootingTips(&StartupTimeoutError{Path: "/x", Elapsed: time.Second})
	if len(tips) == 0 {
		t.Fatal("expected tips for a startup timeout")
	}
	for _, tip := range tips {
		if strings.HasPrefix(tip, "•") || strings.HasPrefix(tip, " ") {
			t.Errorf("tips should be bare items, got %q", tip)
		}
	}

	// 4xx rejections carry their own message and need no extra advice
	if tips := GetTroubleshootingTips(&ServiceError{StatusCode: 400, Message: "bad"}); len(tips) != 0 {
		t.Errorf("expected no tips for a 4xx rejection, got %v", tips)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"startup", &StartupError{ExitCode: 2}, "service exited during startup (code 2)"},
		{"timeout", &StartupTimeoutError{}, "service startup timed out"},
		{"running", &AlreadyRunningError{PID: 7}, "service already running (pid 7)"},
		{"transport", &TransportError{Subtype: TransportConnectionRefused}, "cannot reach service: connection refused"},
		{"service", &ServiceError{StatusCode: 500, Message: "lpstat failed"}, "lpstat failed"},
		{"plain", errors.New("odd"), "odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetShortErrorMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTransportSubtypeString(t *testing.T) {
	tests := []struct {
		subtype TransportSubtype
		want    string
	}{
		{TransportGeneral, "network error"},
		{TransportTimeout, "timeout"},
		{TransportConnectionRefused, "connection refused"},
		{TransportConnectionReset, "connection reset"},
		{TransportDNS, "dns failure"},
	}

	for _, tt := range tests {
		if got := tt.subtype.String(); got != tt.want {
			t.Errorf("subtype %d: expected %q, got %q", tt.subtype, tt.want, got)
		}
	}
}
