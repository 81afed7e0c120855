//go:build !windows

package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeMockService creates an executable shell script standing in for
// the service binary.
func writeMockService(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "printbridge-server")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to create mock service: %v", err)
	}
	return path
}

// Mocks that keep serving exec into sleep so signals reach the process
// holding the pipes.
const mockServiceHappy = `#!/bin/sh
echo "Starting printbridge-server..."
echo "PORT:54213"
echo "Ready"
exec sleep 30
`

const mockServiceTwoMarkers = `#!/bin/sh
echo "PORT:50001"
echo "PORT:50002"
exec sleep 30
`

const mockServiceMarkerMidLine = `#!/bin/sh
echo "info: listening PORT:4567 (loopback)"
exec sleep 30
`

const mockServiceInvalidThenValid = `#!/bin/sh
echo "PORT:0"
echo "PORT:99999"
echo "PORT:4321"
exec sleep 30
`

const mockServiceCrash = `#!/bin/sh
echo "starting up"
echo "cannot bind: address already in use" >&2
exit 3
`

const mockServiceCleanExit = `#!/bin/sh
echo "nothing to do"
exit 0
`

const mockServiceSilent = `#!/bin/sh
exec sleep 30
`

const mockServiceChatty = `#!/bin/sh
echo "PORT:4111"
i=0
while [ $i -lt 2000 ]; do
	echo "filler output line $i ................................................"
	i=$((i+1))
done
exit 0
`

func stopLauncher(t *testing.T, l *Launcher) {
	t.Helper()
	if err := l.Stop(); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

// waitNotRunning polls until the launcher notices the child is gone.
func waitNotRunning(t *testing.T, l *Launcher) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for l.Running() {
		if time.Now().After(deadline) {
			t.Fatal("launcher still reports a running child")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		port  int
		found bool
	}{
		{"bare marker", "PORT:54213", 54213, true},
		{"marker mid line", "info: listening PORT:8080 now", 8080, true},
		{"trailing text", "PORT:443(tls)", 443, true},
		{"lowest valid", "PORT:1", 1, true},
		{"highest valid", "PORT:65535", 65535, true},
		{"leading zeros", "PORT:0080", 80, true},
		{"port zero", "PORT:0", 0, false},
		{"port too large", "PORT:65536", 0, false},
		{"no digits", "PORT:", 0, false},
		{"no marker", "listening on 8080", 0, false},
		{"lowercase marker", "port:8080", 0, false},
		{"empty line", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, found := ParsePort(tt.line)
			if found != tt.found {
				t.Fatalf("expected found=%v, got %v", tt.found, found)
			}
			if port != tt.port {
				t.Errorf("expected port %d, got %d", tt.port, port)
			}
		})
	}
}

func TestLauncherStart_AnnouncesPort(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceHappy))
	defer stopLauncher(t, l)

	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if handle.Port != 54213 {
		t.Errorf("expected port 54213, got %d", handle.Port)
	}
	if handle.BaseURL != "http://127.0.0.1:54213" {
		t.Errorf("unexpected base URL: %s", handle.BaseURL)
	}
	if handle.PID <= 0 {
		t.Errorf("expected a live pid, got %d", handle.PID)
	}
	if !l.Running() {
		t.Error("expected launcher to report running")
	}
	if got := l.Handle(); got == nil || got.Port != handle.Port {
		t.Errorf("handle accessor mismatch: %+v", got)
	}
}

func TestLauncherStart_FirstMarkerWins(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceTwoMarkers))
	defer stopLauncher(t, l)

	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if handle.Port != 50001 {
		t.Errorf("expected first marker port 50001, got %d", handle.Port)
	}
}

func TestLauncherStart_MarkerMidLine(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceMarkerMidLine))
	defer stopLauncher(t, l)

	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if handle.Port != 4567 {
		t.Errorf("expected port 4567, got %d", handle.Port)
	}
}

func TestLauncherStart_InvalidMarkersSkipped(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceInvalidThenValid))
	defer stopLauncher(t, l)

	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if handle.Port != 4321 {
		t.Errorf("expected first valid port 4321, got %d", handle.Port)
	}
}

func TestLauncherStart_ChildExitsBeforeMarker(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceCrash))

	_, err := l.Start(context.Background())
	var startupErr *StartupError
	if !errors.As(err, &startupErr) {
		t.Fatalf("expected StartupError, got %v", err)
	}
	if startupErr.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", startupErr.ExitCode)
	}
	if !strings.Contains(startupErr.Stderr, "address already in use") {
		t.Errorf("expected stderr tail in error, got %q", startupErr.Stderr)
	}
	if l.Running() {
		t.Error("launcher should not report running after a crash")
	}
}

func TestLauncherStart_CleanExitWithoutMarker(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceCleanExit))

	_, err := l.Start(context.Background())
	var startupErr *StartupError
	if !errors.As(err, &startupErr) {
		t.Fatalf("expected StartupError, got %v", err)
	}
	if startupErr.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", startupErr.ExitCode)
	}
}

func TestLauncherStart_Timeout(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceSilent))
	l.SetStartupTimeout(100 * time.Millisecond)

	started := time.Now()
	_, err := l.Start(context.Background())
	elapsed := time.Since(started)

	var timeoutErr *StartupTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected StartupTimeoutError, got %v", err)
	}
	if !IsStartupTimeout(err) {
		t.Error("IsStartupTimeout should match")
	}
	if timeoutErr.Elapsed < 100*time.Millisecond {
		t.Errorf("reported elapsed below the timeout: %v", timeoutErr.Elapsed)
	}
	if elapsed > 5*time.Second {
		t.Errorf("start took far longer than the timeout: %v", elapsed)
	}
	if l.Running() {
		t.Error("child should be terminated after a startup timeout")
	}
}

func TestLauncherStart_ContextCancelled(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceSilent))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := l.Start(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
	if l.Running() {
		t.Error("child should be terminated after context cancellation")
	}
}

func TestLauncherStart_BinaryMissing(t *testing.T) {
	l := NewLauncher(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := l.Start(context.Background())
	var startupErr *StartupError
	if !errors.As(err, &startupErr) {
		t.Fatalf("expected StartupError, got %v", err)
	}
	if startupErr.ExitCode != -1 {
		t.Errorf("expected exit code -1 for spawn failure, got %d", startupErr.ExitCode)
	}
}

func TestLauncherStart_AlreadyRunning(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceHappy))
	defer stopLauncher(t, l)

	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}

	_, err = l.Start(context.Background())
	var runningErr *AlreadyRunningError
	if !errors.As(err, &runningErr) {
		t.Fatalf("expected AlreadyRunningError, got %v", err)
	}
	if runningErr.PID != handle.PID {
		t.Errorf("expected pid %d in error, got %d", handle.PID, runningErr.PID)
	}
}

func TestLauncherStop_Idempotent(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceHappy))

	// Stop before any start is a no-op
	if err := l.Stop(); err != nil {
		t.Fatalf("stop on idle launcher failed: %v", err)
	}

	if _, err := l.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if l.Running() {
		t.Error("expected stopped launcher")
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}
	if l.Handle() != nil {
		t.Error("expected nil handle after stop")
	}
}

func TestLauncherStart_AfterChildExit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "printbridge-server")

	// First run exits right after the marker
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho \"PORT:4000\"\nexit 0\n"), 0755); err != nil {
		t.Fatalf("failed to create mock service: %v", err)
	}

	l := NewLauncher(path)
	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if handle.Port != 4000 {
		t.Errorf("expected port 4000, got %d", handle.Port)
	}

	waitNotRunning(t, l)

	// A dead child must not block a fresh start
	if err := os.WriteFile(path, []byte(mockServiceHappy), 0755); err != nil {
		t.Fatalf("failed to rewrite mock service: %v", err)
	}
	defer stopLauncher(t, l)

	handle, err = l.Start(context.Background())
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if handle.Port != 54213 {
		t.Errorf("expected port 54213 after restart, got %d", handle.Port)
	}
}

func TestLauncherDrainsStdoutAfterMatch(t *testing.T) {
	l := NewLauncher(writeMockService(t, mockServiceChatty))

	handle, err := l.Start(context.Background())
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if handle.Port != 4111 {
		t.Errorf("expected port 4111, got %d", handle.Port)
	}

	// The child writes far more than a pipe buffer after the marker and
	// then exits; it can only get there if the launcher keeps reading.
	waitNotRunning(t, l)
}
