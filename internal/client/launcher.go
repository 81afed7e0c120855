package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/printbridge/internal/logging"
)

const (
	// PortMarker prefixes the line the service prints once it is bound
	PortMarker = "PORT:"

	// DefaultStartupTimeout bounds the wait for the marker line
	DefaultStartupTimeout = 10 * time.Second

	// stopGrace is how long Stop waits for a clean exit before killing
	stopGrace = 2 * time.Second

	// stderrTailSize caps how much child stderr is retained for errors
	stderrTailSize = 8 * 1024
)

// ParsePort extracts the announced port from one line of service stdout.
// The marker may appear anywhere in the line and text on either side is
// ignored. Returns false when the line carries no valid port.
func ParsePort(line string) (int, bool) {
	idx := strings.Index(line, PortMarker)
	if idx < 0 {
		return 0, false
	}

	rest := line[idx+len(PortMarker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	port, err := strconv.Atoi(rest[:end])
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}

// ServiceHandle describes a successfully started service subprocess.
type ServiceHandle struct {
	// PID is the subprocess id
	PID int
	// Port is the port announced on stdout
	Port int
	// BaseURL is the loopback HTTP base for the announced port
	BaseURL string
}

// Launcher spawns the service binary with --output-port and discovers
// the listening port from the handshake line on stdout.
//
// Startup resolves on exactly one of three transitions: the marker line
// is seen, the child exits, or the startup timeout fires. Whichever
// happens first decides the outcome; the others are ignored.
type Launcher struct {
	// BinaryPath is the service executable to spawn
	BinaryPath string

	// StartupTimeout bounds the wait for the marker line.
	// Zero means DefaultStartupTimeout.
	StartupTimeout time.Duration

	// ExtraArgs are passed to the service after --output-port
	ExtraArgs []string

	logger *zap.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	handle   *ServiceHandle
	waitDone chan error
}

// NewLauncher creates a launcher for the given service binary.
func NewLauncher(binaryPath string) *Launcher {
	return &Launcher{
		BinaryPath:     binaryPath,
		StartupTimeout: DefaultStartupTimeout,
		logger:         logging.GetLogger(),
	}
}

// SetStartupTimeout overrides how long Start waits for the marker line.
func (l *Launcher) SetStartupTimeout(timeout time.Duration) {
	l.StartupTimeout = timeout
}

// Handle returns the current service handle, or nil when nothing is
// running.
func (l *Launcher) Handle() *ServiceHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.runningLocked() {
		return nil
	}
	return l.handle
}

// Running reports whether the service subprocess is still alive.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runningLocked()
}

// runningLocked checks liveness and clears state once the child has been
// reaped. Callers must hold l.mu.
func (l *Launcher) runningLocked() bool {
	if l.cmd == nil {
		return false
	}
	select {
	case err := <-l.waitDone:
		l.logger.Debug("Service subprocess exited",
			zap.Int("pid", l.cmd.Process.Pid),
			zap.Error(err))
		l.cmd = nil
		l.handle = nil
		return false
	default:
		return true
	}
}

// Start spawns the service binary and blocks until the port handshake
// resolves. It returns AlreadyRunningError when a previous child is
// still alive, StartupError when the child exits first, and
// StartupTimeoutError when the timeout fires first (the child is
// terminated in that case).
func (l *Launcher) Start(ctx context.Context) (*ServiceHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.runningLocked() {
		return nil, &AlreadyRunningError{PID: l.handle.PID}
	}

	args := append([]string{"--output-port"}, l.ExtraArgs...)
	cmd := exec.Command(l.BinaryPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, &StartupError{Path: l.BinaryPath, ExitCode: -1, Err: err}
	}

	l.logger.Debug("Service subprocess started",
		zap.String("binary", l.BinaryPath),
		zap.Int("pid", cmd.Process.Pid))

	// First valid marker wins; the scanner keeps draining stdout after
	// the match so the child never blocks on a full pipe.
	portCh := make(chan int, 1)
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		found := false
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			l.logger.Debug("Service stdout", zap.String("line", line))
			if found {
				continue
			}
			if port, ok := ParsePort(line); ok {
				found = true
				portCh <- port
			}
		}
	}()

	stderrTail := &tailBuffer{max: stderrTailSize}
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			l.logger.Debug("Service stderr", zap.String("line", line))
			stderrTail.WriteLine(line)
		}
	}()

	// Wait must not run until both pipes are drained, or output racing
	// the exit would be lost.
	waitDone := make(chan error, 1)
	go func() {
		<-scanDone
		<-stderrDone
		waitDone <- cmd.Wait()
		close(waitDone)
	}()

	timeout := l.startupTimeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	started := time.Now()

	select {
	case port := <-portCh:
		return l.adoptLocked(cmd, port, waitDone), nil

	case err := <-waitDone:
		// The child may have announced the port in the same instant it
		// exited; the announcement came first, so it wins.
		select {
		case port := <-portCh:
			return l.adoptLocked(cmd, port, waitDone), nil
		default:
		}
		return nil, &StartupError{
			Path:     l.BinaryPath,
			ExitCode: exitCode(err),
			Stderr:   stderrTail.String(),
			Err:      err,
		}

	case <-timer.C:
		_ = cmd.Process.Kill()
		<-waitDone
		return nil, &StartupTimeoutError{Path: l.BinaryPath, Elapsed: time.Since(started)}

	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitDone
		return nil, ctx.Err()
	}
}

// adoptLocked records a successfully handshaken child. Callers must hold
// l.mu.
func (l *Launcher) adoptLocked(cmd *exec.Cmd, port int, waitDone chan error) *ServiceHandle {
	handle := &ServiceHandle{
		PID:     cmd.Process.Pid,
		Port:    port,
		BaseURL: fmt.Sprintf("http://127.0.0.1:%d", port),
	}
	l.cmd = cmd
	l.handle = handle
	l.waitDone = waitDone

	l.logger.Info("Service ready",
		zap.Int("pid", handle.PID),
		zap.Int("port", handle.Port))
	return handle
}

// Stop terminates the service subprocess. It asks for a clean exit
// first and kills after a short grace period. Stop is a no-op when
// nothing is running and is safe to call repeatedly.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.runningLocked() {
		return nil
	}

	pid := l.cmd.Process.Pid
	l.logger.Debug("Stopping service subprocess", zap.Int("pid", pid))

	if err := l.cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is not deliverable on every platform
		_ = l.cmd.Process.Kill()
	}

	select {
	case <-l.waitDone:
	case <-time.After(stopGrace):
		_ = l.cmd.Process.Kill()
		<-l.waitDone
	}

	l.logger.Info("Service stopped", zap.Int("pid", pid))
	l.cmd = nil
	l.handle = nil
	return nil
}

func (l *Launcher) startupTimeout() time.Duration {
	if l.StartupTimeout > 0 {
		return l.StartupTimeout
	}
	return DefaultStartupTimeout
}

// exitCode extracts the child's exit code from cmd.Wait's error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// tailBuffer retains the most recent lines written to it, capped by
// byte size.
type tailBuffer struct {
	mu    sync.Mutex
	max   int
	lines []string
	size  int
}

func (b *tailBuffer) WriteLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	b.size += len(line) + 1
	for b.size > b.max && len(b.lines) > 1 {
		b.size -= len(b.lines[0]) + 1
		b.lines = b.lines[1:]
	}
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
