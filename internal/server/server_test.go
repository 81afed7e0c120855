package server

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"
)

// syncBuffer stands in for stdout in lifecycle tests.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var portLine = regexp.MustCompile(`^PORT:(\d+)\n$`)

func startServer(t *testing.T, cfg *Config) (*Server, *syncBuffer, chan error) {
	t.Helper()
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	buf := &syncBuffer{}
	srv.announce = buf

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	return srv, buf, errCh
}

func waitForPort(t *testing.T, buf *syncBuffer) int {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if m := portLine.FindStringSubmatch(buf.String()); m != nil {
			port, err := strconv.Atoi(m[1])
			if err != nil || port < 1 || port > 65535 {
				t.Fatalf("announced port %q is out of range", m[1])
			}
			return port
		}
		if time.Now().After(deadline) {
			t.Fatalf("no PORT line announced; stream so far: %q", buf.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartAnnouncesEphemeralPort(t *testing.T) {
	srv, buf, errCh := startServer(t, &Config{OutputPort: true})
	port := waitForPort(t, buf)

	// The announced port must already be serving
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/app/health", port))
	if err != nil {
		t.Fatalf("GET /app/health on announced port: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	srv.requestShutdown()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() = %v, want nil on graceful stop", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after shutdown request")
	}

	// Exactly one marker line and nothing else on the announce stream
	if !portLine.MatchString(buf.String()) {
		t.Errorf("announce stream = %q, want a single PORT line", buf.String())
	}
}

func TestShutdownOverHTTP(t *testing.T) {
	_, buf, errCh := startServer(t, &Config{OutputPort: true})
	port := waitForPort(t, buf)

	url := fmt.Sprintf("http://127.0.0.1:%d/app/shutdown", port)
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("POST /app/shutdown: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shutdown status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop after /app/shutdown")
	}
}

func TestStartBindFailure_PortInUse(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer blocker.Close()
	port := blocker.Addr().(*net.TCPAddr).Port

	srv, err := New(&Config{Port: port})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := srv.Start(); err == nil {
		t.Fatal("Start() = nil, want bind error")
	}
}

func TestStartBindFailure_NoMarker(t *testing.T) {
	srv, err := New(&Config{OutputPort: true, Host: "999.999.999.999"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	buf := &syncBuffer{}
	srv.announce = buf

	if err := srv.Start(); err == nil {
		t.Fatal("Start() = nil, want bind error")
	}
	if buf.String() != "" {
		t.Errorf("announce stream = %q, want empty when the bind fails", buf.String())
	}
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{"output port mode", &Config{OutputPort: true}, "127.0.0.1:0"},
		{"defaults", &Config{}, "127.0.0.1:6789"},
		{"explicit host and port", &Config{Host: "0.0.0.0", Port: 9100}, "0.0.0.0:9100"},
		{"output port overrides fixed port", &Config{OutputPort: true, Port: 9100}, "127.0.0.1:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &Server{config: tt.config}
			if got := srv.listenAddr(); got != tt.want {
				t.Errorf("listenAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPortBeforeStart(t *testing.T) {
	srv := &Server{config: &Config{Port: 4321}}
	if got := srv.Port(); got != 4321 {
		t.Errorf("Port() = %d, want 4321", got)
	}
}
