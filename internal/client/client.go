package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/printbridge/internal/logging"
	"github.com/muurk/printbridge/internal/printing"
)

const (
	// DefaultRequestTimeout bounds printer and print calls, which may
	// sit behind a slow platform spooler
	DefaultRequestTimeout = 5 * time.Second

	// DefaultHealthTimeout bounds liveness probes
	DefaultHealthTimeout = 3 * time.Second
)

// CallResult carries the outcome of one service call.
type CallResult struct {
	// Success is whether the call produced a successful envelope
	Success bool
	// Message is the human-readable message from the envelope, if any
	Message string
	// Err is the typed failure, nil on success
	Err error
	// Elapsed is the wall-clock duration of the call
	Elapsed time.Duration
}

// failure builds a failed CallResult.
func failure(err error, elapsed time.Duration) CallResult {
	return CallResult{Success: false, Err: err, Elapsed: elapsed}
}

// HealthStatus is the payload of GET /app/health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// ServiceInfo is the payload of GET /app/info.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Debug   bool   `json:"debug"`
}

// SystemStats is the host block of GET /app/status.
type SystemStats struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	GoVersion string `json:"goVersion"`
	NumCPU    int    `json:"numCPU"`
	Hostname  string `json:"hostname"`
}

// ProcessStats is the process block of GET /app/status. MemoryMB and
// CPUPercent are zero when the service could not probe the platform.
type ProcessStats struct {
	PID           int     `json:"pid"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
	MemoryMB      float64 `json:"memoryMB"`
	CPUPercent    float64 `json:"cpuPercent"`
}

// ServiceStatus is the payload of GET /app/status.
type ServiceStatus struct {
	System  SystemStats  `json:"system"`
	Process ProcessStats `json:"process"`
}

// Event is one message from the /events stream.
type Event struct {
	Type      string `json:"type"`
	JobID     string `json:"jobId,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Printer   string `json:"printer,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Client talks to a print service over loopback HTTP. It either spawns
// the service binary itself and discovers the port from the startup
// handshake, or attaches to an already-running instance by URL.
type Client struct {
	// BaseURL is the service root, e.g. "http://127.0.0.1:54213".
	// Set by Start in spawn mode.
	BaseURL string

	// RequestTimeout bounds printer and print calls
	RequestTimeout time.Duration

	// HealthTimeout bounds health probes
	HealthTimeout time.Duration

	// HTTPClient performs the requests
	HTTPClient *http.Client

	launcher *Launcher
	logger   *zap.Logger
}

// NewClient creates a client that spawns the given service binary on
// Start and discovers its port from the handshake line.
func NewClient(binaryPath string) *Client {
	return &Client{
		RequestTimeout: DefaultRequestTimeout,
		HealthTimeout:  DefaultHealthTimeout,
		HTTPClient:     &http.Client{},
		launcher:       NewLauncher(binaryPath),
		logger:         logging.GetLogger(),
	}
}

// NewClientWithURL creates a client attached to a service that is
// already running. Start and Stop are no-ops in this mode.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:        baseURL,
		RequestTimeout: DefaultRequestTimeout,
		HealthTimeout:  DefaultHealthTimeout,
		HTTPClient:     &http.Client{},
		logger:         logging.GetLogger(),
	}
}

// SetRequestTimeout overrides the timeout for printer and print calls.
func (c *Client) SetRequestTimeout(timeout time.Duration) {
	c.RequestTimeout = timeout
}

// SetHealthTimeout overrides the timeout for health probes.
func (c *Client) SetHealthTimeout(timeout time.Duration) {
	c.HealthTimeout = timeout
}

// SetStartupTimeout overrides how long Start waits for the handshake.
// No-op in attach mode.
func (c *Client) SetStartupTimeout(timeout time.Duration) {
	if c.launcher != nil {
		c.launcher.SetStartupTimeout(timeout)
	}
}

// Start spawns the service subprocess and waits for the port handshake.
// In attach mode it verifies the configured URL with a health probe
// instead.
func (c *Client) Start(ctx context.Context) (*ServiceHandle, error) {
	if c.launcher == nil {
		if _, res := c.Health(ctx); !res.Success {
			return nil, res.Err
		}
		return nil, nil
	}

	handle, err := c.launcher.Start(ctx)
	if err != nil {
		return nil, err
	}
	c.BaseURL = handle.BaseURL
	return handle, nil
}

// Stop terminates the spawned service subprocess. No-op in attach mode
// and safe to call repeatedly.
func (c *Client) Stop() error {
	if c.launcher == nil {
		return nil
	}
	return c.launcher.Stop()
}

// Running reports whether a spawned service subprocess is alive.
func (c *Client) Running() bool {
	return c.launcher != nil && c.launcher.Running()
}

// ListPrinters fetches the installed printers. A host with no printers
// yields an empty slice and a successful result.
func (c *Client) ListPrinters(ctx context.Context) ([]printing.Printer, CallResult) {
	var printers []printing.Printer
	res := c.get(ctx, "/printer/list", c.RequestTimeout, &printers)
	return printers, res
}

// DefaultPrinter fetches the system default queue. Both the printer and
// the error are nil when no default is configured; the result message
// says so.
func (c *Client) DefaultPrinter(ctx context.Context) (*printing.Printer, CallResult) {
	var printer *printing.Printer
	res := c.get(ctx, "/printer/default", c.RequestTimeout, &printer)
	return printer, res
}

// PrinterStatus fetches one printer by queue name. An unknown name is a
// ServiceError with status 404.
func (c *Client) PrinterStatus(ctx context.Context, name string) (*printing.Printer, CallResult) {
	var printer printing.Printer
	res := c.get(ctx, "/printer/status/"+url.PathEscape(name), c.RequestTimeout, &printer)
	if !res.Success {
		return nil, res
	}
	return &printer, res
}

// TestPrinter checks that the named printer is reachable.
func (c *Client) TestPrinter(ctx context.Context, name string) (*printing.Printer, CallResult) {
	var printer printing.Printer
	res := c.post(ctx, "/printer/test", map[string]string{"printerName": name}, c.RequestTimeout, &printer)
	if !res.Success {
		return nil, res
	}
	return &printer, res
}

// TestPrinters checks backend connectivity without naming a printer and
// returns whatever queues were detected.
func (c *Client) TestPrinters(ctx context.Context) ([]printing.Printer, CallResult) {
	var printers []printing.Printer
	res := c.post(ctx, "/printer/test", nil, c.RequestTimeout, &printers)
	return printers, res
}

// PrintFile submits an on-disk document for printing.
func (c *Client) PrintFile(ctx context.Context, req printing.PrintFileRequest) CallResult {
	return c.post(ctx, "/printer/print/file", req, c.RequestTimeout, nil)
}

// PrintData submits inline document data for printing.
func (c *Client) PrintData(ctx context.Context, req printing.PrintDataRequest) CallResult {
	return c.post(ctx, "/printer/print/data", req, c.RequestTimeout, nil)
}

// Health probes service liveness with the short health timeout.
func (c *Client) Health(ctx context.Context) (*HealthStatus, CallResult) {
	var health HealthStatus
	res := c.getRaw(ctx, "/app/health", c.HealthTimeout, &health)
	if !res.Success {
		return nil, res
	}
	return &health, res
}

// Info fetches the service identity and bind address.
func (c *Client) Info(ctx context.Context) (*ServiceInfo, CallResult) {
	var info ServiceInfo
	res := c.getRaw(ctx, "/app/info", c.RequestTimeout, &info)
	if !res.Success {
		return nil, res
	}
	return &info, res
}

// Status fetches service runtime statistics.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, CallResult) {
	var status ServiceStatus
	res := c.getRaw(ctx, "/app/status", c.RequestTimeout, &status)
	if !res.Success {
		return nil, res
	}
	return &status, res
}

// Shutdown asks the service to exit gracefully. The subprocess, if this
// client spawned one, exits shortly after the response.
func (c *Client) Shutdown(ctx context.Context) CallResult {
	return c.post(ctx, "/app/shutdown", nil, c.RequestTimeout, nil)
}

// envelope is the common response wrapper.
type envelope struct {
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

// get performs a GET and decodes the envelope's result field into out.
func (c *Client) get(ctx context.Context, path string, timeout time.Duration, out any) CallResult {
	return c.do(ctx, http.MethodGet, path, nil, timeout, out, true)
}

// getRaw performs a GET and decodes the whole body into out, for the
// app routes that respond without a result field.
func (c *Client) getRaw(ctx context.Context, path string, timeout time.Duration, out any) CallResult {
	return c.do(ctx, http.MethodGet, path, nil, timeout, out, false)
}

// post performs a POST with a JSON body and decodes the envelope's
// result field into out. A nil body sends no payload.
func (c *Client) post(ctx context.Context, path string, body any, timeout time.Duration, out any) CallResult {
	return c.do(ctx, http.MethodPost, path, body, timeout, out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body any, timeout time.Duration, out any, unwrap bool) CallResult {
	started := time.Now()
	op := method + " " + path
	target := c.BaseURL + path

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return failure(fmt.Errorf("failed to encode request body: %w", err), time.Since(started))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, reqBody)
	if err != nil {
		return failure(&ParseError{URL: target, Err: err}, time.Since(started))
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Service request", zap.String("op", op))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		elapsed := time.Since(started)
		transportErr := classifyTransport(op, target, err)
		c.logger.Debug("Service request failed",
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(transportErr))
		return failure(transportErr, elapsed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(started)
	if err != nil {
		return failure(classifyTransport(op, target, err), elapsed)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return failure(&ParseError{URL: target, Err: err}, elapsed)
	}

	if resp.StatusCode >= 400 || !env.Success {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return failure(&ServiceError{StatusCode: resp.StatusCode, Message: message}, elapsed)
	}

	if out != nil {
		src := raw
		if unwrap {
			src = env.Result
		}
		// A null result leaves out at its zero value, matching routes
		// that legitimately return nothing.
		if len(src) > 0 && !bytes.Equal(src, []byte("null")) {
			if err := json.Unmarshal(src, out); err != nil {
				return failure(&ParseError{URL: target, Err: err}, elapsed)
			}
		}
	}

	c.logger.Debug("Service request completed",
		zap.String("op", op),
		zap.Duration("elapsed", elapsed))

	return CallResult{Success: true, Message: env.Message, Elapsed: elapsed}
}
