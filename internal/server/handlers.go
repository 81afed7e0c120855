package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/muurk/printbridge/internal/logging"
	"github.com/muurk/printbridge/internal/printing"
	"github.com/muurk/printbridge/internal/urls"
	"github.com/muurk/printbridge/internal/version"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// routes mounts the /printer and /app groups plus the index and the
// /events stream. Unknown paths fall through to a JSON 404.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /printer/list", s.handlePrinterList)
	mux.HandleFunc("GET /printer/default", s.handlePrinterDefault)
	mux.HandleFunc("GET /printer/status/{name}", s.handlePrinterStatus)
	mux.HandleFunc("POST /printer/test", s.handlePrinterTest)
	mux.HandleFunc("POST /printer/print/file", s.handlePrintFile)
	mux.HandleFunc("POST /printer/print/data", s.handlePrintData)

	mux.HandleFunc("GET /app/health", s.handleAppHealth)
	mux.HandleFunc("GET /app/info", s.handleAppInfo)
	mux.HandleFunc("GET /app/status", s.handleAppStatus)
	mux.HandleFunc("POST /app/shutdown", s.handleAppShutdown)

	mux.HandleFunc("GET /events", s.handleEvents)

	mux.HandleFunc("/", s.handleNotFound)

	return s.withMiddleware(mux)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound,
		fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "printbridge",
		"version": version.Version,
		"docs":    urls.APIReference,
		"routes": map[string]any{
			"printer": []string{
				"GET /printer/list",
				"GET /printer/default",
				"GET /printer/status/{name}",
				"POST /printer/test",
				"POST /printer/print/file",
				"POST /printer/print/data",
			},
			"app": []string{
				"GET /app/health",
				"GET /app/info",
				"GET /app/status",
				"POST /app/shutdown",
			},
			"events": []string{
				"GET /events (websocket)",
			},
		},
		"success": true,
	})
}

// listPrinters serializes backend access behind the mutex.
func (s *Server) listPrinters(ctx context.Context) ([]printing.Printer, error) {
	s.backendMu.Lock()
	defer s.backendMu.Unlock()
	return s.backend.ListPrinters(ctx)
}

func (s *Server) handlePrinterList(w http.ResponseWriter, r *http.Request) {
	printers, err := s.listPrinters(r.Context())
	if err != nil {
		writeBackendError(w, "list printers", err)
		return
	}
	if printers == nil {
		// Zero installed printers is an empty result, not an error.
		printers = []printing.Printer{}
	}
	writeResult(w, printers)
}

func (s *Server) handlePrinterDefault(w http.ResponseWriter, r *http.Request) {
	s.backendMu.Lock()
	printer, err := s.backend.DefaultPrinter(r.Context())
	s.backendMu.Unlock()
	if err != nil {
		writeBackendError(w, "query default printer", err)
		return
	}

	if printer == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"result":  nil,
			"message": "no default printer configured",
			"success": true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  printer,
		"message": fmt.Sprintf("default printer is %s", printer.Name),
		"success": true,
	})
}

func (s *Server) handlePrinterStatus(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	s.backendMu.Lock()
	printer, err := printing.FindPrinter(r.Context(), s.backend, name)
	s.backendMu.Unlock()
	if err != nil {
		writeBackendError(w, "query printer status", err)
		return
	}
	writeResult(w, printer)
}

func (s *Server) handlePrinterTest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PrinterName string `json:"printerName"`
	}
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.PrinterName != "" {
		s.backendMu.Lock()
		printer, err := printing.FindPrinter(r.Context(), s.backend, req.PrinterName)
		s.backendMu.Unlock()
		if err != nil {
			writeBackendError(w, "test printer", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"result":  printer,
			"message": fmt.Sprintf("printer %s responded (status: %s)", printer.Name, printer.Status),
			"success": true,
		})
		return
	}

	printers, err := s.listPrinters(r.Context())
	if err != nil {
		writeBackendError(w, "test printers", err)
		return
	}
	if printers == nil {
		printers = []printing.Printer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  printers,
		"message": fmt.Sprintf("%d printer(s) detected", len(printers)),
		"success": true,
	})
}

func (s *Server) handlePrintFile(w http.ResponseWriter, r *http.Request) {
	var req printing.PrintFileRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "filePath is required")
		return
	}

	jobID := s.hub.JobSubmitted(req.PrinterName, filepath.Base(req.FilePath))
	logging.LogPrintJob(jobID, req.PrinterName, "submitted", req.FilePath)

	s.backendMu.Lock()
	err := s.backend.PrintFile(r.Context(), req)
	s.backendMu.Unlock()
	if err != nil {
		s.hub.JobFailed(jobID, req.PrinterName, err)
		logging.LogPrintJob(jobID, req.PrinterName, "failed", err.Error())
		writeBackendError(w, "print file", err)
		return
	}

	s.hub.JobCompleted(jobID, req.PrinterName)
	logging.LogPrintJob(jobID, req.PrinterName, "completed", req.FilePath)
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  true,
		"message": "print job submitted",
		"success": true,
	})
}

func (s *Server) handlePrintData(w http.ResponseWriter, r *http.Request) {
	var req printing.PrintDataRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Data == "" {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}
	if req.ContentType == "" {
		writeError(w, http.StatusBadRequest, "contentType is required")
		return
	}

	jobID := s.hub.JobSubmitted(req.PrinterName, "inline."+req.ContentType)
	logging.LogPrintJob(jobID, req.PrinterName, "submitted", "inline "+req.ContentType)

	s.backendMu.Lock()
	err := s.backend.PrintData(r.Context(), req)
	s.backendMu.Unlock()
	if err != nil {
		s.hub.JobFailed(jobID, req.PrinterName, err)
		logging.LogPrintJob(jobID, req.PrinterName, "failed", err.Error())
		writeBackendError(w, "print data", err)
		return
	}

	s.hub.JobCompleted(jobID, req.PrinterName)
	logging.LogPrintJob(jobID, req.PrinterName, "completed", "inline "+req.ContentType)
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  true,
		"message": "print job submitted",
		"success": true,
	})
}

func (s *Server) handleAppHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"success":   true,
	})
}

func (s *Server) handleAppInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "printbridge",
		"version": version.Version,
		"status":  "running",
		"host":    s.host(),
		"port":    s.Port(),
		"debug":   s.config.Debug,
		"success": true,
	})
}

func (s *Server) handleAppStatus(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()

	proc := map[string]any{
		"pid":           os.Getpid(),
		"goroutines":    runtime.NumGoroutine(),
		"uptimeSeconds": int64(time.Since(s.startTime).Seconds()),
	}
	// Process accounting is best effort; the rest of the payload stands
	// even when the platform probe fails.
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil && mem != nil {
			proc["memoryMB"] = math.Round(float64(mem.RSS)/1024/1024*100) / 100
		}
		if cpu, err := p.CPUPercent(); err == nil {
			proc["cpuPercent"] = math.Round(cpu*100) / 100
		}
	} else {
		logging.Debug("Process stats unavailable", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"system": map[string]any{
			"os":        runtime.GOOS,
			"arch":      runtime.GOARCH,
			"goVersion": runtime.Version(),
			"numCPU":    runtime.NumCPU(),
			"hostname":  hostname,
		},
		"process": proc,
		"success": true,
	})
}

func (s *Server) handleAppShutdown(w http.ResponseWriter, r *http.Request) {
	logging.Info("Shutdown requested", zap.String("remote_addr", r.RemoteAddr))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "shutting down",
		"success": true,
	})

	// The response must flush before the listener starts draining.
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.requestShutdown()
	}()
}
