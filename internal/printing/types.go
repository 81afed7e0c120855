package printing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Printer describes one installed print queue.
type Printer struct {
	// Name is the system queue name, unique per host
	Name string `json:"name"`
	// Status is a human-readable state, e.g. "enabled" or "Paper Jam"
	Status string `json:"status"`
	// Driver is the driver or device URI when the platform reports one
	Driver string `json:"driver,omitempty"`
	// PaperSizes lists supported media names in platform order,
	// with the current default first
	PaperSizes []string `json:"paperSizes"`
}

// PrintFileRequest submits an on-disk document to a printer.
type PrintFileRequest struct {
	// FilePath is the document to print; must exist and have a supported extension
	FilePath string `json:"filePath"`
	// PrinterName selects a queue; empty means the platform default
	PrinterName string `json:"printerName,omitempty"`
	// PaperSize selects a media name, e.g. "A4"; empty means the queue default
	PaperSize string `json:"paperSize,omitempty"`
}

// PrintDataRequest submits inline document data to a printer.
// Data is base64 (preferred) or raw text; if it names an existing
// file the file is printed directly instead.
type PrintDataRequest struct {
	Data        string `json:"data"`
	ContentType string `json:"contentType"`
	PrinterName string `json:"printerName,omitempty"`
	PaperSize   string `json:"paperSize,omitempty"`
}

// supportedExtensions are the document types the backends can hand
// to the platform spooler directly.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".txt":  true,
}

// ValidateDocument checks that path exists and is a printable type.
func ValidateDocument(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("document not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("document is a directory: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return &UnsupportedTypeError{Path: path, Ext: ext}
	}
	return nil
}
