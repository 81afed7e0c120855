package printing

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// resolveDataTarget turns inline request data into an on-disk document.
//
// When Data names an existing file, that file is printed directly and
// cleanup is a no-op. Otherwise Data is decoded as standard base64
// (raw text bytes when decoding fails, which covers plain-text tickets)
// and written to a temp file whose suffix comes from ContentType, so
// extension-based dispatch works downstream. cleanup removes the temp
// file and is safe to call exactly once.
func resolveDataTarget(req PrintDataRequest) (path string, cleanup func(), err error) {
	noop := func() {}

	if info, statErr := os.Stat(req.Data); statErr == nil && !info.IsDir() {
		return req.Data, noop, nil
	}

	payload, decodeErr := base64.StdEncoding.DecodeString(req.Data)
	if decodeErr != nil {
		payload = []byte(req.Data)
	}

	suffix := strings.ToLower(strings.TrimPrefix(req.ContentType, "."))
	file, err := os.CreateTemp("", "printbridge-*."+suffix)
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp document: %w", err)
	}

	if _, err := file.Write(payload); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", noop, fmt.Errorf("failed to write temp document: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", noop, fmt.Errorf("failed to close temp document: %w", err)
	}

	name := file.Name()
	return name, func() { os.Remove(name) }, nil
}

// printViaTempFile implements PrintData for any backend in terms of
// its PrintFile.
func printViaTempFile(ctx context.Context, b Backend, req PrintDataRequest) error {
	path, cleanup, err := resolveDataTarget(req)
	if err != nil {
		return err
	}
	defer cleanup()

	return b.PrintFile(ctx, PrintFileRequest{
		FilePath:    path,
		PrinterName: req.PrinterName,
		PaperSize:   req.PaperSize,
	})
}
