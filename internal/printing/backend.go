package printing

import (
	"context"

	"go.uber.org/zap"
)

// Backend is the platform printing capability. One implementation is
// selected at startup: CUPS tools on unix-like systems, the spooler
// via PowerShell on Windows.
type Backend interface {
	// ListPrinters enumerates installed queues. No printers is not an
	// error; it returns an empty slice.
	ListPrinters(ctx context.Context) ([]Printer, error)

	// DefaultPrinter returns the platform default queue, or nil when
	// no printer is installed.
	DefaultPrinter(ctx context.Context) (*Printer, error)

	// PrintFile submits an on-disk document to the spooler.
	PrintFile(ctx context.Context, req PrintFileRequest) error

	// PrintData materializes inline data and submits it.
	PrintData(ctx context.Context, req PrintDataRequest) error
}

// NewBackend returns the printing backend for the current platform.
func NewBackend(logger *zap.Logger) Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newPlatformBackend(logger)
}

// FindPrinter resolves a queue name against the backend's printer list.
// Unknown names return a NotFoundError.
func FindPrinter(ctx context.Context, b Backend, name string) (*Printer, error) {
	printers, err := b.ListPrinters(ctx)
	if err != nil {
		return nil, err
	}
	for i := range printers {
		if printers[i].Name == name {
			return &printers[i], nil
		}
	}
	return nil, &NotFoundError{Printer: name}
}
