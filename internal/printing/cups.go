//go:build !windows

package printing

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// cupsBackend drives printing through the CUPS command line tools
// (lpstat, lpoptions, lp). It works on Linux and macOS.
type cupsBackend struct {
	runner *Runner
	logger *zap.Logger
}

func newPlatformBackend(logger *zap.Logger) Backend {
	return &cupsBackend{
		runner: NewRunner(0, logger),
		logger: logger,
	}
}

func (b *cupsBackend) ListPrinters(ctx context.Context) ([]Printer, error) {
	stdout, _, err := b.runner.Run(ctx, "lpstat", "-p")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			// lpstat -p exits non-zero when no destinations exist;
			// an empty queue set is not a failure.
			return []Printer{}, nil
		}
		return nil, err
	}

	printers := []Printer{}
	for _, line := range strings.Split(stdout, "\n") {
		if !strings.HasPrefix(line, "printer ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		name := fields[1]
		status := "enabled"
		if strings.Contains(line, "disabled") {
			status = "disabled"
		}

		printers = append(printers, Printer{
			Name:       name,
			Status:     status,
			Driver:     b.printerInterface(ctx, name),
			PaperSizes: b.paperSizes(ctx, name),
		})
	}

	b.logger.Debug("enumerated printers", zap.Int("count", len(printers)))
	return printers, nil
}

func (b *cupsBackend) DefaultPrinter(ctx context.Context) (*Printer, error) {
	printers, err := b.ListPrinters(ctx)
	if err != nil {
		return nil, err
	}
	if len(printers) == 0 {
		return nil, nil
	}

	// lpstat -d reports "system default destination: <name>" or
	// "no system default destination".
	if stdout, _, err := b.runner.Run(ctx, "lpstat", "-d"); err == nil {
		if _, name, ok := strings.Cut(stdout, ":"); ok {
			name = strings.TrimSpace(name)
			for i := range printers {
				if printers[i].Name == name {
					return &printers[i], nil
				}
			}
		}
	}

	// No configured default; the first queue is the effective one.
	return &printers[0], nil
}

func (b *cupsBackend) PrintFile(ctx context.Context, req PrintFileRequest) error {
	if err := ValidateDocument(req.FilePath); err != nil {
		return err
	}

	args := []string{}
	if req.PrinterName != "" {
		args = append(args, "-d", req.PrinterName)
	}
	if req.PaperSize != "" {
		args = append(args, "-o", "media="+req.PaperSize)
	}
	args = append(args, "--", req.FilePath)

	stdout, _, err := b.runner.Run(ctx, "lp", args...)
	if err != nil {
		return err
	}

	// lp answers "request id is <printer>-<job> (1 file(s))"
	b.logger.Info("print job submitted",
		zap.String("file", req.FilePath),
		zap.String("printer", req.PrinterName),
		zap.String("response", strings.TrimSpace(stdout)),
	)
	return nil
}

func (b *cupsBackend) PrintData(ctx context.Context, req PrintDataRequest) error {
	return printViaTempFile(ctx, b, req)
}

// printerInterface reads the queue's interface path from lpstat -l -p.
// An empty string means the platform did not report one.
func (b *cupsBackend) printerInterface(ctx context.Context, name string) string {
	stdout, _, err := b.runner.Run(ctx, "lpstat", "-l", "-p", name)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(stdout, "\n") {
		if _, after, ok := strings.Cut(line, "Interface:"); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// paperSizes parses the PageSize option group from lpoptions -l.
// The *-prefixed choice is the queue's current default and is listed
// first. When the queue reports nothing, the standard fallback set is
// returned.
func (b *cupsBackend) paperSizes(ctx context.Context, name string) []string {
	stdout, _, err := b.runner.Run(ctx, "lpoptions", "-p", name, "-l")
	if err != nil {
		return append([]string(nil), fallbackPaperSizes...)
	}

	sizes := []string{}
	for _, line := range strings.Split(stdout, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "PageSize/") {
			continue
		}
		_, choices, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		for _, choice := range strings.Fields(choices) {
			if stripped, isDefault := strings.CutPrefix(choice, "*"); isDefault {
				sizes = append([]string{stripped}, sizes...)
			} else {
				sizes = append(sizes, choice)
			}
		}
		break
	}

	if len(sizes) == 0 {
		return append([]string(nil), fallbackPaperSizes...)
	}
	return sizes
}
