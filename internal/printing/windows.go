//go:build windows

package printing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// windowsBackend drives printing through the Windows spooler, shelling
// out to PowerShell for CIM queries and print verb dispatch.
type windowsBackend struct {
	runner *Runner
	logger *zap.Logger
}

func newPlatformBackend(logger *zap.Logger) Backend {
	return &windowsBackend{
		runner: NewRunner(0, logger),
		logger: logger,
	}
}

// win32Printer mirrors the Win32_Printer fields the backend selects.
type win32Printer struct {
	Name              string   `json:"Name"`
	DriverName        string   `json:"DriverName"`
	PrinterState      int      `json:"PrinterState"`
	Default           bool     `json:"Default"`
	PrinterPaperNames []string `json:"PrinterPaperNames"`
}

// The @() wrapper keeps ConvertTo-Json emitting an array even when a
// single printer is installed.
const enumPrintersScript = `ConvertTo-Json -Compress -Depth 3 -InputObject @(` +
	`Get-CimInstance -ClassName Win32_Printer | ` +
	`Select-Object Name, DriverName, PrinterState, Default, PrinterPaperNames)`

func (b *windowsBackend) ListPrinters(ctx context.Context) ([]Printer, error) {
	raw, err := b.listRaw(ctx)
	if err != nil {
		return nil, err
	}

	printers := make([]Printer, 0, len(raw))
	for _, p := range raw {
		sizes := p.PrinterPaperNames
		if len(sizes) == 0 {
			sizes = append([]string(nil), fallbackPaperSizes...)
		}
		printers = append(printers, Printer{
			Name:       p.Name,
			Status:     windowsStatusDescription(p.PrinterState),
			Driver:     p.DriverName,
			PaperSizes: sizes,
		})
	}

	b.logger.Debug("enumerated printers", zap.Int("count", len(printers)))
	return printers, nil
}

func (b *windowsBackend) DefaultPrinter(ctx context.Context) (*Printer, error) {
	raw, err := b.listRaw(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	pick := 0
	for i := range raw {
		if raw[i].Default {
			pick = i
			break
		}
	}

	sizes := raw[pick].PrinterPaperNames
	if len(sizes) == 0 {
		sizes = append([]string(nil), fallbackPaperSizes...)
	}
	return &Printer{
		Name:       raw[pick].Name,
		Status:     windowsStatusDescription(raw[pick].PrinterState),
		Driver:     raw[pick].DriverName,
		PaperSizes: sizes,
	}, nil
}

func (b *windowsBackend) PrintFile(ctx context.Context, req PrintFileRequest) error {
	if err := ValidateDocument(req.FilePath); err != nil {
		return err
	}

	var script strings.Builder
	if req.PrinterName != "" {
		// The Print verb always targets the default printer, so a named
		// queue is selected by making it the default first.
		fmt.Fprintf(&script,
			`$p = Get-CimInstance -ClassName Win32_Printer -Filter "Name='%s'"; `,
			psEscape(req.PrinterName))
		script.WriteString(`if (-not $p) { exit 2 }; `)
		script.WriteString(`Invoke-CimMethod -InputObject $p -MethodName SetDefaultPrinter | Out-Null; `)
	}
	fmt.Fprintf(&script, `Start-Process -FilePath '%s' -Verb Print -WindowStyle Hidden`,
		psEscape(req.FilePath))

	_, _, err := b.runner.Run(ctx, "powershell",
		"-NoProfile", "-NonInteractive", "-Command", script.String())
	if err != nil {
		return err
	}

	b.logger.Info("print job submitted",
		zap.String("file", req.FilePath),
		zap.String("printer", req.PrinterName),
	)
	return nil
}

func (b *windowsBackend) PrintData(ctx context.Context, req PrintDataRequest) error {
	return printViaTempFile(ctx, b, req)
}

func (b *windowsBackend) listRaw(ctx context.Context) ([]win32Printer, error) {
	stdout, _, err := b.runner.Run(ctx, "powershell",
		"-NoProfile", "-NonInteractive", "-Command", enumPrintersScript)
	if err != nil {
		return nil, err
	}

	var raw []win32Printer
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode printer enumeration: %w", err)
	}
	return raw, nil
}

// psEscape doubles single quotes for embedding in a single-quoted
// PowerShell string literal.
func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// windowsStatusDescription translates spooler status codes to the
// strings the API reports.
func windowsStatusDescription(code int) string {
	descriptions := map[int]string{
		0:  "Ready",
		1:  "Paused",
		2:  "Error",
		3:  "Deleting",
		4:  "Paper Jam",
		5:  "Paper Out",
		6:  "Manual Feed",
		7:  "Paper Problem",
		8:  "Offline",
		9:  "I/O Active",
		10: "Busy",
		11: "Printing",
		12: "Output Bin Full",
		13: "Not Available",
		14: "Waiting",
		15: "Processing",
		16: "Initializing",
		17: "Warming Up",
		18: "Toner Low",
		19: "No Toner",
		20: "Page Punt",
		21: "User Intervention Required",
		22: "Out of Memory",
		23: "Door Open",
	}
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return fmt.Sprintf("Unknown (%d)", code)
}
