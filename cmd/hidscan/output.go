package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hidscan/hidscan-go/pkg/config"
	"github.com/hidscan/hidscan-go/pkg/scanner"
)

// printer writes completed scans, one per line.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	format  string
	encoder *json.Encoder
	logger  *slog.Logger
}

func newPrinter(w io.Writer, format string, logger *slog.Logger) *printer {
	return &printer{
		w:       w,
		format:  format,
		encoder: json.NewEncoder(w),
		logger:  logger,
	}
}

// Print writes d. It has the scanner.Callback signature, so write failures
// are logged rather than returned.
func (p *printer) Print(d scanner.ScannedBarcodeData) {
	if err := p.write(d); err != nil && p.logger != nil {
		p.logger.Error("failed to print scan", "value", d.Value, "error", err)
	}
}

func (p *printer) write(d scanner.ScannedBarcodeData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.format == config.OutputJSON {
		if err := p.encoder.Encode(d); err != nil {
			return fmt.Errorf("failed to encode scan: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintf(p.w, "%s  %s\n", d.Time().Format(time.RFC3339Nano), d.Value)
	return err
}
