// Package log provides structured diagnostic capture for scanner decoders.
//
// This package defines the Logger interface and Event types for recording
// what a decoder does with its input: every key it handles, every completed
// scan, every buffer dropped on timeout, and listener state changes.
// It is separate from operational logging (slog) - capture provides a
// machine-readable trace for debugging scanner setups and for replay.
//
// # Basic Usage
//
// Applications enable capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	dec := scanner.New(src, scanner.WithCapture(log.NewSlogAdapter(slog.Default())))
//
//	// For field diagnostics: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/hidscan/scanner.klog")
//
//	// Both: use MultiLogger
//	capture := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
//   - Key: a key event and the decoder's action (KeyEventData)
//   - Scan: a completed scan (ScanEventData)
//   - Discard: a partial buffer dropped on timeout (DiscardEventData)
//   - State: listen/stop transitions (StateChangeEvent)
//
// # File Format
//
// Capture files use CBOR encoding with the .klog extension. The hidscan-log
// CLI tool provides viewing, filtering, export, and replay.
//
// Capture is opt-in diagnostics. Nothing in this repository reads it back as
// a scan history.
package log
