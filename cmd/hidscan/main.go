// Command hidscan decodes barcode scans from a keyboard-wedge scanner.
//
// Key presses come either from a Linux input device or from an interactive
// console that simulates scanner bursts. Each completed scan is printed on
// its own line, as plain text or as JSON.
//
// Usage:
//
//	hidscan [flags]
//
// Flags:
//
//	-config string       Configuration file path
//	-device string       Input device path (selects the evdev source)
//	-grab                Grab the device exclusively
//	-capture string      Write a diagnostic capture file
//	-capture-console     Log capture events to stderr
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-json                Print scans as JSON lines
//
// Examples:
//
//	# Interactive console
//	hidscan
//
//	# Read a scanner, keep its input away from the desktop, record a capture
//	hidscan -device /dev/input/by-id/usb-Scanner-event-kbd -grab -capture scanner.klog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hidscan/hidscan-go/cmd/hidscan/interactive"
	"github.com/hidscan/hidscan-go/pkg/config"
	"github.com/hidscan/hidscan-go/pkg/evdev"
	"github.com/hidscan/hidscan-go/pkg/keyboard"
	"github.com/hidscan/hidscan-go/pkg/log"
	"github.com/hidscan/hidscan-go/pkg/scanner"
)

// Flags holds command-line values. Set flags override the configuration file.
type Flags struct {
	ConfigFile     string
	Device         string
	Grab           bool
	CapturePath    string
	CaptureConsole bool
	LogLevel       string
	JSON           bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.Device, "device", "", "Input device path (selects the evdev source)")
	flag.BoolVar(&flags.Grab, "grab", false, "Grab the device exclusively")
	flag.StringVar(&flags.CapturePath, "capture", "", "Write a diagnostic capture file")
	flag.BoolVar(&flags.CaptureConsole, "capture-console", false, "Log capture events to stderr")
	flag.StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&flags.JSON, "json", false, "Print scans as JSON lines")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the configuration file with explicitly set flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(&cfg, flags, set)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyFlags copies the flags named in set onto cfg.
func applyFlags(cfg *config.Config, f Flags, set map[string]bool) {
	if set["device"] {
		cfg.Source.Kind = config.SourceEvdev
		cfg.Source.Device = f.Device
	}
	if set["grab"] {
		cfg.Source.Grab = f.Grab
	}
	if set["capture"] {
		cfg.Capture.Path = f.CapturePath
	}
	if set["capture-console"] {
		cfg.Capture.Console = f.CaptureConsole
	}
	if set["log-level"] {
		cfg.LogLevel = f.LogLevel
	}
	if set["json"] {
		cfg.Output = config.OutputText
		if f.JSON {
			cfg.Output = config.OutputJSON
		}
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := keyboard.NewDispatcher()

	// The console owns the terminal, so logs and scans go through readline
	var (
		console    *interactive.Console
		stdout     io.Writer = os.Stdout
		stderr     io.Writer = os.Stderr
		sourceName           = cfg.Source.Device
	)
	if cfg.Source.Kind == config.SourceConsole {
		var err error
		console, err = interactive.New(dispatcher)
		if err != nil {
			return err
		}
		defer console.Close()
		stdout, stderr = console.Stdout(), console.Stderr()
		sourceName = "console"
	}

	logger := setupLogging(stderr, cfg.LogLevel, cfg.Output == config.OutputJSON)

	capture, closeCapture, err := setupCapture(cfg.Capture, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	dec := scanner.New(dispatcher,
		scanner.WithLogger(logger),
		scanner.WithCapture(capture),
		scanner.WithSourceName(sourceName),
	)
	defer dec.Close()

	out := newPrinter(stdout, cfg.Output, logger)

	if console != nil {
		return runConsole(ctx, cancel, console, dec, out)
	}
	return runDevice(ctx, cancel, cfg, dispatcher, dec, out, logger)
}

func runDevice(ctx context.Context, cancel context.CancelFunc, cfg *config.Config,
	dispatcher *keyboard.Dispatcher, dec *scanner.Decoder, out *printer, logger *slog.Logger) error {

	devOpts := []evdev.Option{evdev.WithLogger(logger)}
	if cfg.Source.Grab {
		devOpts = append(devOpts, evdev.WithGrab())
	}

	dev, err := evdev.Open(cfg.Source.Device, devOpts...)
	if err != nil {
		return err
	}
	defer dev.Close()

	dec.Listen(out.Print)
	logger.Info("reading scanner", "device", dev.Path(), "grab", cfg.Source.Grab, "session_id", dec.ID())

	done := make(chan error, 1)
	go func() {
		done <- dev.Run(ctx, dispatcher)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		<-done
		return nil
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("input device closed", "device", dev.Path())
		return nil
	}
}

func runConsole(ctx context.Context, cancel context.CancelFunc, console *interactive.Console,
	dec *scanner.Decoder, out *printer) error {

	console.Bind(dec, out.Print)

	// SIGINT is handled by readline as ^C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
			console.Close()
		case <-ctx.Done():
		}
	}()

	console.Run(ctx, cancel)
	return nil
}

// setupLogging creates the operational logger writing to w. JSON output
// switches logs to JSON as well.
func setupLogging(w io.Writer, level string, jsonLogs bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setupCapture builds the capture logger for cfg. The returned function
// closes any capture file.
func setupCapture(cfg config.Capture, logger *slog.Logger) (log.Logger, func(), error) {
	if !cfg.Enabled() {
		return log.NoopLogger{}, func() {}, nil
	}

	var (
		file    *log.FileLogger
		loggers []log.Logger
	)
	if cfg.Path != "" {
		var err error
		file, err = log.NewFileLogger(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, file)
		logger.Info("capture enabled", "path", file.Path())
	}
	if cfg.Console {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	closeFn := func() {
		if file == nil {
			return
		}
		if err := file.Close(); err != nil {
			logger.Warn("closing capture file", "error", err)
			return
		}
		logger.Info("capture closed", "path", file.Path(), "events", file.Written())
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}
