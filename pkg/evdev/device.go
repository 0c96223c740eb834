package evdev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
)

// ErrGrabUnsupported is returned by Open with WithGrab on platforms without EVIOCGRAB.
var ErrGrabUnsupported = errors.New("exclusive device grab not supported on this platform")

// Sink receives translated key presses. *keyboard.Dispatcher implements it.
type Sink interface {
	KeyDown(ev keyboard.KeyEvent)
}

// Option configures a Device.
type Option func(*Device)

// WithGrab requests exclusive access to the device.
func WithGrab() Option {
	return func(d *Device) {
		d.grab = true
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		d.logger = l
	}
}

// Device reads key presses from an input device.
type Device struct {
	path       string
	rc         io.ReadCloser
	grab       bool
	logger     *slog.Logger
	translator *Translator
}

// Open opens the input device at path.
func Open(path string, opts ...Option) (*Device, error) {
	d := &Device{path: path, translator: NewTranslator()}
	for _, opt := range opts {
		opt(d)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input device: %w", err)
	}

	if d.grab {
		if err := grab(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("grab %s: %w", path, err)
		}
		d.debug("input device grabbed", "device", path)
	}

	d.rc = f
	return d, nil
}

// NewFromReader wraps an already open event stream. The name labels log output.
func NewFromReader(name string, rc io.ReadCloser, opts ...Option) *Device {
	d := &Device{path: name, rc: rc, translator: NewTranslator()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the device path.
func (d *Device) Path() string {
	return d.path
}

// Run reads events and delivers key presses to sink until ctx is cancelled,
// the stream ends, or a read fails. It returns ctx.Err() on cancellation and
// nil at end of stream.
func (d *Device) Run(ctx context.Context, sink Sink) error {
	// Closing the device unblocks a pending read
	stop := context.AfterFunc(ctx, func() {
		d.rc.Close()
	})
	defer stop()

	for {
		ev, err := ReadEvent(d.rc)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read %s: %w", d.path, err)
		}

		if kev, ok := d.translator.Translate(ev); ok {
			sink.KeyDown(kev)
		}
	}
}

// Close releases the device.
func (d *Device) Close() error {
	err := d.rc.Close()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

func (d *Device) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
