package replay

import (
	"context"
	"time"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
)

// Typical inter-key gaps.
const (
	// ScannerInterval is how fast a keyboard-wedge scanner types.
	ScannerInterval = 4 * time.Millisecond

	// HumanInterval is a brisk human typing speed, slower than the debounce window.
	HumanInterval = 180 * time.Millisecond
)

// Sink receives dispatched key presses. *keyboard.Dispatcher implements it.
type Sink interface {
	KeyDown(ev keyboard.KeyEvent)
}

// Type dispatches text one key at a time followed by Enter, waiting
// interval between key presses. Characters that need Shift on a US layout
// are preceded by a Shift press, as scanner firmware does.
// It returns ctx.Err() if cancelled part way.
func Type(ctx context.Context, sink Sink, text string, interval time.Duration) error {
	var keys []keyboard.KeyEvent
	for _, r := range text {
		if keyboard.NeedsShift(r) {
			keys = append(keys, keyboard.Shift())
		}
		keys = append(keys, keyboard.Char(r))
	}
	keys = append(keys, keyboard.Enter())

	for i, k := range keys {
		if i > 0 {
			if err := sleep(ctx, interval); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		k.Timestamp = time.Now()
		sink.KeyDown(k)
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
