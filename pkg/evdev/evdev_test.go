package evdev

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
)

func press(code uint16) InputEvent {
	return InputEvent{Type: EvKey, Code: code, Value: KeyPressed}
}

func release(code uint16) InputEvent {
	return InputEvent{Type: EvKey, Code: code, Value: KeyReleased}
}

func syn() InputEvent {
	return InputEvent{Type: EvSyn}
}

func TestParseEvent(t *testing.T) {
	want := InputEvent{
		Time:  time.Unix(1700000000, 123456000),
		Type:  EvKey,
		Code:  30,
		Value: KeyPressed,
	}

	got, err := ParseEvent(MarshalEvent(want))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if !got.Time.Equal(want.Time) {
		t.Errorf("Time = %v, want %v", got.Time, want.Time)
	}
	if got.Type != want.Type || got.Code != want.Code || got.Value != want.Value {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestParseEventNegativeValue(t *testing.T) {
	got, err := ParseEvent(MarshalEvent(InputEvent{Type: 0x02, Code: 0, Value: -5}))
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if got.Value != -5 {
		t.Errorf("Value = %d, want -5", got.Value)
	}
}

func TestParseEventShort(t *testing.T) {
	_, err := ParseEvent(make([]byte, EventSize-1))
	if !errors.Is(err, ErrShortEvent) {
		t.Errorf("ParseEvent error = %v, want ErrShortEvent", err)
	}
}

func TestTranslator(t *testing.T) {
	tests := []struct {
		name   string
		events []InputEvent
		want   []keyboard.KeyEvent
	}{
		{
			name:   "LowerCase",
			events: []InputEvent{press(30), release(30), press(2), release(2)},
			want: []keyboard.KeyEvent{
				{Key: "a", Code: "KeyA"},
				{Key: "1", Code: "Digit1"},
			},
		},
		{
			name:   "ShiftedLetterAndSymbol",
			events: []InputEvent{press(KeyLeftShift), press(30), press(2), release(KeyLeftShift), press(30)},
			want: []keyboard.KeyEvent{
				{Key: "Shift", Code: keyboard.CodeShiftLeft},
				{Key: "A", Code: "KeyA"},
				{Key: "!", Code: "Digit1"},
				{Key: "a", Code: "KeyA"},
			},
		},
		{
			name:   "RightShift",
			events: []InputEvent{press(KeyRightShift), press(12), release(KeyRightShift)},
			want: []keyboard.KeyEvent{
				{Key: "Shift", Code: keyboard.CodeShiftRight},
				{Key: "_", Code: "Minus"},
			},
		},
		{
			name:   "Enter",
			events: []InputEvent{press(KeyEnter), release(KeyEnter), press(KeyKPEnter)},
			want: []keyboard.KeyEvent{
				{Key: "Enter", Code: keyboard.CodeEnter},
				{Key: "Enter", Code: keyboard.CodeNumpadEnter},
			},
		},
		{
			name: "RepeatAndSynIgnored",
			events: []InputEvent{
				press(30),
				{Type: EvKey, Code: 30, Value: KeyRepeated},
				syn(),
				{Type: EvMsc, Code: 4, Value: 458756},
			},
			want: []keyboard.KeyEvent{{Key: "a", Code: "KeyA"}},
		},
		{
			name:   "UnmappedIgnored",
			events: []InputEvent{press(1), press(30)}, // KEY_ESC
			want:   []keyboard.KeyEvent{{Key: "a", Code: "KeyA"}},
		},
		{
			name:   "CapsLock",
			events: []InputEvent{press(KeyCapsLock), press(30), press(KeyLeftShift), press(30), press(2)},
			want: []keyboard.KeyEvent{
				{Key: "A", Code: "KeyA"},
				{Key: "Shift", Code: keyboard.CodeShiftLeft},
				{Key: "a", Code: "KeyA"},
				{Key: "!", Code: "Digit1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator()
			var got []keyboard.KeyEvent
			for _, ev := range tt.events {
				if kev, ok := tr.Translate(ev); ok {
					kev.Timestamp = time.Time{}
					got = append(got, kev)
				}
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d events %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("event %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTranslatorReset(t *testing.T) {
	tr := NewTranslator()
	tr.Translate(press(KeyLeftShift))
	tr.Reset()

	kev, ok := tr.Translate(press(30))
	if !ok || kev.Key != "a" {
		t.Errorf("after Reset got %+v, want lower-case a", kev)
	}
}

// stream encodes events as a device would deliver them.
func stream(events ...InputEvent) io.ReadCloser {
	var buf bytes.Buffer
	for _, ev := range events {
		buf.Write(MarshalEvent(ev))
	}
	return io.NopCloser(&buf)
}

type collector struct {
	events []keyboard.KeyEvent
}

func (c *collector) KeyDown(ev keyboard.KeyEvent) {
	c.events = append(c.events, ev)
}

func TestDeviceRunDeliversKeys(t *testing.T) {
	dev := NewFromReader("test", stream(
		press(KeyLeftShift), press(30), release(30), release(KeyLeftShift), syn(),
		press(48), release(48), syn(),
		press(KeyEnter), release(KeyEnter), syn(),
	))

	c := &collector{}
	if err := dev.Run(context.Background(), c); err != nil {
		t.Fatalf("Run returned %v, want nil at end of stream", err)
	}

	var keys []string
	for _, ev := range c.events {
		keys = append(keys, ev.Key)
	}
	want := []string{"Shift", "A", "b", "Enter"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestDeviceRunTruncatedStream(t *testing.T) {
	data := MarshalEvent(press(30))
	dev := NewFromReader("test", io.NopCloser(bytes.NewReader(data[:10])))

	err := dev.Run(context.Background(), &collector{})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Run error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDeviceRunCancel(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer w.Close()

	dev := NewFromReader("pipe", r)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- dev.Run(ctx, &collector{})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if err := dev.Close(); err != nil {
		t.Errorf("Close after cancel: %v", err)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	if _, err := Open("/nonexistent/input/event99"); err == nil {
		t.Error("expected error opening missing device")
	}
}
