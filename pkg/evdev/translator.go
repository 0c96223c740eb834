package evdev

import (
	"unicode"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
)

// Translator converts raw input events to key events.
// It keeps Shift and Caps Lock state between calls and is not safe for
// concurrent use.
type Translator struct {
	leftShift  bool
	rightShift bool
	capsLock   bool
}

// NewTranslator creates a translator with no modifiers held.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate returns the key event for ev, if it produces one.
// Key releases, auto-repeat, non-key events, and unmapped keys produce nothing.
func (t *Translator) Translate(ev InputEvent) (keyboard.KeyEvent, bool) {
	if ev.Type != EvKey {
		return keyboard.KeyEvent{}, false
	}

	switch ev.Code {
	case KeyLeftShift, KeyRightShift:
		pressed := ev.Value != KeyReleased
		if ev.Code == KeyLeftShift {
			t.leftShift = pressed
		} else {
			t.rightShift = pressed
		}
		if ev.Value != KeyPressed {
			return keyboard.KeyEvent{}, false
		}
		code := keyboard.CodeShiftLeft
		if ev.Code == KeyRightShift {
			code = keyboard.CodeShiftRight
		}
		return keyboard.KeyEvent{Key: "Shift", Code: code, Timestamp: ev.Time}, true
	}

	if ev.Value != KeyPressed {
		return keyboard.KeyEvent{}, false
	}

	switch ev.Code {
	case KeyEnter:
		return keyboard.KeyEvent{Key: "Enter", Code: keyboard.CodeEnter, Timestamp: ev.Time}, true
	case KeyKPEnter:
		return keyboard.KeyEvent{Key: "Enter", Code: keyboard.CodeNumpadEnter, Timestamp: ev.Time}, true
	case KeyCapsLock:
		t.capsLock = !t.capsLock
		return keyboard.KeyEvent{}, false
	}

	def, ok := usLayout[ev.Code]
	if !ok {
		return keyboard.KeyEvent{}, false
	}

	r := def.normal
	if t.shifted() {
		r = def.shifted
	}
	if t.capsLock && unicode.IsLetter(def.normal) {
		// Caps Lock inverts the case Shift would produce
		if unicode.IsUpper(r) {
			r = unicode.ToLower(r)
		} else {
			r = unicode.ToUpper(r)
		}
	}

	return keyboard.KeyEvent{Key: string(r), Code: def.code, Timestamp: ev.Time}, true
}

// Reset clears modifier state, e.g. after reopening a device.
func (t *Translator) Reset() {
	*t = Translator{}
}

func (t *Translator) shifted() bool {
	return t.leftShift || t.rightShift
}
