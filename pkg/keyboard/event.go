package keyboard

import "time"

// EventKeyDown is the event name key presses are dispatched under.
const EventKeyDown = "keydown"

// Code is the semantic identifier of a physical key.
//
// Character keys carry a layout-independent name such as "KeyA" or "Digit4".
// The named constants below are the codes the decoder gives special meaning.
type Code string

const (
	// CodeEnter is the main Enter key, the scan terminator.
	CodeEnter Code = "Enter"

	// CodeNumpadEnter is the keypad Enter key. Some scanners send it instead of Enter.
	CodeNumpadEnter Code = "NumpadEnter"

	// CodeShift is a Shift key whose side is unknown.
	CodeShift Code = "Shift"

	// CodeShiftLeft is the left Shift key.
	CodeShiftLeft Code = "ShiftLeft"

	// CodeShiftRight is the right Shift key.
	CodeShiftRight Code = "ShiftRight"
)

// String returns the code name.
func (c Code) String() string {
	return string(c)
}

// KeyEvent is a single key press.
type KeyEvent struct {
	// Key is the character the press produced ("a", "A", "4") or the key
	// name for non-printing keys ("Enter", "Shift").
	Key string

	// Code identifies the physical key.
	Code Code

	// Timestamp is when the press happened. Zero when the producer does not know.
	Timestamp time.Time
}

// IsTerminator reports whether the event ends a scan.
func (e KeyEvent) IsTerminator() bool {
	return e.Code == CodeEnter || e.Code == CodeNumpadEnter
}

// IsIgnoredModifier reports whether the event is a Shift press.
// Scanner firmware often emits Shift between characters; those presses carry
// no character of their own.
func (e KeyEvent) IsIgnoredModifier() bool {
	switch e.Code {
	case CodeShift, CodeShiftLeft, CodeShiftRight:
		return true
	default:
		return false
	}
}

// Char returns a key event for a printable character.
func Char(r rune) KeyEvent {
	return KeyEvent{Key: string(r), Code: CodeForRune(r)}
}

// Enter returns a terminator key event.
func Enter() KeyEvent {
	return KeyEvent{Key: "Enter", Code: CodeEnter}
}

// Shift returns a left Shift key event.
func Shift() KeyEvent {
	return KeyEvent{Key: "Shift", Code: CodeShiftLeft}
}

// symbolCodes maps US-layout symbols (shifted or not) to their key codes.
var symbolCodes = map[rune]Code{
	' ': "Space",
	'-': "Minus", '_': "Minus",
	'=': "Equal", '+': "Equal",
	'[': "BracketLeft", '{': "BracketLeft",
	']': "BracketRight", '}': "BracketRight",
	'\\': "Backslash", '|': "Backslash",
	';': "Semicolon", ':': "Semicolon",
	'\'': "Quote", '"': "Quote",
	'`': "Backquote", '~': "Backquote",
	',': "Comma", '<': "Comma",
	'.': "Period", '>': "Period",
	'/': "Slash", '?': "Slash",
	'!': "Digit1", '@': "Digit2", '#': "Digit3", '$': "Digit4", '%': "Digit5",
	'^': "Digit6", '&': "Digit7", '*': "Digit8", '(': "Digit9", ')': "Digit0",
}

// CodeForRune returns the US-layout key code that produces r.
// Runes with no key on that layout get "Unidentified".
func CodeForRune(r rune) Code {
	switch {
	case r >= 'a' && r <= 'z':
		return Code("Key" + string(r-'a'+'A'))
	case r >= 'A' && r <= 'Z':
		return Code("Key" + string(r))
	case r >= '0' && r <= '9':
		return Code("Digit" + string(r))
	}
	if c, ok := symbolCodes[r]; ok {
		return c
	}
	return "Unidentified"
}

// NeedsShift reports whether typing r on a US layout requires Shift.
func NeedsShift(r rune) bool {
	if r >= 'A' && r <= 'Z' {
		return true
	}
	switch r {
	case '_', '+', '{', '}', '|', ':', '"', '~', '<', '>', '?',
		'!', '@', '#', '$', '%', '^', '&', '*', '(', ')':
		return true
	}
	return false
}
