package evdev

import "github.com/hidscan/hidscan-go/pkg/keyboard"

// Linux key codes with special meaning (linux/input-event-codes.h).
const (
	KeyEnter      uint16 = 28
	KeyLeftShift  uint16 = 42
	KeyRightShift uint16 = 54
	KeyKPEnter    uint16 = 96
	KeyCapsLock   uint16 = 58
)

type keyDef struct {
	code    keyboard.Code
	normal  rune
	shifted rune
}

// usLayout maps Linux key codes to US-layout characters.
var usLayout = map[uint16]keyDef{
	2:  {"Digit1", '1', '!'},
	3:  {"Digit2", '2', '@'},
	4:  {"Digit3", '3', '#'},
	5:  {"Digit4", '4', '$'},
	6:  {"Digit5", '5', '%'},
	7:  {"Digit6", '6', '^'},
	8:  {"Digit7", '7', '&'},
	9:  {"Digit8", '8', '*'},
	10: {"Digit9", '9', '('},
	11: {"Digit0", '0', ')'},
	12: {"Minus", '-', '_'},
	13: {"Equal", '=', '+'},
	16: {"KeyQ", 'q', 'Q'},
	17: {"KeyW", 'w', 'W'},
	18: {"KeyE", 'e', 'E'},
	19: {"KeyR", 'r', 'R'},
	20: {"KeyT", 't', 'T'},
	21: {"KeyY", 'y', 'Y'},
	22: {"KeyU", 'u', 'U'},
	23: {"KeyI", 'i', 'I'},
	24: {"KeyO", 'o', 'O'},
	25: {"KeyP", 'p', 'P'},
	26: {"BracketLeft", '[', '{'},
	27: {"BracketRight", ']', '}'},
	30: {"KeyA", 'a', 'A'},
	31: {"KeyS", 's', 'S'},
	32: {"KeyD", 'd', 'D'},
	33: {"KeyF", 'f', 'F'},
	34: {"KeyG", 'g', 'G'},
	35: {"KeyH", 'h', 'H'},
	36: {"KeyJ", 'j', 'J'},
	37: {"KeyK", 'k', 'K'},
	38: {"KeyL", 'l', 'L'},
	39: {"Semicolon", ';', ':'},
	40: {"Quote", '\'', '"'},
	41: {"Backquote", '`', '~'},
	43: {"Backslash", '\\', '|'},
	44: {"KeyZ", 'z', 'Z'},
	45: {"KeyX", 'x', 'X'},
	46: {"KeyC", 'c', 'C'},
	47: {"KeyV", 'v', 'V'},
	48: {"KeyB", 'b', 'B'},
	49: {"KeyN", 'n', 'N'},
	50: {"KeyM", 'm', 'M'},
	51: {"Comma", ',', '<'},
	52: {"Period", '.', '>'},
	53: {"Slash", '/', '?'},
	57: {"Space", ' ', ' '},
	71: {"Numpad7", '7', '7'},
	72: {"Numpad8", '8', '8'},
	73: {"Numpad9", '9', '9'},
	74: {"NumpadSubtract", '-', '-'},
	75: {"Numpad4", '4', '4'},
	76: {"Numpad5", '5', '5'},
	77: {"Numpad6", '6', '6'},
	78: {"NumpadAdd", '+', '+'},
	79: {"Numpad1", '1', '1'},
	80: {"Numpad2", '2', '2'},
	81: {"Numpad3", '3', '3'},
	82: {"Numpad0", '0', '0'},
	83: {"NumpadDecimal", '.', '.'},
	98: {"NumpadDivide", '/', '/'},
	55: {"NumpadMultiply", '*', '*'},
}
