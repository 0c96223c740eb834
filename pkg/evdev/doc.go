// Package evdev reads key presses from a Linux input device.
//
// USB barcode scanners in keyboard-wedge mode show up as
// /dev/input/eventN devices. This package parses the kernel's input_event
// records, translates key codes with a US layout, and dispatches the result
// as keyboard.KeyEvent values.
//
// # Exclusive Access
//
// By default every process reading the device, including the desktop
// session, sees the scanner's keystrokes. WithGrab requests exclusive access
// (EVIOCGRAB) so scans do not also get typed into whatever window has focus.
// Grabbing is only available on Linux.
//
// # Shift Handling
//
// Scanners produce upper-case letters and symbols by pressing Shift around
// the character. The Translator tracks Shift state to produce the right
// character and still forwards the Shift press itself, which the decoder ignores.
package evdev
