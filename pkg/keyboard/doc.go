// Package keyboard defines key events and the input source that delivers them.
//
// A barcode scanner attached as a HID keyboard produces one key press per
// character followed by Enter. Producers (the evdev reader, the interactive
// console, capture replay) turn their input into KeyEvent values and hand
// them to a Dispatcher. Consumers such as the scanner decoder subscribe to
// the "keydown" event on a Source.
//
// # Delivery
//
// A Dispatcher delivers events serially: listeners never run concurrently
// with each other, even when several goroutines dispatch. Listeners run in
// registration order and may add or remove listeners while being called.
// A listener must not call Dispatch on the Dispatcher that is calling it.
//
// # Default Source
//
// Default returns a process-wide Dispatcher for applications that only ever
// have one input device. Components that need isolation (tests, several
// devices) create their own with NewDispatcher.
package keyboard
