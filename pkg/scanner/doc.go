// Package scanner decodes barcode-scanner keyboard bursts into scanned values.
//
// A scanner attached as a HID keyboard types each character of a barcode as a
// separate key press and finishes with Enter, all within a few milliseconds.
// A Decoder subscribes to "keydown" events on a keyboard.Source, accumulates
// characters, and reports a ScannedBarcodeData when the terminator arrives.
//
// # Telling Scanners From People
//
// Every accepted key press restarts a 100 ms inactivity timer. A scanner
// finishes its burst long before the timer fires. A person typing lets the
// timer expire between keys, which silently drops the partial buffer, so
// keyboard noise never turns into a scan.
//
// Shift presses are skipped: some scanner firmware sends Shift between
// characters and it must not end up in the value.
//
// # Lifecycle
//
//	dec := scanner.New(keyboard.Default())
//	defer dec.Close()
//
//	dec.Listen(func(d scanner.ScannedBarcodeData) {
//	    fmt.Println(d.Value)
//	})
//
// Listen while already listening replaces the callback without installing a
// second subscription. StopListening and Close detach from the source and
// cancel the pending timer. A stopped decoder can listen again.
//
// Event handling never fails. The callback runs on the goroutine that
// dispatched the terminator, never concurrently with itself when the source
// delivers serially (as keyboard.Dispatcher does).
package scanner
