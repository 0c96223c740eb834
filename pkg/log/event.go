package log

import (
	"time"
)

// Event represents a decoder activity event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the decoder instance (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Source names the input the decoder reads from (device path, "console").
	Source string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Key         *KeyEventData     `cbor:"10,keyasint,omitempty"` // Key handled by the decoder
	Scan        *ScanEventData    `cbor:"11,keyasint,omitempty"` // Completed scan
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Listener state transition
	Discard     *DiscardEventData `cbor:"13,keyasint,omitempty"` // Buffer dropped without a scan
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryKey indicates a key event handled by the decoder.
	CategoryKey Category = 0
	// CategoryScan indicates a completed scan.
	CategoryScan Category = 1
	// CategoryState indicates a listener state change.
	CategoryState Category = 2
	// CategoryDiscard indicates buffered input was dropped.
	CategoryDiscard Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryKey:
		return "KEY"
	case CategoryScan:
		return "SCAN"
	case CategoryState:
		return "STATE"
	case CategoryDiscard:
		return "DISCARD"
	default:
		return "UNKNOWN"
	}
}

// KeyEventData captures a key event and what the decoder did with it.
type KeyEventData struct {
	// Key is the character or key name.
	Key string `cbor:"1,keyasint"`

	// Code is the semantic key code.
	Code string `cbor:"2,keyasint"`

	// Action is what the decoder did with the key.
	Action KeyAction `cbor:"3,keyasint"`

	// BufferLen is the buffer length in runes after the key was handled.
	BufferLen int `cbor:"4,keyasint"`
}

// KeyAction is the decoder's handling of a key.
type KeyAction uint8

const (
	// KeyActionAppended means the character was added to the buffer.
	KeyActionAppended KeyAction = 0
	// KeyActionIgnored means the key was a modifier and contributed nothing.
	KeyActionIgnored KeyAction = 1
	// KeyActionTerminator means the key ended the burst.
	KeyActionTerminator KeyAction = 2
)

// String returns the key action name.
func (a KeyAction) String() string {
	switch a {
	case KeyActionAppended:
		return "APPENDED"
	case KeyActionIgnored:
		return "IGNORED"
	case KeyActionTerminator:
		return "TERMINATOR"
	default:
		return "UNKNOWN"
	}
}

// ScanEventData captures a completed scan.
type ScanEventData struct {
	// Value is the decoded barcode.
	Value string `cbor:"1,keyasint"`

	// Length is the value length in runes.
	Length int `cbor:"2,keyasint"`

	// Delivered is false when no callback was registered at terminator time.
	Delivered bool `cbor:"3,keyasint"`
}

// DiscardEventData captures buffered input dropped without producing a scan.
type DiscardEventData struct {
	// Value is the dropped buffer contents.
	Value string `cbor:"1,keyasint"`

	// Reason is why the buffer was dropped.
	Reason DiscardReason `cbor:"2,keyasint"`
}

// DiscardReason explains a discard.
type DiscardReason uint8

const (
	// DiscardReasonTimeout means no terminator arrived within the debounce window.
	DiscardReasonTimeout DiscardReason = 0
)

// String returns the discard reason name.
func (r DiscardReason) String() string {
	switch r {
	case DiscardReasonTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures listener lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}
