package evdev

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// EventSize is the size of struct input_event on 64-bit Linux:
// struct timeval (two 64-bit fields), __u16 type, __u16 code, __s32 value.
const EventSize = 24

// Event types.
const (
	EvSyn uint16 = 0x00
	EvKey uint16 = 0x01
	EvMsc uint16 = 0x04
)

// Key values carried by EV_KEY events.
const (
	KeyReleased int32 = 0
	KeyPressed  int32 = 1
	KeyRepeated int32 = 2
)

// ErrShortEvent is returned when a record is smaller than EventSize.
var ErrShortEvent = errors.New("short input event")

// InputEvent is a decoded struct input_event.
type InputEvent struct {
	Time  time.Time
	Type  uint16
	Code  uint16
	Value int32
}

// ParseEvent decodes one little-endian input_event record.
func ParseEvent(b []byte) (InputEvent, error) {
	if len(b) < EventSize {
		return InputEvent{}, fmt.Errorf("%w: %d bytes", ErrShortEvent, len(b))
	}

	sec := int64(binary.LittleEndian.Uint64(b[0:8]))
	usec := int64(binary.LittleEndian.Uint64(b[8:16]))

	return InputEvent{
		Time:  time.Unix(sec, usec*int64(time.Microsecond)),
		Type:  binary.LittleEndian.Uint16(b[16:18]),
		Code:  binary.LittleEndian.Uint16(b[18:20]),
		Value: int32(binary.LittleEndian.Uint32(b[20:24])),
	}, nil
}

// MarshalEvent encodes ev as an input_event record.
func MarshalEvent(ev InputEvent) []byte {
	b := make([]byte, EventSize)
	usec := ev.Time.UnixMicro()
	binary.LittleEndian.PutUint64(b[0:8], uint64(usec/1_000_000))
	binary.LittleEndian.PutUint64(b[8:16], uint64(usec%1_000_000))
	binary.LittleEndian.PutUint16(b[16:18], ev.Type)
	binary.LittleEndian.PutUint16(b[18:20], ev.Code)
	binary.LittleEndian.PutUint32(b[20:24], uint32(ev.Value))
	return b
}

// ReadEvent reads one record from r.
func ReadEvent(r io.Reader) (InputEvent, error) {
	var buf [EventSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return InputEvent{}, err
	}
	return ParseEvent(buf[:])
}
