package scanner

import (
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
	"github.com/hidscan/hidscan-go/pkg/log"
)

// Timeout is the debounce window. Buffered input with no new key press for
// this long is dropped.
const Timeout = 100 * time.Millisecond

// ListenerState tracks whether the decoder is subscribed to its source.
type ListenerState uint8

const (
	// StateInactive means no subscription is installed.
	StateInactive ListenerState = iota

	// StateActive means the decoder is receiving key events.
	StateActive
)

// String returns a human-readable state name.
func (s ListenerState) String() string {
	switch s {
	case StateInactive:
		return "INACTIVE"
	case StateActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// ScannedBarcodeData is a completed scan.
type ScannedBarcodeData struct {
	// Timestamp is when the terminator was handled, in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Value is the decoded barcode.
	Value string `json:"value"`
}

// Time returns Timestamp as a time.Time.
func (d ScannedBarcodeData) Time() time.Time {
	return time.UnixMilli(d.Timestamp)
}

// Callback receives completed scans.
type Callback func(ScannedBarcodeData)

// Option configures a Decoder.
type Option func(*Decoder)

// WithClock replaces the system clock. Tests use it to drive the debounce
// timer deterministically.
func WithClock(c Clock) Option {
	return func(d *Decoder) {
		d.clock = c
	}
}

// WithLogger sets the operational logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = l
	}
}

// WithCapture sets the diagnostic capture logger.
// The logger must not call back into the decoder.
func WithCapture(l log.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.capture = l
		}
	}
}

// WithSourceName labels capture events with the input the decoder reads,
// such as a device path.
func WithSourceName(name string) Option {
	return func(d *Decoder) {
		d.sourceName = name
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(d *Decoder) {
		d.id = id
	}
}

// Decoder turns keyboard bursts from a barcode scanner into scans.
// It is safe for concurrent use.
type Decoder struct {
	mu sync.Mutex

	id         string
	source     keyboard.Source
	sourceName string
	clock      Clock
	logger     *slog.Logger
	capture    log.Logger

	// Subscription
	state      ListenerState
	listenerID keyboard.ListenerID
	listenGen  uint64
	callback   Callback

	// Characters collected since the last reset
	buffer string

	// Pending inactivity timer; timerSeq invalidates timers that fire late
	timer    Timer
	timerSeq uint64
}

// New creates an inactive decoder reading from source.
func New(source keyboard.Source, opts ...Option) *Decoder {
	d := &Decoder{
		id:      uuid.New().String(),
		source:  source,
		clock:   SystemClock(),
		capture: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ID returns the decoder's session ID.
func (d *Decoder) ID() string {
	return d.id
}

// State returns the current listener state.
func (d *Decoder) State() ListenerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// IsListening reports whether the decoder is subscribed to its source.
func (d *Decoder) IsListening() bool {
	return d.State() == StateActive
}

// Value returns the characters buffered so far.
func (d *Decoder) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffer
}

// Listen subscribes to key events and registers callback for completed
// scans. Calling Listen while listening replaces the previous callback
// and subscription. A nil callback is allowed; scans are then dropped.
func (d *Decoder) Listen(callback Callback) {
	d.mu.Lock()

	var events []log.Event
	oldState := d.state
	if d.state == StateActive {
		d.stopLocked()
	}

	// Anything buffered before a stop must not leak into the next scan
	d.buffer = ""

	d.listenGen++
	gen := d.listenGen
	d.callback = callback
	d.state = StateActive
	d.listenerID = d.source.AddListener(keyboard.EventKeyDown, func(ev keyboard.KeyEvent) {
		d.handleKey(gen, ev)
	})

	reason := "listen"
	if oldState == StateActive {
		reason = "relisten"
	}
	events = append(events, d.stateEvent(oldState, StateActive, reason))

	d.mu.Unlock()

	d.debug("decoder listening", "session_id", d.id, "reason", reason)
	d.flush(events)
}

// StopListening removes the key event subscription and cancels the pending
// inactivity timer. It is a no-op when the decoder is not listening.
func (d *Decoder) StopListening() {
	d.mu.Lock()
	if !d.stopLocked() {
		d.mu.Unlock()
		return
	}
	events := []log.Event{d.stateEvent(StateActive, StateInactive, "stop")}
	d.mu.Unlock()

	d.debug("decoder stopped", "session_id", d.id)
	d.flush(events)
}

// Close stops listening. The owning component calls it on shutdown.
// It always returns nil and may be called more than once.
func (d *Decoder) Close() error {
	d.StopListening()
	return nil
}

// stopLocked detaches from the source. Returns false if already inactive.
func (d *Decoder) stopLocked() bool {
	if d.state != StateActive {
		return false
	}

	d.source.RemoveListener(d.listenerID)
	d.listenerID = 0
	d.cancelTimerLocked()
	d.callback = nil
	d.state = StateInactive
	return true
}

// handleKey processes one key event delivered by the subscription of
// generation gen.
func (d *Decoder) handleKey(gen uint64, ev keyboard.KeyEvent) {
	d.mu.Lock()

	// Events from a stopped or replaced subscription are dropped
	if d.state != StateActive || gen != d.listenGen {
		d.mu.Unlock()
		return
	}

	d.cancelTimerLocked()

	if ev.IsTerminator() {
		value := d.buffer
		callback := d.callback
		d.buffer = ""

		events := []log.Event{d.keyEvent(ev, log.KeyActionTerminator)}

		var data ScannedBarcodeData
		deliver := false
		if value != "" {
			data = ScannedBarcodeData{
				Timestamp: d.clock.Now().UnixMilli(),
				Value:     value,
			}
			deliver = callback != nil
			events = append(events, d.scanEvent(value, deliver))
		}

		d.mu.Unlock()
		d.flush(events)

		if deliver {
			d.debug("scan completed", "session_id", d.id, "value", value)
			callback(data)
		}
		return
	}

	action := log.KeyActionIgnored
	if !ev.IsIgnoredModifier() {
		d.buffer += ev.Key
		action = log.KeyActionAppended
	}

	d.scheduleTimerLocked()
	events := []log.Event{d.keyEvent(ev, action)}

	d.mu.Unlock()
	d.flush(events)
}

func (d *Decoder) scheduleTimerLocked() {
	d.timerSeq++
	seq := d.timerSeq
	d.timer = d.clock.AfterFunc(Timeout, func() {
		d.expire(seq)
	})
}

func (d *Decoder) cancelTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.timerSeq++
}

// expire clears the buffer when the inactivity timer of sequence seq fires.
func (d *Decoder) expire(seq uint64) {
	d.mu.Lock()

	// A timer that was cancelled or superseded may still fire
	if seq != d.timerSeq || d.state != StateActive {
		d.mu.Unlock()
		return
	}

	d.timer = nil
	value := d.buffer
	d.buffer = ""

	var events []log.Event
	if value != "" {
		events = append(events, d.discardEvent(value))
	}

	d.mu.Unlock()

	if value != "" {
		d.debug("buffer discarded", "session_id", d.id, "length", utf8.RuneCountInString(value))
	}
	d.flush(events)
}

func (d *Decoder) flush(events []log.Event) {
	for _, e := range events {
		d.capture.Log(e)
	}
}

func (d *Decoder) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Decoder) baseEvent(cat log.Category) log.Event {
	return log.Event{
		Timestamp: d.clock.Now(),
		SessionID: d.id,
		Category:  cat,
		Source:    d.sourceName,
	}
}

func (d *Decoder) keyEvent(ev keyboard.KeyEvent, action log.KeyAction) log.Event {
	e := d.baseEvent(log.CategoryKey)
	e.Key = &log.KeyEventData{
		Key:       ev.Key,
		Code:      ev.Code.String(),
		Action:    action,
		BufferLen: utf8.RuneCountInString(d.buffer),
	}
	return e
}

func (d *Decoder) scanEvent(value string, delivered bool) log.Event {
	e := d.baseEvent(log.CategoryScan)
	e.Scan = &log.ScanEventData{
		Value:     value,
		Length:    utf8.RuneCountInString(value),
		Delivered: delivered,
	}
	return e
}

func (d *Decoder) discardEvent(value string) log.Event {
	e := d.baseEvent(log.CategoryDiscard)
	e.Discard = &log.DiscardEventData{
		Value:  value,
		Reason: log.DiscardReasonTimeout,
	}
	return e
}

func (d *Decoder) stateEvent(oldState, newState ListenerState, reason string) log.Event {
	e := d.baseEvent(log.CategoryState)
	e.StateChange = &log.StateChangeEvent{
		OldState: oldState.String(),
		NewState: newState.String(),
		Reason:   reason,
	}
	return e
}
