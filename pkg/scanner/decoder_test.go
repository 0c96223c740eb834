package scanner

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
	"github.com/hidscan/hidscan-go/pkg/log"
)

var testEpoch = time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

// capturingLogger records capture events for decoder tests.
type capturingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *capturingLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *capturingLogger) byCategory(cat log.Category) []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []log.Event
	for _, e := range l.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// scanRecorder collects callback invocations.
type scanRecorder struct {
	scans []ScannedBarcodeData
}

func (r *scanRecorder) callback(d ScannedBarcodeData) {
	r.scans = append(r.scans, d)
}

func (r *scanRecorder) values() []string {
	out := make([]string, 0, len(r.scans))
	for _, s := range r.scans {
		out = append(out, s.Value)
	}
	return out
}

type harness struct {
	src     *keyboard.Dispatcher
	clock   *fakeClock
	capture *capturingLogger
	dec     *Decoder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		src:     keyboard.NewDispatcher(),
		clock:   newFakeClock(testEpoch),
		capture: &capturingLogger{},
	}
	h.dec = New(h.src, WithClock(h.clock), WithCapture(h.capture), WithSessionID("test-session"))
	t.Cleanup(func() { _ = h.dec.Close() })
	return h
}

// typeKeys dispatches each rune as a character key, '\n' as Enter and '^' as Shift.
func (h *harness) typeKeys(keys string) {
	for _, r := range keys {
		switch r {
		case '\n':
			h.src.KeyDown(keyboard.Enter())
		case '^':
			h.src.KeyDown(keyboard.Shift())
		default:
			h.src.KeyDown(keyboard.Char(r))
		}
	}
}

func TestDecoderCompletesScan(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	h.typeKeys("ad46f21hx\n")

	require.Len(t, rec.scans, 1)
	assert.Equal(t, "ad46f21hx", rec.scans[0].Value)
	assert.Equal(t, testEpoch.UnixMilli(), rec.scans[0].Timestamp)
	assert.True(t, rec.scans[0].Time().Equal(testEpoch))
}

func TestDecoderIgnoresShift(t *testing.T) {
	tests := []struct {
		name string
		keys string
	}{
		{"Leading", "^ad46f21hx\n"},
		{"Between", "a^d^4^6^f^2^1^h^x\n"},
		{"Trailing", "ad46f21hx^\n"},
		{"Repeated", "a^^^d46f21hx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			rec := &scanRecorder{}
			h.dec.Listen(rec.callback)

			h.typeKeys(tt.keys)

			assert.Equal(t, []string{"ad46f21hx"}, rec.values())
		})
	}
}

func TestDecoderShiftVariantsIgnored(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	h.src.KeyDown(keyboard.KeyEvent{Key: "Shift", Code: keyboard.CodeShift})
	h.src.KeyDown(keyboard.KeyEvent{Key: "A", Code: "KeyA"})
	h.src.KeyDown(keyboard.KeyEvent{Key: "Shift", Code: keyboard.CodeShiftRight})
	h.src.KeyDown(keyboard.KeyEvent{Key: "B", Code: "KeyB"})
	h.src.KeyDown(keyboard.KeyEvent{Key: "Enter", Code: keyboard.CodeNumpadEnter})

	assert.Equal(t, []string{"AB"}, rec.values())
}

func TestDecoderEnterWithEmptyBuffer(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	h.typeKeys("\n\n")

	assert.Empty(t, rec.scans)
	assert.Equal(t, "", h.dec.Value())

	// Shift alone never produces a value
	h.typeKeys("^^\n")
	assert.Empty(t, rec.scans)
}

func TestDecoderBufferClearedAfterScan(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	h.typeKeys("b8uza")
	assert.Equal(t, "b8uza", h.dec.Value())

	h.typeKeys("\n")
	require.Len(t, rec.scans, 1)
	assert.Equal(t, "b8uza", rec.scans[0].Value)
	assert.Equal(t, "", h.dec.Value())

	// Ready for the next burst
	h.typeKeys("123\n")
	assert.Equal(t, []string{"b8uza", "123"}, rec.values())
}

func TestDecoderTimeoutDiscardsBuffer(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	h.typeKeys("x")
	assert.Equal(t, "x", h.dec.Value())

	h.clock.Advance(Timeout)

	assert.Equal(t, "", h.dec.Value())
	h.typeKeys("\n")
	assert.Empty(t, rec.scans, "terminator after timeout must not produce a scan")

	discards := h.capture.byCategory(log.CategoryDiscard)
	require.Len(t, discards, 1)
	assert.Equal(t, "x", discards[0].Discard.Value)
	assert.Equal(t, log.DiscardReasonTimeout, discards[0].Discard.Reason)
}

func TestDecoderHumanTypingNeverScans(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	// A person types with gaps longer than the debounce window
	for _, r := range "hello" {
		h.src.KeyDown(keyboard.Char(r))
		h.clock.Advance(250 * time.Millisecond)
	}
	h.typeKeys("\n")

	assert.Empty(t, rec.scans)
	assert.Len(t, h.capture.byCategory(log.CategoryDiscard), 5)
}

func TestDecoderEachKeyRestartsWindow(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)

	// Gaps just under the window keep the burst alive indefinitely
	for _, r := range "slowscan" {
		h.src.KeyDown(keyboard.Char(r))
		h.clock.Advance(Timeout - time.Millisecond)
	}
	assert.Equal(t, 1, h.clock.Pending(), "at most one pending timer")

	// Shift also restarts the window
	h.typeKeys("^")
	h.clock.Advance(Timeout - time.Millisecond)

	h.typeKeys("\n")
	assert.Equal(t, []string{"slowscan"}, rec.values())
	assert.Equal(t, 0, h.clock.Pending(), "terminator does not restart the timer")
}

func TestDecoderRelistenReplacesCallback(t *testing.T) {
	h := newHarness(t)
	first := &scanRecorder{}
	second := &scanRecorder{}

	h.dec.Listen(first.callback)
	h.dec.Listen(second.callback)

	assert.Equal(t, 1, h.src.ListenerCount(keyboard.EventKeyDown), "relisten must not stack subscriptions")

	h.typeKeys("abc\n")
	h.dec.Listen(second.callback)
	h.typeKeys("def\n")

	assert.Empty(t, first.scans)
	assert.Equal(t, []string{"abc", "def"}, second.values())
}

func TestDecoderStopListening(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}
	h.dec.Listen(rec.callback)
	h.typeKeys("ab")

	h.dec.StopListening()

	assert.Equal(t, StateInactive, h.dec.State())
	assert.Equal(t, 0, h.src.ListenerCount(keyboard.EventKeyDown))
	assert.Equal(t, 0, h.clock.Pending(), "stop cancels the inactivity timer")

	before := h.dec.Value()
	h.typeKeys("cd\n")

	assert.Empty(t, rec.scans)
	assert.Equal(t, before, h.dec.Value(), "no buffer mutation after stop")

	// Idempotent
	h.dec.StopListening()
	assert.NoError(t, h.dec.Close())
}

func TestDecoderStaleListenerIgnored(t *testing.T) {
	// A source that does not honor removal keeps calling the old listener
	src := &stickySource{}
	clock := newFakeClock(testEpoch)
	dec := New(src, WithClock(clock))
	rec := &scanRecorder{}

	dec.Listen(rec.callback)
	dec.StopListening()

	src.deliver(keyboard.Char('z'))
	src.deliver(keyboard.Enter())

	assert.Empty(t, rec.scans)
	assert.Equal(t, "", dec.Value())
}

func TestDecoderListenAfterStop(t *testing.T) {
	h := newHarness(t)
	rec := &scanRecorder{}

	h.dec.Listen(rec.callback)
	h.typeKeys("partial")
	h.dec.StopListening()

	h.dec.Listen(rec.callback)
	assert.Equal(t, "", h.dec.Value(), "listen starts from an empty buffer")
	assert.True(t, h.dec.IsListening())

	h.typeKeys("fresh\n")
	assert.Equal(t, []string{"fresh"}, rec.values())
}

func TestDecoderNilCallbackDropsScan(t *testing.T) {
	h := newHarness(t)
	h.dec.Listen(nil)

	h.typeKeys("dropped\n")

	assert.Equal(t, "", h.dec.Value())
	scans := h.capture.byCategory(log.CategoryScan)
	require.Len(t, scans, 1)
	assert.False(t, scans[0].Scan.Delivered)
	assert.Equal(t, "dropped", scans[0].Scan.Value)
}

func TestDecoderIndependentInstances(t *testing.T) {
	src := keyboard.NewDispatcher()
	clock := newFakeClock(testEpoch)
	a := New(src, WithClock(clock))
	b := New(src, WithClock(clock))
	defer a.Close()
	defer b.Close()

	recA, recB := &scanRecorder{}, &scanRecorder{}
	a.Listen(recA.callback)
	b.Listen(recB.callback)

	for _, r := range "42" {
		src.KeyDown(keyboard.Char(r))
	}
	b.StopListening()
	src.KeyDown(keyboard.Enter())

	assert.Equal(t, []string{"42"}, recA.values())
	assert.Empty(t, recB.scans)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestDecoderCallbackMayStopListening(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.dec.Listen(func(ScannedBarcodeData) {
		calls++
		h.dec.StopListening()
	})

	h.typeKeys("one\ntwo\n")

	assert.Equal(t, 1, calls)
	assert.False(t, h.dec.IsListening())
}

func TestDecoderCaptureTrace(t *testing.T) {
	h := newHarness(t)
	h.dec.Listen(func(ScannedBarcodeData) {})
	h.typeKeys("a^b\n")
	h.dec.StopListening()

	states := h.capture.byCategory(log.CategoryState)
	require.Len(t, states, 2)
	assert.Equal(t, "INACTIVE", states[0].StateChange.OldState)
	assert.Equal(t, "ACTIVE", states[0].StateChange.NewState)
	assert.Equal(t, "stop", states[1].StateChange.Reason)

	keys := h.capture.byCategory(log.CategoryKey)
	require.Len(t, keys, 4)
	wantActions := []log.KeyAction{
		log.KeyActionAppended,
		log.KeyActionIgnored,
		log.KeyActionAppended,
		log.KeyActionTerminator,
	}
	wantLens := []int{1, 1, 2, 0}
	for i, e := range keys {
		assert.Equal(t, wantActions[i], e.Key.Action, "key %d action", i)
		assert.Equal(t, wantLens[i], e.Key.BufferLen, "key %d buffer length", i)
		assert.Equal(t, "test-session", e.SessionID)
	}

	scans := h.capture.byCategory(log.CategoryScan)
	require.Len(t, scans, 1)
	assert.True(t, scans[0].Scan.Delivered)
	assert.Equal(t, 2, scans[0].Scan.Length)
}

func TestDecoderWithSystemClock(t *testing.T) {
	src := keyboard.NewDispatcher()
	dec := New(src)
	defer dec.Close()

	dec.Listen(nil)
	src.KeyDown(keyboard.Char('q'))

	assert.Eventually(t, func() bool { return dec.Value() == "" }, time.Second, 10*time.Millisecond)
}

func TestListenerStateString(t *testing.T) {
	assert.Equal(t, "INACTIVE", StateInactive.String())
	assert.Equal(t, "ACTIVE", StateActive.String())
	assert.Equal(t, "UNKNOWN", ListenerState(7).String())
}

// stickySource is a Source whose RemoveListener does nothing.
type stickySource struct {
	listeners []keyboard.Listener
}

func (s *stickySource) AddListener(_ string, l keyboard.Listener) keyboard.ListenerID {
	s.listeners = append(s.listeners, l)
	return keyboard.ListenerID(len(s.listeners))
}

func (s *stickySource) RemoveListener(keyboard.ListenerID) {}

func (s *stickySource) deliver(ev keyboard.KeyEvent) {
	for _, l := range s.listeners {
		l(ev)
	}
}
