package keyboard

import "sync"

// Listener receives dispatched key events.
type Listener func(KeyEvent)

// ListenerID identifies an installed listener. The zero value is never issued.
type ListenerID uint64

// Source is an input source that key-event consumers subscribe to.
type Source interface {
	// AddListener installs l for the named event and returns its ID.
	AddListener(event string, l Listener) ListenerID

	// RemoveListener uninstalls the listener. Unknown IDs are ignored.
	RemoveListener(id ListenerID)
}

type registration struct {
	id       ListenerID
	event    string
	listener Listener
}

// Dispatcher is the in-process Source implementation.
type Dispatcher struct {
	mu sync.Mutex

	// Installed listeners in registration order
	listeners []registration

	nextID ListenerID

	// Serializes delivery across dispatching goroutines
	dispatchMu sync.Mutex
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

var (
	defaultOnce       sync.Once
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide dispatcher.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher = NewDispatcher()
	})
	return defaultDispatcher
}

// AddListener installs l for the named event.
func (d *Dispatcher) AddListener(event string, l Listener) ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, registration{id: id, event: event, listener: l})
	return id
}

// RemoveListener uninstalls the listener with the given ID.
func (d *Dispatcher) RemoveListener(id ListenerID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, r := range d.listeners {
		if r.id == id {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount returns the number of listeners installed for event.
func (d *Dispatcher) ListenerCount(event string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, r := range d.listeners {
		if r.event == event {
			n++
		}
	}
	return n
}

// Dispatch delivers ev to every listener installed for event.
// A listener removed by an earlier listener during the same dispatch is not called.
func (d *Dispatcher) Dispatch(event string, ev KeyEvent) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	for _, id := range d.snapshot(event) {
		// Look the listener up again so removals during dispatch take effect
		if l, ok := d.lookup(id); ok {
			l(ev)
		}
	}
}

// KeyDown dispatches ev as a "keydown" event.
func (d *Dispatcher) KeyDown(ev KeyEvent) {
	d.Dispatch(EventKeyDown, ev)
}

func (d *Dispatcher) snapshot(event string) []ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]ListenerID, 0, len(d.listeners))
	for _, r := range d.listeners {
		if r.event == event {
			ids = append(ids, r.id)
		}
	}
	return ids
}

func (d *Dispatcher) lookup(id ListenerID) (Listener, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range d.listeners {
		if r.id == id {
			return r.listener, true
		}
	}
	return nil, false
}

// Compile-time interface satisfaction check.
var _ Source = (*Dispatcher)(nil)
