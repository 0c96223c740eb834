package replay

import (
	"sort"
	"sync"
	"time"

	"github.com/hidscan/hidscan-go/pkg/scanner"
)

// VirtualClock is a scanner.Clock whose time only moves when Advance is
// called. Timers fire synchronously inside Advance, in deadline order.
type VirtualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID uint64
	timers map[uint64]*virtualTimer
}

type virtualTimer struct {
	clock *VirtualClock
	id    uint64
	at    time.Time
	f     func()
}

// NewVirtualClock creates a clock reading start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start, timers: make(map[uint64]*virtualTimer)}
}

// Now returns the virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *VirtualClock) AfterFunc(d time.Duration, f func()) scanner.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &virtualTimer{clock: c, id: c.nextID, at: c.now.Add(d), f: f}
	c.timers[t.id] = t
	return t
}

// Advance moves the clock forward by d and runs the timers that became due.
func (c *VirtualClock) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	c.AdvanceTo(target)
}

// AdvanceTo moves the clock forward to t and runs the timers that became
// due. Times in the past are ignored. The clock jumps straight to t, so a
// clock started at the zero time can move to any wall-clock time.
func (c *VirtualClock) AdvanceTo(t time.Time) {
	c.mu.Lock()
	if t.After(c.now) {
		c.now = t
	}
	var due []*virtualTimer
	for id, vt := range c.timers {
		if !vt.at.After(c.now) {
			due = append(due, vt)
			delete(c.timers, id)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].id < due[j].id
		}
		return due[i].at.Before(due[j].at)
	})
	for _, vt := range due {
		vt.f()
	}
}

// Pending returns the number of scheduled timers.
func (c *VirtualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (t *virtualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}

var _ scanner.Clock = (*VirtualClock)(nil)
