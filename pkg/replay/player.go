package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
	"github.com/hidscan/hidscan-go/pkg/log"
)

// ErrInvalidSpeed is returned for negative playback speeds.
var ErrInvalidSpeed = errors.New("invalid playback speed")

// maxGap caps the delay between replayed keys so idle periods in a long
// capture do not stall playback.
const maxGap = 2 * time.Second

// Player re-dispatches captured key presses.
type Player struct {
	speed   float64
	session string
	played  int

	// When set, recorded gaps advance this clock instead of sleeping
	virtual *VirtualClock

	// Optional; receives recorded listener state changes in order with keys
	onState func(session string, sc log.StateChangeEvent)
}

// Router returns the sink for the key presses of one recorded session.
type Router func(session string) Sink

// NewPlayer creates a player. Speed 1 reproduces the recorded timing, 2 plays
// twice as fast, and 0 dispatches without any delay. Only events of the given
// session are replayed; an empty session replays all.
func NewPlayer(speed float64, session string) (*Player, error) {
	if speed < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	return &Player{speed: speed, session: session}, nil
}

// UseVirtualClock makes the player move c to each event's recorded time
// instead of waiting in real time. Combined with a decoder running on c,
// playback is instant and reproduces the recorded timeouts exactly.
func (p *Player) UseVirtualClock(c *VirtualClock) {
	p.virtual = c
}

// OnState registers f to receive the STATE events of the capture. Without
// it STATE events are skipped.
func (p *Player) OnState(f func(session string, sc log.StateChangeEvent)) {
	p.onState = f
}

// Played returns the number of key presses dispatched so far.
func (p *Player) Played() int {
	return p.played
}

// PlayFile replays the key events in the capture file at path.
func (p *Player) PlayFile(ctx context.Context, path string, sink Sink) error {
	return p.PlayFileSessions(ctx, path, func(string) Sink { return sink })
}

// PlayFileSessions replays the capture file at path, sending the key presses
// of each session to the sink route returns for it.
func (p *Player) PlayFileSessions(ctx context.Context, path string, route Router) error {
	r, err := log.NewFilteredReader(path, log.Filter{SessionID: p.session})
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer r.Close()

	return p.PlaySessions(ctx, r, route)
}

// Play replays key events read from r.
func (p *Player) Play(ctx context.Context, r *log.Reader, sink Sink) error {
	return p.PlaySessions(ctx, r, func(string) Sink { return sink })
}

// PlaySessions replays events read from r, routing key presses by session.
func (p *Player) PlaySessions(ctx context.Context, r *log.Reader, route Router) error {
	var last time.Time
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		if p.session != "" && event.SessionID != p.session {
			continue
		}

		stateChange := event.StateChange != nil && p.onState != nil
		if event.Key == nil && !stateChange {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		switch {
		case p.virtual != nil:
			p.virtual.AdvanceTo(event.Timestamp)
		case !last.IsZero():
			if err := sleep(ctx, p.gap(event.Timestamp.Sub(last))); err != nil {
				return err
			}
		}
		last = event.Timestamp

		if stateChange {
			p.onState(event.SessionID, *event.StateChange)
			continue
		}

		ts := time.Now()
		if p.virtual != nil {
			ts = event.Timestamp
		}

		route(event.SessionID).KeyDown(keyboard.KeyEvent{
			Key:       event.Key.Key,
			Code:      keyboard.Code(event.Key.Code),
			Timestamp: ts,
		})
		p.played++
	}
}

func (p *Player) gap(recorded time.Duration) time.Duration {
	if p.speed == 0 || recorded <= 0 {
		return 0
	}
	d := time.Duration(float64(recorded) / p.speed)
	return min(d, maxGap)
}
