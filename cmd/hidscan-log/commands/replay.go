package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
	"github.com/hidscan/hidscan-go/pkg/log"
	"github.com/hidscan/hidscan-go/pkg/replay"
	"github.com/hidscan/hidscan-go/pkg/scanner"
)

// ReplayOptions configures the replay command.
type ReplayOptions struct {
	// SessionID restricts playback to one session.
	SessionID string

	// RealTime sleeps between keys instead of using a virtual clock.
	RealTime bool

	// Speed scales recorded gaps in real-time mode.
	Speed float64

	// JSON prints scans as JSON lines.
	JSON bool
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Keys     int
	Sessions int
	Scans    []scanner.ScannedBarcodeData
	Discards []string

	// Pending is input still buffered when playback ended, per session.
	Pending []string
}

// outcomeRecorder collects the discards the decoders report while replaying.
type outcomeRecorder struct {
	mu       sync.Mutex
	discards []string
}

func (r *outcomeRecorder) Log(event log.Event) {
	if event.Discard == nil {
		return
	}
	r.mu.Lock()
	r.discards = append(r.discards, event.Discard.Value)
	r.mu.Unlock()
}

func (r *outcomeRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.discards...)
}

// sessionReplay is the decoder standing in for one recorded session.
type sessionReplay struct {
	dispatcher *keyboard.Dispatcher
	dec        *scanner.Decoder
}

// Replay feeds the captured key events through fresh decoders, one per
// recorded session, and returns what they decoded. Recorded listen and stop
// transitions are applied to the session's decoder in order with its keys.
func Replay(ctx context.Context, path string, opts ReplayOptions) (*ReplayResult, error) {
	player, err := replay.NewPlayer(opts.Speed, opts.SessionID)
	if err != nil {
		return nil, err
	}

	recorder := &outcomeRecorder{}
	decOpts := []scanner.Option{
		scanner.WithCapture(recorder),
		scanner.WithSourceName("replay:" + path),
	}

	var clock *replay.VirtualClock
	if !opts.RealTime {
		clock = replay.NewVirtualClock(time.Time{})
		player.UseVirtualClock(clock)
		decOpts = append(decOpts, scanner.WithClock(clock))
	}

	var (
		mu    sync.Mutex
		scans []scanner.ScannedBarcodeData
	)
	onScan := func(d scanner.ScannedBarcodeData) {
		mu.Lock()
		scans = append(scans, d)
		mu.Unlock()
	}

	var order []string
	sessions := make(map[string]*sessionReplay)
	session := func(id string) *sessionReplay {
		if s, ok := sessions[id]; ok {
			return s
		}
		d := keyboard.NewDispatcher()
		s := &sessionReplay{dispatcher: d, dec: scanner.New(d, decOpts...)}
		// Keys were recorded, so the session was listening
		s.dec.Listen(onScan)
		sessions[id] = s
		order = append(order, id)
		return s
	}
	defer func() {
		for _, s := range sessions {
			s.dec.Close()
		}
	}()

	player.OnState(func(id string, sc log.StateChangeEvent) {
		s := session(id)
		switch sc.NewState {
		case scanner.StateActive.String():
			s.dec.Listen(onScan)
		case scanner.StateInactive.String():
			s.dec.StopListening()
		}
	})

	route := func(id string) replay.Sink {
		return session(id).dispatcher
	}
	if err := player.PlayFileSessions(ctx, path, route); err != nil {
		return nil, err
	}

	// Let trailing unterminated bursts time out as they did live
	if clock != nil {
		clock.Advance(scanner.Timeout)
	}

	result := &ReplayResult{
		Keys:     player.Played(),
		Sessions: len(sessions),
		Discards: recorder.snapshot(),
	}
	for _, id := range order {
		if v := sessions[id].dec.Value(); v != "" {
			result.Pending = append(result.Pending, v)
		}
	}

	mu.Lock()
	result.Scans = scans
	mu.Unlock()
	return result, nil
}

// RunReplay replays the capture file and prints the scans it produces.
func RunReplay(ctx context.Context, path string, opts ReplayOptions, w io.Writer) error {
	result, err := Replay(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if opts.JSON {
		encoder := json.NewEncoder(w)
		for _, s := range result.Scans {
			if err := encoder.Encode(s); err != nil {
				return fmt.Errorf("failed to encode scan: %w", err)
			}
		}
		return nil
	}

	for _, s := range result.Scans {
		fmt.Fprintf(w, "%s  %s\n", s.Time().UTC().Format("2006-01-02T15:04:05.000Z"), s.Value)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replayed %d keys from %d sessions: %d scans, %d discarded\n",
		result.Keys, result.Sessions, len(result.Scans), len(result.Discards))
	for _, d := range result.Discards {
		fmt.Fprintf(w, "  discarded %q\n", d)
	}
	for _, p := range result.Pending {
		fmt.Fprintf(w, "  pending %q\n", p)
	}
	return nil
}

var _ log.Logger = (*outcomeRecorder)(nil)
