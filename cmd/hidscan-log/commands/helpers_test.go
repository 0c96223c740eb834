package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hidscan/hidscan-go/pkg/log"
)

// createTestCapture writes events to a new capture file and returns its path.
func createTestCapture(t *testing.T, events []log.Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test"+log.FileExtension)
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create capture: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close capture: %v", err)
	}
	return path
}

// keyEvent builds a KEY capture event for session at ts.
func keyEvent(session string, ts time.Time, key, code string) log.Event {
	return log.Event{
		Timestamp: ts,
		SessionID: session,
		Category:  log.CategoryKey,
		Source:    "/dev/input/event3",
		Key:       &log.KeyEventData{Key: key, Code: code},
	}
}

// sampleEvents covers every payload type across two sessions.
func sampleEvents() []log.Event {
	ts := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	return []log.Event{
		{Timestamp: ts, SessionID: "aaaaaaaa-1111", Category: log.CategoryState, Source: "/dev/input/event3",
			StateChange: &log.StateChangeEvent{OldState: "INACTIVE", NewState: "ACTIVE", Reason: "listen"}},
		{Timestamp: ts.Add(time.Millisecond), SessionID: "aaaaaaaa-1111", Category: log.CategoryKey, Source: "/dev/input/event3",
			Key: &log.KeyEventData{Key: "Shift", Code: "ShiftLeft", Action: log.KeyActionIgnored}},
		{Timestamp: ts.Add(2 * time.Millisecond), SessionID: "aaaaaaaa-1111", Category: log.CategoryKey, Source: "/dev/input/event3",
			Key: &log.KeyEventData{Key: "A", Code: "KeyA", Action: log.KeyActionAppended, BufferLen: 1}},
		{Timestamp: ts.Add(3 * time.Millisecond), SessionID: "aaaaaaaa-1111", Category: log.CategoryScan, Source: "/dev/input/event3",
			Scan: &log.ScanEventData{Value: "A", Length: 1, Delivered: true}},
		{Timestamp: ts.Add(time.Second), SessionID: "bbbbbbbb-2222", Category: log.CategoryDiscard,
			Discard: &log.DiscardEventData{Value: "xy", Reason: log.DiscardReasonTimeout}},
		{Timestamp: ts.Add(2 * time.Second), SessionID: "bbbbbbbb-2222", Category: log.CategoryScan,
			Scan: &log.ScanEventData{Value: "lost", Length: 4, Delivered: false}},
	}
}
