// Package commands implements the hidscan-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hidscan/hidscan-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	SessionID string
	Category  *log.Category
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{SessionID: f.SessionID, Category: f.Category}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] CATEGORY source
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [session:%s] %-7s", ts, shortenID(event.SessionID), event.Category.String())
	if event.Source != "" {
		fmt.Fprintf(w, " %s", event.Source)
	}
	fmt.Fprintln(w)

	switch {
	case event.Key != nil:
		fmt.Fprintf(w, "  Key: %q (%s) %s, buffer %d\n",
			event.Key.Key, event.Key.Code, event.Key.Action.String(), event.Key.BufferLen)
	case event.Scan != nil:
		fmt.Fprintf(w, "  Value: %q (%d chars)\n", event.Scan.Value, event.Scan.Length)
		if !event.Scan.Delivered {
			fmt.Fprintln(w, "  Not delivered: no callback")
		}
	case event.Discard != nil:
		fmt.Fprintf(w, "  Dropped: %q (%s)\n", event.Discard.Value, event.Discard.Reason.String())
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	}

	fmt.Fprintln(w)
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, " (%s)", sc.Reason)
	}
	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseCategoryFlag parses a category command-line value.
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "key":
		return log.CategoryKey, nil
	case "scan":
		return log.CategoryScan, nil
	case "state":
		return log.CategoryState, nil
	case "discard":
		return log.CategoryDiscard, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be key, scan, state, or discard)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
