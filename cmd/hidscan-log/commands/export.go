package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hidscan/hidscan-go/pkg/log"
)

// exportRecord is the flat JSON form of a capture event.
type exportRecord struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id"`
	Category  string `json:"category"`
	Source    string `json:"source,omitempty"`

	Key       string `json:"key,omitempty"`
	Code      string `json:"code,omitempty"`
	Action    string `json:"action,omitempty"`
	BufferLen *int   `json:"buffer_len,omitempty"`

	Value     string `json:"value,omitempty"`
	Delivered *bool  `json:"delivered,omitempty"`
	Reason    string `json:"reason,omitempty"`

	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state,omitempty"`
}

func toRecord(event log.Event) exportRecord {
	r := exportRecord{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		SessionID: event.SessionID,
		Category:  event.Category.String(),
		Source:    event.Source,
	}

	switch {
	case event.Key != nil:
		r.Key = event.Key.Key
		r.Code = event.Key.Code
		r.Action = event.Key.Action.String()
		n := event.Key.BufferLen
		r.BufferLen = &n
	case event.Scan != nil:
		r.Value = event.Scan.Value
		d := event.Scan.Delivered
		r.Delivered = &d
	case event.Discard != nil:
		r.Value = event.Discard.Value
		r.Reason = event.Discard.Reason.String()
	case event.StateChange != nil:
		r.OldState = event.StateChange.OldState
		r.NewState = event.StateChange.NewState
		r.Reason = event.StateChange.Reason
	}
	return r
}

// RunExport exports the capture file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "category", "source", "key", "code", "action", "value", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		r := toRecord(event)
		detail := r.Reason
		switch {
		case r.BufferLen != nil:
			detail = strconv.Itoa(*r.BufferLen)
		case r.Delivered != nil:
			detail = strconv.FormatBool(*r.Delivered)
		case r.NewState != "":
			detail = r.OldState + "->" + r.NewState
		}

		row := []string{r.Timestamp, r.SessionID, r.Category, r.Source, r.Key, r.Code, r.Action, r.Value, detail}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
