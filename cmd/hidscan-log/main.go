// Command hidscan-log is a tool for viewing and analyzing scanner capture files.
//
// Capture files are written by hidscan when run with -capture.
//
// Usage:
//
//	hidscan-log <command> [flags] <file.klog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSON or CSV format
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//	replay   Decode the captured key presses again
//
// Examples:
//
//	# View all events
//	hidscan-log view scanner.klog
//
//	# View only discarded bursts
//	hidscan-log view -category discard scanner.klog
//
//	# Export to CSV
//	hidscan-log export -format csv -o scanner.csv scanner.klog
//
//	# Keep one session
//	hidscan-log filter -session 5f0c7a2e-... -o session.klog scanner.klog
//
//	# Replay with the recorded timing
//	hidscan-log replay scanner.klog
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hidscan/hidscan-go/cmd/hidscan-log/commands"
)

const usage = `hidscan-log - Scanner Capture Analyzer

Usage:
  hidscan-log <command> [flags] <file.klog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSON or CSV format
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file
  replay   Decode the captured key presses again

Use "hidscan-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "replay":
		runReplay(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// newFlagSet creates a subcommand flag set with the shared usage layout.
func newFlagSet(name, summary, usageLine string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "hidscan-log %s - %s\n\nUsage:\n  %s\n\nFlags:\n", name, summary, usageLine)
		fs.PrintDefaults()
	}
	return fs
}

// parsePath parses args and returns the capture file argument.
func parsePath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View capture file in human-readable format",
		"hidscan-log view [flags] <file.klog>")
	session := fs.String("session", "", "Filter by session ID")
	category := fs.String("category", "", "Filter by category (key, scan, state, discard)")
	path := parsePath(fs, args)

	filter := commands.ViewFilter{SessionID: *session}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export capture file to JSON or CSV format",
		"hidscan-log export [flags] <file.klog>")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parsePath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter capture file and write to new file",
		"hidscan-log filter [flags] <file.klog>")
	output := fs.String("o", "", "Output file (required)")
	session := fs.String("session", "", "Filter by session ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (key, scan, state, discard)")
	path := parsePath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		SessionID: *session,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
	}
	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the capture file",
		"hidscan-log stats <file.klog>")
	path := parsePath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

func runReplay(args []string) {
	fs := newFlagSet("replay", "Decode the captured key presses again",
		"hidscan-log replay [flags] <file.klog>")
	session := fs.String("session", "", "Replay only this session ID")
	realTime := fs.Bool("realtime", false, "Sleep between keys instead of using a virtual clock")
	speed := fs.Float64("speed", 1, "Playback speed in real-time mode (0 = no delay)")
	jsonOut := fs.Bool("json", false, "Print scans as JSON lines")
	path := parsePath(fs, args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := commands.ReplayOptions{
		SessionID: *session,
		RealTime:  *realTime,
		Speed:     *speed,
		JSON:      *jsonOut,
	}
	if err := commands.RunReplay(ctx, path, opts, os.Stdout); err != nil {
		fail(err)
	}
}
