// Package interactive provides the hidscan console, which simulates a
// keyboard-wedge scanner from typed commands.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/hidscan/hidscan-go/pkg/keyboard"
	"github.com/hidscan/hidscan-go/pkg/replay"
	"github.com/hidscan/hidscan-go/pkg/scanner"
)

// Console handles the interactive command loop.
type Console struct {
	sink   replay.Sink
	dec    *scanner.Decoder
	onScan scanner.Callback

	rl        *readline.Instance
	out       io.Writer
	closeOnce sync.Once

	// Gaps between simulated key presses
	scanInterval time.Duration
	typeInterval time.Duration
}

// New creates a console that dispatches simulated key presses to sink.
func New(sink replay.Sink) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hidscan> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(sink, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(sink replay.Sink, out io.Writer) *Console {
	return &Console{
		sink:         sink,
		out:          out,
		scanInterval: replay.ScannerInterval,
		typeInterval: replay.HumanInterval,
	}
}

// Bind attaches the decoder the console controls and starts listening with
// onScan.
func (c *Console) Bind(dec *scanner.Decoder, onScan scanner.Callback) {
	c.dec = dec
	c.onScan = onScan
	dec.Listen(onScan)
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Stderr returns a writer for log output that coordinates with the prompt.
func (c *Console) Stderr() io.Writer {
	if c.rl == nil {
		return c.out
	}
	return c.rl.Stderr()
}

// Close releases the terminal. It is safe to call more than once.
func (c *Console) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.rl != nil {
			err = c.rl.Close()
		}
	})
	return err
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.execute(ctx, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// execute runs one command line. It returns false when the console should exit.
func (c *Console) execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		c.printHelp()

	case "scan", "s":
		c.cmdType(ctx, rest, c.scanInterval)

	case "type", "t":
		c.cmdType(ctx, rest, c.typeInterval)

	case "enter":
		c.sink.KeyDown(keyboard.Enter())

	case "listen":
		c.dec.Listen(c.onScan)
		fmt.Fprintln(c.out, "Listening")

	case "stop":
		c.dec.StopListening()
		fmt.Fprintln(c.out, "Stopped")

	case "status":
		c.cmdStatus()

	case "exit", "quit", "q":
		return false

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) cmdType(ctx context.Context, text string, interval time.Duration) {
	if text == "" {
		fmt.Fprintln(c.out, "Usage: scan <text> | type <text>")
		return
	}
	if err := replay.Type(ctx, c.sink, text, interval); err != nil {
		fmt.Fprintf(c.out, "Interrupted: %v\n", err)
	}
}

func (c *Console) cmdStatus() {
	fmt.Fprintf(c.out, "Session:  %s\n", c.dec.ID())
	fmt.Fprintf(c.out, "State:    %s\n", c.dec.State())
	fmt.Fprintf(c.out, "Buffered: %q\n", c.dec.Value())
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
hidscan Console Commands:
  Input:
    scan <text>   - Send text at scanner speed followed by Enter
    type <text>   - Send text at human typing speed followed by Enter
    enter         - Send a lone Enter key

  Decoder:
    listen        - Start (or restart) listening
    stop          - Stop listening
    status        - Show decoder state and buffered input

  General:
    help          - Show this help
    exit          - Exit`)
}
