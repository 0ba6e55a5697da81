// Package output hands encoded frames to the terminal.
//
// Channel runs one writer goroutine behind a single-slot handoff: at most one frame is ever in
// flight, frames are written in production order, and a slow terminal back-pressures the
// producer instead of queueing. Direct is the synchronous variant writing on the caller's
// goroutine.
package output

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/lixenwraith/halfshade/codec"
	"github.com/lixenwraith/halfshade/core"
	"github.com/lixenwraith/halfshade/terminal"
)

var (
	// ErrOverrun is the panic value when Send finds the slot filled under OverrunPanic
	ErrOverrun = errors.New("output: frame sent before previous frame drained")

	// ErrClosed is returned by Send after Close
	ErrClosed = errors.New("output: channel closed")

	// ErrNotStarted is returned by Send before Start launched the writer
	ErrNotStarted = errors.New("output: channel not started")
)

// Sink accepts encoded frames for delivery to the terminal
type Sink interface {
	// Send hands off buf; buf must not be written until the next Send returns
	Send(buf *codec.Buffer) error

	// Close flushes any pending frame and releases the writer
	Close() error
}

// State of the single-slot handoff
type State uint8

const (
	StateEmpty State = iota
	StateFilled
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFilled:
		return "filled"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// OverrunPolicy selects Send behavior when the slot is still filled
type OverrunPolicy uint8

const (
	// OverrunBlock waits for the writer to drain the slot
	OverrunBlock OverrunPolicy = iota
	// OverrunPanic treats a filled slot as a protocol violation
	OverrunPanic
)

// Channel is a single-slot frame handoff with a dedicated writer goroutine
type Channel struct {
	w      io.Writer
	policy OverrunPolicy

	mu      sync.Mutex
	cond    *sync.Cond
	state   State
	pending *codec.Buffer
	started bool
	err     error
	written uint64

	doneCh chan struct{}

	// onPanic restores the terminal before the process dies
	onPanic func(r any)
}

// NewChannel creates a channel writing to w; call Start before Send
func NewChannel(w io.Writer, policy OverrunPolicy) *Channel {
	c := &Channel{
		w:       w,
		policy:  policy,
		doneCh:  make(chan struct{}),
		onPanic: core.HandleCrash,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Name implements service.Service
func (c *Channel) Name() string {
	return "output"
}

// Dependencies implements service.Service
// Stopped before the terminal so the last frame lands before the reset sequence
func (c *Channel) Dependencies() []string {
	return []string{terminal.ServiceName}
}

// Init implements service.Service
func (c *Channel) Init(args ...any) error {
	return nil
}

// Start implements service.Service - launches the writer goroutine
func (c *Channel) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	if c.state == StateStopped {
		return ErrClosed
	}
	c.started = true
	core.Go(c.writeLoop, c.onPanic)
	return nil
}

// Stop implements service.Service
func (c *Channel) Stop() error {
	return c.Close()
}

// Send places buf in the slot and wakes the writer
func (c *Channel) Send(buf *codec.Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Nothing would ever drain the slot
	if !c.started && c.state == StateEmpty {
		return ErrNotStarted
	}

	for c.state == StateFilled {
		if c.policy == OverrunPanic {
			panic(ErrOverrun)
		}
		c.cond.Wait()
	}

	switch c.state {
	case StateShuttingDown, StateStopped:
		if c.err != nil {
			return c.err
		}
		return ErrClosed
	}

	c.pending = buf
	c.state = StateFilled
	c.cond.Broadcast()
	return nil
}

// Close drains the pending frame, stops the writer and waits for it to exit
// Returns the write error that stopped the writer, if any. Safe to call multiple times
func (c *Channel) Close() error {
	c.mu.Lock()
	if !c.started {
		// No writer: nothing to drain or join
		if c.state != StateStopped {
			c.pending = nil
			c.state = StateStopped
			close(c.doneCh)
			c.cond.Broadcast()
		}
		err := c.err
		c.mu.Unlock()
		return err
	}
	for c.state == StateFilled {
		c.cond.Wait()
	}
	if c.state == StateEmpty {
		c.state = StateShuttingDown
		c.cond.Broadcast()
	}
	c.mu.Unlock()

	<-c.doneCh

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// State returns the current slot state
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Written returns the number of frames fully written
func (c *Channel) Written() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Err returns the write error that stopped the writer
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// writeLoop drains the slot until shutdown or a write failure
func (c *Channel) writeLoop() {
	defer close(c.doneCh)

	for {
		c.mu.Lock()
		for c.state == StateEmpty {
			c.cond.Wait()
		}
		if c.state == StateShuttingDown {
			c.state = StateStopped
			c.cond.Broadcast()
			c.mu.Unlock()
			return
		}
		buf := c.pending
		c.mu.Unlock()

		// Slot stays filled during the write, the producer cannot reuse buf yet
		_, err := buf.WriteTo(c.w)

		c.mu.Lock()
		c.pending = nil
		if err != nil {
			c.err = fmt.Errorf("output: write frame: %w", err)
			c.state = StateStopped
			c.cond.Broadcast()
			c.mu.Unlock()
			slog.Error("output writer stopped", "error", err, "frames", c.written)
			return
		}
		c.written++
		c.state = StateEmpty
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}
