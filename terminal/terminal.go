package terminal

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Fallback dimensions when no terminal reports a size
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Console owns terminal input and restoration; frame output bypasses it
type Console struct {
	backend Backend
	input   *inputReader
	out     io.Writer
	outFd   int
	outTTY  bool

	colorMode ColorMode

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// NewConsole creates a console reading keys from stdin (or /dev/tty) and restoring stdout
func NewConsole() *Console {
	return newConsole(newBackend(os.Stdin), os.Stdout)
}

func newConsole(backend Backend, out io.Writer) *Console {
	c := &Console{
		backend:   backend,
		out:       out,
		outFd:     -1,
		colorMode: DetectColorMode(),
	}
	if f, ok := out.(*os.File); ok {
		c.outFd = int(f.Fd())
		c.outTTY = isatty.IsTerminal(f.Fd())
	}
	return c
}

// Init enters raw mode on the input side
func (c *Console) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}

	if err := c.backend.Init(); err != nil {
		slog.Warn("terminal input unavailable, exit key disabled", "error", err)
		c.backend = nullBackend{}
	}
	c.input = newInputReader(c.backend)

	if c.colorMode != ColorModeTrueColor {
		slog.Warn("terminal does not advertise truecolor, colors may be approximated", "mode", c.colorMode)
	}

	c.initialized = true
	return nil
}

// Start begins polling input
func (c *Console) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized && !c.finalized {
		c.input.start()
	}
}

// Fini stops input, leaves raw mode and writes the reset sequence
// Safe to call multiple times
func (c *Console) Fini() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || c.finalized {
		return
	}

	c.input.stop()
	c.backend.Fini()

	c.out.Write(csiSoftReset)
	c.out.Write(newline)

	c.finalized = true
}

// Size returns terminal columns and rows
// Checks stdout first, then the input terminal, then falls back to 80x24
func (c *Console) Size() (int, int) {
	if c.outTTY {
		if w, h, err := term.GetSize(c.outFd); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	if w, h, ok := c.backend.Size(); ok {
		return w, h
	}
	return defaultWidth, defaultHeight
}

// ColorMode returns detected color capability
func (c *Console) ColorMode() ColorMode {
	return c.colorMode
}

// PollKey returns a pending key without blocking
func (c *Console) PollKey() (Key, bool) {
	c.mu.Lock()
	in := c.input
	c.mu.Unlock()
	if in == nil {
		return KeyNone, false
	}

	select {
	case ev := <-in.events():
		if ev.Err != nil {
			return KeyNone, false
		}
		return ev.Key, true
	default:
		return KeyNone, false
	}
}

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiSGR0)
	w.Write(csiCursorShow)
	w.Write(csiAutoWrapOn)
	w.Write(csiSoftReset)
	w.Write(newline)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
