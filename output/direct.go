package output

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/lixenwraith/halfshade/codec"
)

// Direct writes each frame synchronously on the caller's goroutine
// Frame N is fully written before frame N+1 is computed, no overlap
type Direct struct {
	w       io.Writer
	closed  atomic.Bool
	written atomic.Uint64
}

// NewDirect creates a synchronous sink over w
func NewDirect(w io.Writer) *Direct {
	return &Direct{w: w}
}

// Send writes buf immediately
func (d *Direct) Send(buf *codec.Buffer) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if _, err := buf.WriteTo(d.w); err != nil {
		return fmt.Errorf("output: write frame: %w", err)
	}
	d.written.Add(1)
	return nil
}

// Close marks the sink closed; nothing is buffered
func (d *Direct) Close() error {
	d.closed.Store(true)
	return nil
}

// Written returns the number of frames written
func (d *Direct) Written() uint64 {
	return d.written.Load()
}
