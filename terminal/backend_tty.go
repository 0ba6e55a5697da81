//go:build unix

package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/halfshade/core"
)

// ttyBackend reads keys from the controlling terminal when stdin is redirected
// e.g. `halfshade < /dev/null` or running under a pipe
type ttyBackend struct {
	tty tcell.Tty

	dataCh chan []byte
	errCh  chan error
	stopCh chan struct{}
	doneCh chan struct{}
	timer  *time.Timer
}

func newTTYBackend() (*ttyBackend, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, fmt.Errorf("open /dev/tty: %w", err)
	}
	return &ttyBackend{
		tty:    tty,
		dataCh: make(chan []byte, 16),
		errCh:  make(chan error, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

func (b *ttyBackend) Init() error {
	if err := b.tty.Start(); err != nil {
		b.tty.Close()
		return fmt.Errorf("tty start: %w", err)
	}
	b.timer = time.NewTimer(time.Duration(pollTimeoutMs) * time.Millisecond)
	core.Go(b.pump, nil)
	return nil
}

func (b *ttyBackend) Fini() {
	close(b.stopCh)
	// Drain unblocks a pending Read
	b.tty.Drain()
	select {
	case <-b.doneCh:
	case <-time.After(100 * time.Millisecond):
	}
	b.tty.Stop()
	b.tty.Close()
}

func (b *ttyBackend) Size() (int, int, bool) {
	ws, err := b.tty.WindowSize()
	if err != nil || ws.Width <= 0 || ws.Height <= 0 {
		return 0, 0, false
	}
	return ws.Width, ws.Height, true
}

// Read waits for pumped input, returning empty data after the poll timeout
func (b *ttyBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	if !b.timer.Stop() {
		select {
		case <-b.timer.C:
		default:
		}
	}
	b.timer.Reset(time.Duration(pollTimeoutMs) * time.Millisecond)

	select {
	case <-stopCh:
		return nil, nil
	case data := <-b.dataCh:
		return data, nil
	case err := <-b.errCh:
		return nil, err
	case <-b.timer.C:
		return nil, nil
	}
}

// pump moves bytes from the blocking tty read onto dataCh
func (b *ttyBackend) pump() {
	defer close(b.doneCh)
	buf := make([]byte, 256)
	for {
		n, err := b.tty.Read(buf)

		select {
		case <-b.stopCh:
			return
		default:
		}

		if err != nil {
			b.errCh <- err
			return
		}
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case b.dataCh <- data:
		case <-b.stopCh:
			return
		}
	}
}
