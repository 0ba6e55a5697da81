package terminal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lixenwraith/halfshade/core"
)

// Event represents a terminal key event
type Event struct {
	Key  Key
	Rune rune
	Err  error // Read error, reader stops after sending
}

// inputReader turns raw backend bytes into key events
type inputReader struct {
	backend Backend
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool

	// Persistent buffer for stream assembly across reads
	buf []byte

	// onPanic restores the terminal before the process dies
	onPanic func(r any)
}

func newInputReader(backend Backend) *inputReader {
	return &inputReader{
		backend: backend,
		eventCh: make(chan Event, 64),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		buf:     make([]byte, 0, 256),
		onPanic: core.HandleCrash,
	}
}

// start begins reading input in a goroutine
func (r *inputReader) start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	core.Go(r.readLoop, r.onPanic)
}

// stop signals the reader to stop
func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopCh)
	// Wait with timeout - don't block forever if read is stuck
	select {
	case <-r.doneCh:
	case <-time.After(200 * time.Millisecond):
	}
}

// events returns the event channel
func (r *inputReader) events() <-chan Event {
	return r.eventCh
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)

	for {
		data, err := r.backend.Read(r.stopCh)
		if err != nil {
			slog.Warn("terminal input stopped", "error", err)
			r.sendEvent(Event{Err: err})
			return
		}

		select {
		case <-r.stopCh:
			return
		default:
		}

		if len(data) == 0 {
			// Poll timeout: a lone pending ESC is a real Escape key
			if len(r.buf) == 1 && r.buf[0] == 0x1b {
				r.sendEvent(Event{Key: KeyEscape})
				r.buf = r.buf[:0]
			}
			continue
		}

		r.buf = append(r.buf, data...)
		consumed := r.feed(r.buf)

		if consumed >= len(r.buf) {
			r.buf = r.buf[:0]
		} else if consumed > 0 {
			copy(r.buf, r.buf[consumed:])
			r.buf = r.buf[:len(r.buf)-consumed]
		}
	}
}

// feed parses as many events as possible, returns bytes consumed
func (r *inputReader) feed(data []byte) int {
	i := 0
	for i < len(data) {
		n, ev := parseKey(data[i:])
		if n == 0 {
			break // Incomplete sequence, wait for more data
		}
		if ev.Key != KeyNone {
			r.sendEvent(ev)
		}
		i += n
	}
	return i
}

// sendEvent drops when the consumer lags, only the latest keys matter
func (r *inputReader) sendEvent(ev Event) {
	select {
	case r.eventCh <- ev:
	default:
	}
}

// parseKey decodes one key from data, returns 0 on incomplete input
// Escape sequences (arrows, function keys, mouse) are consumed and reported as KeyNone
func parseKey(data []byte) (int, Event) {
	b := data[0]

	switch {
	case b >= 0x20 && b < 0x7f:
		return 1, Event{Key: KeyRune, Rune: rune(b)}
	case b == 0x1b:
		return parseEscape(data)
	case b == 0x03:
		return 1, Event{Key: KeyCtrlC}
	case b == 0x04:
		return 1, Event{Key: KeyCtrlD}
	case b == 0x0a || b == 0x0d:
		return 1, Event{Key: KeyEnter}
	case b >= 0x80:
		seqLen := utf8SeqLen(b)
		if seqLen == 0 {
			return 1, Event{}
		}
		if seqLen > len(data) {
			return 0, Event{}
		}
		return seqLen, Event{}
	}
	return 1, Event{}
}

// parseEscape handles data starting with ESC
func parseEscape(data []byte) (int, Event) {
	if len(data) < 2 {
		return 0, Event{} // Lone ESC decided on poll timeout
	}

	switch data[1] {
	case 0x1b:
		// ESC ESC: first one is a standalone Escape
		return 1, Event{Key: KeyEscape}
	case '[':
		return skipCSI(data), Event{}
	case 'O':
		if len(data) < 3 {
			return 0, Event{}
		}
		return 3, Event{}
	}

	// Alt+key, swallow both bytes
	return 2, Event{}
}

// skipCSI returns the length of a complete CSI sequence, 0 if incomplete
func skipCSI(data []byte) int {
	const maxScan = 32
	for end := 2; end < len(data) && end < maxScan; end++ {
		b := data[end]
		if b >= 0x40 && b <= 0x7e {
			return end + 1
		}
		if b < 0x20 {
			// Malformed, drop the introducer only
			return 2
		}
	}
	if len(data) >= maxScan {
		return 2
	}
	return 0
}

// utf8SeqLen returns expected UTF-8 sequence length from start byte, 0 if invalid
func utf8SeqLen(b byte) int {
	if b < 0x80 {
		return 1
	}
	if b&0xe0 == 0xc0 {
		return 2
	}
	if b&0xf0 == 0xe0 {
		return 3
	}
	if b&0xf8 == 0xf0 {
		return 4
	}
	return 0
}
