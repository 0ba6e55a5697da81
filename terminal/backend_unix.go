//go:build unix

package terminal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollTimeoutMs bounds each stdin poll so stop requests and lone ESC are noticed
const pollTimeoutMs = 100

type unixBackend struct {
	in      *os.File
	inFd    int
	oldTerm *term.State
	buf     []byte
}

func newUnixBackend(in *os.File) *unixBackend {
	return &unixBackend{
		in:   in,
		inFd: int(in.Fd()),
		buf:  make([]byte, 256),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return fmt.Errorf("stdin is not a terminal")
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	b.oldTerm = old
	return nil
}

func (b *unixBackend) Fini() {
	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
		b.oldTerm = nil
	}
}

func (b *unixBackend) Size() (int, int, bool) {
	return getTerminalSize(b.inFd)
}

// Read polls stdin with a timeout to allow checking stopCh
func (b *unixBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		fds := []unix.PollFd{
			{Fd: int32(b.inFd), Events: unix.POLLIN},
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}

		if n == 0 {
			return nil, nil // Timeout
		}

		rn, err := unix.Read(b.inFd, b.buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return nil, err
		}

		if rn == 0 {
			// EOF, stop reading but keep rendering
			<-stopCh
			return nil, nil
		}

		ret := make([]byte, rn)
		copy(ret, b.buf[:rn])
		return ret, nil
	}
}

// getTerminalSize returns the terminal size for a given fd
func getTerminalSize(fd int) (int, int, bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}

// newBackend picks the input source: stdin when it is a terminal, else /dev/tty
func newBackend(in *os.File) Backend {
	if isatty.IsTerminal(in.Fd()) {
		return newUnixBackend(in)
	}
	if b, err := newTTYBackend(); err == nil {
		slog.Debug("stdin is not a terminal, reading keys from /dev/tty")
		return b
	}
	slog.Warn("no terminal input available, exit key disabled")
	return nullBackend{}
}
