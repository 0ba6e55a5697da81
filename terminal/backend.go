package terminal

// Backend abstracts the input side of the console
// Native stdin in raw mode, /dev/tty through tcell, or nothing at all
type Backend interface {
	// Lifecycle
	Init() error
	Fini()

	// Size returns the terminal dimensions known to this backend
	Size() (width, height int, ok bool)

	// Read blocks until input is available, the stop channel is closed, or an error occurs
	// Returns empty data on poll timeout so pending standalone ESC can be emitted
	Read(stopCh <-chan struct{}) ([]byte, error)
}

// nullBackend is used when no terminal input is reachable (pipes, CI)
type nullBackend struct{}

func (nullBackend) Init() error { return nil }
func (nullBackend) Fini()       {}

func (nullBackend) Size() (int, int, bool) {
	return 0, 0, false
}

func (nullBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	<-stopCh
	return nil, nil
}
