//go:build !unix

package terminal

import "os"

// newBackend has no raw input outside unix; rendering still works, exit via signal
func newBackend(in *os.File) Backend {
	return nullBackend{}
}
