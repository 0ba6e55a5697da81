//go:build !linux

package terminal

// resetTerminalMode relies on the raw mode restore in Fini outside linux
func resetTerminalMode() {}
