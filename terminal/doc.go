// Package terminal provides the console side of the renderer: raw-mode key polling, size
// discovery and guaranteed restoration of the terminal on every exit path.
//
// Features:
//   - Raw stdin input with standalone ESC detection (escape sequences are swallowed)
//   - /dev/tty fallback via tcell when stdin is redirected
//   - True color capability detection
//   - Clean terminal restoration on exit/panic
//
// Frame bytes are not written here; they go through the output package straight to stdout.
package terminal
