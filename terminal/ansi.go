package terminal

// Pre-allocated ANSI sequence fragments
var (
	csiSGR0       = []byte("\x1b[0m")
	csiCursorShow = []byte("\x1b[?25h")
	csiAutoWrapOn = []byte("\x1b[?7h")

	// DECSTR soft reset: cursor visible, default attributes, scroll region cleared
	csiSoftReset = []byte("\x1b[!p")

	newline = []byte("\n")
)
