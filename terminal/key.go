package terminal

// Key represents a parsed input key
type Key uint8

const (
	KeyNone Key = iota
	KeyRune     // Printable character (check Event.Rune)
	KeyEscape
	KeyEnter
	KeyCtrlC
	KeyCtrlD
)

var keyNames = [...]string{
	KeyNone:   "none",
	KeyRune:   "rune",
	KeyEscape: "escape",
	KeyEnter:  "enter",
	KeyCtrlC:  "ctrl+c",
	KeyCtrlD:  "ctrl+d",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// IsExit reports whether the key ends the render loop
func (k Key) IsExit() bool {
	return k == KeyEscape || k == KeyCtrlC
}
