package codec

// Pre-allocated ANSI sequence fragments (avoid allocations during encode)
var (
	// Hide cursor, move home
	seqPrelude = []byte("\x1b[?25l\x1b[H")

	// Cell group: bg prefix, numbers, fg prefix, numbers, glyph
	seqCellBg    = []byte("\x1b[48;2")
	seqCellFg    = []byte("m\x1b[38;2")
	seqCellGlyph = []byte("m▀")

	// Default bg/fg before status text
	seqStatusReset = []byte("\x1b[49m\x1b[39m")
	seqStatusFPS   = []byte(", FPS:")
	seqStatusPad   = []byte("       ")
)

// Worst-case byte counts used for capacity sizing
const (
	maxChannelBytes = 4 // ";255"

	// MaxCellBytes is the longest possible encoding of one cell group
	MaxCellBytes = 6 + 3*maxChannelBytes + 7 + 3*maxChannelBytes + 4

	maxUintDigits = 20

	// MaxStatusBytes bounds the status line for any frame number and FPS value
	MaxStatusBytes = 10 + 1 + maxUintDigits + 6 + maxUintDigits + 7
)

// PreludeLen is the fixed per-frame prefix length
var PreludeLen = len(seqPrelude)

// channelDigits holds ";N" for every channel value, built once
var channelDigits [256][]byte

func init() {
	for v := 0; v < 256; v++ {
		b := make([]byte, 0, maxChannelBytes)
		b = append(b, ';')
		b = appendUint(b, uint64(v))
		channelDigits[v] = b
	}
}

// ChannelBytes returns the encoded ";N" form of a channel value
func ChannelBytes(v uint8) []byte {
	return channelDigits[v]
}

// appendUint appends decimal digits without leading zeros
func appendUint(dst []byte, n uint64) []byte {
	if n < 10 {
		return append(dst, byte(n)+'0')
	}
	var tmp [maxUintDigits]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte(n%10) + '0'
		n /= 10
	}
	return append(dst, tmp[i:]...)
}
