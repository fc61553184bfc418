package term

import "io"

// colorCodes is the fixed palette assigned to color-coded byte values:
// Black/Red, Black/Green, Black/Yellow, White/Blue, White/Magenta,
// Black/Cyan, Black/White.
var colorCodes = [][]byte{
	[]byte("\x1b[1;30;41m"),
	[]byte("\x1b[1;30;42m"),
	[]byte("\x1b[1;30;43m"),
	[]byte("\x1b[1;37;44m"),
	[]byte("\x1b[1;37;45m"),
	[]byte("\x1b[1;30;46m"),
	[]byte("\x1b[1;30;47m"),
}

var colorReset = []byte("\x1b[0m")

const hexDigits = "0123456789abcdef"

// Formatter renders post-substitution serial data to the console sink.
// Implementations are stateful across calls (column cursor, pending row
// window); any partial row held at shutdown is discarded, not flushed.
type Formatter interface {
	Write(p []byte) error
}

// NewFormatter selects the formatter for the configured output mode.
// This is the single dispatch point; the returned value is used for the
// whole session.
func NewFormatter(w io.Writer, opts Options) Formatter {
	switch opts.Output {
	case OutputSplit:
		return &splitFormatter{w: w, colors: opts.Colors, columns: opts.Columns, partial: true}
	case OutputSplitFull:
		return &splitFormatter{w: w, colors: opts.Colors, columns: opts.Columns}
	case OutputHex:
		return &hexFormatter{w: w, colors: opts.Colors, columns: opts.Columns}
	case OutputHexNewline:
		return &hexFormatter{w: w, colors: opts.Colors, columns: opts.Columns, interpretNewlines: true}
	default:
		return &rawFormatter{w: w, colors: opts.Colors}
	}
}

// appendToken appends token to dst, wrapped in the color escape pair
// assigned to b when one exists.
func appendToken(dst []byte, colors ColorMap, b byte, token ...byte) []byte {
	if slot, ok := colors[b]; ok {
		dst = append(dst, colorCodes[slot]...)
		dst = append(dst, token...)
		dst = append(dst, colorReset...)
		return dst
	}
	return append(dst, token...)
}

// appendHexToken appends the two-lowercase-digit rendering of b.
func appendHexToken(dst []byte, colors ColorMap, b byte) []byte {
	return appendToken(dst, colors, b, hexDigits[b>>4], hexDigits[b&0x0f])
}

// rawFormatter passes bytes through unchanged. With color rules present
// it renders a byte at a time, so a color-coded byte value occurring
// inside an already-written escape sequence can never be re-wrapped.
type rawFormatter struct {
	w      io.Writer
	colors ColorMap
}

func (f *rawFormatter) Write(p []byte) error {
	if len(f.colors) == 0 {
		return writeFull(f.w, p)
	}

	buf := make([]byte, 0, len(p))
	for _, b := range p {
		buf = appendToken(buf, f.colors, b, b)
	}
	return writeFull(f.w, buf)
}

// hexFormatter renders every byte as two hex digits in rows of columns
// bytes, split into two groups by a double space. The column cursor
// persists across calls. With interpretNewlines set, a decoded console
// newline also breaks the row and resets the cursor.
type hexFormatter struct {
	w                 io.Writer
	colors            ColorMap
	columns           int
	interpretNewlines bool

	col int
}

func (f *hexFormatter) Write(p []byte) error {
	var buf []byte
	for _, b := range p {
		buf = appendHexToken(buf, f.colors, b)
		f.col++

		switch f.col {
		case f.columns / 2:
			buf = append(buf, ' ', ' ')
		case f.columns:
			buf = append(buf, consoleNewline)
			f.col = 0
		default:
			buf = append(buf, ' ')
		}

		if f.interpretNewlines && b == consoleNewline {
			buf = append(buf, consoleNewline)
			f.col = 0
		}
	}
	return writeFull(f.w, buf)
}

// splitFormatter accumulates bytes into a window of up to columns bytes
// and renders each completed window as a hex block followed by an ASCII
// block. In partial mode the pending window is redrawn in place after
// every call, erased with a carriage return before the next redraw.
type splitFormatter struct {
	w       io.Writer
	colors  ColorMap
	columns int
	partial bool

	window []byte
}

func (f *splitFormatter) Write(p []byte) error {
	var buf []byte

	// Erase the previously drawn partial row
	if f.partial && len(f.window) > 0 {
		buf = append(buf, '\r')
	}

	for _, b := range p {
		f.window = append(f.window, b)
		if len(f.window) == f.columns {
			buf = f.appendRow(buf)
			buf = append(buf, consoleNewline)
			f.window = f.window[:0]
		}
	}

	if f.partial && len(f.window) > 0 {
		buf = f.appendRow(buf)
	}

	return writeFull(f.w, buf)
}

// appendRow renders the current window: hex tokens grouped into two
// sub-columns, padded to full row width, then the ASCII rendering
// between pipes with dots for non-printable bytes.
func (f *splitFormatter) appendRow(buf []byte) []byte {
	for i, b := range f.window {
		buf = appendHexToken(buf, f.colors, b)
		if i+1 == f.columns/2 {
			buf = append(buf, ' ', ' ')
		} else {
			buf = append(buf, ' ')
		}
	}

	// Pad short windows out to the full hex block width; a window that
	// never reached the mid-row group separator needs one extra space
	// to account for it.
	if n := len(f.window); n < f.columns/2 {
		buf = append(buf, ' ')
		buf = appendSpaces(buf, 3*(f.columns-n))
	} else if n < f.columns {
		buf = appendSpaces(buf, 3*(f.columns-n))
	}

	buf = append(buf, ' ', '|')
	for _, b := range f.window {
		c := b
		if b < 0x20 || b > 0x7e {
			c = '.'
		}
		buf = appendToken(buf, f.colors, b, c)
	}
	return append(buf, '|')
}

func appendSpaces(buf []byte, n int) []byte {
	for i := 0; i < n; i++ {
		buf = append(buf, ' ')
	}
	return buf
}
