package term

import (
	"fmt"
	"strconv"
	"strings"
)

// consoleNewline is the platform newline byte written to and matched on
// the console side.
const consoleNewline = '\n'

// ReadBufferSize is the maximum chunk pulled from either descriptor per
// loop iteration.
const ReadBufferSize = 4096

// DefaultEscapeByte ends the session when seen on console input (Ctrl-]).
const DefaultEscapeByte = 0x1D

// DefaultColumns is the number of bytes per row in the hex and split
// output modes.
const DefaultColumns = 16

// OutputMode selects how received serial data is rendered on the console.
type OutputMode int

const (
	OutputRaw OutputMode = iota
	OutputSplit
	OutputSplitFull
	OutputHex
	OutputHexNewline
)

// ParseOutputMode parses an output mode name.
func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "raw":
		return OutputRaw, nil
	case "split":
		return OutputSplit, nil
	case "splitfull":
		return OutputSplitFull, nil
	case "hex":
		return OutputHex, nil
	case "hexnl":
		return OutputHexNewline, nil
	}
	return 0, fmt.Errorf("invalid output mode %q", s)
}

// InputMode selects how console input is interpreted before transmission.
type InputMode int

const (
	InputRaw InputMode = iota
	InputHex
)

// ParseInputMode parses an input mode name.
func ParseInputMode(s string) (InputMode, error) {
	switch s {
	case "raw":
		return InputRaw, nil
	case "hex":
		return InputHex, nil
	}
	return 0, fmt.Errorf("invalid input mode %q", s)
}

// TxNewline selects the substitute for console newlines on the transmit
// path. TxNewlineNone deletes them.
type TxNewline int

const (
	TxNewlineRaw TxNewline = iota
	TxNewlineNone
	TxNewlineCR
	TxNewlineLF
	TxNewlineCRLF
)

// ParseTxNewline parses a transmit newline substitution name.
func ParseTxNewline(s string) (TxNewline, error) {
	switch s {
	case "raw":
		return TxNewlineRaw, nil
	case "none":
		return TxNewlineNone, nil
	case "cr":
		return TxNewlineCR, nil
	case "lf":
		return TxNewlineLF, nil
	case "crlf":
		return TxNewlineCRLF, nil
	}
	return 0, fmt.Errorf("invalid tx newline type %q", s)
}

// sub returns the substitute bytes, or nil when no substitution applies.
func (t TxNewline) sub() []byte {
	switch t {
	case TxNewlineNone:
		return []byte{}
	case TxNewlineCR:
		return []byte("\r")
	case TxNewlineLF:
		return []byte("\n")
	case TxNewlineCRLF:
		return []byte("\r\n")
	}
	return nil
}

// RxNewline selects the pattern replaced with the console newline on the
// receive path.
type RxNewline int

const (
	RxNewlineRaw RxNewline = iota
	RxNewlineCR
	RxNewlineLF
	RxNewlineCRLF
	RxNewlineCROrLF
)

// ParseRxNewline parses a receive newline substitution name.
func ParseRxNewline(s string) (RxNewline, error) {
	switch s {
	case "raw":
		return RxNewlineRaw, nil
	case "cr":
		return RxNewlineCR, nil
	case "lf":
		return RxNewlineLF, nil
	case "crlf":
		return RxNewlineCRLF, nil
	case "crorlf":
		return RxNewlineCROrLF, nil
	}
	return 0, fmt.Errorf("invalid rx newline type %q", s)
}

// pattern returns the match alternatives in priority order, or nil when
// no substitution applies.
func (r RxNewline) pattern() [][]byte {
	switch r {
	case RxNewlineCR:
		return [][]byte{[]byte("\r")}
	case RxNewlineLF:
		return [][]byte{[]byte("\n")}
	case RxNewlineCRLF:
		return [][]byte{[]byte("\r\n")}
	case RxNewlineCROrLF:
		return [][]byte{[]byte("\r"), []byte("\n")}
	}
	return nil
}

// ColorMap assigns byte values to palette slots in first-seen order.
type ColorMap map[byte]int

// ParseColorChars builds a ColorMap from a comma-delimited list of
// single ASCII characters or 0x-prefixed hex literals. At most
// len(colorCodes) distinct byte values may be requested; duplicates keep
// their first-assigned slot.
func ParseColorChars(spec string) (ColorMap, error) {
	cm := ColorMap{}

	var items []string
	for _, item := range strings.Split(spec, ",") {
		if len(item) >= 1 {
			items = append(items, item)
		}
	}
	if len(items) > len(colorCodes) {
		return nil, fmt.Errorf("maximum color code characters (%d) exceeded", len(colorCodes))
	}

	for _, item := range items {
		var b byte
		switch {
		case len(item) == 1:
			b = item[0]
		case len(item) > 2 && item[0:2] == "0x":
			v, err := strconv.ParseUint(item[2:], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("unknown color code character %q", item)
			}
			b = byte(v)
		default:
			return nil, fmt.Errorf("unknown color code character %q", item)
		}
		if _, ok := cm[b]; !ok {
			cm[b] = len(cm)
		}
	}

	return cm, nil
}

// Options is the immutable session configuration built once at startup.
type Options struct {
	Output     OutputMode
	Input      InputMode
	TxNewline  TxNewline
	RxNewline  RxNewline
	Echo       bool
	Colors     ColorMap
	Columns    int
	EscapeByte byte
}

// DefaultOptions mirrors the historical defaults: raw in both directions,
// no substitutions, no color coding, Ctrl-] to quit.
func DefaultOptions() Options {
	return Options{
		Output:     OutputRaw,
		Input:      InputRaw,
		TxNewline:  TxNewlineRaw,
		RxNewline:  RxNewlineRaw,
		Echo:       false,
		Colors:     ColorMap{},
		Columns:    DefaultColumns,
		EscapeByte: DefaultEscapeByte,
	}
}
