package term

import "bytes"

// The transmit and receive transformers operate on whatever chunk the
// relay loop pulled from a descriptor, so a multi-byte pattern can
// straddle two chunks. Each transformer carries just enough state across
// calls that splitting a stream into arbitrary chunks produces the same
// output as processing it whole.

// txSubstitute replaces every console newline in data with sub. A nil
// sub means no substitution; an empty sub deletes the newline.
func txSubstitute(data, sub []byte) []byte {
	if sub == nil {
		return data
	}
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if b == consoleNewline {
			out = append(out, sub...)
		} else {
			out = append(out, b)
		}
	}
	return out
}

// hexDecoder turns a stream of hexadecimal digit characters into the
// bytes they encode. Digits accumulate across calls; any non-digit byte
// resets the accumulator.
type hexDecoder struct {
	pending [2]byte
	n       int
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexDigitValue(b byte) byte {
	switch {
	case b >= 'a':
		return b - 'a' + 10
	case b >= 'A':
		return b - 'A' + 10
	default:
		return b - '0'
	}
}

// Decode consumes data and returns the decoded bytes. Every pair of
// accumulated digits emits one byte, most significant digit first.
func (d *hexDecoder) Decode(data []byte) []byte {
	var out []byte
	for _, b := range data {
		if isHexDigit(b) {
			d.pending[d.n] = b
			d.n++
		} else {
			d.n = 0
		}

		if d.n == 2 {
			out = append(out, hexDigitValue(d.pending[0])<<4|hexDigitValue(d.pending[1]))
			d.n = 0
		}
	}
	return out
}

// rxSubstituter replaces every match of a newline pattern with the
// console newline. The pattern is an alternation of one- or two-byte
// sequences tried in order.
//
// If the last byte of the substituted buffer equals the first byte of
// the pattern's first alternative, it is held back as a one-byte carry
// and prepended to the next chunk, since the rest of a two-byte match
// may still arrive. Only this single byte of lookbehind is examined.
type rxSubstituter struct {
	pattern [][]byte
	carry   []byte
}

// newRxSubstituter returns nil when the mode performs no substitution.
func newRxSubstituter(mode RxNewline) *rxSubstituter {
	pattern := mode.pattern()
	if pattern == nil {
		return nil
	}
	return &rxSubstituter{pattern: pattern}
}

// Substitute processes one chunk. An empty chunk returns empty output
// and keeps any carry for the next call.
func (r *rxSubstituter) Substitute(data []byte) []byte {
	if len(r.carry) > 0 {
		data = append(r.carry, data...)
		r.carry = nil
	}
	if len(data) == 0 {
		return nil
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		matched := false
		for _, alt := range r.pattern {
			if bytes.HasPrefix(data[i:], alt) {
				out = append(out, consoleNewline)
				i += len(alt)
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, data[i])
			i++
		}
	}

	if last := len(out) - 1; last >= 0 && out[last] == r.pattern[0][0] {
		r.carry = []byte{out[last]}
		out = out[:last]
	}
	return out
}
