package term

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Channel is a duplex byte endpoint with a pollable file descriptor.
type Channel interface {
	io.Reader
	io.Writer
	Fd() int
}

// Loop relays bytes between the serial channel and the console. Console
// input is scanned for the escape byte, run through the transmit newline
// substitution and the optional hex decoder, and written to the serial
// channel. Serial input is run through the receive newline substitution
// and the selected output formatter.
//
// The loop is single threaded: one select call multiplexes both
// directions, so transformer and formatter state is only ever touched
// from the loop body.
type Loop struct {
	serial Channel
	in     Channel
	format Formatter

	escape byte
	txSub  []byte
	hexDec *hexDecoder
	rxSub  *rxSubstituter
}

// NewLoop builds a relay loop for one session. All transformer and
// formatter state is created here and owned by the loop.
func NewLoop(serial Channel, in Channel, out io.Writer, opts Options) *Loop {
	l := &Loop{
		serial: serial,
		in:     in,
		format: NewFormatter(out, opts),
		escape: opts.EscapeByte,
		txSub:  opts.TxNewline.sub(),
		rxSub:  newRxSubstituter(opts.RxNewline),
	}
	if opts.Input == InputHex {
		l.hexDec = &hexDecoder{}
	}
	return l
}

// Run relays until the escape byte is seen on console input or an I/O
// operation fails. It returns nil on escape and the triggering error
// otherwise; the caller releases the descriptors either way.
func (l *Loop) Run() error {
	serialFd := l.serial.Fd()
	inFd := l.in.Fd()
	nfds := serialFd + 1
	if inFd >= nfds {
		nfds = inFd + 1
	}

	buf := make([]byte, ReadBufferSize)
	var fds unix.FdSet

	for {
		fds.Zero()
		fds.Set(serialFd)
		fds.Set(inFd)

		if _, err := unix.Select(nfds, &fds, nil, nil, nil); err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("error waiting for input: %w", err)
		}

		if fds.IsSet(inFd) {
			done, err := l.relayConsole(buf)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}

		if fds.IsSet(serialFd) {
			if err := l.relaySerial(buf); err != nil {
				return err
			}
		}
	}
}

// relayConsole moves one chunk from the console to the serial channel.
// It reports done when the escape byte was seen; the escape byte and
// everything after it in the chunk are discarded, never sent.
func (l *Loop) relayConsole(buf []byte) (bool, error) {
	n, err := l.in.Read(buf)
	if err != nil {
		return false, fmt.Errorf("error reading stdin: %w", err)
	}
	if n == 0 {
		return false, fmt.Errorf("error reading stdin: %w", io.ErrUnexpectedEOF)
	}
	chunk := buf[:n]

	done := false
	if idx := bytes.IndexByte(chunk, l.escape); idx >= 0 {
		chunk = chunk[:idx]
		done = true
	}

	chunk = txSubstitute(chunk, l.txSub)
	if l.hexDec != nil {
		chunk = l.hexDec.Decode(chunk)
	}

	if err := writeFull(l.serial, chunk); err != nil {
		return false, fmt.Errorf("error writing to serial port: %w", err)
	}
	return done, nil
}

// relaySerial moves one chunk from the serial channel to the console.
func (l *Loop) relaySerial(buf []byte) error {
	n, err := l.serial.Read(buf)
	if err != nil {
		return fmt.Errorf("error reading serial port: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("error reading serial port: %w", io.ErrUnexpectedEOF)
	}
	chunk := buf[:n]

	if l.rxSub != nil {
		chunk = l.rxSub.Substitute(chunk)
	}

	if err := l.format.Write(chunk); err != nil {
		return fmt.Errorf("error writing to stdout: %w", err)
	}
	return nil
}

// writeFull writes all of p, retrying short writes until everything is
// sent or an error occurs.
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
