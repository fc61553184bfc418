package term

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Console wraps stdin/stdout placed in raw byte mode for the duration of
// a session. The original terminal attributes are saved on open and put
// back by Restore, which must run on every exit path.
type Console struct {
	in    *os.File
	out   *os.File
	saved unix.Termios
}

// OpenConsole switches stdin to raw mode: no canonical line buffering,
// no signal generation, no echo unless the echo option asks for it, and
// no XON/XOFF interpretation so flow control characters pass through to
// the serial port.
func OpenConsole(echo bool) (*Console, error) {
	fd := int(os.Stdin.Fd())

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin termios: %v", err)
	}
	saved := *termios

	termios.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ISIG
	if echo {
		termios.Lflag |= unix.ECHO
	}
	termios.Iflag &^= unix.IXON | unix.IXOFF | unix.IXANY

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return nil, fmt.Errorf("failed to set stdin termios: %v", err)
	}

	return &Console{in: os.Stdin, out: os.Stdout, saved: saved}, nil
}

// Restore puts stdin back to its saved attributes.
func (c *Console) Restore() error {
	fd := int(c.in.Fd())
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &c.saved); err != nil {
		return fmt.Errorf("failed to restore stdin termios: %v", err)
	}
	return nil
}

// Input returns the console input as a pollable byte channel.
func (c *Console) Input() Channel {
	return fileChannel{c.in}
}

// Output returns the console output sink.
func (c *Console) Output() io.Writer {
	return c.out
}

// fileChannel adapts an *os.File to the Channel interface.
type fileChannel struct {
	f *os.File
}

func (c fileChannel) Read(p []byte) (int, error)  { return c.f.Read(p) }
func (c fileChannel) Write(p []byte) (int, error) { return c.f.Write(p) }
func (c fileChannel) Fd() int                     { return int(c.f.Fd()) }
