package term

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// syncBuffer is a goroutine-safe sink for the console output side.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// makeRaw strips the pty slave's line discipline so bytes cross the pair
// unmodified: no echo, no canonical buffering, no CR/LF translation.
func makeRaw(t *testing.T, f *os.File) {
	t.Helper()
	fd := int(f.Fd())

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)

	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	require.NoError(t, unix.IoctlSetTermios(fd, unix.TCSETS, termios))
}

// session drives one relay loop against a pty pair standing in for the
// serial port. The test talks to the far end of the line through master
// and types through consoleIn.
type session struct {
	master    *os.File
	consoleIn *os.File
	out       *syncBuffer
	received  *syncBuffer
	errc      chan error
}

func startSession(t *testing.T, opts Options) *session {
	t.Helper()

	master, slave, err := pty.Open()
	require.NoError(t, err)
	makeRaw(t, slave)

	stdinR, stdinW, err := os.Pipe()
	require.NoError(t, err)

	t.Cleanup(func() {
		master.Close()
		slave.Close()
		stdinR.Close()
		stdinW.Close()
	})

	s := &session{
		master:    master,
		consoleIn: stdinW,
		out:       &syncBuffer{},
		received:  &syncBuffer{},
		errc:      make(chan error, 1),
	}

	loop := NewLoop(fileChannel{slave}, fileChannel{stdinR}, s.out, opts)
	go func() { s.errc <- loop.Run() }()

	// Collect everything the far end of the line receives
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := master.Read(buf)
			if n > 0 {
				s.received.Write(buf[:n])
			}
			if err != nil {
				return
			}
		}
	}()

	return s
}

func (s *session) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-s.errc:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("relay loop did not terminate")
		return nil
	}
}

func TestRelayEscapeTerminates(t *testing.T) {
	s := startSession(t, DefaultOptions())

	// Everything before the escape byte goes out; the escape byte and
	// everything after it are discarded.
	_, err := s.consoleIn.Write([]byte("hello\x1dgarbage"))
	require.NoError(t, err)

	require.NoError(t, s.wait(t))
	require.Eventually(t, func() bool {
		return s.received.String() == "hello"
	}, 2*time.Second, 10*time.Millisecond, "transmitted %q", s.received.String())
}

func TestRelayHexInput(t *testing.T) {
	opts := DefaultOptions()
	opts.Input = InputHex
	s := startSession(t, opts)

	_, err := s.consoleIn.Write([]byte("41 42\n43\x1d"))
	require.NoError(t, err)

	require.NoError(t, s.wait(t))
	require.Eventually(t, func() bool {
		return s.received.String() == "ABC"
	}, 2*time.Second, 10*time.Millisecond, "transmitted %q", s.received.String())
}

func TestRelayTxNewlineSubstitution(t *testing.T) {
	opts := DefaultOptions()
	opts.TxNewline = TxNewlineCRLF
	s := startSession(t, opts)

	_, err := s.consoleIn.Write([]byte("at\n\x1d"))
	require.NoError(t, err)

	require.NoError(t, s.wait(t))
	require.Eventually(t, func() bool {
		return s.received.String() == "at\r\n"
	}, 2*time.Second, 10*time.Millisecond, "transmitted %q", s.received.String())
}

func TestRelayHexOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.Output = OutputHex
	s := startSession(t, opts)

	_, err := s.master.Write([]byte{0xde, 0xad, 0xbe, 0xef})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.out.String() == "de ad be ef "
	}, 2*time.Second, 10*time.Millisecond, "formatted %q", s.out.String())

	_, err = s.consoleIn.Write([]byte{0x1d})
	require.NoError(t, err)
	require.NoError(t, s.wait(t))
}

func TestRelayRxNewlineSubstitution(t *testing.T) {
	opts := DefaultOptions()
	opts.RxNewline = RxNewlineCRLF
	s := startSession(t, opts)

	// The trailing carriage return is held back in case the next chunk
	// starts with a line feed; it never reaches the console.
	_, err := s.master.Write([]byte("foo\r\nbar\r"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.out.String() == "foo\nbar"
	}, 2*time.Second, 10*time.Millisecond, "formatted %q", s.out.String())

	_, err = s.consoleIn.Write([]byte{0x1d})
	require.NoError(t, err)
	require.NoError(t, s.wait(t))
}

func TestRelaySerialFailureIsFatal(t *testing.T) {
	s := startSession(t, DefaultOptions())

	// Closing the master end makes the slave side unreadable (EIO)
	require.NoError(t, s.master.Close())

	err := s.wait(t)
	require.Error(t, err)
	require.Contains(t, err.Error(), "serial port")
}

func TestRelayConsoleEOFIsFatal(t *testing.T) {
	s := startSession(t, DefaultOptions())

	require.NoError(t, s.consoleIn.Close())

	err := s.wait(t)
	require.Error(t, err)
	require.Contains(t, err.Error(), "stdin")
}

func TestWriteFull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFull(&buf, []byte("abc")))
	require.Equal(t, "abc", buf.String())
	require.NoError(t, writeFull(&buf, nil))
}
