package vm

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// ioDevice owns the machine's input and output byte streams. Output is
// written one byte at a time per the `output` opcode's contract; input is
// read one byte at a time, and readByte reports ok=false once the stream
// is exhausted (the `input` opcode turns that into the sentinel 0xFFFFFFFF).
//
// When the input stream is a terminal, it is switched into raw mode for
// the lifetime of the machine — unbuffered, unechoed — so a UM program
// reading from an interactive terminal sees bytes as they are typed
// rather than after a line is committed. There is no background keyboard
// poll: `input` blocks the calling goroutine directly, so there is
// nothing to buffer ahead of a read.
type ioDevice struct {
	rawIn io.Reader
	in    *bufio.Reader
	out   io.Writer

	rawFd       uintptr
	isRaw       bool
	origTermios unix.Termios
}

func newIODevice(in io.Reader, out io.Writer) *ioDevice {
	return &ioDevice{
		rawIn: in,
		in:    bufio.NewReader(in),
		out:   out,
	}
}

// terminalFile returns the *os.File backing the input stream, if any, so
// Run can attempt to put it into raw mode.
func (d *ioDevice) terminalFile() (*os.File, bool) {
	f, ok := d.rawIn.(*os.File)
	return f, ok
}

// enableRawMode switches the given file descriptor into raw mode if it is
// a terminal. Failure to do so (not a tty, or no termios support) is not
// an error: the machine simply reads buffered input instead.
func (d *ioDevice) enableRawMode(f *os.File) {
	fd := f.Fd()
	if err := termios.Tcgetattr(fd, &d.origTermios); err != nil {
		return
	}
	raw := d.origTermios
	raw.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		return
	}
	d.rawFd = fd
	d.isRaw = true
}

func (d *ioDevice) disableRawMode() {
	if !d.isRaw {
		return
	}
	termios.Tcsetattr(d.rawFd, termios.TCSANOW, &d.origTermios)
	d.isRaw = false
}

// readByte returns the next input byte, or ok=false on EOF.
func (d *ioDevice) readByte() (b byte, ok bool, err error) {
	b, err = d.in.ReadByte()
	if err == io.EOF {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}

// writeByte emits exactly one byte to the output stream.
func (d *ioDevice) writeByte(b byte) error {
	_, err := d.out.Write([]byte{b})
	return err
}
