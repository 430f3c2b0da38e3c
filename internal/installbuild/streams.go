package installbuild

import (
	"io"
	"os"
	"strings"

	mobyterm "github.com/moby/term"
)

// Streams is an interface which exposes the standard input and output streams.
type Streams interface {
	// In returns the reader used for stdin.
	In() *In
	// Out returns the writer used for stdout.
	Out() *Out
	// Err returns the writer used for stderr.
	Err() io.Writer
}

type commonStream struct {
	fd         uintptr
	isTerminal bool
	state      *mobyterm.State
}

// FD returns the file descriptor number for this stream.
func (s *commonStream) FD() uintptr { return s.fd }

// IsTerminal returns true if this stream is connected to a terminal.
func (s *commonStream) IsTerminal() bool { return s.isTerminal }

// RestoreTerminal restores normal mode to the terminal.
func (s *commonStream) RestoreTerminal() {
	if s.state != nil {
		_ = mobyterm.RestoreTerminal(s.fd, s.state)
		s.state = nil
	}
}

// Out is an output stream used by the app to write normal program output.
type Out struct {
	commonStream
	out io.Writer
}

func (o *Out) Write(p []byte) (int, error) {
	return o.out.Write(p)
}

// NewOut returns a new [Out] object from a [io.Writer].
func NewOut(out io.Writer) *Out {
	fd, isTerminal := mobyterm.GetFdInfo(out)
	return &Out{commonStream: commonStream{fd: fd, isTerminal: isTerminal}, out: out}
}

// In is an input stream used by the app to read user input.
type In struct {
	commonStream
	in io.ReadCloser
}

func (i *In) Read(p []byte) (int, error) {
	return i.in.Read(p)
}

// Close implements the [io.Closer] interface.
func (i *In) Close() error {
	return i.in.Close()
}

// SetRawTerminal sets raw mode on the input terminal.
func (i *In) SetRawTerminal() (err error) {
	if os.Getenv("NORAW") != "" || !i.isTerminal {
		return nil
	}
	i.state, err = mobyterm.SetRawTerminal(i.fd)
	return err
}

// WaitKeyPress blocks until a single key is pressed.
// When the input is not a terminal, a single byte or the end of input unblocks it.
func (i *In) WaitKeyPress() error {
	if err := i.SetRawTerminal(); err != nil {
		Log().Debug("unable to set raw terminal mode", "error", err)
	}
	defer i.RestoreTerminal()
	b := make([]byte, 1)
	_, err := i.Read(b)
	if err == io.EOF {
		return nil
	}
	return err
}

// NewIn returns a new [In] object from a [io.ReadCloser].
func NewIn(in io.ReadCloser) *In {
	fd, isTerminal := mobyterm.GetFdInfo(in)
	return &In{commonStream: commonStream{fd: fd, isTerminal: isTerminal}, in: in}
}

type appStreams struct {
	in  *In
	out *Out
	err io.Writer
}

func (s *appStreams) In() *In        { return s.in }
func (s *appStreams) Out() *Out      { return s.out }
func (s *appStreams) Err() io.Writer { return s.err }

// StandardStreams returns streams bound to stdin, stdout and stderr.
func StandardStreams() Streams {
	// Sets up terminal emulation on Windows when required.
	stdin, stdout, stderr := mobyterm.StdStreams()
	return NewBasicStreams(stdin, stdout, stderr)
}

// NewBasicStreams creates streams with given in, out and err streams.
func NewBasicStreams(in io.ReadCloser, out io.Writer, err io.Writer) Streams {
	return &appStreams{
		in:  NewIn(in),
		out: NewOut(out),
		err: err,
	}
}

// NoopStreams provides streams like /dev/null.
func NoopStreams() Streams {
	return NewBasicStreams(io.NopCloser(strings.NewReader("")), io.Discard, io.Discard)
}
