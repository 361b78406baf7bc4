package hci

import (
	"io"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the packet type, event code and parameter length.
	HeaderSize = 3
	// MaxFrameSize bounds one event frame: plen is a single byte.
	MaxFrameSize = HeaderSize + 255
)

// Frame is one complete event packet: a 3-byte header followed by exactly
// plen parameter bytes.
type Frame []byte

// PacketType returns the packet indicator byte.
func (f Frame) PacketType() PacketType { return PacketType(f[0]) }

// EventCode returns the event code byte.
func (f Frame) EventCode() EventCode { return EventCode(f[1]) }

// Plen returns the declared parameter length.
func (f Frame) Plen() int { return int(f[2]) }

// ReadFrame reads one frame from r. It reads the header first and then
// exactly the declared number of parameter bytes; a reader that ends early
// yields ErrShortRead, never a partial frame.
func ReadFrame(r io.Reader) (Frame, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, shortRead(err, "header")
	}
	plen := int(hdr[2])
	frame := make(Frame, HeaderSize+plen)
	copy(frame, hdr[:])
	if _, err := io.ReadFull(r, frame[HeaderSize:]); err != nil {
		return nil, shortRead(err, "body")
	}
	return frame, nil
}

// ParseFrame checks that data holds exactly one frame: the header and the
// declared number of parameter bytes, nothing more.
func ParseFrame(data []byte) (Frame, error) {
	if len(data) < HeaderSize {
		return nil, errors.Wrap(ErrShortRead, "frame header")
	}
	want := HeaderSize + int(data[2])
	switch {
	case len(data) < want:
		return nil, errors.Wrapf(ErrShortRead, "frame body: %d of %d bytes", len(data), want)
	case len(data) > want:
		return nil, errors.Wrapf(ErrTrailingBytes, "frame: %d bytes after plen %d", len(data)-want, data[2])
	}
	return Frame(data), nil
}

func shortRead(err error, part string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrShortRead, "frame %s", part)
	}
	return errors.Wrapf(err, "hci: read frame %s", part)
}
