package hci

import (
	"os"

	"github.com/pkg/errors"
)

// Socket is a raw HCI socket bound to one adapter. It is owned by a single
// scan loop; none of its methods are safe for concurrent use.
type Socket struct {
	f      *os.File
	buf    [MaxFrameSize + 1]byte
	device uint16
}

func newSocket(f *os.File, device uint16) *Socket {
	return &Socket{f: f, device: device}
}

// Device returns the bound adapter index.
func (s *Socket) Device() uint16 { return s.device }

// Read reads one packet. The kernel drops whatever of the packet does not
// fit in p.
func (s *Socket) Read(p []byte) (int, error) {
	return s.f.Read(p)
}

// ReadFrame reads one packet and returns it as a frame. A packet whose
// length disagrees with its header is rejected as a whole, so the next read
// starts on the next packet.
func (s *Socket) ReadFrame() (Frame, error) {
	n, err := s.f.Read(s.buf[:])
	if err != nil {
		return nil, errors.Wrap(err, "hci: read frame")
	}
	return ParseFrame(append([]byte(nil), s.buf[:n]...))
}

// EnableLEScan sends LE Set Scan Enable.
func (s *Socket) EnableLEScan() error {
	return WriteLEScanEnable(s.f)
}

// Close closes the socket, unblocking any pending Read.
func (s *Socket) Close() error {
	return errors.Wrap(s.f.Close(), "hci: close")
}
