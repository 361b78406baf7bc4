//go:build linux && !386

package hci

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Open creates a raw HCI socket bound to the given adapter on the raw
// channel. The descriptor is non-blocking so reads go through the runtime
// poller and Close interrupts them.
func Open(device uint16) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, ProtoHCI)
	if err != nil {
		return nil, errors.Wrap(err, "hci: socket")
	}
	sa := &unix.SockaddrHCI{Dev: device, Channel: uint16(ChannelRaw)}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "hci: bind hci%d", device)
	}
	f := os.NewFile(uintptr(fd), fmt.Sprintf("hci%d", device))
	return newSocket(f, device), nil
}

// GetFilter reads the socket's current HCI filter.
func (s *Socket) GetFilter() (Filter, error) {
	// The kernel struct is padded to 16 bytes.
	buf := make([]byte, 16)
	n := uint32(len(buf))
	if err := s.control(func(fd uintptr) error {
		return sockopt(unix.SYS_GETSOCKOPT, fd, SolHCI, int(OptFilter), buf, uintptr(unsafe.Pointer(&n)))
	}); err != nil {
		return Filter{}, errors.Wrap(err, "hci: get filter")
	}
	return UnmarshalFilter(buf[:n])
}

// SetFilter installs f as the socket's HCI filter.
func (s *Socket) SetFilter(f Filter) error {
	buf, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.control(func(fd uintptr) error {
		return sockopt(unix.SYS_SETSOCKOPT, fd, SolHCI, int(OptFilter), buf, uintptr(len(buf)))
	}); err != nil {
		return errors.Wrap(err, "hci: set filter")
	}
	return nil
}

func (s *Socket) control(fn func(fd uintptr) error) error {
	rc, err := s.f.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	if err := rc.Control(func(fd uintptr) { opErr = fn(fd) }); err != nil {
		return err
	}
	return opErr
}

// sockopt issues get/setsockopt with a raw byte buffer; x/sys/unix has no
// helper for arbitrary structs. For getsockopt lenArg is a pointer to the
// length, for setsockopt the length itself.
func sockopt(trap, fd uintptr, level, opt int, buf []byte, lenArg uintptr) error {
	_, _, errno := unix.Syscall6(trap, fd, uintptr(level), uintptr(opt),
		uintptr(unsafe.Pointer(&buf[0])), lenArg, 0)
	if errno != 0 {
		return syscall.Errno(errno)
	}
	return nil
}
