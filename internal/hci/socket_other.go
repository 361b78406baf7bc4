//go:build !linux || 386

package hci

// Open is only available on Linux, excluding 386 where socket options go
// through socketcall.
func Open(device uint16) (*Socket, error) {
	return nil, ErrUnsupported
}

// GetFilter is only available on Linux.
func (s *Socket) GetFilter() (Filter, error) {
	return Filter{}, ErrUnsupported
}

// SetFilter is only available on Linux.
func (s *Socket) SetFilter(f Filter) error {
	return ErrUnsupported
}
