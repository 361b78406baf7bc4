package hci

import "errors"

// Fatal I/O errors. Either one ends the current scan cycle.
var (
	ErrShortRead  = errors.New("hci: short read")
	ErrShortWrite = errors.New("hci: short write")
)

// ErrUnsupported is returned by Open on platforms without AF_BLUETOOTH.
var ErrUnsupported = errors.New("hci: raw sockets not supported on this platform")

// Decode errors. These drop a single frame or report and are never fatal.
var (
	ErrTruncated            = errors.New("hci: truncated packet")
	ErrTrailingBytes        = errors.New("hci: trailing bytes after packet")
	ErrNotEvent             = errors.New("hci: not an event packet")
	ErrNotLEMeta            = errors.New("hci: not an LE meta event")
	ErrNotAdvertisingReport = errors.New("hci: not an advertising report")
)
