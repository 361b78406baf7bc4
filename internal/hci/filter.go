package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// FilterSize is the packed size of struct hci_ufilter.
const FilterSize = 14

// Filter mirrors the kernel's per-socket HCI filter. Only packets whose type
// bit is set in TypeMask and, for events, whose code bit is set in EventMask
// are queued on the socket.
type Filter struct {
	TypeMask  uint32
	EventMask uint64
	Opcode    uint16
}

// MakeFilter builds a filter that passes the given packet types and event
// codes. Bits beyond the mask width wrap the way the kernel masks them.
func MakeFilter(types []PacketType, events []EventCode) Filter {
	var f Filter
	for _, t := range types {
		f.TypeMask |= 1 << (uint32(t) & 31)
	}
	for _, e := range events {
		f.EventMask |= 1 << (uint64(e) & 63)
	}
	return f
}

// ScanFilter passes only LE Meta events.
func ScanFilter() Filter {
	return MakeFilter([]PacketType{PacketEvent}, []EventCode{EventLEMeta})
}

// PassesType reports whether packets of type t pass the filter.
func (f Filter) PassesType(t PacketType) bool {
	return f.TypeMask&(1<<(uint32(t)&31)) != 0
}

// PassesEvent reports whether events with code e pass the filter.
func (f Filter) PassesEvent(e EventCode) bool {
	return f.EventMask&(1<<(uint64(e)&63)) != 0
}

// MarshalBinary packs the filter in host byte order. The kernel stores the
// event mask as two 32-bit words, low word first.
func (f Filter) MarshalBinary() ([]byte, error) {
	b := make([]byte, FilterSize)
	binary.NativeEndian.PutUint32(b[0:4], f.TypeMask)
	binary.NativeEndian.PutUint32(b[4:8], uint32(f.EventMask))
	binary.NativeEndian.PutUint32(b[8:12], uint32(f.EventMask>>32))
	binary.NativeEndian.PutUint16(b[12:14], f.Opcode)
	return b, nil
}

// UnmarshalFilter decodes a packed filter as returned by getsockopt.
func UnmarshalFilter(b []byte) (Filter, error) {
	if len(b) < FilterSize {
		return Filter{}, errors.Wrapf(ErrShortRead, "filter: got %d bytes, want %d", len(b), FilterSize)
	}
	lo := binary.NativeEndian.Uint32(b[4:8])
	hi := binary.NativeEndian.Uint32(b[8:12])
	return Filter{
		TypeMask:  binary.NativeEndian.Uint32(b[0:4]),
		EventMask: uint64(hi)<<32 | uint64(lo),
		Opcode:    binary.NativeEndian.Uint16(b[12:14]),
	}, nil
}
