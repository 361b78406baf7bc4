// Package beacon decodes the fixed iBeacon manufacturer record carried in
// an advertisement's data block.
package beacon

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RecordLen is the on-air size of the record. The leading length byte counts
// the 26 bytes that follow it.
const RecordLen = 27

// Fixed header values of an iBeacon record.
const (
	Length         uint8  = 0x1a
	TypeVendor     uint8  = 0xff
	ManufacturerID uint16 = 0x4c00
	SubType        uint8  = 0x02
	SubTypeLength  uint8  = 0x15
)

var (
	ErrTruncated        = errors.New("beacon: truncated record")
	ErrConstantMismatch = errors.New("beacon: constant mismatch")
)

// FieldError reports the first header field that did not hold its fixed
// value.
type FieldError struct {
	Field string
	Want  uint16
	Got   uint16
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("beacon: %s: want 0x%02x, got 0x%02x", e.Field, e.Want, e.Got)
}

func (e *FieldError) Unwrap() error { return ErrConstantMismatch }

// Record is a decoded iBeacon record.
type Record struct {
	Length         uint8
	Type           uint8
	ManufacturerID uint16
	SubType        uint8
	SubTypeLength  uint8
	UUID           uuid.UUID
	Major          uint16
	Minor          uint16
	Power          uint8
}

// Decode parses a record from the start of b. Bytes after the record are
// ignored.
func Decode(b []byte) (Record, error) {
	if len(b) < RecordLen {
		return Record{}, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(b), RecordLen)
	}
	r := Record{
		Length:         b[0],
		Type:           b[1],
		ManufacturerID: binary.BigEndian.Uint16(b[2:4]),
		SubType:        b[4],
		SubTypeLength:  b[5],
		Major:          binary.BigEndian.Uint16(b[22:24]),
		Minor:          binary.BigEndian.Uint16(b[24:26]),
		Power:          b[26],
	}
	copy(r.UUID[:], b[6:22])

	checks := []struct {
		field     string
		want, got uint16
	}{
		{"length", uint16(Length), uint16(r.Length)},
		{"type", uint16(TypeVendor), uint16(r.Type)},
		{"manufacturer", ManufacturerID, r.ManufacturerID},
		{"sub-type", uint16(SubType), uint16(r.SubType)},
		{"sub-type length", uint16(SubTypeLength), uint16(r.SubTypeLength)},
	}
	for _, c := range checks {
		if c.want != c.got {
			return Record{}, &FieldError{Field: c.field, Want: c.want, Got: c.got}
		}
	}
	return r, nil
}

// Find walks the advertising data structures in b and decodes the first
// iBeacon record among them. If none decodes, the error is the one from
// decoding at the start of b.
func Find(b []byte) (Record, error) {
	for i := 0; i < len(b); i += int(b[i]) + 1 {
		if b[i] == 0 {
			break
		}
		if b[i] != Length {
			continue
		}
		if r, err := Decode(b[i:]); err == nil {
			return r, nil
		}
	}
	return Decode(b)
}
