package hci

import "fmt"

// Address is a device address as carried on the wire (least significant
// byte first).
type Address [6]byte

// String formats the address most significant byte first, as bluez does.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}

// AdvertisingReport is one entry of an LE Advertising Report event.
type AdvertisingReport struct {
	EventType   AdvEventType
	AddressType AddressType
	Address     Address
	Data        []byte
	RSSI        int8
}

// ReportBatch holds the valid reports of one event. Declared is the count the
// controller sent; entries with unknown enum bytes are not in Reports.
type ReportBatch struct {
	Declared int
	Reports  []AdvertisingReport
}

// Dropped returns how many declared reports were discarded.
func (b *ReportBatch) Dropped() int { return b.Declared - len(b.Reports) }

// DecodeAdvertisingReports runs the full decode chain over one frame:
// packet type, LE Meta event, advertising report sub-event and the report
// array. The frame and the LE Meta payload must both be consumed exactly.
func DecodeAdvertisingReports(f Frame) (*ReportBatch, error) {
	c := newCursor(f)
	c, err := expectPacketType(c, PacketEvent)
	if err != nil {
		return nil, err
	}
	c, sub, err := leMetaPayload(c)
	if err != nil {
		return nil, err
	}
	if err := c.end(); err != nil {
		return nil, err
	}
	return advertisingReports(sub)
}

func expectPacketType(c cursor, want PacketType) (cursor, error) {
	next, v, err := c.u8()
	if err != nil {
		return c, err
	}
	if PacketType(v) != want {
		return c, fmt.Errorf("%w: got %s", ErrNotEvent, PacketType(v))
	}
	return next, nil
}

// leMetaPayload checks the event code and slices off the plen-byte
// parameter block as its own cursor.
func leMetaPayload(c cursor) (cursor, cursor, error) {
	next, code, err := c.u8()
	if err != nil {
		return c, cursor{}, err
	}
	if EventCode(code) != EventLEMeta {
		return c, cursor{}, fmt.Errorf("%w: got %s", ErrNotLEMeta, EventCode(code))
	}
	next, plen, err := next.u8()
	if err != nil {
		return c, cursor{}, err
	}
	next, body, err := next.take(int(plen))
	if err != nil {
		return c, cursor{}, err
	}
	return next, newCursor(body), nil
}

func advertisingReports(c cursor) (*ReportBatch, error) {
	c, code, err := c.u8()
	if err != nil {
		return nil, err
	}
	if LESubevent(code) != LEAdvertisingReport {
		return nil, fmt.Errorf("%w: sub-event 0x%02x", ErrNotAdvertisingReport, code)
	}
	c, batch, err := reportArray(c)
	if err != nil {
		return nil, err
	}
	if err := c.end(); err != nil {
		return nil, err
	}
	return batch, nil
}

// reportArray reads the count followed by five parallel arrays and zips
// them. The data blocks follow the length array in the same order.
func reportArray(c cursor) (cursor, *ReportBatch, error) {
	c, count, err := c.u8()
	if err != nil {
		return c, nil, err
	}
	n := int(count)

	var eventTypes, addrTypes, lengths, rssi []byte
	if c, eventTypes, err = c.take(n); err != nil {
		return c, nil, err
	}
	if c, addrTypes, err = c.take(n); err != nil {
		return c, nil, err
	}
	addrs := make([]Address, n)
	for i := range addrs {
		var raw []byte
		if c, raw, err = c.take(len(Address{})); err != nil {
			return c, nil, err
		}
		copy(addrs[i][:], raw)
	}
	if c, lengths, err = c.take(n); err != nil {
		return c, nil, err
	}
	data := make([][]byte, n)
	for i, l := range lengths {
		if c, data[i], err = c.take(int(l)); err != nil {
			return c, nil, err
		}
	}
	if c, rssi, err = c.take(n); err != nil {
		return c, nil, err
	}

	batch := &ReportBatch{Declared: n, Reports: make([]AdvertisingReport, 0, n)}
	for i := 0; i < n; i++ {
		et, at := AdvEventType(eventTypes[i]), AddressType(addrTypes[i])
		if !et.Valid() || !at.Valid() {
			continue
		}
		batch.Reports = append(batch.Reports, AdvertisingReport{
			EventType:   et,
			AddressType: at,
			Address:     addrs[i],
			Data:        data[i],
			RSSI:        int8(rssi[i]),
		})
	}
	return c, batch, nil
}
