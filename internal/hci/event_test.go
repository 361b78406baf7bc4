package hci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawReport struct {
	eventType byte
	addrType  byte
	addr      [6]byte
	data      []byte
	rssi      byte
}

// buildSubevent lays the reports out as the controller does: count, then
// each field as its own array.
func buildSubevent(reports ...rawReport) []byte {
	b := []byte{byte(LEAdvertisingReport), byte(len(reports))}
	for _, r := range reports {
		b = append(b, r.eventType)
	}
	for _, r := range reports {
		b = append(b, r.addrType)
	}
	for _, r := range reports {
		b = append(b, r.addr[:]...)
	}
	for _, r := range reports {
		b = append(b, byte(len(r.data)))
	}
	for _, r := range reports {
		b = append(b, r.data...)
	}
	for _, r := range reports {
		b = append(b, r.rssi)
	}
	return b
}

func buildFrame(sub []byte) Frame {
	return Frame(append([]byte{byte(PacketEvent), byte(EventLEMeta), byte(len(sub))}, sub...))
}

func TestDecodeSingleReport(t *testing.T) {
	f := buildFrame(buildSubevent(rawReport{
		eventType: byte(AdvNonConnInd),
		addrType:  byte(AddrRandomDevice),
		addr:      [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
		data:      []byte{0x02, 0x01, 0x04},
		rssi:      0xc4,
	}))

	batch, err := DecodeAdvertisingReports(f)
	require.NoError(t, err)
	require.Len(t, batch.Reports, 1)
	assert.Equal(t, 1, batch.Declared)
	assert.Equal(t, 0, batch.Dropped())

	r := batch.Reports[0]
	assert.Equal(t, AdvNonConnInd, r.EventType)
	assert.Equal(t, AddrRandomDevice, r.AddressType)
	assert.Equal(t, "06:05:04:03:02:01", r.Address.String())
	assert.Equal(t, []byte{0x02, 0x01, 0x04}, r.Data)
	assert.Equal(t, int8(-60), r.RSSI)
}

func TestDecodeDropsInvalidEntries(t *testing.T) {
	f := buildFrame(buildSubevent(
		rawReport{eventType: 0x00, addrType: 0x00, addr: [6]byte{0xa0}, data: []byte{0xaa}, rssi: 0xd0},
		rawReport{eventType: 0x00, addrType: 0x07, addr: [6]byte{0xa1}, data: []byte{0xbb, 0xbb}, rssi: 0xd1},
		rawReport{eventType: 0x04, addrType: 0x03, addr: [6]byte{0xa2}, data: nil, rssi: 0xd2},
	))

	batch, err := DecodeAdvertisingReports(f)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.Declared)
	assert.Equal(t, 1, batch.Dropped())
	require.Len(t, batch.Reports, 2)

	assert.Equal(t, byte(0xa0), batch.Reports[0].Address[0])
	assert.Equal(t, []byte{0xaa}, batch.Reports[0].Data)
	assert.Equal(t, int8(-48), batch.Reports[0].RSSI)

	assert.Equal(t, ScanRsp, batch.Reports[1].EventType)
	assert.Equal(t, AddrRandomIdentity, batch.Reports[1].AddressType)
	assert.Equal(t, byte(0xa2), batch.Reports[1].Address[0])
	assert.Empty(t, batch.Reports[1].Data)
	assert.Equal(t, int8(-46), batch.Reports[1].RSSI)
}

func TestDecodeDropsInvalidEventType(t *testing.T) {
	f := buildFrame(buildSubevent(rawReport{eventType: 0x05, data: []byte{0x01}}))
	batch, err := DecodeAdvertisingReports(f)
	require.NoError(t, err)
	assert.Empty(t, batch.Reports)
	assert.Equal(t, 1, batch.Dropped())
}

func TestDecodeZeroReports(t *testing.T) {
	batch, err := DecodeAdvertisingReports(buildFrame(buildSubevent()))
	require.NoError(t, err)
	assert.Equal(t, 0, batch.Declared)
	assert.Empty(t, batch.Reports)
}

func TestDecodeRejects(t *testing.T) {
	valid := buildSubevent(rawReport{data: []byte{0x01, 0x02}})

	tests := []struct {
		name  string
		frame Frame
		want  error
	}{
		{
			name:  "acl packet",
			frame: Frame(append([]byte{byte(PacketACLData), byte(EventLEMeta), byte(len(valid))}, valid...)),
			want:  ErrNotEvent,
		},
		{
			name:  "command complete",
			frame: Frame(append([]byte{byte(PacketEvent), byte(EventCmdComplete), byte(len(valid))}, valid...)),
			want:  ErrNotLEMeta,
		},
		{
			name:  "connection complete",
			frame: buildFrame(append([]byte{byte(LEConnectionComplete)}, valid[1:]...)),
			want:  ErrNotAdvertisingReport,
		},
		{
			name:  "empty",
			frame: Frame{},
			want:  ErrTruncated,
		},
		{
			name:  "no sub-event",
			frame: buildFrame(nil),
			want:  ErrTruncated,
		},
		{
			name:  "plen past end",
			frame: Frame(append([]byte{byte(PacketEvent), byte(EventLEMeta), byte(len(valid) + 4)}, valid...)),
			want:  ErrTruncated,
		},
		{
			name:  "frame longer than plen",
			frame: Frame(append(append([]byte{byte(PacketEvent), byte(EventLEMeta), byte(len(valid))}, valid...), 0x00)),
			want:  ErrTrailingBytes,
		},
		{
			name:  "sub-event longer than reports",
			frame: buildFrame(append(append([]byte{}, valid...), 0xee)),
			want:  ErrTrailingBytes,
		},
		{
			name:  "missing rssi",
			frame: buildFrame(valid[:len(valid)-1]),
			want:  ErrTruncated,
		},
		{
			name:  "data length past end",
			frame: buildFrame(buildSubevent(rawReport{data: make([]byte, 4)})[:12]),
			want:  ErrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := DecodeAdvertisingReports(tt.frame)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, batch)
		})
	}
}

func TestCursorFailureKeepsPosition(t *testing.T) {
	c := newCursor([]byte{0x01, 0x02})
	c, _, err := c.u8()
	require.NoError(t, err)

	next, _, err := c.take(5)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, c, next)
	assert.Equal(t, 1, next.remaining())
}
