package scanner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/tilted/internal/dispatch"
	"firestige.xyz/tilted/internal/hci"
	"firestige.xyz/tilted/internal/log"
	"firestige.xyz/tilted/internal/tilt"
)

var (
	redBeacon = []byte("\x1a\xffL\x00\x02\x15\xa4\x95\xbb\x10\xc5\xb1KD\xb5\x12\x13p\xf0-t\xde\x00:\x04,\xbf")
	// same record with the pink identifier's nibble
	unknownBeacon = []byte("\x1a\xffL\x00\x02\x15\xa4\x95\xbb\x90\xc5\xb1KD\xb5\x12\x13p\xf0-t\xde\x00:\x04,\xbf")
)

// advFrame builds an LE advertising report event with one report per data
// block, all with valid enum bytes.
func advFrame(blocks ...[]byte) []byte {
	n := len(blocks)
	sub := []byte{0x02, byte(n)}
	for range blocks {
		sub = append(sub, 0x03) // non-connectable
	}
	for range blocks {
		sub = append(sub, 0x00)
	}
	for i := range blocks {
		sub = append(sub, byte(i), 0x11, 0x22, 0x33, 0x44, 0x55)
	}
	for _, b := range blocks {
		sub = append(sub, byte(len(b)))
	}
	for _, b := range blocks {
		sub = append(sub, b...)
	}
	for range blocks {
		sub = append(sub, 0xc8)
	}
	return append([]byte{0x04, 0x3e, byte(len(sub))}, sub...)
}

type fakeDevice struct {
	r        *bytes.Reader
	filter   hci.Filter
	sets     []hci.Filter
	scans    int
	getErr   error
	scanErr  error
	setCalls int
	// returned by every restore, the second SetFilter of a cycle
	restoreErr error
}

func newFakeDevice(stream []byte) *fakeDevice {
	return &fakeDevice{
		r:      bytes.NewReader(stream),
		filter: hci.Filter{TypeMask: 0xff, EventMask: 0xffff},
	}
}

func (d *fakeDevice) Read(p []byte) (int, error) { return d.r.Read(p) }

func (d *fakeDevice) GetFilter() (hci.Filter, error) {
	if d.getErr != nil {
		return hci.Filter{}, d.getErr
	}
	return d.filter, nil
}

func (d *fakeDevice) SetFilter(f hci.Filter) error {
	d.setCalls++
	d.sets = append(d.sets, f)
	if d.setCalls%2 == 0 && d.restoreErr != nil {
		return d.restoreErr
	}
	d.filter = f
	return nil
}

func (d *fakeDevice) EnableLEScan() error {
	d.scans++
	return d.scanErr
}

type recordingSink struct {
	mu       sync.Mutex
	readings []tilt.Reading
}

func (s *recordingSink) Dispatch(ctx context.Context, r tilt.Reading) []dispatch.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
	return nil
}

func TestCycleDispatchesReading(t *testing.T) {
	dev := newFakeDevice(advFrame(redBeacon))
	sink := &recordingSink{}
	s := New(dev, sink, time.Millisecond)

	require.NoError(t, s.Cycle(context.Background()))

	require.Len(t, sink.readings, 1)
	assert.Equal(t, tilt.Reading{Color: tilt.Red, Temperature: 58, Gravity: 1.068}, sink.readings[0])

	assert.Equal(t, 1, dev.scans)
	require.Len(t, dev.sets, 2)
	assert.Equal(t, hci.ScanFilter(), dev.sets[0])
	assert.Equal(t, hci.Filter{TypeMask: 0xff, EventMask: 0xffff}, dev.sets[1], "previous filter restored")
}

func TestCycleRestoresAfterReadError(t *testing.T) {
	dev := newFakeDevice([]byte{0x04, 0x3e, 0x10, 0x02})
	s := New(dev, &recordingSink{}, 0)

	err := s.Cycle(context.Background())
	assert.ErrorIs(t, err, hci.ErrShortRead)
	require.Len(t, dev.sets, 2)
	assert.Equal(t, hci.Filter{TypeMask: 0xff, EventMask: 0xffff}, dev.filter)
}

func TestCycleRestoresAfterScanError(t *testing.T) {
	dev := newFakeDevice(nil)
	dev.scanErr = hci.ErrShortWrite
	s := New(dev, &recordingSink{}, 0)

	assert.ErrorIs(t, s.Cycle(context.Background()), hci.ErrShortWrite)
	assert.Equal(t, 2, dev.setCalls)
	assert.Equal(t, hci.Filter{TypeMask: 0xff, EventMask: 0xffff}, dev.filter)
}

func TestCycleRestoreFailureIsNotFatal(t *testing.T) {
	dev := newFakeDevice(advFrame(redBeacon))
	dev.restoreErr = errors.New("device gone")
	sink := &recordingSink{}
	s := New(dev, sink, 0)

	require.NoError(t, s.Cycle(context.Background()))
	assert.Len(t, sink.readings, 1)
	assert.Equal(t, 2, dev.setCalls)
	assert.Equal(t, hci.ScanFilter(), dev.filter)
}

// packetDevice hands out one queued packet per ReadFrame call.
type packetDevice struct {
	*fakeDevice
	packets [][]byte
}

func (d *packetDevice) ReadFrame() (hci.Frame, error) {
	if len(d.packets) == 0 {
		return nil, io.EOF
	}
	p := d.packets[0]
	d.packets = d.packets[1:]
	return hci.ParseFrame(p)
}

func TestCycleDropsMismatchedPacket(t *testing.T) {
	good := advFrame(redBeacon)
	padded := append(append([]byte{}, good...), 0x04, 0x3e)
	dev := &packetDevice{fakeDevice: newFakeDevice(nil), packets: [][]byte{padded, good}}
	sink := &recordingSink{}
	s := New(dev, sink, 0)

	require.NoError(t, s.Cycle(context.Background()))
	assert.Empty(t, sink.readings, "padded packet dropped whole")

	require.NoError(t, s.Cycle(context.Background()))
	require.Len(t, sink.readings, 1, "next packet frames cleanly")
	assert.Equal(t, tilt.Red, sink.readings[0].Color)

	assert.ErrorIs(t, s.Cycle(context.Background()), io.EOF)
	assert.Equal(t, 6, dev.setCalls)
}

func TestCycleSaveFilterError(t *testing.T) {
	dev := newFakeDevice(nil)
	dev.getErr = errors.New("bad file descriptor")
	s := New(dev, &recordingSink{}, 0)

	assert.Error(t, s.Cycle(context.Background()))
	assert.Equal(t, 0, dev.setCalls, "nothing to restore")
	assert.Equal(t, 0, dev.scans)
}

func TestProcessOrderAndDrops(t *testing.T) {
	green := append([]byte{}, redBeacon...)
	green[9] = 0x20
	green[25] = 0x10 // minor 0x0410

	notBeacon := []byte{0x02, 0x01, 0x06, 0x03, 0x03, 0xaa, 0xfe}
	frame := hci.Frame(advFrame(redBeacon, notBeacon, unknownBeacon, append([]byte{0x02, 0x01, 0x04}, green...)))

	sink := &recordingSink{}
	n := Process(context.Background(), frame, sink, log.GetLogger())

	assert.Equal(t, 2, n)
	require.Len(t, sink.readings, 2)
	assert.Equal(t, tilt.Red, sink.readings[0].Color)
	assert.Equal(t, tilt.Green, sink.readings[1].Color)
	assert.InDelta(t, 1.04, sink.readings[1].Gravity, 1e-9)
}

func TestProcessMalformedFrame(t *testing.T) {
	sink := &recordingSink{}
	frame := hci.Frame(append(advFrame(redBeacon), 0x00))
	assert.Equal(t, 0, Process(context.Background(), frame, sink, log.GetLogger()))
	assert.Empty(t, sink.readings)
}

func TestRunStopsOnCycleError(t *testing.T) {
	stream := append(advFrame(redBeacon), advFrame(redBeacon)...)
	dev := newFakeDevice(stream)
	sink := &recordingSink{}
	s := New(dev, sink, time.Millisecond)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, hci.ErrShortRead, "third cycle hits end of stream")
	assert.Len(t, sink.readings, 2)
	assert.Equal(t, 3, dev.scans)
}

func TestRunReturnsNilWhenCancelled(t *testing.T) {
	dev := newFakeDevice(advFrame(redBeacon))
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())

	s := New(&cancelOnEOF{fakeDevice: dev, cancel: cancel}, sink, time.Millisecond)
	assert.NoError(t, s.Run(ctx))
	assert.Len(t, sink.readings, 1)
}

// cancelOnEOF cancels the loop's context when the stream runs out, as the
// CLI does by closing the socket on a signal.
type cancelOnEOF struct {
	*fakeDevice
	cancel context.CancelFunc
}

func (d *cancelOnEOF) Read(p []byte) (int, error) {
	n, err := d.fakeDevice.Read(p)
	if err != nil {
		d.cancel()
	}
	return n, err
}
