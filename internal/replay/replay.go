// Package replay feeds HCI event frames from a Bluetooth capture file
// through the same decode path as the live scanner.
package replay

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/tilted/internal/hci"
	"firestige.xyz/tilted/internal/log"
)

// Bluetooth HCI link types as registered by tcpdump.
const (
	LinkTypeH4         layers.LinkType = 187
	LinkTypeH4WithPHDR layers.LinkType = 201
)

// phdrSize is the direction header preceding each H4 packet.
const phdrSize = 4

const ngMagic = 0x0a0d0d0a

var ErrLinkType = errors.New("replay: unsupported link type")

// Handler receives every complete event frame in capture order.
type Handler func(ctx context.Context, f hci.Frame)

// Stats summarizes one replay.
type Stats struct {
	Packets int
	Frames  int
	Skipped int
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// File replays the pcap or pcapng capture at path.
func File(ctx context.Context, path string, h Handler) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()
	return Reader(ctx, f, h)
}

// Reader replays a capture read from r. Packets that are not event frames
// or that are cut short are skipped.
func Reader(ctx context.Context, r io.Reader, h Handler) (Stats, error) {
	src, err := open(r)
	if err != nil {
		return Stats{}, err
	}
	lt := src.LinkType()
	if lt != LinkTypeH4 && lt != LinkTypeH4WithPHDR {
		return Stats{}, fmt.Errorf("%w %d", ErrLinkType, lt)
	}

	logger := log.GetLogger()
	var st Stats
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		data, ci, err := src.ReadPacketData()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, fmt.Errorf("replay: read packet %d: %w", st.Packets+1, err)
		}
		st.Packets++

		if lt == LinkTypeH4WithPHDR {
			if len(data) < phdrSize {
				st.Skipped++
				continue
			}
			data = data[phdrSize:]
		}
		if len(data) == 0 || hci.PacketType(data[0]) != hci.PacketEvent {
			st.Skipped++
			continue
		}

		frame, err := hci.ParseFrame(data)
		if err != nil {
			st.Skipped++
			logger.WithFields(map[string]interface{}{
				"packet": st.Packets,
				"time":   ci.Timestamp,
			}).WithError(err).Debug("capture packet skipped")
			continue
		}
		st.Frames++
		h(ctx, frame)
	}
}

func open(r io.Reader) (packetSource, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("replay: read header: %w", err)
	}
	if binary.LittleEndian.Uint32(magic) == ngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		return ng, nil
	}
	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return pr, nil
}
