package hci

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// LEScanEnableSize is the length of the scan enable command as written to the
// raw socket.
const LEScanEnableSize = 9

// Opcode packs a command group and command field into an HCI opcode.
func Opcode(ogf OGF, ocf OCF) uint16 {
	return uint16(ogf)<<10 | uint16(ocf)&0x3ff
}

// LEScanEnableCommand returns the LE Set Scan Enable command with scanning
// and duplicate filtering both turned on.
//
// Layout: [u32 LE packet type][u16 LE opcode][u8 plen=2][u8 enable][u8 filter_dup].
func LEScanEnableCommand() [LEScanEnableSize]byte {
	var b [LEScanEnableSize]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(PacketCommand))
	binary.LittleEndian.PutUint16(b[4:6], Opcode(OGFLECtl, OCFLESetScanEnable))
	b[6] = 2
	b[7] = 1 // enable
	b[8] = 1 // filter duplicates
	return b
}

// WriteLEScanEnable writes the scan enable command to w in a single write.
func WriteLEScanEnable(w io.Writer) error {
	cmd := LEScanEnableCommand()
	n, err := w.Write(cmd[:])
	if err != nil {
		return errors.Wrap(err, "hci: write scan enable")
	}
	if n != len(cmd) {
		return errors.Wrapf(ErrShortWrite, "scan enable: wrote %d of %d bytes", n, len(cmd))
	}
	return nil
}
