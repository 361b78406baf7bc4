package hci

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcode(t *testing.T) {
	assert.Equal(t, uint16(0x200c), Opcode(OGFLECtl, OCFLESetScanEnable))
	assert.Equal(t, uint16(0x200b), Opcode(OGFLECtl, OCFLESetScanParameters))
	assert.Equal(t, uint16(0x0c03), Opcode(OGFHostCtl, 0x0003))
	// the command field is 10 bits
	assert.Equal(t, uint16(0x2000), Opcode(OGFLECtl, 0x400))
}

func TestLEScanEnableCommand(t *testing.T) {
	cmd := LEScanEnableCommand()
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x0c, 0x20, 0x02, 0x01, 0x01}, cmd[:])
}

func TestWriteLEScanEnable(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteLEScanEnable(&buf))
	assert.Equal(t, LEScanEnableSize, buf.Len())
}

type shortWriter struct{ n int }

func (w shortWriter) Write(p []byte) (int, error) { return w.n, nil }

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("device gone") }

func TestWriteLEScanEnableShort(t *testing.T) {
	err := WriteLEScanEnable(shortWriter{n: 4})
	assert.ErrorIs(t, err, ErrShortWrite)
}

func TestWriteLEScanEnableError(t *testing.T) {
	err := WriteLEScanEnable(failWriter{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
}
