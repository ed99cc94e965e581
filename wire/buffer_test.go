package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_ScalarRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.WriteUint8(0x42)
	b.WriteUint16(0x1234)
	b.WriteUint32(0xDEADBEEF)

	r := NewBufferFromBytes(b.Bytes())
	assert.Equal(t, uint8(0x42), r.ReadUint8())
	assert.Equal(t, uint16(0x1234), r.ReadUint16())
	assert.Equal(t, uint32(0xDEADBEEF), r.ReadUint32())
}

func TestBuffer_LittleEndianRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.SetLittleEndian()
	b.WriteUint16(0x1234)

	assert.Equal(t, []byte{0x34, 0x12}, b.Bytes())

	r := NewBufferFromBytes(b.Bytes())
	r.SetLittleEndian()
	assert.Equal(t, uint16(0x1234), r.ReadUint16())
}

func TestBuffer_StringRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.WriteString("hello")
	b.WriteByteString("hi")
	b.WriteStringNullTerm("nul")

	r := NewBufferFromBytes(b.Bytes())
	assert.Equal(t, "hello", r.ReadString())
	assert.Equal(t, "hi", r.ReadByteString())
	assert.Equal(t, "nul", r.ReadStringNullTerm())
}

func TestBuffer_BackpatchSize(t *testing.T) {
	b := NewBuffer()
	m := b.MarkUint16()
	b.WriteBytes([]byte("abcdef"))
	b.BackpatchSize(m)

	r := NewBufferFromBytes(b.Bytes())
	assert.Equal(t, uint16(6), r.ReadUint16())
	assert.Equal(t, []byte("abcdef"), r.ReadBytes(6))
}

func TestBuffer_ReadPastEndTolerant(t *testing.T) {
	b := NewBufferFromBytes([]byte{0x01})
	assert.Equal(t, uint8(0x01), b.ReadUint8())
	assert.True(t, b.BeforeEnd() == false)

	// Reading past the end zero-fills rather than panicking or erroring.
	assert.Equal(t, uint8(0), b.ReadUint8())
}

func TestBuffer_ChopOffBuffer(t *testing.T) {
	src := NewBufferFromBytes([]byte("abcdefgh"))
	dest := NewBuffer()
	src.ChopOffBuffer(dest, 4)

	assert.Equal(t, []byte("abcd"), dest.Bytes())
	assert.Equal(t, 0, dest.Pos())
}

func TestBuffer_Remains(t *testing.T) {
	b := NewBufferFromBytes([]byte("abcdef"))
	assert.Equal(t, 6, b.Remains())
	b.ReadBytes(2)
	assert.Equal(t, 4, b.Remains())
}
