package wire

import (
	"encoding/binary"
	"errors"
)

// Endian selects the byte order a Buffer uses for scalar reads and writes.
// OSCAR framing is always big-endian; ICQ-specific payloads switch to
// little-endian partway through a message, so the mode lives on the Buffer
// rather than being inferred from context.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

func (e Endian) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ErrBufferUnderrun is returned by callers that opt into strict reads via
// BeforeEnd checks; Buffer itself never returns it; it zero-fills and
// advances the cursor past the end instead, matching the original
// library's behavior of tolerating short reads and letting the caller
// decide whether the data was trustworthy.
var ErrBufferUnderrun = errors.New("wire: read past end of buffer")

// Marker is a reserved position in a Buffer to be back-patched with the
// size of a segment written after it. Used pervasively for FLAP and SNAC
// length fields.
type Marker struct {
	position int
	size     int // 2 or 4 bytes
	endian   Endian
}

// Buffer is a growable byte container with an explicit read cursor and a
// switchable endianness mode. It is the lowest-level building block of the
// wire format: FLAP framing, SNAC bodies, and TLV values are all built and
// parsed through a Buffer.
type Buffer struct {
	data       []byte
	pos        int
	endian     Endian
	translator Translator
}

// NewBuffer returns an empty, write-ready Buffer in big-endian mode with an
// identity translator.
func NewBuffer() *Buffer {
	return &Buffer{translator: IdentityTranslator{}}
}

// NewBufferFromBytes wraps an existing byte slice for reading. The cursor
// starts at zero.
func NewBufferFromBytes(b []byte) *Buffer {
	return &Buffer{data: b, translator: IdentityTranslator{}}
}

// SetTranslator attaches the charset translator used by string pack/unpack
// operations. A nil translator is replaced with the identity translator.
func (b *Buffer) SetTranslator(t Translator) {
	if t == nil {
		t = IdentityTranslator{}
	}
	b.translator = t
}

// SetBigEndian switches the buffer to big-endian scalar I/O. This is the
// default used for all OSCAR framing.
func (b *Buffer) SetBigEndian() { b.endian = BigEndian }

// SetLittleEndian switches the buffer to little-endian scalar I/O, used for
// ICQ-specific message payloads nested inside a SNAC body.
func (b *Buffer) SetLittleEndian() { b.endian = LittleEndian }

// Len returns the total number of bytes held by the buffer.
func (b *Buffer) Len() int { return len(b.data) }

// Pos returns the current read/write cursor position.
func (b *Buffer) Pos() int { return b.pos }

// SetPos relocates the cursor. Used after back-patching a Marker.
func (b *Buffer) SetPos(p int) { b.pos = p }

// Remains reports how many unread bytes lie between the cursor and the end
// of the buffer.
func (b *Buffer) Remains() int {
	if b.pos >= len(b.data) {
		return 0
	}
	return len(b.data) - b.pos
}

// BeforeEnd reports whether the cursor has not yet reached the end of the
// buffer. Callers that need to detect truncated input check this after a
// read instead of relying on an error return, matching the original
// library's tolerant-by-default parsing style.
func (b *Buffer) BeforeEnd() bool { return b.pos < len(b.data) }

// Clear empties the buffer and resets the cursor.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.pos = 0
}

// Bytes returns the full underlying byte slice. Callers must not mutate it.
func (b *Buffer) Bytes() []byte { return b.data }

// Remaining returns a copy of the unread tail of the buffer.
func (b *Buffer) Remaining() []byte {
	if b.pos >= len(b.data) {
		return nil
	}
	out := make([]byte, len(b.data)-b.pos)
	copy(out, b.data[b.pos:])
	return out
}

// WriteUint8 appends a single byte.
func (b *Buffer) WriteUint8(v uint8) {
	b.data = append(b.data, v)
}

// WriteUint16 appends a 16-bit scalar in the buffer's current endianness.
func (b *Buffer) WriteUint16(v uint16) {
	var tmp [2]byte
	b.endian.order().PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// WriteUint32 appends a 32-bit scalar in the buffer's current endianness.
func (b *Buffer) WriteUint32(v uint32) {
	var tmp [4]byte
	b.endian.order().PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// WriteBytes appends raw bytes verbatim.
func (b *Buffer) WriteBytes(p []byte) {
	b.data = append(b.data, p...)
}

// WriteString appends a 16-bit-length-prefixed string with no terminator.
// The string is transcoded client->server by the attached translator.
func (b *Buffer) WriteString(s string) {
	s = b.translator.ClientToServer(s)
	b.WriteUint16(uint16(len(s)))
	b.data = append(b.data, s...)
}

// WriteStringNullTerm appends a 16-bit-length-prefixed, NUL-terminated
// string. The length prefix includes the trailing NUL.
func (b *Buffer) WriteStringNullTerm(s string) {
	s = b.translator.ClientToServer(s)
	b.WriteUint16(uint16(len(s) + 1))
	b.data = append(b.data, s...)
	b.data = append(b.data, 0x00)
}

// WriteByteString appends an 8-bit-length-prefixed string.
func (b *Buffer) WriteByteString(s string) {
	s = b.translator.ClientToServer(s)
	b.WriteUint8(uint8(len(s)))
	b.data = append(b.data, s...)
}

// ReadUint8 consumes a single byte. Reads past the end return zero and
// leave the cursor past-end; BeforeEnd reports the truncation.
func (b *Buffer) ReadUint8() uint8 {
	if b.pos >= len(b.data) {
		b.pos++
		return 0
	}
	v := b.data[b.pos]
	b.pos++
	return v
}

// ReadUint16 consumes a 16-bit scalar in the buffer's current endianness.
func (b *Buffer) ReadUint16() uint16 {
	if b.pos+2 > len(b.data) {
		b.pos = len(b.data) + 1
		return 0
	}
	v := b.endian.order().Uint16(b.data[b.pos : b.pos+2])
	b.pos += 2
	return v
}

// ReadUint32 consumes a 32-bit scalar in the buffer's current endianness.
func (b *Buffer) ReadUint32() uint32 {
	if b.pos+4 > len(b.data) {
		b.pos = len(b.data) + 1
		return 0
	}
	v := b.endian.order().Uint32(b.data[b.pos : b.pos+4])
	b.pos += 4
	return v
}

// ReadBytes consumes n raw bytes.
func (b *Buffer) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	end := b.pos + n
	if end > len(b.data) {
		end = len(b.data)
		b.pos = len(b.data) + 1
		if end <= b.pos-1 {
			return make([]byte, n)
		}
	}
	out := make([]byte, n)
	copy(out, b.data[b.pos:end])
	if b.pos <= len(b.data) {
		b.pos = end
	}
	return out
}

// ReadString consumes a 16-bit-length-prefixed string with no terminator,
// transcoding server->client via the attached translator.
func (b *Buffer) ReadString() string {
	n := int(b.ReadUint16())
	return b.translator.ServerToClient(string(b.ReadBytes(n)))
}

// ReadStringNullTerm consumes a 16-bit-length-prefixed, NUL-terminated
// string. The length prefix (including the NUL) is read first; the
// trailing NUL is stripped from the returned string.
func (b *Buffer) ReadStringNullTerm() string {
	n := int(b.ReadUint16())
	raw := b.ReadBytes(n)
	if len(raw) > 0 && raw[len(raw)-1] == 0x00 {
		raw = raw[:len(raw)-1]
	}
	return b.translator.ServerToClient(string(raw))
}

// ReadByteString consumes an 8-bit-length-prefixed string.
func (b *Buffer) ReadByteString() string {
	n := int(b.ReadUint8())
	return b.translator.ServerToClient(string(b.ReadBytes(n)))
}

// MarkUint16 reserves a 16-bit field at the current write position for a
// later back-patch and advances past it with zeros.
func (b *Buffer) MarkUint16() Marker {
	m := Marker{position: len(b.data), size: 2, endian: b.endian}
	b.WriteUint16(0)
	return m
}

// MarkUint32 reserves a 32-bit field at the current write position for a
// later back-patch and advances past it with zeros.
func (b *Buffer) MarkUint32() Marker {
	m := Marker{position: len(b.data), size: 4, endian: b.endian}
	b.WriteUint32(0)
	return m
}

// BackpatchSize writes the number of bytes appended to the buffer since the
// marker was reserved into the marker's field, without disturbing the
// current write position.
func (b *Buffer) BackpatchSize(m Marker) {
	n := len(b.data) - m.position - m.size
	order := m.endian.order()
	switch m.size {
	case 2:
		order.PutUint16(b.data[m.position:m.position+2], uint16(n))
	case 4:
		order.PutUint32(b.data[m.position:m.position+4], uint32(n))
	}
}

// ChopOffBuffer moves the first n bytes of b into dest, resetting dest's
// cursor to zero. The source buffer's bytes are left untouched; only its
// cursor view changes are not implied, callers that want to drain the
// source call Clear or advance pos separately.
func (b *Buffer) ChopOffBuffer(dest *Buffer, n int) {
	if n > len(b.data) {
		n = len(b.data)
	}
	dest.data = append(dest.data[:0], b.data[:n]...)
	dest.pos = 0
}
