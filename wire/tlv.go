package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// TLV is a typed length-value record nested inside FLAP and SNAC bodies.
// Parse mode (which tag numbers mean what) is channel-dependent; TLV
// itself is a dumb (tag, value) pair, the same split the teacher uses in
// wire/tlv.go.
type TLV struct {
	Tag   uint16
	Value []byte `icq:"len_prefix=uint16"`
}

// NewTLV builds a TLV from an arbitrary marshalable value, or from a raw
// []byte which is stored verbatim.
func NewTLV(tag uint16, val any) TLV {
	t := TLV{Tag: tag}
	if b, ok := val.([]byte); ok {
		t.Value = b
		return t
	}
	buf := &bytes.Buffer{}
	if err := Marshal(val, buf); err != nil {
		panic(fmt.Sprintf("wire: unable to build TLV 0x%04x: %s", tag, err))
	}
	t.Value = buf.Bytes()
	return t
}

// NewTLVBE builds a TLV whose value is a big-endian-encoded scalar. Used
// for the handful of TLVs (e.g. login error subcode) carrying a raw
// numeric payload rather than a marshaled struct.
func NewTLVBE(tag uint16, val any) TLV {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.BigEndian, val); err != nil {
		panic(fmt.Sprintf("wire: unable to build TLV 0x%04x: %s", tag, err))
	}
	return TLV{Tag: tag, Value: buf.Bytes()}
}

// TLVRestBlock is a TLV array with no length or count prefix: it occupies
// the remainder of the enclosing payload.
type TLVRestBlock struct {
	TLVList
}

// TLVBlock is a TLV array prefixed with a 16-bit element count.
type TLVBlock struct {
	TLVList `icq:"count_prefix=uint16"`
}

// TLVLBlock is a TLV array prefixed with a 16-bit byte length.
type TLVLBlock struct {
	TLVList `icq:"len_prefix=uint16"`
}

// TLVList is a list of TLV records with typed accessors. Accessors are not
// safe for concurrent read/write from multiple goroutines; per the
// library's single-threaded cooperative model (spec.md §5), that's never
// required.
type TLVList []TLV

// Append adds a single TLV.
func (l *TLVList) Append(t TLV) { *l = append(*l, t) }

// AppendList adds a slice of TLVs.
func (l *TLVList) AppendList(ts []TLV) { *l = append(*l, ts...) }

// Get returns the first TLV with the given tag.
func (l TLVList) Get(tag uint16) (TLV, bool) {
	for _, t := range l {
		if t.Tag == tag {
			return t, true
		}
	}
	return TLV{}, false
}

// All returns every TLV with the given tag, in order. Some TLV types
// (e.g. screen names on a buddy list TLV) repeat.
func (l TLVList) All(tag uint16) []TLV {
	var out []TLV
	for _, t := range l {
		if t.Tag == tag {
			out = append(out, t)
		}
	}
	return out
}

// String returns the raw-byte value of a tag interpreted as a string.
func (l TLVList) String(tag uint16) (string, bool) {
	t, ok := l.Get(tag)
	if !ok {
		return "", false
	}
	return string(t.Value), true
}

// Slice returns the raw byte value of a tag.
func (l TLVList) Slice(tag uint16) ([]byte, bool) {
	t, ok := l.Get(tag)
	if !ok {
		return nil, false
	}
	return t.Value, true
}

// Uint8 returns a tag's value interpreted as a uint8.
func (l TLVList) Uint8(tag uint16) (uint8, bool) {
	t, ok := l.Get(tag)
	if !ok || len(t.Value) < 1 {
		return 0, false
	}
	return t.Value[0], true
}

// Uint16BE returns a tag's value interpreted as a big-endian uint16.
func (l TLVList) Uint16BE(tag uint16) (uint16, bool) {
	t, ok := l.Get(tag)
	if !ok || len(t.Value) < 2 {
		return 0, false
	}
	return binary.BigEndian.Uint16(t.Value), true
}

// Uint32BE returns a tag's value interpreted as a big-endian uint32.
func (l TLVList) Uint32BE(tag uint16) (uint32, bool) {
	t, ok := l.Get(tag)
	if !ok || len(t.Value) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(t.Value), true
}

// Has reports whether a tag is present, regardless of value.
func (l TLVList) Has(tag uint16) bool {
	_, ok := l.Get(tag)
	return ok
}
