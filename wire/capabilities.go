package wire

// CapabilityLen is the fixed size in bytes of one capability GUID.
const CapabilityLen = 16

// Capability is a single 16-byte capability GUID advertised at login.
type Capability [CapabilityLen]byte

// Named capability GUIDs carried over from the legacy client's default
// capability vectors (default_icq2000_capabilities /
// default_icq2002_capabilities). These are opaque identifiers to the
// server; only a client that recognizes them attaches meaning.
var (
	CapICQRTF = Capability{
		0x09, 0x46, 0x13, 0x49, 0x4c, 0x7f, 0x11, 0xd1,
		0x82, 0x22, 0x44, 0x45, 0x53, 0x54, 0x00, 0x00,
	}
	CapUTF8 = Capability{
		0x09, 0x46, 0x13, 0x4c, 0x4c, 0x7f, 0x11, 0xd1,
		0x82, 0x22, 0x44, 0x45, 0x53, 0x54, 0x00, 0x00,
	}
	CapUnicodeOld = Capability{
		0x09, 0x46, 0x13, 0x44, 0x4c, 0x7f, 0x11, 0xd1,
		0x82, 0x22, 0x44, 0x45, 0x53, 0x54, 0x00, 0x00,
	}
	CapHTMLMessages = Capability{
		0x09, 0x46, 0x13, 0x4e, 0x4c, 0x7f, 0x11, 0xd1,
		0x82, 0x22, 0x44, 0x45, 0x53, 0x54, 0x00, 0x00,
	}
	CapTyping = Capability{
		0x97, 0xb1, 0x27, 0x51, 0x24, 0x3c, 0x43, 0x34,
		0xad, 0x22, 0xd6, 0xab, 0xf7, 0x3f, 0x14, 0x92,
	}
)

// DefaultICQ2000Capabilities is the 1-GUID capability vector advertised by
// legacy ICQ2000 clients. It does not set the "accepts advanced messages"
// flag (only one 16-byte block).
var DefaultICQ2000Capabilities = CapabilityList{CapICQRTF}

// DefaultICQ2002Capabilities is the 4-GUID capability vector advertised by
// ICQ2002+ clients. The presence of the second 16-byte block signals
// "accepts advanced messages" to peers inspecting it.
var DefaultICQ2002Capabilities = CapabilityList{CapICQRTF, CapHTMLMessages, CapTyping, CapUnicodeOld}

// CapabilityList is an opaque, 16-byte-aligned vector of capability GUIDs.
type CapabilityList []Capability

// Has reports whether the list advertises the given capability.
func (c CapabilityList) Has(cap Capability) bool {
	for _, have := range c {
		if have == cap {
			return true
		}
	}
	return false
}

// AcceptsAdvancedMessages reports whether a second 16-byte capability block
// is present, the legacy client's heuristic for "this peer understands
// advanced (status/priority/ack) messages".
func (c CapabilityList) AcceptsAdvancedMessages() bool {
	return len(c) > 1
}

// Bytes serializes the capability list to its wire form: each capability
// concatenated in order, with no length prefix (the caller TLV-wraps it).
func (c CapabilityList) Bytes() []byte {
	out := make([]byte, 0, len(c)*CapabilityLen)
	for _, cap := range c {
		out = append(out, cap[:]...)
	}
	return out
}

// ParseCapabilityList splits a raw capability blob into a CapabilityList.
// A trailing partial GUID (len(b) not a multiple of 16) is silently
// dropped, matching the source's tolerant truncated-capability handling.
func ParseCapabilityList(b []byte) CapabilityList {
	n := len(b) / CapabilityLen
	out := make(CapabilityList, 0, n)
	for i := 0; i < n; i++ {
		var cap Capability
		copy(cap[:], b[i*CapabilityLen:(i+1)*CapabilityLen])
		out = append(out, cap)
	}
	return out
}
