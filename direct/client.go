package direct

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"
)

// ConnState is the direct-connection handshake state machine
// (spec.md §4.7).
type ConnState int

const (
	NotConnected ConnState = iota
	WaitingForInit
	WaitingForInitAck
	WaitingForInit2
	Connected
)

// Direct-connection command codes (spec.md §4.7, step 6).
const (
	CommandStart uint16 = 0x07EE
	CommandAck   uint16 = 0x07DA
)

const commandConstant uint16 = 0x000E

// v7InitExtra is the one extra 32-bit field a v7 handshake's Init packet
// carries beyond the common v6/v7 layout (spec.md §4.7 step 2). Wrapped
// in its own struct because the codec's `optional` tag only supports
// pointer-to-struct fields (wire/codec.go marshalStruct/unmarshalStruct).
type v7InitExtra struct {
	Value uint32
}

// NewV7Extra returns the ExtraV7 wrapper for an outbound v7 Init
// packet. The type itself stays unexported since callers never inspect
// its field -- the wrapper exists only to satisfy the codec's
// pointer-to-struct `optional` tag.
func NewV7Extra(value uint32) *v7InitExtra {
	return &v7InitExtra{Value: value}
}

// InitPacket is the handshake packet exchanged first by both peers
// (spec.md §4.7, step 2).
type InitPacket struct {
	StartByte    uint8 // always 0xFF
	TCPVersion   uint8 // 6 or 7
	SecondaryLen uint16
	RemoteUIN    uint32
	Port1        uint16
	Port2        uint16
	LocalUIN     uint32
	ExternalIP   uint32
	LANIP        uint32
	TCPFlags     uint8
	LocalPort    uint16
	SessionID    uint32
	Padding      uint32
	ExtraV7      *v7InitExtra `icq:"optional"`
}

// DirectClient manages one peer socket's handshake, obfuscation, and
// outbound queueing until Connected (spec.md §4.7). It holds no
// goroutines or mutexes: every method runs synchronously from the
// embedder's dispatch loop, consistent with the library's
// single-threaded model (spec.md §5).
type DirectClient struct {
	State      ConnState
	TCPVersion uint8
	SessionID  uint32
	PeerUIN    uint32
	Incoming   bool

	// acks tracks outbound sequence numbers awaiting a command-0x07DA
	// reply. TTL starts short (pre-handshake) and is widened once
	// Connected (spec.md §4.5).
	acks *state.Cache[uint16, []byte]

	// sendQueue holds outbound plaintext payloads queued before the
	// Connected transition, flushed FIFO once the handshake completes
	// (spec.md §4.7, step 8).
	sendQueue [][]byte

	nextSeq uint16
}

const (
	preConnectAckTTL  = 30 * time.Second
	postConnectAckTTL = 10 * time.Minute
)

// NewDirectClient returns a DirectClient ready to begin (or receive) a
// handshake.
func NewDirectClient(incoming bool) *DirectClient {
	return &DirectClient{
		State:    NotConnected,
		Incoming: incoming,
		acks:     state.NewCache[uint16, []byte](preConnectAckTTL),
	}
}

// Enqueue appends an outbound payload to the send queue; it is flushed
// once the handshake transitions to Connected.
func (d *DirectClient) Enqueue(payload []byte) {
	if d.State == Connected {
		return
	}
	d.sendQueue = append(d.sendQueue, payload)
}

// TransitionConnected moves the client to Connected, widens the ack
// cache TTL (spec.md §4.5, "increased on connection-established event"),
// and returns the queued payloads to flush, in FIFO order.
func (d *DirectClient) TransitionConnected() [][]byte {
	d.State = Connected
	d.acks = state.NewCache[uint16, []byte](postConnectAckTTL)
	queued := d.sendQueue
	d.sendQueue = nil
	return queued
}

// NextSequence returns the next outbound sequence number.
func (d *DirectClient) NextSequence() uint16 {
	seq := d.nextSeq
	d.nextSeq++
	return seq
}

// TrackAck registers payload as awaiting an ack for sequence seq.
func (d *DirectClient) TrackAck(seq uint16, payload []byte) {
	d.acks.Set(seq, payload)
}

// ResolveAck looks up and clears the pending payload for seq, reporting
// whether one was tracked.
func (d *DirectClient) ResolveAck(seq uint16) ([]byte, bool) {
	payload, ok := d.acks.Get(seq)
	if ok {
		d.acks.Delete(seq)
	}
	return payload, ok
}

// Sweep clears expired, unacknowledged sends.
func (d *DirectClient) Sweep() { d.acks.Sweep() }

// BuildDataPacket assembles the decrypted body for a data packet
// (spec.md §4.7, step 6): checksum placeholder, command, constant,
// sequence, 12 bytes of padding, then the subtype's advanced body.
func BuildDataPacket(command uint16, seq uint16, subTypeBody []byte) []byte {
	buf := &bytes.Buffer{}
	buf.Write([]byte{0, 0, 0, 0}) // checksum placeholder, filled by Encrypt
	writeLE16(buf, command)
	writeLE16(buf, commandConstant)
	writeLE16(buf, seq)
	buf.Write(make([]byte, 12))
	buf.Write(subTypeBody)
	return buf.Bytes()
}

// ParseDataPacket splits a decrypted data-packet body back into its
// command, sequence number, and subtype payload.
func ParseDataPacket(body []byte) (command uint16, seq uint16, subTypeBody []byte, ok bool) {
	if len(body) < 4+2+2+2+12 {
		return 0, 0, nil, false
	}
	command = readLE16(body[4:6])
	seq = readLE16(body[8:10])
	return command, seq, body[22:], true
}

func writeLE16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func readLE16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// ValidatePeerUIN implements the UIN-confirmation check from spec.md
// §4.7 step 5: the claimed peer is accepted only if it shares our
// external IP and the connection's remote address matches its
// LAN IP (same NAT), or its external IP directly matches the connection
// remote IP.
func ValidatePeerUIN(peerExternalIP, ourExternalIP, peerLANIP, connRemoteIP uint32) bool {
	sameNAT := peerExternalIP == ourExternalIP && peerLANIP == connRemoteIP
	directMatch := peerExternalIP == connRemoteIP
	return sameNAT || directMatch
}

// EncodeInit serializes an InitPacket using little-endian byte order
// (spec.md §4.7 step 1), omitting ExtraV7 for a v6 handshake (leave it
// nil).
func EncodeInit(p InitPacket) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := wire.MarshalOrder(p, buf, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeInit parses an InitPacket using little-endian byte order. The
// trailing 32-bit v7 field is populated in ExtraV7 whenever b carries
// enough trailing bytes for it; a v6 handshake's shorter packet leaves
// it nil.
func DecodeInit(b []byte) (InitPacket, error) {
	var p InitPacket
	r := bytes.NewReader(b)
	if err := wire.UnmarshalOrder(&p, r, binary.LittleEndian); err != nil {
		return InitPacket{}, err
	}
	return p, nil
}
