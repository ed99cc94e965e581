package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
)

// flapHeaderLen is the on-wire size of FLAPFrame: StartMarker(1) +
// Channel(1) + Sequence(2) + PayloadLength(2).
const flapHeaderLen = 6

// FLAP channel identifiers (spec.md §4.2).
const (
	FLAPChannelSignon    uint8 = 0x01
	FLAPChannelData      uint8 = 0x02
	FLAPChannelError     uint8 = 0x03
	FLAPChannelSignoff   uint8 = 0x04
	FLAPChannelKeepAlive uint8 = 0x05
)

// FLAPStartMarker is the fixed first byte of every FLAP frame.
const FLAPStartMarker uint8 = 0x2A

// ErrBadStartMarker indicates an inbound frame whose first byte was not
// FLAPStartMarker. The caller clears its inbound buffer and keeps the
// connection open (spec.md §4.2, §8 boundary behaviors).
var ErrBadStartMarker = errors.New("wire: FLAP frame does not begin with start marker 0x2A")

// FLAPFrame is the 6-byte header that wraps every message exchanged with
// the authorizer or BOS server.
type FLAPFrame struct {
	StartMarker   uint8
	Channel       uint8
	Sequence      uint16
	PayloadLength uint16
}

// ReadBody reads the frame's payload (already length-known from the
// header) into a fresh buffer positioned at offset zero.
func (f FLAPFrame) ReadBody(r io.Reader) (*bytes.Buffer, error) {
	b := make([]byte, f.PayloadLength)
	if f.PayloadLength > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, err
		}
	}
	return bytes.NewBuffer(b), nil
}

// SNACFrame is the header carried at the start of every channel-2 FLAP
// payload.
type SNACFrame struct {
	FoodGroup uint16
	SubGroup  uint16
	Flags     uint16
	RequestID uint32
}

// SNACError is a generic error-code payload returned for a SNAC family's
// Err subtype, optionally carrying extra detail TLVs.
type SNACError struct {
	Code uint16
	TLVRestBlock
}

// FLAPSignonFrame is the channel-1 body: a 4-byte FLAP version followed by
// a TLV list.
type FLAPSignonFrame struct {
	FLAPVersion uint32
	TLVRestBlock
}

// SNACMessage pairs a SNAC header with its body for a single outbound or
// inbound message.
type SNACMessage struct {
	Frame SNACFrame
	Body  any
}

// FlapClient sends and receives FLAP frames over one TCP connection,
// tracking the outbound sequence number. It is not safe for concurrent use
// without external synchronization -- which the library never needs,
// since every entry point is driven by one embedder goroutine
// (spec.md §5).
type FlapClient struct {
	sequence uint32
	r        io.Reader
	w        io.Writer

	// inBuf accumulates bytes read from r across calls to ReceiveFLAP.
	// r is driven by a non-blocking socket (netio.Socket.Read performs
	// one read syscall and returns ErrWouldBlock when nothing more is
	// available yet), so a header or body can straddle many
	// SocketReady invocations; inBuf is what lets ReceiveFLAP resume
	// instead of losing whatever bytes a short read already consumed.
	inBuf bytes.Buffer
}

// NewFlapClient returns a FlapClient with a randomized starting sequence
// number, per spec.md §4.2 ("initialized to a random value").
func NewFlapClient(r io.Reader, w io.Writer) *FlapClient {
	return &FlapClient{
		sequence: uint32(rand.Intn(0x8000)),
		r:        r,
		w:        w,
	}
}

// fillOnce issues one Read against the underlying reader and appends
// whatever bytes it returned to inBuf, even if it also returns an
// error (io.Reader permits returning n>0 with a non-nil err). The
// error is returned unchanged -- in particular ErrWouldBlock is never
// swallowed here, so callers can keep telling "nothing more yet" apart
// from a genuine disconnect.
func (f *FlapClient) fillOnce() error {
	var tmp [4096]byte
	n, err := f.r.Read(tmp[:])
	if n > 0 {
		f.inBuf.Write(tmp[:n])
	}
	return err
}

// fillUntil calls fillOnce until inBuf holds at least n bytes,
// returning immediately (buffered partial progress intact) if a read
// fails before that point.
func (f *FlapClient) fillUntil(n int) error {
	for f.inBuf.Len() < n {
		if err := f.fillOnce(); err != nil {
			return err
		}
	}
	return nil
}

// SendSignonFrame sends a channel-1 signon frame carrying the given TLVs.
func (f *FlapClient) SendSignonFrame(tlvs []TLV) error {
	signonFrame := FLAPSignonFrame{FLAPVersion: 1}
	if len(tlvs) > 0 {
		signonFrame.AppendList(tlvs)
	}
	buf := &bytes.Buffer{}
	if err := Marshal(signonFrame, buf); err != nil {
		return err
	}

	flap := FLAPFrame{
		StartMarker:   FLAPStartMarker,
		Channel:       FLAPChannelSignon,
		Sequence:      uint16(f.sequence),
		PayloadLength: uint16(buf.Len()),
	}
	if err := Marshal(flap, f.w); err != nil {
		return err
	}
	if _, err := f.w.Write(buf.Bytes()); err != nil {
		return err
	}

	f.sequence = (f.sequence + 1) % 0x8000
	return nil
}

// ReceiveSignonFrame receives a channel-1 signon response.
func (f *FlapClient) ReceiveSignonFrame() (FLAPSignonFrame, error) {
	_, body, err := f.ReceiveFLAP()
	if err != nil {
		return FLAPSignonFrame{}, err
	}

	signonFrame := FLAPSignonFrame{}
	if err := Unmarshal(&signonFrame, body); err != nil {
		return FLAPSignonFrame{}, err
	}
	return signonFrame, nil
}

// ReceiveFLAP reads one FLAP frame and its body. It waits for the full
// 6-byte header before inspecting PayloadLength, then for the full
// payload before parsing anything, accumulating across as many
// underlying Read calls as it takes (spec.md §4.2, §8) -- a short read
// from a non-blocking socket only means "not enough yet", never lost
// bytes. If the start marker doesn't match 0x2A, it returns
// ErrBadStartMarker; the caller clears its read state and keeps the
// connection open.
func (f *FlapClient) ReceiveFLAP() (FLAPFrame, *bytes.Buffer, error) {
	if err := f.fillUntil(flapHeaderLen); err != nil {
		return FLAPFrame{}, nil, err
	}
	payloadLen := int(binary.BigEndian.Uint16(f.inBuf.Bytes()[4:flapHeaderLen]))
	if err := f.fillUntil(flapHeaderLen + payloadLen); err != nil {
		return FLAPFrame{}, nil, err
	}

	flap := FLAPFrame{}
	if err := Unmarshal(&flap, &f.inBuf); err != nil {
		return flap, nil, fmt.Errorf("wire: unable to unmarshal FLAP frame: %w", err)
	}
	if flap.StartMarker != FLAPStartMarker {
		return flap, nil, ErrBadStartMarker
	}

	buf, err := flap.ReadBody(&f.inBuf)
	if err != nil {
		err = fmt.Errorf("wire: unable to read FLAP body: %w", err)
	}
	return flap, buf, err
}

// SendSignoffFrame sends a channel-4 signoff frame with attached TLVs, the
// last frame sent during the auth flow or when gracefully disconnecting.
func (f *FlapClient) SendSignoffFrame(tlvs TLVRestBlock) error {
	tlvBuf := &bytes.Buffer{}
	if err := Marshal(tlvs, tlvBuf); err != nil {
		return err
	}

	flap := FLAPFrame{
		StartMarker:   FLAPStartMarker,
		Channel:       FLAPChannelSignoff,
		Sequence:      uint16(f.sequence),
		PayloadLength: uint16(tlvBuf.Len()),
	}
	if err := Marshal(flap, f.w); err != nil {
		return err
	}
	if _, err := f.w.Write(tlvBuf.Bytes()); err != nil {
		return err
	}

	f.sequence = (f.sequence + 1) % 0x8000
	return nil
}

// SendSNAC wraps frame+body in a SNAC header inside a channel-2 FLAP frame.
func (f *FlapClient) SendSNAC(frame SNACFrame, body any) error {
	snacBuf := &bytes.Buffer{}
	if err := Marshal(frame, snacBuf); err != nil {
		return err
	}
	if body != nil {
		if err := Marshal(body, snacBuf); err != nil {
			return err
		}
	}

	flap := FLAPFrame{
		StartMarker:   FLAPStartMarker,
		Channel:       FLAPChannelData,
		Sequence:      uint16(f.sequence),
		PayloadLength: uint16(snacBuf.Len()),
	}
	if err := Marshal(flap, f.w); err != nil {
		return err
	}
	if _, err := f.w.Write(snacBuf.Bytes()); err != nil {
		return err
	}

	f.sequence = (f.sequence + 1) % 0x8000
	return nil
}

// SendKeepAlive sends an empty channel-5 keep-alive frame.
func (f *FlapClient) SendKeepAlive() error {
	flap := FLAPFrame{
		StartMarker: FLAPStartMarker,
		Channel:     FLAPChannelKeepAlive,
		Sequence:    uint16(f.sequence),
	}
	if err := Marshal(flap, f.w); err != nil {
		return err
	}
	f.sequence = (f.sequence + 1) % 0x8000
	return nil
}

// Disconnect sends an empty channel-4 signoff frame, telling the peer that
// the client is leaving voluntarily.
func (f *FlapClient) Disconnect() error {
	flap := FLAPFrame{
		StartMarker: FLAPStartMarker,
		Channel:     FLAPChannelSignoff,
		Sequence:    uint16(f.sequence),
	}
	return Marshal(flap, f.w)
}
