// Package icbm implements the ICQSubType message catalog and the
// message pipeline that encodes, routes, and acknowledges them
// (spec.md §4, §4.5, §4.6).
package icbm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/gooscar/icq2000/wire"
)

// ErrUnknownSubType is returned by DecodeAdvancedBody for a wire kind
// byte this client doesn't recognize (spec.md §7, ParseError).
var ErrUnknownSubType = errors.New("icbm: unknown advanced subtype")

// Kind identifies which concrete SubType a payload carries. This is the
// tagged-union redesign of the source library's ICQSubType RTTI
// hierarchy (spec.md §9): one sum type with a Kind discriminant and a
// typed payload field per variant, instead of a class hierarchy
// inspected with dynamic_cast.
type Kind uint8

const (
	KindNormal Kind = iota + 1
	KindURL
	KindSMS
	KindSMSReceipt
	KindAuthRequest
	KindAuthReply
	KindUserAdd
	KindAwayAutoResponse
	KindEmailExpress
	KindWebPager
)

// Wire subtype byte values for the advanced-message ICQSubType header
// (spec.md §4.4).
const (
	wireKindNormal      uint8 = 0x01
	wireKindURL         uint8 = 0x04
	wireKindAwayReqBase uint8 = 0x0B // Away/Occ/NA/DND/FFC auto-response probes, 0x0B-0x0F
	wireKindEmailExpress uint8 = 0x1A
	wireKindWebPager    uint8 = 0x1B
	wireKindContactList uint8 = 0x13
	wireKindAuthRequest uint8 = 0x06
	wireKindAuthReply   uint8 = 0x07
	wireKindUserAdd     uint8 = 0x12
)

// SubType is the common interface every ICQ message variant satisfies:
// encode its advanced-message body, and report which wire Kind byte and
// SNAC routing it requires.
type SubType interface {
	Kind() Kind
	// EncodeAdvancedBody serializes the variant's advanced-format body
	// (little-endian, per spec.md §4.3/§4.4) excluding the common
	// ICBM message TLV/cookie framing the pipeline adds.
	EncodeAdvancedBody() []byte
}

// NormalMessage is a plain text message, the most common ICBM variant.
type NormalMessage struct {
	Text string
}

func (NormalMessage) Kind() Kind { return KindNormal }

func (m NormalMessage) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindNormal)
	buf.WriteUint8(0) // flags
	buf.WriteString(m.Text)
	return buf.Bytes()
}

// URLMessage carries a URL and an optional description, rendered by
// legacy clients as a clickable link.
type URLMessage struct {
	URL         string
	Description string
}

func (URLMessage) Kind() Kind { return KindURL }

func (m URLMessage) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindURL)
	buf.WriteUint8(0)
	buf.WriteString(m.Description + "\xFE" + m.URL)
	return buf.Bytes()
}

// SMSMessage is a message routed through the ICQ SMS gateway to a
// mobile phone number rather than to another ICQ client.
type SMSMessage struct {
	Source  string
	Sender  string
	Text    string
	Network string
	Time    string
}

func (SMSMessage) Kind() Kind { return KindSMS }

func (m SMSMessage) EncodeAdvancedBody() []byte {
	// SMS is sent server-side (food group Server, not channel-4 advanced
	// ICBM): the pipeline builds its XML envelope directly rather than
	// going through this generic path. Present for interface symmetry
	// and for tests constructing the variant in isolation.
	return []byte(m.Text)
}

// smsMessageXML is the wire XML shape for an inbound SrvResponse
// SMS-message delivery (spec.md §4.4, "Parse XML fragment
// <sms_message>").
type smsMessageXML struct {
	XMLName xml.Name `xml:"sms_message"`
	Source  string   `xml:"source"`
	Sender  string   `xml:"sender"`
	Text    string   `xml:"text"`
	Network string   `xml:"senders_network"`
	Time    string   `xml:"time"`
}

// ParseSMSMessageXML decodes an inbound SrvResponseSMSMessage payload.
func ParseSMSMessageXML(body []byte) (SMSMessage, error) {
	var raw smsMessageXML
	if err := xml.Unmarshal(body, &raw); err != nil {
		return SMSMessage{}, fmt.Errorf("icbm: unable to parse SMS message: %w", err)
	}
	return SMSMessage{Source: raw.Source, Sender: raw.Sender, Text: raw.Text, Network: raw.Network, Time: raw.Time}, nil
}

// EncodeSMSMessageXML renders an SMSMessage to its wire XML shape, for
// tests and for symmetry; the client only ever receives this envelope,
// never originates it (outbound SMS uses the <sms_message> request
// format sent to the server, a distinct envelope this library doesn't
// need to build since the pipeline sends through EncodeAdvancedBody's
// plain-text fallback and lets the server assemble its own outbound
// wrapper).
func EncodeSMSMessageXML(m SMSMessage) ([]byte, error) {
	raw := smsMessageXML{Source: m.Source, Sender: m.Sender, Text: m.Text, Network: m.Network, Time: m.Time}
	return xml.Marshal(raw)
}

// smsDeliveryReceiptXML is the wire XML shape for an SrvResponse 2010
// payload. The element name "submition_time" is a misspelling inherited
// from the legacy server and preserved here verbatim because it's what
// real ICQ servers actually send; SMSReceipt exposes a correctly
// spelled SubmissionTime field to API callers (spec.md §9, DESIGN.md
// Open Question 3).
type smsDeliveryReceiptXML struct {
	XMLName        xml.Name `xml:"sms_delivery_receipt"`
	Delivered      string   `xml:"delivered"`
	MsgID          string   `xml:"message_id"`
	SubmitionTime  string   `xml:"submition_time"`
}

// SMSReceipt reports delivery status for a previously sent SMSMessage.
type SMSReceipt struct {
	Delivered      bool
	MessageID      string
	SubmissionTime string
}

func (SMSReceipt) Kind() Kind { return KindSMSReceipt }

func (SMSReceipt) EncodeAdvancedBody() []byte { return nil }

// ParseSMSReceiptXML decodes an SrvResponseSMSReceiptXML payload,
// preserving the server's misspelled element name on the wire while
// returning the corrected field name in SMSReceipt.
func ParseSMSReceiptXML(body []byte) (SMSReceipt, error) {
	var raw smsDeliveryReceiptXML
	if err := xml.Unmarshal(body, &raw); err != nil {
		return SMSReceipt{}, fmt.Errorf("icbm: unable to parse SMS receipt: %w", err)
	}
	return SMSReceipt{
		Delivered:      raw.Delivered == "Yes",
		MessageID:      raw.MsgID,
		SubmissionTime: raw.SubmitionTime,
	}, nil
}

// EncodeSMSReceiptXML renders an SMSReceipt back to the wire XML shape,
// for tests and for symmetry; the client never originates this message
// (only the server does).
func EncodeSMSReceiptXML(r SMSReceipt) ([]byte, error) {
	delivered := "No"
	if r.Delivered {
		delivered = "Yes"
	}
	raw := smsDeliveryReceiptXML{
		Delivered:     delivered,
		MsgID:         r.MessageID,
		SubmitionTime: r.SubmissionTime,
	}
	return xml.Marshal(raw)
}

// AuthRequest asks a contact to authorize adding the sender to their
// contact list, carrying the requester's nickname and name/email
// fields alongside the free-text reason (spec.md §4.4).
type AuthRequest struct {
	Nick   string
	First  string
	Last   string
	Email  string
	Reason string
}

func (AuthRequest) Kind() Kind { return KindAuthRequest }

func (m AuthRequest) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindAuthRequest)
	buf.WriteStringNullTerm(m.Nick)
	buf.WriteStringNullTerm(m.First)
	buf.WriteStringNullTerm(m.Last)
	buf.WriteStringNullTerm(m.Email)
	buf.WriteString(m.Reason)
	return buf.Bytes()
}

// AuthReply answers a previously received AuthRequest.
type AuthReply struct {
	Accepted bool
	Reason   string
}

func (AuthReply) Kind() Kind { return KindAuthReply }

func (m AuthReply) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindAuthReply)
	accepted := uint8(0)
	if m.Accepted {
		accepted = 1
	}
	buf.WriteUint8(accepted)
	buf.WriteString(m.Reason)
	return buf.Bytes()
}

// UserAdd notifies the recipient that the sender added them to their
// contact list without requiring authorization.
type UserAdd struct{}

func (UserAdd) Kind() Kind { return KindUserAdd }

func (UserAdd) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindUserAdd)
	return buf.Bytes()
}

// AwayStatusProbe identifies which auto-response a peer's away-message
// probe is asking about.
type AwayStatusProbe uint8

const (
	AwayProbeAway AwayStatusProbe = iota
	AwayProbeOccupied
	AwayProbeNA
	AwayProbeDND
	AwayProbeFreeForChat
)

// AwayAutoResponse is both the probe sent to check a contact's away
// message and the reply carrying that message's text.
type AwayAutoResponse struct {
	Probe AwayStatusProbe
	Text  string
}

func (AwayAutoResponse) Kind() Kind { return KindAwayAutoResponse }

func (m AwayAutoResponse) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindAwayReqBase + uint8(m.Probe))
	buf.WriteString(m.Text)
	return buf.Bytes()
}

// EmailExpress carries a short "Email Express" notification message.
type EmailExpress struct {
	Text string
}

func (EmailExpress) Kind() Kind { return KindEmailExpress }

func (m EmailExpress) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindEmailExpress)
	buf.WriteString(m.Text)
	return buf.Bytes()
}

// WebPager carries a web-form-submitted pager message, structurally
// identical on the wire to EmailExpress but tagged distinctly so the
// embedder can distinguish the two message sources.
type WebPager struct {
	Text string
}

func (WebPager) Kind() Kind { return KindWebPager }

func (m WebPager) EncodeAdvancedBody() []byte {
	buf := wire.NewBuffer()
	buf.SetLittleEndian()
	buf.WriteUint8(wireKindWebPager)
	buf.WriteString(m.Text)
	return buf.Bytes()
}

// DecodeAdvancedBody parses the advanced-format ICQSubType body carried
// in an inbound ChannelMsgToClient message TLV, the decode counterpart
// to each variant's EncodeAdvancedBody (spec.md §4.4). The leading wire
// kind byte selects the concrete SubType; ErrUnknownSubType is returned
// for a code this client doesn't understand rather than failing the
// whole dispatch (spec.md §7, ParseError is recovered per-frame).
func DecodeAdvancedBody(body []byte) (SubType, error) {
	buf := wire.NewBufferFromBytes(body)
	buf.SetLittleEndian()
	if buf.Remains() < 1 {
		return nil, fmt.Errorf("icbm: %w: empty advanced body", ErrUnknownSubType)
	}
	kind := buf.ReadUint8()
	switch {
	case kind == wireKindNormal:
		buf.ReadUint8() // flags
		return NormalMessage{Text: buf.ReadString()}, nil
	case kind == wireKindURL:
		buf.ReadUint8() // flags
		desc, url := splitURLPayload(buf.ReadString())
		return URLMessage{Description: desc, URL: url}, nil
	case kind == wireKindAuthRequest:
		nick := buf.ReadStringNullTerm()
		first := buf.ReadStringNullTerm()
		last := buf.ReadStringNullTerm()
		email := buf.ReadStringNullTerm()
		return AuthRequest{Nick: nick, First: first, Last: last, Email: email, Reason: buf.ReadString()}, nil
	case kind == wireKindAuthReply:
		accepted := buf.ReadUint8() != 0
		return AuthReply{Accepted: accepted, Reason: buf.ReadString()}, nil
	case kind == wireKindUserAdd:
		return UserAdd{}, nil
	case kind >= wireKindAwayReqBase && kind < wireKindAwayReqBase+5:
		return AwayAutoResponse{Probe: AwayStatusProbe(kind - wireKindAwayReqBase), Text: buf.ReadString()}, nil
	case kind == wireKindEmailExpress:
		return EmailExpress{Text: buf.ReadString()}, nil
	case kind == wireKindWebPager:
		return WebPager{Text: buf.ReadString()}, nil
	default:
		return nil, fmt.Errorf("icbm: %w: 0x%02x", ErrUnknownSubType, kind)
	}
}

// splitURLPayload reverses URLMessage.EncodeAdvancedBody's
// description+0xFE+url packing (spec.md §4.4, "Split payload at byte
// 0xFE").
func splitURLPayload(s string) (desc, url string) {
	if i := strings.IndexByte(s, 0xFE); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
