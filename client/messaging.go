package client

import (
	"bytes"
	"fmt"

	"github.com/gooscar/icq2000/direct"
	"github.com/gooscar/icq2000/icbm"
	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"
)

// messageDataTLV is the TLV tag carrying a channel-1 ICBM message's
// advanced-format subtype body (spec.md §4.3/§4.4).
const messageDataTLV uint16 = 0x02

// advancedMarkerTLV is present only on advanced-format messages
// (status/priority/ack fields); its presence is this client's signal
// to ack the message per spec.md §4.5, mirroring the source's
// basic/advanced header-length discriminator.
const advancedMarkerTLV uint16 = 0x03

type channelMsgToClient struct {
	Cookie     [8]byte
	Channel    uint16
	ScreenName string `icq:"len_prefix=uint8"`
	wire.TLVRestBlock
}

// dispatchICBM handles inbound messages and their acknowledgements
// (spec.md §4.4, §4.5).
func (c *Client) dispatchICBM(frame wire.SNACFrame, body *bytes.Buffer) error {
	switch frame.SubGroup {
	case wire.ICBMChannelMsgToClient:
		var msg channelMsgToClient
		if err := wire.Unmarshal(&msg, body); err != nil {
			c.logEvent(LogWarn, fmt.Sprintf("malformed inbound ICBM message: %s", err))
			return nil
		}
		return c.handleInboundMessage(msg)
	case wire.ICBMHostAck:
		var ack struct {
			Cookie  [8]byte
			Channel uint16
			wire.TLVRestBlock
		}
		if err := wire.Unmarshal(&ack, body); err != nil {
			return nil
		}
		rawAwayText, hasAwayText := ack.TLVList.Slice(messageDataTLV)
		awayText := ""
		if hasAwayText {
			awayText = icbm.NormalizeText(rawAwayText)
		}
		cookie := state.ICBMCookie(ack.Cookie)
		if _, ok := c.pipeline.HandleAck(cookie, awayText); !ok {
			c.logEvent(LogWarn, "unmatched ICBM ack, dropping")
		}
		return nil
	default:
		return nil
	}
}

func (c *Client) handleInboundMessage(msg channelMsgToClient) error {
	uin := screenNameToUIN(msg.ScreenName)
	raw, ok := msg.TLVList.Slice(messageDataTLV)
	if !ok {
		return nil
	}
	advanced := msg.TLVList.Has(advancedMarkerTLV)
	sub, err := icbm.DecodeAdvancedBody(raw)
	if err != nil {
		c.logEvent(LogWarn, fmt.Sprintf("unrecognized ICBM subtype from %d: %s", uin, err))
		return nil
	}

	delivered := true
	switch m := sub.(type) {
	case icbm.NormalMessage:
		c.emit(NormalMessageEvent{From: uin, Text: icbm.NormalizeText([]byte(m.Text))})
	case icbm.URLMessage:
		c.emit(URLMessageEvent{From: uin, Description: m.Description, URL: m.URL})
	case icbm.AuthRequest:
		c.emit(AuthReqEvent{From: uin, Nick: m.Nick, First: m.First, Last: m.Last, Email: m.Email, Message: m.Reason})
	case icbm.AuthReply:
		c.emit(AuthAckEvent{From: uin, Granted: m.Accepted, Reason: m.Reason})
	case icbm.UserAdd:
		c.emit(UserAddEvent{From: uin})
	case icbm.EmailExpress:
		c.emit(NormalMessageEvent{From: uin, Text: icbm.NormalizeText([]byte(m.Text))})
	case icbm.WebPager:
		c.emit(NormalMessageEvent{From: uin, Text: icbm.NormalizeText([]byte(m.Text))})
	case icbm.AwayAutoResponse:
		return c.answerAwayProbe(msg.Cookie, uin)
	default:
		return nil
	}

	if advanced {
		return c.ackInbound(msg.Cookie, uin, delivered, "")
	}
	return nil
}

// answerAwayProbe replies to a peer's AwayAutoReq probe with the
// embedder-supplied away message (spec.md §4.4, §4.5).
func (c *Client) answerAwayProbe(cookie [8]byte, fromUIN uint32) error {
	text := ""
	if c.awayMessageFn != nil {
		text = c.awayMessageFn()
	}
	return c.ackInbound(cookie, fromUIN, c.self.Status != state.StatusOnline, text)
}

// ackInbound sends the MessageACK SNAC answering an inbound advanced
// message, setting the accept-status code from our own presence
// (spec.md §4.5 table).
func (c *Client) ackInbound(cookie [8]byte, toUIN uint32, delivered bool, awayText string) error {
	acceptCode, ok := acceptStatusFor(c.self.Status)
	if !ok {
		delivered = false
	}
	ack := struct {
		Cookie  [8]byte
		Channel uint16
		wire.TLVRestBlock
	}{Cookie: cookie, Channel: 1}
	ack.TLVRestBlock.Append(wire.NewTLVBE(0x01, acceptCode))
	if awayText != "" {
		ack.TLVRestBlock.Append(wire.NewTLV(messageDataTLV, []byte(awayText)))
	}
	_ = toUIN
	return c.sendSNAC(wire.ICBM, wire.ICBMHostAck, ack)
}

// acceptStatusFor implements spec.md §4.5's own-status → accept-status
// table.
func acceptStatusFor(s state.Status) (code uint16, delivered bool) {
	switch s {
	case state.StatusOnline:
		return 0x0000, true
	case state.StatusAway:
		return 0x0004, true
	case state.StatusNotAvailable:
		return 0x000E, true
	case state.StatusOccupied:
		return 0x000C, true
	case state.StatusDND:
		return 0x000A, false
	default:
		return 0x0001, false
	}
}

// handlePipelineAck is the icbm.Pipeline's onAck callback, invoked both
// for real ACKs (via dispatchICBM) and for cookie-cache expiry
// (spec.md §4.5, §7 Timeout, §8 scenario 5).
func (c *Client) handlePipelineAck(result icbm.AckResult) {
	c.emit(MessageAckEvent{
		Cookie:    result.Pending.Cookie,
		ToUIN:     result.Pending.ToUIN,
		Delivered: result.Delivered,
		Direct:    result.Pending.Routing == icbm.RouteDirect,
		AwayText:  result.AwayText,
	})
}

// SendMessage routes an outbound ICBM message per the transport
// priority in spec.md §4.4: direct connection first, then advanced
// server-routed, then basic server-routed, with SMS always server-side.
func (c *Client) SendMessage(toUIN uint32, msg icbm.SubType) error {
	if !c.state.IsLoggedIn() {
		return ErrNotConnected
	}
	if sms, ok := msg.(icbm.SMSMessage); ok {
		return c.sendSMS(toUIN, sms)
	}

	contact := c.contacts.GetOrCreate(toUIN)

	if c.cfg.UseOutDirect && contact.DirectAllowed && c.directReachable(contact) {
		return c.sendViaDirect(toUIN, msg)
	}
	if contact.Capabilities.AcceptsAdvancedMessages() && contact.Status != state.StatusOffline {
		return c.sendAdvancedServer(toUIN, msg)
	}
	return c.sendBasicServer(toUIN, msg)
}

// directReachable reports whether toUIN already has an active direct
// connection, or has advertised reachable address info a new one could
// be opened against (spec.md §4.4 rule 1, §4.7 step 5).
func (c *Client) directReachable(contact *state.Contact) bool {
	if dc, ok := c.directClients[contact.UIN]; ok {
		return dc.State == direct.Connected
	}
	return contact.LANIP != 0 || contact.ExternalIP != 0
}

func (c *Client) sendAdvancedServer(toUIN uint32, msg icbm.SubType) error {
	snac, cookie := c.pipeline.SendAdvanced(toUIN, msg)
	if err := c.sendSNAC(snac.Frame.FoodGroup, snac.Frame.SubGroup, snac.Body); err != nil {
		return err
	}
	_ = cookie
	return nil
}

// sendBasicServer sends a light-header message with no ack discipline;
// delivery is best-effort (spec.md §4.4 rule 3).
func (c *Client) sendBasicServer(toUIN uint32, msg icbm.SubType) error {
	body := struct {
		Cookie     [8]byte
		Channel    uint16
		ScreenName string `icq:"len_prefix=uint8"`
		wire.TLVRestBlock
	}{Channel: 1, ScreenName: fmt.Sprintf("%d", toUIN)}
	body.TLVRestBlock.Append(wire.NewTLV(messageDataTLV, msg.EncodeAdvancedBody()))
	return c.sendSNAC(wire.ICBM, wire.ICBMChannelMsgToHost, body)
}

// sendSMS always routes through the Server food group, keyed by
// request-id (spec.md §4.4 rule 4, §4.6).
func (c *Client) sendSMS(toUIN uint32, msg icbm.SMSMessage) error {
	xmlBody, err := icbm.EncodeSMSMessageXML(msg)
	if err != nil {
		return err
	}
	reqBody := struct {
		RespType uint16
		Dest     uint32
		wire.TLVRestBlock
	}{RespType: wire.SrvResponseSMSSent, Dest: toUIN}
	reqBody.TLVRestBlock.Append(wire.NewTLV(messageDataTLV, xmlBody))
	return c.sendSNAC(wire.Server, wire.ServerMetaRequest, reqBody)
}

func (c *Client) sendViaDirect(toUIN uint32, msg icbm.SubType) error {
	dc, ok := c.directClients[toUIN]
	if !ok {
		return fmt.Errorf("client: no direct connection open to %d", toUIN)
	}
	cookie := c.pipeline.SendDirect(toUIN, msg)
	_ = cookie
	if dc.State != direct.Connected {
		dc.Enqueue(msg.EncodeAdvancedBody())
		return nil
	}
	seq := dc.NextSequence()
	packet := direct.BuildDataPacket(direct.CommandStart, seq, msg.EncodeAdvancedBody())
	dc.TrackAck(seq, packet)
	return c.writeDirectPacket(toUIN, packet)
}

func (c *Client) writeDirectPacket(toUIN uint32, packet []byte) error {
	_, sock := c.fdFor(toUIN)
	if sock == nil {
		return fmt.Errorf("client: no socket for direct peer %d", toUIN)
	}
	encrypted := direct.Encrypt(packet, uint32(len(packet)))
	framed := framePacket(encrypted)
	_, err := sock.Write(framed)
	return err
}

// framePacket prepends the 16-bit little-endian length header every
// direct-connection packet carries (spec.md §4.7 step 1).
func framePacket(body []byte) []byte {
	out := make([]byte, 2+len(body))
	out[0] = byte(len(body))
	out[1] = byte(len(body) >> 8)
	copy(out[2:], body)
	return out
}
