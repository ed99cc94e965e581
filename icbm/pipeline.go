package icbm

import (
	"time"

	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"
)

// Routing picks how a message actually leaves the process.
type Routing int

const (
	// RouteServer sends a basic or advanced ICBM SNAC to the BOS server.
	RouteServer Routing = iota
	// RouteDirect sends the message over an established peer socket,
	// bypassing the server entirely.
	RouteDirect
)

// Pending tracks one in-flight outbound message awaiting acknowledgement.
type Pending struct {
	Cookie   state.ICBMCookie
	ToUIN    uint32
	Message  SubType
	Routing  Routing
	SentAt   time.Time
	Advanced bool
}

// AckResult is delivered to the embedder once a Pending message's fate
// is known, one way or another.
type AckResult struct {
	Pending   Pending
	Delivered bool
	// AwayText is populated when the ack carries a probed away message
	// (spec.md §4.5, "its away-message field is populated from the ACK
	// body for away-probes").
	AwayText string
}

// cookieCacheTTL is the server-routed advanced-message ack timeout
// (spec.md §8 scenario 5, "advance simulated clock by 31s").
const cookieCacheTTL = 31 * time.Second

// Pipeline owns the cookie cache and drives the send/ack/expire cycle
// for ICBM messages. It issues no callbacks of its own concurrency --
// every method is called synchronously from the embedder's dispatch or
// Poll() entry points (spec.md §5).
type Pipeline struct {
	cookies *state.Cache[state.ICBMCookie, Pending]
	onAck   func(AckResult)
	now     func() time.Time
}

// NewPipeline returns a Pipeline. onAck is invoked once per resolved
// message, whether by a matching ack or by cache expiry.
func NewPipeline(onAck func(AckResult)) *Pipeline {
	p := &Pipeline{
		cookies: state.NewCache[state.ICBMCookie, Pending](cookieCacheTTL),
		onAck:   onAck,
		now:     time.Now,
	}
	p.cookies.OnEvicted(func(pending Pending) {
		p.onAck(AckResult{Pending: pending, Delivered: false})
	})
	return p
}

// SetClock overrides the pipeline's time source, for tests that
// simulate expiry without sleeping (spec.md §8 scenario 5).
func (p *Pipeline) SetClock(now func() time.Time) { p.now = now }

// SendAdvanced registers a server-routed advanced message as pending
// and returns the SNAC ready to send. The cookie is drawn uniquely
// against the outstanding-cookie cache (spec.md §3).
func (p *Pipeline) SendAdvanced(toUIN uint32, msg SubType) (wire.SNACMessage, state.ICBMCookie) {
	cookie := state.UniqueICBMCookie(p.cookies, state.NewICBMCookie)
	pending := Pending{
		Cookie:   cookie,
		ToUIN:    toUIN,
		Message:  msg,
		Routing:  RouteServer,
		SentAt:   p.now(),
		Advanced: true,
	}
	p.cookies.Set(cookie, pending)

	body := encodeChannelMsgToHost(cookie, toUIN, msg, true)
	return wire.SNACMessage{
		Frame: wire.SNACFrame{FoodGroup: wire.ICBM, SubGroup: wire.ICBMChannelMsgToHost},
		Body:  body,
	}, cookie
}

// SendDirect registers a direct-routed message. Direct acks are tracked
// by sequence number, not cookie, so this only informs the caller which
// cookie to stamp in the direct-connection packet for pairing with a
// later HandleDirectAck (spec.md §4.5).
func (p *Pipeline) SendDirect(toUIN uint32, msg SubType) state.ICBMCookie {
	cookie := state.UniqueICBMCookie(p.cookies, state.NewICBMCookie)
	p.cookies.Set(cookie, Pending{
		Cookie:  cookie,
		ToUIN:   toUIN,
		Message: msg,
		Routing: RouteDirect,
		SentAt:  p.now(),
	})
	return cookie
}

// HandleAck resolves a pending message by cookie, emitting onAck with
// delivered=true. An ack for an unknown cookie is logged by the caller
// and dropped (spec.md §4.5, "unmatched ACKs are logged and dropped").
func (p *Pipeline) HandleAck(cookie state.ICBMCookie, awayText string) (Pending, bool) {
	pending, ok := p.cookies.Get(cookie)
	if !ok {
		return Pending{}, false
	}
	p.cookies.Delete(cookie)
	p.onAck(AckResult{Pending: pending, Delivered: true, AwayText: awayText})
	return pending, true
}

// Sweep clears expired cookie-cache entries, finalizing each as
// delivered=false via the OnEvicted hook registered at construction.
// Called from the embedder's Poll() entry point.
func (p *Pipeline) Sweep() {
	p.cookies.Sweep()
}

// Pending reports how many messages are awaiting acknowledgement.
func (p *Pipeline) Pending() int {
	return p.cookies.Len()
}

// channelMsgToHost is the body of a SNAC ICBM/ChannelMsgToHost request
// (spec.md §4.3/§4.4): an 8-byte cookie, channel number, then a
// destination-screenname TLV block, then the message's own
// little-endian advanced-format encoding wrapped in TLV 0x02.
type channelMsgToHost struct {
	Cookie     [8]byte
	Channel    uint16
	ScreenName string `icq:"len_prefix=uint8"`
	wire.TLVRestBlock
}

// channelMsgToHostTLVMessage is the TLV tag carrying the advanced
// message body.
const channelMsgToHostTLVMessage uint16 = 0x02

func encodeChannelMsgToHost(cookie state.ICBMCookie, toUIN uint32, msg SubType, advanced bool) channelMsgToHost {
	body := channelMsgToHost{
		Cookie:     cookie,
		Channel:    1,
		ScreenName: state.ScreenName(toUIN),
	}
	if advanced {
		body.TLVList.Append(wire.NewTLV(channelMsgToHostTLVMessage, msg.EncodeAdvancedBody()))
	}
	return body
}
