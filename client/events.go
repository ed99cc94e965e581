package client

import (
	"github.com/gooscar/icq2000/icbm"
	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"
)

// DisconnectReason enumerates why a Disconnected event fired
// (spec.md §6, §7).
type DisconnectReason int

const (
	DisconnectRequested DisconnectReason = iota
	DisconnectFailedLowlevel
	DisconnectFailedBadUsername
	DisconnectFailedTurboing
	DisconnectFailedBadPassword
	DisconnectFailedMismatchPasswd
	DisconnectFailedDualLogin
	DisconnectFailedUnknown
)

func (r DisconnectReason) String() string {
	switch r {
	case DisconnectRequested:
		return "requested"
	case DisconnectFailedLowlevel:
		return "failed-lowlevel"
	case DisconnectFailedBadUsername:
		return "failed-bad-username"
	case DisconnectFailedTurboing:
		return "failed-turboing"
	case DisconnectFailedBadPassword:
		return "failed-bad-password"
	case DisconnectFailedMismatchPasswd:
		return "failed-mismatch-password"
	case DisconnectFailedDualLogin:
		return "failed-dual-login"
	default:
		return "failed-unknown"
	}
}

// LogLevel classifies a Log event (spec.md §6).
type LogLevel int

const (
	LogWarn LogLevel = iota
	LogError
	LogInfo
	LogPacket
	LogDirectPacket
)

// Event is the closed set of notifications the library emits
// (spec.md §6). Every concrete event type below implements it.
type Event interface{ isEvent() }

type ConnectedEvent struct{}

func (ConnectedEvent) isEvent() {}

type DisconnectedEvent struct{ Reason DisconnectReason }

func (DisconnectedEvent) isEvent() {}

type LogEvent struct {
	Level   LogLevel
	Message string
}

func (LogEvent) isEvent() {}

type NormalMessageEvent struct {
	From uint32
	Text string
}

func (NormalMessageEvent) isEvent() {}

type URLMessageEvent struct {
	From        uint32
	Description string
	URL         string
}

func (URLMessageEvent) isEvent() {}

type SMSMessageEvent struct {
	icbm.SMSMessage
}

func (SMSMessageEvent) isEvent() {}

type SMSReceiptEvent struct {
	icbm.SMSReceipt
}

func (SMSReceiptEvent) isEvent() {}

type AuthReqEvent struct {
	From    uint32
	Nick    string
	First   string
	Last    string
	Email   string
	Message string
}

func (AuthReqEvent) isEvent() {}

type AuthAckEvent struct {
	From    uint32
	Granted bool
	Reason  string
}

func (AuthAckEvent) isEvent() {}

type AwayMessageEvent struct {
	From uint32
	Text string
}

func (AwayMessageEvent) isEvent() {}

type UserAddEvent struct{ From uint32 }

func (UserAddEvent) isEvent() {}

// ContactListEventKind distinguishes the variants of ContactListEvent
// (spec.md §6).
type ContactListEventKind int

const (
	ContactStatusChange ContactListEventKind = iota
	ContactUserInfoChange
	ContactUserAdded
	ContactUserRemoved
	ContactMessageQueueChanged
	ContactServerBased
)

type ContactListEvent struct {
	Kind ContactListEventKind
	UIN  uint32
}

func (ContactListEvent) isEvent() {}

// ServerListAckEvent reports the per-item result codes the server
// returned for a previously sent insert/update/delete request
// (spec.md §4.6, "modification acks with result codes").
type ServerListAckEvent struct {
	Results []uint16
}

func (ServerListAckEvent) isEvent() {}

type MyStatusChangeEvent struct{ Status state.Status }

func (MyStatusChangeEvent) isEvent() {}

type MyUserInfoChangeEvent struct{ ExternalIP uint32 }

func (MyUserInfoChangeEvent) isEvent() {}

type SearchResultEvent struct {
	UIN   uint32
	Alias string
	More  bool
}

func (SearchResultEvent) isEvent() {}

type NewUINEvent struct{ UIN uint32 }

func (NewUINEvent) isEvent() {}

type RateInfoChangeEvent struct {
	Class  wire.RateLimitClassID
	Status wire.RateLimitStatus
}

func (RateInfoChangeEvent) isEvent() {}

type SocketAddEvent struct {
	FD    int
	Read  bool
	Write bool
}

func (SocketAddEvent) isEvent() {}

type SocketRemoveEvent struct{ FD int }

func (SocketRemoveEvent) isEvent() {}

// MessageAckEvent reports the outcome of a previously sent advanced
// message once its cookie is acknowledged or its cache entry expires
// (spec.md §4.5, §8 scenario 2/5). Not in the closed event-set table of
// spec.md §6 verbatim, but it is the "messageack(ev, delivered, direct)"
// callback spec.md §8 scenarios 2 and 5 describe -- modeled as an event
// like every other callback in this library for a uniform Emit surface.
type MessageAckEvent struct {
	Cookie    state.ICBMCookie
	ToUIN     uint32
	Delivered bool
	Direct    bool
	AwayText  string
}

func (MessageAckEvent) isEvent() {}
