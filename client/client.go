// Package client implements the core connection orchestrator: the
// authorizer→BOS login state machine, FLAP/SNAC dispatch, message
// send routing, and the ping/poll-driven cache maintenance the rest of
// the library depends on (spec.md §4.8, §5, §6).
package client

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gooscar/icq2000/config"
	"github.com/gooscar/icq2000/direct"
	"github.com/gooscar/icq2000/icbm"
	"github.com/gooscar/icq2000/netio"
	"github.com/gooscar/icq2000/state"
	"github.com/gooscar/icq2000/wire"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// keepAliveInterval is how long the client waits since the last
// server-directed byte before sending a channel-5 keep-alive frame
// (spec.md §4.8, §5).
const keepAliveInterval = 60 * time.Second

// ErrNotConnected is returned by operations that require an active BOS
// session.
var ErrNotConnected = errors.New("client: not logged in")

// ErrWrongSocket is returned when SocketReady names a file descriptor
// the client isn't tracking.
var ErrWrongSocket = errors.New("client: unrecognized socket")

// Client is the library's single entry point: every method is called
// from one embedder goroutine and none of them block (spec.md §5). It
// holds no mutex because it needs none under that contract -- the
// teacher's state.Session guards the same kind of fields with a
// sync.RWMutex because multiple server goroutines touch one session
// concurrently; here there is exactly one caller.
type Client struct {
	cfg    config.Config
	logger *slog.Logger
	emit   func(Event)

	addSocket    netio.AddSocketHandleFunc
	removeSocket netio.RemoveSocketHandleFunc

	state state.ConnState

	authSock *netio.Socket
	bosSock  *netio.Socket
	flap     *wire.FlapClient

	directListener *netio.Listener
	directClients  map[uint32]*direct.DirectClient
	directSockets  map[int]uint32        // fd -> UIN, for SocketReady routing
	directConns    map[int]*netio.Socket // fd -> socket, for writes/closes
	directInBufs   map[int]*bytes.Buffer // fd -> accumulated partial read, for readFramedPacket

	contacts *state.ContactList
	self     *state.Contact

	pipeline         *icbm.Pipeline
	requestIDs       *state.Cache[uint32, uint16]
	rateClasses      map[wire.RateLimitClassID]*rateClassTracker
	rateClassByPair  map[wire.FoodGroupPair]wire.RateLimitClassID

	translator wire.Translator

	newUUID func() uuid.UUID
	now     func() time.Time

	outbound *rate.Limiter

	lastServerSend time.Time
	awayMessageFn  func() string

	pendingBOSHost   string
	pendingBOSCookie []byte

	nextRequestID uint32
	nextItemID    uint16
}

// NewClient returns a Client ready to Connect. emit is called
// synchronously, from inside whichever entry point produced the event
// -- the embedder must not block inside it.
func NewClient(cfg config.Config, logger *slog.Logger, emit func(Event), addSocket netio.AddSocketHandleFunc, removeSocket netio.RemoveSocketHandleFunc) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		cfg:           cfg,
		logger:        logger,
		emit:          emit,
		addSocket:     addSocket,
		removeSocket:  removeSocket,
		state:         state.NotConnected,
		directClients: make(map[uint32]*direct.DirectClient),
		directSockets: make(map[int]uint32),
		directConns:   make(map[int]*netio.Socket),
		directInBufs:  make(map[int]*bytes.Buffer),
		contacts:      state.NewContactList(),
		self:          state.NewContact(cfg.UIN),
		requestIDs:    state.NewCache[uint32, uint16](30 * time.Second),
		rateClasses:   make(map[wire.RateLimitClassID]*rateClassTracker),
		rateClassByPair: make(map[wire.FoodGroupPair]wire.RateLimitClassID),
		translator:    wire.IdentityTranslator{},
		newUUID:       uuid.New,
		now:           time.Now,
		outbound:      rate.NewLimiter(rate.Limit(4), 8),
	}
	c.pipeline = icbm.NewPipeline(c.handlePipelineAck)
	return c
}

// SetTranslator installs a non-identity charset transcoder (spec.md §6,
// "translation map file").
func (c *Client) SetTranslator(t wire.Translator) { c.translator = t }

// SetAwayMessageFunc registers the callback the client consults when it
// must answer an inbound away-message probe (spec.md §4.4 AwayAutoReq).
func (c *Client) SetAwayMessageFunc(fn func() string) { c.awayMessageFn = fn }

// Contacts exposes the contact list for the embedder to populate or
// inspect (spec.md §3).
func (c *Client) Contacts() *state.ContactList { return c.contacts }

// State reports the current connection state (spec.md §4.8).
func (c *Client) State() state.ConnState { return c.state }

// Connect attaches an already-connected socket to the authorizer and
// begins the login handshake (spec.md §4.8). The embedder is
// responsible for establishing the TCP connection non-blockingly and
// handing it over once writable -- this library never dials.
func (c *Client) Connect(sock *netio.Socket) error {
	if c.state != state.NotConnected {
		return fmt.Errorf("client: Connect called in state %s", c.state)
	}
	c.authSock = sock
	c.flap = wire.NewFlapClient(sock, sock)
	c.state = state.AuthAwaitingConnAck
	if c.addSocket != nil {
		c.addSocket(sock.FD(), netio.ModeRead)
	}
	return nil
}

// PendingBOSRedirect reports the authorizer's redirect target once the
// auth flow accepts the login, for the embedder to dial and hand to
// ConnectBOS.
func (c *Client) PendingBOSRedirect() (hostport string, ok bool) {
	if c.pendingBOSHost == "" {
		return "", false
	}
	return c.pendingBOSHost, true
}

// ConnectBOS attaches the BOS socket once the embedder has connected it
// to the redirect target from PendingBOSRedirect (spec.md §4.8).
func (c *Client) ConnectBOS(sock *netio.Socket) error {
	if c.state != state.AuthRedirecting {
		return fmt.Errorf("client: ConnectBOS called in state %s", c.state)
	}
	c.bosSock = sock
	c.flap = wire.NewFlapClient(sock, sock)
	c.state = state.BosAwaitingConnAck
	if c.addSocket != nil {
		c.addSocket(sock.FD(), netio.ModeRead)
	}
	return nil
}

// SetStatus changes the desired presence status. If the client isn't
// connected yet this simply records the desired status for the login
// burst to advertise once available (spec.md §4.8, "setStatus(≠Offline)
// OR Connect()" both trigger the initial handshake -- the actual socket
// still has to come from the embedder, so here it only arms the
// intent). If already logged in, it pushes a SetUserInfo SNAC
// immediately. StatusOffline is never sent: it calls
// Disconnect(DisconnectRequested) instead.
func (c *Client) SetStatus(s state.Status) error {
	c.self.Status = s
	if s == state.StatusOffline {
		return c.Disconnect(DisconnectRequested)
	}
	if !c.state.IsLoggedIn() {
		return nil
	}
	tlvs := wire.TLVRestBlock{}
	tlvs.Append(wire.NewTLV(wire.UserInfoTLVICQStatus, s.ToWireStatus()))
	if err := c.sendSNAC(wire.General, wire.GeneralSetUserInfo, wire.SNAC_0x01_0x1E_SetUserInfo{TLVRestBlock: tlvs}); err != nil {
		return err
	}
	c.emit(MyStatusChangeEvent{Status: s})
	return nil
}

// Disconnect tears down whatever socket(s) are active and emits
// Disconnected exactly once (spec.md §5, "Cancellation"). It does not
// finalize pending sends itself: cookies still in the pipeline are
// reported as undelivered only when they expire on a later Poll, and
// payloads queued on direct connections are dropped with their
// DirectClient without an ack event.
func (c *Client) Disconnect(reason DisconnectReason) error {
	if c.state == state.NotConnected {
		return nil
	}
	if c.flap != nil && reason == DisconnectRequested {
		_ = c.flap.Disconnect()
	}
	c.teardownSocket(c.authSock)
	c.teardownSocket(c.bosSock)
	c.authSock, c.bosSock, c.flap = nil, nil, nil

	for fd, sock := range c.directConns {
		c.teardownSocket(sock)
		delete(c.directConns, fd)
	}
	for uin := range c.directClients {
		delete(c.directClients, uin)
	}
	for fd := range c.directSockets {
		delete(c.directSockets, fd)
	}
	if c.directListener != nil {
		_ = c.directListener.Close()
		c.directListener = nil
	}

	c.state = state.NotConnected
	c.emit(DisconnectedEvent{Reason: reason})
	return nil
}

func (c *Client) teardownSocket(s *netio.Socket) {
	if s == nil {
		return
	}
	if c.removeSocket != nil {
		c.removeSocket(s.FD())
	}
	_ = s.Close()
}

// Poll is the cooperative-scheduling heartbeat (spec.md §4.8, §5): it
// clears expired cookie/request-id/direct-client cache entries and
// sends a keep-alive if the server hasn't heard from us in
// keepAliveInterval.
func (c *Client) Poll() {
	c.pipeline.Sweep()
	c.requestIDs.Sweep()
	for _, dc := range c.directClients {
		dc.Sweep()
	}
	if c.state.IsLoggedIn() && c.flap != nil && c.now().Sub(c.lastServerSend) >= keepAliveInterval {
		if err := c.flap.SendKeepAlive(); err == nil {
			c.lastServerSend = c.now()
		}
	}
}

// SocketReady is the embedder's readiness signal for one registered
// file descriptor (spec.md §6, "Socket readiness notifier"). It
// consumes whatever is immediately available and dispatches every
// complete frame found, never blocking.
func (c *Client) SocketReady(fd int, mode netio.Mode) error {
	switch {
	case c.authSock != nil && fd == c.authSock.FD():
		return c.pumpAuthSocket()
	case c.bosSock != nil && fd == c.bosSock.FD():
		return c.pumpBOSSocket()
	case c.directListener != nil && fd == c.directListener.FD():
		return c.acceptDirectConnections()
	default:
		if uin, ok := c.directSockets[fd]; ok {
			return c.pumpDirectSocket(uin)
		}
	}
	return ErrWrongSocket
}

func (c *Client) pumpAuthSocket() error {
	for {
		flap, body, err := c.flap.ReceiveFLAP()
		if err != nil {
			if errors.Is(err, netio.ErrWouldBlock) {
				return nil
			}
			if errors.Is(err, wire.ErrBadStartMarker) {
				c.logEvent(LogWarn, "auth socket: bad FLAP start marker, dropping frame")
				continue
			}
			c.logEvent(LogError, fmt.Sprintf("auth socket read failed: %s", err))
			return c.Disconnect(DisconnectFailedLowlevel)
		}
		if err := c.handleAuthFLAP(flap, body); err != nil {
			return err
		}
	}
}

func (c *Client) pumpBOSSocket() error {
	for {
		flap, body, err := c.flap.ReceiveFLAP()
		if err != nil {
			if errors.Is(err, netio.ErrWouldBlock) {
				return nil
			}
			if errors.Is(err, wire.ErrBadStartMarker) {
				c.logEvent(LogWarn, "BOS socket: bad FLAP start marker, dropping frame")
				continue
			}
			c.logEvent(LogError, fmt.Sprintf("BOS socket read failed: %s", err))
			return c.Disconnect(DisconnectFailedLowlevel)
		}
		if err := c.handleBOSFLAP(flap, body); err != nil {
			return err
		}
	}
}

func (c *Client) handleAuthFLAP(flap wire.FLAPFrame, body *bytes.Buffer) error {
	switch flap.Channel {
	case wire.FLAPChannelSignon:
		if c.state != state.AuthAwaitingConnAck {
			return nil
		}
		c.state = state.AuthAwaitingSignonReply
		return c.sendAuthRequest()
	case wire.FLAPChannelSignoff:
		var tlvs wire.TLVRestBlock
		if err := wire.Unmarshal(&tlvs, body); err != nil {
			return fmt.Errorf("client: malformed auth signoff: %w", err)
		}
		return c.handleAuthReply(tlvs.TLVList)
	default:
		c.logEvent(LogWarn, fmt.Sprintf("auth socket: unexpected FLAP channel %d", flap.Channel))
		return nil
	}
}

// sendAuthRequest sends the channel-1 signon body carrying identity TLVs
// (spec.md §6).
func (c *Client) sendAuthRequest() error {
	tlvs := []wire.TLV{
		wire.NewTLV(wire.LoginTLVScreenName, []byte(fmt.Sprintf("%d", c.cfg.UIN))),
		wire.NewTLV(wire.LoginTLVRoastedPass, wire.RoastPassword([]byte(c.cfg.Password))),
		wire.NewTLV(wire.LoginTLVClientProfile, []byte("icq2000go")),
		wire.NewTLVBE(wire.LoginTLVCountry, uint16(1)),
		wire.NewTLVBE(wire.LoginTLVLanguage, uint16(1)),
	}
	return c.flap.SendSignonFrame(tlvs)
}

func (c *Client) handleAuthReply(tlvs wire.TLVList) error {
	if code, ok := tlvs.Uint16BE(wire.SignoffTLVErrorCode); ok {
		return c.Disconnect(mapLoginErrorCode(code))
	}
	cookie, ok := tlvs.Slice(wire.SignoffTLVCookie)
	if !ok {
		return c.Disconnect(DisconnectFailedUnknown)
	}
	redirect, ok := tlvs.String(wire.SignoffTLVRedirect)
	if !ok {
		return c.Disconnect(DisconnectFailedUnknown)
	}
	if c.cfg.BOSPortOverride != "" {
		if host, _, err := net.SplitHostPort(redirect); err == nil {
			redirect = net.JoinHostPort(host, c.cfg.BOSPortOverride)
		}
	}
	c.pendingBOSCookie = cookie
	c.pendingBOSHost = redirect
	c.teardownSocket(c.authSock)
	c.authSock, c.flap = nil, nil
	c.state = state.AuthRedirecting
	return nil
}

func mapLoginErrorCode(code uint16) DisconnectReason {
	switch code {
	case 0x05:
		return DisconnectFailedBadUsername
	case 0x04, 0x18:
		return DisconnectFailedBadPassword
	case 0x1C:
		return DisconnectFailedMismatchPasswd
	case 0x1E:
		return DisconnectFailedTurboing
	case 0x17:
		return DisconnectFailedDualLogin
	default:
		return DisconnectFailedUnknown
	}
}

func (c *Client) handleBOSFLAP(flap wire.FLAPFrame, body *bytes.Buffer) error {
	switch flap.Channel {
	case wire.FLAPChannelSignon:
		if c.state != state.BosAwaitingConnAck {
			return nil
		}
		c.state = state.BosAwaitingSignonReply
		tlvs := []wire.TLV{wire.NewTLV(wire.SignoffTLVCookie, c.pendingBOSCookie)}
		return c.flap.SendSignonFrame(tlvs)
	case wire.FLAPChannelData:
		var frame wire.SNACFrame
		if err := wire.Unmarshal(&frame, body); err != nil {
			return fmt.Errorf("client: malformed SNAC header: %w", err)
		}
		return c.dispatchSNAC(frame, body)
	case wire.FLAPChannelSignoff:
		return c.Disconnect(DisconnectFailedLowlevel)
	default:
		return nil
	}
}

func (c *Client) logEvent(level LogLevel, msg string) {
	if c.emit != nil {
		c.emit(LogEvent{Level: level, Message: msg})
	}
	switch level {
	case LogError:
		c.logger.Error(msg)
	case LogWarn:
		c.logger.Warn(msg)
	case LogInfo:
		c.logger.Info(msg)
	default:
		c.logger.Debug(msg)
	}
}

// sendSNAC wraps body in a SNAC header and sends it on the BOS
// connection, stamping the ping clock (spec.md §4.8). It paces sends
// through outbound before writing, a client-side burst guard
// independent of the server's own rate classes (spec.md §5, "no
// operation blocks for arbitrary duration" -- Allow() never waits).
func (c *Client) sendSNAC(foodGroup, subGroup uint16, body any) error {
	if c.flap == nil {
		return ErrNotConnected
	}
	if c.outbound != nil && !c.outbound.Allow() {
		c.logEvent(LogWarn, fmt.Sprintf("client-side burst guard dropped outbound %s/0x%04x", wire.FoodGroupName(foodGroup), subGroup))
		return fmt.Errorf("client: outbound burst limit exceeded for %s/0x%04x", wire.FoodGroupName(foodGroup), subGroup)
	}
	frame := wire.SNACFrame{FoodGroup: foodGroup, SubGroup: subGroup, RequestID: c.nextRequestIDValue()}
	if err := c.flap.SendSNAC(frame, body); err != nil {
		return err
	}
	c.lastServerSend = c.now()
	if classID, ok := c.rateClassByPair[wire.FoodGroupPair{FoodGroup: foodGroup, SubGroup: subGroup}]; ok {
		c.noteSend(classID)
	}
	return nil
}

func (c *Client) nextRequestIDValue() uint32 {
	c.nextRequestID++
	return c.nextRequestID
}
