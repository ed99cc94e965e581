package client

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/gooscar/icq2000/direct"
	"github.com/gooscar/icq2000/icbm"
	"github.com/gooscar/icq2000/netio"
	"github.com/gooscar/icq2000/state"

	"github.com/google/uuid"
)

// sessionIDFromUUID derives a 32-bit direct-connection session id from
// a random UUID's leading bytes.
func sessionIDFromUUID(u uuid.UUID) uint32 {
	return binary.LittleEndian.Uint32(u[:4])
}

// directTCPVersion is the handshake version this client offers; it
// falls back to v6 semantics (no Init2 step) whenever the peer
// advertises 6 (spec.md §4.7 step 2/4).
const directTCPVersion uint8 = 7

// EnableDirectListener opens the peer-connection listening socket
// configured via accept-in-direct (spec.md §6). No-op if already open
// or if the config disables it.
func (c *Client) EnableDirectListener() error {
	if !c.cfg.AcceptInDirect || c.directListener != nil {
		return nil
	}
	ln, err := netio.Listen(":" + c.cfg.DirectListenPort)
	if err != nil {
		return err
	}
	c.directListener = ln
	if c.addSocket != nil {
		c.addSocket(ln.FD(), netio.ModeRead)
	}
	return nil
}

func (c *Client) acceptDirectConnections() error {
	for {
		sock, err := c.directListener.Accept()
		if err != nil {
			if err == netio.ErrWouldBlock {
				return nil
			}
			return nil
		}
		dc := direct.NewDirectClient(true)
		dc.State = direct.WaitingForInit
		c.directConns[sock.FD()] = sock
		c.directSockets[sock.FD()] = 0 // UIN resolved once Init arrives
		c.directClients[uint32(sock.FD())+directPendingKeyOffset] = dc
		if c.addSocket != nil {
			c.addSocket(sock.FD(), netio.ModeRead)
		}
		c.emit(SocketAddEvent{FD: sock.FD(), Read: true})
	}
}

// directPendingKeyOffset keys an incoming DirectClient by fd (offset out
// of UIN range) until its peer's UIN is confirmed in pendingDirectClient,
// at which point it's re-keyed by UIN in directClients.
const directPendingKeyOffset = 1 << 31

func (c *Client) pendingDirectClient(fd int) (*direct.DirectClient, bool) {
	dc, ok := c.directClients[uint32(fd)+directPendingKeyOffset]
	return dc, ok
}

// OpenDirectConnection begins an outbound handshake to a contact's
// advertised address; the embedder dials non-blockingly and hands the
// connected socket here (spec.md §4.7 steps 1-2).
func (c *Client) OpenDirectConnection(toUIN uint32, sock *netio.Socket) error {
	dc := direct.NewDirectClient(false)
	dc.State = direct.WaitingForInitAck
	dc.PeerUIN = toUIN
	dc.TCPVersion = directTCPVersion
	dc.SessionID = sessionIDFromUUID(c.newUUID())
	c.directClients[toUIN] = dc
	c.directConns[sock.FD()] = sock
	c.directSockets[sock.FD()] = toUIN
	if c.addSocket != nil {
		c.addSocket(sock.FD(), netio.ModeRead)
	}

	init := direct.InitPacket{
		StartByte:  0xFF,
		TCPVersion: dc.TCPVersion,
		RemoteUIN:  toUIN,
		LocalUIN:   c.cfg.UIN,
		SessionID:  dc.SessionID,
	}
	if dc.TCPVersion >= 7 {
		init.ExtraV7 = direct.NewV7Extra(0)
	}
	body, err := direct.EncodeInit(init)
	if err != nil {
		return err
	}
	_, err = sock.Write(framePacket(body))
	return err
}

func (c *Client) pumpDirectSocket(uin uint32) error {
	fd, sock := c.fdFor(uin)
	if sock == nil {
		return ErrWrongSocket
	}
	buf, ok := c.directInBufs[fd]
	if !ok {
		buf = &bytes.Buffer{}
		c.directInBufs[fd] = buf
	}
	for {
		frame, err := readFramedPacket(sock, buf)
		if err != nil {
			if err == netio.ErrWouldBlock {
				return nil
			}
			c.closeDirectSocket(fd)
			return nil
		}
		if err := c.handleDirectFrame(fd, uin, frame); err != nil {
			return err
		}
	}
}

func (c *Client) fdFor(uin uint32) (int, *netio.Socket) {
	for fd, u := range c.directSockets {
		if u == uin {
			return fd, c.directConns[fd]
		}
	}
	return 0, nil
}

// directHeaderLen is the length-prefix size of a direct-connection
// packet: a 16-bit little-endian byte count (spec.md §4.7 step 1).
const directHeaderLen = 2

// readFramedPacket reads one length-prefixed direct-connection packet
// (spec.md §4.7 step 1), accumulating into buf across calls. sock is a
// non-blocking socket, so a header or body can straddle many
// SocketReady invocations; buf is what lets the caller resume instead
// of losing whatever bytes a short read already consumed. Returns
// ErrWouldBlock once buf holds less than a full packet and no more
// bytes are available right now.
func readFramedPacket(sock *netio.Socket, buf *bytes.Buffer) ([]byte, error) {
	if err := fillBufUntil(sock, buf, directHeaderLen); err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint16(buf.Bytes()[:directHeaderLen]))
	if err := fillBufUntil(sock, buf, directHeaderLen+n); err != nil {
		return nil, err
	}

	body := make([]byte, directHeaderLen+n)
	if _, err := io.ReadFull(buf, body); err != nil {
		return nil, err
	}
	return body[directHeaderLen:], nil
}

// fillBufUntil reads from sock into buf until buf holds at least n
// bytes, returning whatever error the last short read produced
// (typically netio.ErrWouldBlock) with buf's partial progress intact.
func fillBufUntil(sock *netio.Socket, buf *bytes.Buffer, n int) error {
	var tmp [4096]byte
	for buf.Len() < n {
		read, err := sock.Read(tmp[:])
		if read > 0 {
			buf.Write(tmp[:read])
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) handleDirectFrame(fd int, uin uint32, wireBody []byte) error {
	dc, ok := c.directClients[uin]
	if !ok {
		dc, ok = c.pendingDirectClient(fd)
		if !ok {
			return nil
		}
	}

	if dc.State == direct.WaitingForInit || dc.State == direct.WaitingForInitAck {
		return c.handleDirectInit(fd, dc, wireBody)
	}

	size := uint32(len(wireBody))
	if dc.TCPVersion >= 7 {
		size -= 3
	} else {
		size -= 2
	}
	plain, ok := direct.Decrypt(wireBody, size)
	if !ok {
		c.logEvent(LogWarn, "direct packet failed checksum validation, discarding")
		return nil
	}
	command, seq, payload, ok := direct.ParseDataPacket(plain)
	if !ok {
		return nil
	}
	switch command {
	case direct.CommandAck:
		_, _ = dc.ResolveAck(seq)
		return nil
	case direct.CommandStart:
		sub, err := icbm.DecodeAdvancedBody(payload)
		if err != nil {
			return nil
		}
		if err := c.handleInboundDirectMessage(dc.PeerUIN, sub); err != nil {
			return err
		}
		ackPacket := direct.BuildDataPacket(direct.CommandAck, seq, nil)
		encrypted := direct.Encrypt(ackPacket, uint32(len(ackPacket)))
		if sock := c.directConns[fd]; sock != nil {
			_, _ = sock.Write(framePacket(encrypted))
		}
		return nil
	default:
		return nil
	}
}

func (c *Client) handleInboundDirectMessage(fromUIN uint32, sub icbm.SubType) error {
	switch m := sub.(type) {
	case icbm.NormalMessage:
		c.emit(NormalMessageEvent{From: fromUIN, Text: m.Text})
	case icbm.URLMessage:
		c.emit(URLMessageEvent{From: fromUIN, Description: m.Description, URL: m.URL})
	default:
		return nil
	}
	return nil
}

// handleDirectInit progresses the v6/v7 handshake (spec.md §4.7 steps
// 2-5): validates the peer's claimed UIN, replies in kind, and promotes
// the connection to Connected once complete.
func (c *Client) handleDirectInit(fd int, dc *direct.DirectClient, body []byte) error {
	init, err := direct.DecodeInit(body)
	if err != nil {
		c.closeDirectSocket(fd)
		return nil
	}

	switch dc.State {
	case direct.WaitingForInit:
		contact := c.contacts.GetOrCreate(init.LocalUIN)
		remoteIP, _ := c.remoteIPFor(fd)
		if !direct.ValidatePeerUIN(init.ExternalIP, c.self.ExternalIP, init.LANIP, remoteIP) {
			c.logEvent(LogWarn, "direct connection UIN confirmation failed, dropping")
			c.closeDirectSocket(fd)
			return nil
		}
		dc.PeerUIN = init.LocalUIN
		dc.TCPVersion = init.TCPVersion
		dc.SessionID = init.SessionID
		contact.DirectAllowed = true

		reply := init
		reply.RemoteUIN = init.LocalUIN
		reply.LocalUIN = c.cfg.UIN
		out, err := direct.EncodeInit(reply)
		if err != nil {
			return err
		}
		if sock := c.directConns[fd]; sock != nil {
			_, _ = sock.Write(framePacket(out))
		}
		delete(c.directClients, uint32(fd)+directPendingKeyOffset)
		c.directSockets[fd] = init.LocalUIN
		c.directClients[init.LocalUIN] = dc
		if dc.TCPVersion >= 7 {
			dc.State = direct.WaitingForInit2
		} else {
			c.promoteDirectConnected(fd, dc)
		}
		return nil
	case direct.WaitingForInitAck:
		if init.SessionID != dc.SessionID || init.RemoteUIN != c.cfg.UIN {
			c.closeDirectSocket(fd)
			return nil
		}
		if dc.TCPVersion >= 7 {
			dc.State = direct.WaitingForInit2
		} else {
			c.promoteDirectConnected(fd, dc)
		}
		return nil
	default:
		return nil
	}
}

func (c *Client) promoteDirectConnected(fd int, dc *direct.DirectClient) {
	queued := dc.TransitionConnected()
	c.emit(ContactListEvent{Kind: ContactMessageQueueChanged, UIN: dc.PeerUIN})
	for _, payload := range queued {
		seq := dc.NextSequence()
		packet := direct.BuildDataPacket(direct.CommandStart, seq, payload)
		dc.TrackAck(seq, packet)
		if sock := c.directConns[fd]; sock != nil {
			encrypted := direct.Encrypt(packet, uint32(len(packet)))
			_, _ = sock.Write(framePacket(encrypted))
		}
	}
}

func (c *Client) remoteIPFor(fd int) (uint32, bool) {
	sock, ok := c.directConns[fd]
	if !ok {
		return 0, false
	}
	addr := sock.RemoteAddr()
	if addr == nil {
		return 0, false
	}
	return state.IPv4ToUint32(addr.String()), true
}

func (c *Client) closeDirectSocket(fd int) {
	if c.removeSocket != nil {
		c.removeSocket(fd)
	}
	if sock, ok := c.directConns[fd]; ok {
		_ = sock.Close()
	}
	if uin, ok := c.directSockets[fd]; ok {
		delete(c.directClients, uin)
	}
	delete(c.directConns, fd)
	delete(c.directSockets, fd)
	delete(c.directClients, uint32(fd)+directPendingKeyOffset)
	delete(c.directInBufs, fd)
	c.emit(SocketRemoveEvent{FD: fd})
}
